package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Env holds secrets and connection strings taken from the environment.
type Env struct {
	LLMAPIKey string `envconfig:"LLM_API_KEY"`
	RedisURL  string `envconfig:"REDIS_URL"`
}

// YAMLConfig represents the structure of config.yaml.
type YAMLConfig struct {
	Server struct {
		Addr      string `yaml:"addr"`
		StaticDir string `yaml:"static_dir"`
	} `yaml:"server"`

	LLM struct {
		Provider    string  `yaml:"provider"` // openai|ollama|ark|deepseek
		Model       string  `yaml:"model"`
		BaseURL     string  `yaml:"base_url"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"llm"`

	Trends struct {
		Geo        string   `yaml:"geo"`
		Timeframe  string   `yaml:"timeframe"`
		Lang       string   `yaml:"lang"`
		BatchSize  int      `yaml:"batch_size"`
		MaxRelated int      `yaml:"max_related"`
		Denylist   []string `yaml:"denylist"`
	} `yaml:"trends"`

	Pipeline struct {
		CandidateCount int `yaml:"candidate_count"`
		TopCount       int `yaml:"top_count"`
	} `yaml:"pipeline"`

	Store struct {
		TTLMinutes int `yaml:"ttl_minutes"`
	} `yaml:"store"`

	Log struct {
		Level      string `yaml:"level"`
		Format     string `yaml:"format"`
		Output     string `yaml:"output"`
		TimeFormat string `yaml:"time_format"`
		FilePath   string `yaml:"file_path"`
	} `yaml:"log"`
}

// Load reads config.yaml and the environment. A missing .env file is
// fine; a missing config file is not.
func Load(filepath string) (*YAMLConfig, *Env, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("error parsing YAML: %w", err)
	}
	cfg.applyDefaults()

	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return nil, nil, fmt.Errorf("error processing environment configuration: %w", err)
	}

	return &cfg, &env, nil
}

func (c *YAMLConfig) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "web"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 4000
	}
	if c.Trends.Geo == "" {
		c.Trends.Geo = "DE"
	}
	if c.Trends.Timeframe == "" {
		c.Trends.Timeframe = "today 12-m"
	}
	if c.Trends.Lang == "" {
		c.Trends.Lang = "de-DE"
	}
	if c.Trends.BatchSize == 0 {
		c.Trends.BatchSize = 5
	}
	if c.Trends.MaxRelated == 0 {
		c.Trends.MaxRelated = 5
	}
	if c.Pipeline.CandidateCount == 0 {
		c.Pipeline.CandidateCount = 30
	}
	if c.Pipeline.TopCount == 0 {
		c.Pipeline.TopCount = 10
	}
	if c.Store.TTLMinutes == 0 {
		c.Store.TTLMinutes = 40
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
