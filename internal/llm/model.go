package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/ollama/ollama/api"

	"keywordagent/internal/config"
)

// NewChatModel builds the chat model for the configured provider.
// "openai" covers every OpenAI-compatible endpoint (incl. OpenRouter)
// via base_url.
func NewChatModel(ctx context.Context, cfg config.YAMLConfig, apiKey string) (model.BaseChatModel, error) {
	switch cfg.LLM.Provider {
	case "openai", "":
		maxTokens := cfg.LLM.MaxTokens
		temperature := float32(cfg.LLM.Temperature)
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      apiKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
		})

	case "ollama":
		return ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Options: &api.Options{
				Temperature: float32(cfg.LLM.Temperature),
			},
		})

	case "ark":
		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			APIKey:  apiKey,
			Model:   cfg.LLM.Model,
			BaseURL: cfg.LLM.BaseURL,
		})

	case "deepseek":
		return deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:  apiKey,
			Model:   cfg.LLM.Model,
			BaseURL: cfg.LLM.BaseURL,
		})

	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLM.Provider)
	}
}
