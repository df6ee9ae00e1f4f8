package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"keywordagent/internal/logger"
	"keywordagent/internal/trends"
	"keywordagent/pkg"
)

// State keys written by the pipeline stages. Each key is produced by
// exactly one stage and consumed by later ones.
const (
	StateKeyValidierteEingabe = "validierte_eingabe"
	StateKeyKeywordKandidaten = "keyword_kandidaten"
	StateKeyTrendDaten        = "trend_daten"
	StateKeySEOErgebnis       = "seo_ergebnis"
	StateKeyDiagrammCode      = "diagramm_code"
	StateKeyZusammenfassung   = "zusammenfassung"
)

// Stage is one step of the pipeline. Run returns the value stored
// under OutputKey.
type Stage interface {
	Name() string
	OutputKey() string
	Run(ctx context.Context, st *State) (any, error)
}

// State is the shared key-value store one pipeline run reads and
// writes. It lives for a single request.
type State struct {
	Request pkg.KeywordRequest
	values  map[string]any
}

func NewState(req pkg.KeywordRequest) *State {
	return &State{Request: req, values: make(map[string]any)}
}

func (s *State) Set(key string, value any) { s.values[key] = value }

func (s *State) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// jsonValue renders a state entry as JSON for use in a prompt.
func (s *State) jsonValue(key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", fmt.Errorf("state key %q not set", key)
	}
	out, err := sonic.MarshalString(v)
	if err != nil {
		return "", fmt.Errorf("marshaling state key %q: %w", key, err)
	}
	return out, nil
}

// llmStage is a prompt template + chat model chain whose output is
// parsed into a typed state value.
type llmStage struct {
	name      string
	outputKey string
	chain     compose.Runnable[map[string]any, *schema.Message]
	vars      func(st *State) (map[string]any, error)
	parse     func(content string, st *State) (any, error)
}

func (s *llmStage) Name() string      { return s.name }
func (s *llmStage) OutputKey() string { return s.outputKey }

func (s *llmStage) Run(ctx context.Context, st *State) (any, error) {
	vars, err := s.vars(st)
	if err != nil {
		return nil, err
	}

	out, err := s.chain.Invoke(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", s.name, err)
	}

	value, err := s.parse(out.Content, st)
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", s.name, err)
	}
	return value, nil
}

func buildChain(ctx context.Context, cm model.BaseChatModel, system, user string) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := prompt.FromMessages(schema.Jinja2,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)
	return compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(template).
		AppendChatModel(cm).
		Compile(ctx)
}

func newValidierungStage(ctx context.Context, cm model.BaseChatModel) (Stage, error) {
	chain, err := buildChain(ctx, cm, validierungSystemPrompt, validierungUserPrompt)
	if err != nil {
		return nil, err
	}
	return &llmStage{
		name:      "eingabe_pruefung",
		outputKey: StateKeyValidierteEingabe,
		chain:     chain,
		vars: func(st *State) (map[string]any, error) {
			return map[string]any{
				"thema":       st.Request.Thema,
				"artikeltext": st.Request.Artikeltext,
				"alter_min":   st.Request.AlterMin,
				"alter_max":   st.Request.AlterMax,
			}, nil
		},
		parse: func(content string, _ *State) (any, error) {
			ve, err := ParseJSON[pkg.ValidierteEingabe](content)
			if err != nil {
				return nil, err
			}
			return *ve, nil
		},
	}, nil
}

func newKandidatenStage(ctx context.Context, cm model.BaseChatModel, anzahl int) (Stage, error) {
	chain, err := buildChain(ctx, cm, kandidatenSystemPrompt, kandidatenUserPrompt)
	if err != nil {
		return nil, err
	}
	return &llmStage{
		name:      "keyword_generierung",
		outputKey: StateKeyKeywordKandidaten,
		chain:     chain,
		vars: func(st *State) (map[string]any, error) {
			ve, err := st.jsonValue(StateKeyValidierteEingabe)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"validierte_eingabe": ve,
				"anzahl":             anzahl,
			}, nil
		},
		parse: func(content string, _ *State) (any, error) {
			liste, err := ParseJSON[pkg.KandidatenListe](content)
			if err != nil {
				return nil, err
			}
			if len(liste.KeywordKandidaten) != anzahl {
				logger.Warn().
					Int("expected", anzahl).
					Int("got", len(liste.KeywordKandidaten)).
					Msg("Candidate stage returned unexpected count")
			}
			return *liste, nil
		},
	}, nil
}

// enrichmentStage calls the trends tool with the candidate keywords
// and merges the per-keyword records back deterministically. Keywords
// missing from the tool output get null/empty fields.
type enrichmentStage struct {
	trendsTool tool.InvokableTool
}

func (s *enrichmentStage) Name() string      { return "trend_anreicherung" }
func (s *enrichmentStage) OutputKey() string { return StateKeyTrendDaten }

func (s *enrichmentStage) Run(ctx context.Context, st *State) (any, error) {
	v, ok := st.Get(StateKeyKeywordKandidaten)
	if !ok {
		return nil, fmt.Errorf("stage %s: candidates not in state", s.Name())
	}
	liste, ok := v.(pkg.KandidatenListe)
	if !ok {
		return nil, fmt.Errorf("stage %s: unexpected state type %T", s.Name(), v)
	}

	keywords := make([]string, 0, len(liste.KeywordKandidaten))
	for _, k := range liste.KeywordKandidaten {
		keywords = append(keywords, k.Keyword)
	}

	daten := s.fetch(ctx, keywords)

	byKeyword := make(map[string]pkg.KeywordTrend, len(daten.Ergebnisse))
	for _, e := range daten.Ergebnisse {
		byKeyword[trends.Normalize(e.Keyword)] = e
	}

	enriched := pkg.AngereicherteKeywords{
		AngereicherteKeywords: make([]pkg.AngereichertesKeyword, 0, len(liste.KeywordKandidaten)),
		TrendsVerfuegbar:      daten.TrendsVerfuegbar,
	}
	for _, k := range liste.KeywordKandidaten {
		ak := pkg.AngereichertesKeyword{
			Keyword:               k.Keyword,
			Suchintention:         k.Suchintention,
			Begruendung:           k.Begruendung,
			VerwandteSuchanfragen: []string{},
		}
		if e, ok := byKeyword[trends.Normalize(k.Keyword)]; ok {
			ak.TrendIndex = e.TrendIndex
			ak.Suchvolumen = e.Suchvolumen
			if e.VerwandteSuchanfragen != nil {
				ak.VerwandteSuchanfragen = e.VerwandteSuchanfragen
			}
		}
		enriched.AngereicherteKeywords = append(enriched.AngereicherteKeywords, ak)
	}

	return enriched, nil
}

// fetch invokes the tool. The trends service is failure-contained by
// contract, so an error here is a framework problem and degrades the
// same way a provider failure would.
func (s *enrichmentStage) fetch(ctx context.Context, keywords []string) pkg.TrendDaten {
	unavailable := pkg.TrendDaten{
		TrendsVerfuegbar: false,
		Ergebnisse:       []pkg.KeywordTrend{},
	}

	args, err := sonic.MarshalString(TrendToolRequest{Keywords: keywords})
	if err != nil {
		logger.Error().Err(err).Msg("Marshaling trends tool arguments failed")
		unavailable.Hinweis = fmt.Sprintf("Trends-Abfrage nicht verfügbar: %v", err)
		return unavailable
	}

	out, err := s.trendsTool.InvokableRun(ctx, args)
	if err != nil {
		logger.Error().Err(err).Msg("Trends tool invocation failed")
		unavailable.Hinweis = fmt.Sprintf("Trends-Abfrage nicht verfügbar: %v", err)
		return unavailable
	}

	var daten pkg.TrendDaten
	if err := sonic.UnmarshalString(out, &daten); err != nil {
		logger.Error().Err(err).Msg("Decoding trends tool output failed")
		unavailable.Hinweis = fmt.Sprintf("Trends-Abfrage nicht verfügbar: %v", err)
		return unavailable
	}
	return daten
}

func newBewertungStage(ctx context.Context, cm model.BaseChatModel, anzahlTop int) (Stage, error) {
	chain, err := buildChain(ctx, cm, bewertungSystemPrompt, bewertungUserPrompt)
	if err != nil {
		return nil, err
	}
	return &llmStage{
		name:      "seo_bewertung",
		outputKey: StateKeySEOErgebnis,
		chain:     chain,
		vars: func(st *State) (map[string]any, error) {
			ve, err := st.jsonValue(StateKeyValidierteEingabe)
			if err != nil {
				return nil, err
			}
			td, err := st.jsonValue(StateKeyTrendDaten)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"validierte_eingabe": ve,
				"trend_daten":        td,
				"anzahl_top":         anzahlTop,
			}, nil
		},
		parse: func(content string, st *State) (any, error) {
			ergebnis, err := ParseJSON[pkg.SEOErgebnis](content)
			if err != nil {
				return nil, err
			}
			if len(ergebnis.TopKeywords) > anzahlTop {
				ergebnis.TopKeywords = ergebnis.TopKeywords[:anzahlTop]
			}
			return *ergebnis, nil
		},
	}, nil
}

func newDiagrammStage(ctx context.Context, cm model.BaseChatModel) (Stage, error) {
	chain, err := buildChain(ctx, cm, diagrammSystemPrompt, diagrammUserPrompt)
	if err != nil {
		return nil, err
	}
	return &llmStage{
		name:      "visualisierung",
		outputKey: StateKeyDiagrammCode,
		chain:     chain,
		vars: func(st *State) (map[string]any, error) {
			se, err := st.jsonValue(StateKeySEOErgebnis)
			if err != nil {
				return nil, err
			}
			return map[string]any{"seo_ergebnis": se}, nil
		},
		parse: func(content string, st *State) (any, error) {
			spec := extractJSONObject(CleanCodeFences(content))
			var specObj map[string]any
			if err := sonic.UnmarshalString(spec, &specObj); err == nil && len(specObj) > 0 {
				return spec, nil
			}

			// Model produced something other than a JSON spec: fall
			// back to the deterministically built chart.
			logger.Warn().Msg("Chart stage output not valid JSON, using fallback spec")
			v, ok := st.Get(StateKeySEOErgebnis)
			if !ok {
				return nil, fmt.Errorf("seo_ergebnis not in state")
			}
			ergebnis := v.(pkg.SEOErgebnis)
			return BuildChartSpec(ergebnis.TopKeywords)
		},
	}, nil
}

func newZusammenfassungStage(ctx context.Context, cm model.BaseChatModel) (Stage, error) {
	chain, err := buildChain(ctx, cm, zusammenfassungSystemPrompt, zusammenfassungUserPrompt)
	if err != nil {
		return nil, err
	}
	return &llmStage{
		name:      "zusammenfassung",
		outputKey: StateKeyZusammenfassung,
		chain:     chain,
		vars: func(st *State) (map[string]any, error) {
			se, err := st.jsonValue(StateKeySEOErgebnis)
			if err != nil {
				return nil, err
			}
			return map[string]any{"seo_ergebnis": se}, nil
		},
		parse: func(content string, _ *State) (any, error) {
			return strings.TrimSpace(CleanCodeFences(content)), nil
		},
	}, nil
}
