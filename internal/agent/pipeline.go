package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"

	"keywordagent/internal/config"
	"keywordagent/internal/logger"
	"keywordagent/pkg"
)

// Event is one state delta emitted during a pipeline run. A run emits
// one event per stage and closes the stream; Err is set on the final
// event when a stage failed.
type Event struct {
	Stage string
	Key   string
	Value any
	Err   error
}

// InvalidInputError aborts a run when the validation stage rejects the
// input.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

// StageObserver is called after each stage with its duration.
type StageObserver func(stage string, seconds float64)

// Pipeline is the fixed stage sequence:
// eingabe_pruefung → keyword_generierung → trend_anreicherung →
// seo_bewertung → visualisierung → zusammenfassung.
type Pipeline struct {
	stages   []Stage
	observer StageObserver
}

// NewPipeline compiles the LLM chains and wires the trends tool into
// the enrichment stage.
func NewPipeline(ctx context.Context, cm model.BaseChatModel, trendsTool tool.InvokableTool, cfg config.YAMLConfig) (*Pipeline, error) {
	validierung, err := newValidierungStage(ctx, cm)
	if err != nil {
		return nil, fmt.Errorf("building validation stage: %w", err)
	}
	kandidaten, err := newKandidatenStage(ctx, cm, cfg.Pipeline.CandidateCount)
	if err != nil {
		return nil, fmt.Errorf("building candidate stage: %w", err)
	}
	bewertung, err := newBewertungStage(ctx, cm, cfg.Pipeline.TopCount)
	if err != nil {
		return nil, fmt.Errorf("building scoring stage: %w", err)
	}
	diagramm, err := newDiagrammStage(ctx, cm)
	if err != nil {
		return nil, fmt.Errorf("building chart stage: %w", err)
	}
	zusammenfassung, err := newZusammenfassungStage(ctx, cm)
	if err != nil {
		return nil, fmt.Errorf("building summary stage: %w", err)
	}

	return &Pipeline{
		stages: []Stage{
			validierung,
			kandidaten,
			&enrichmentStage{trendsTool: trendsTool},
			bewertung,
			diagramm,
			zusammenfassung,
		},
	}, nil
}

// SetObserver registers a per-stage duration callback (metrics).
func (p *Pipeline) SetObserver(obs StageObserver) { p.observer = obs }

// Run executes the stage sequence for one request and streams state
// deltas. The channel closes when the run finishes or fails.
func (p *Pipeline) Run(ctx context.Context, req pkg.KeywordRequest) <-chan Event {
	events := make(chan Event, len(p.stages))

	go func() {
		defer close(events)

		st := NewState(req)
		for _, stage := range p.stages {
			start := time.Now()
			value, err := stage.Run(ctx, st)
			elapsed := time.Since(start)

			if p.observer != nil {
				p.observer(stage.Name(), elapsed.Seconds())
			}

			if err != nil {
				logger.Error().Err(err).
					Str("stage", stage.Name()).
					Msg("Pipeline stage failed")
				events <- Event{Stage: stage.Name(), Err: err}
				return
			}

			st.Set(stage.OutputKey(), value)
			events <- Event{Stage: stage.Name(), Key: stage.OutputKey(), Value: value}

			logger.Info().
				Str("stage", stage.Name()).
				Dur("duration", elapsed).
				Msg("Pipeline stage completed")

			if ve, ok := value.(pkg.ValidierteEingabe); ok && !ve.Gueltig {
				msg := ve.Fehlermeldung
				if msg == "" {
					msg = "Eingabe ungültig."
				}
				events <- Event{Stage: stage.Name(), Err: &InvalidInputError{Message: msg}}
				return
			}
		}
	}()

	return events
}

// Collect drains one run's event stream to completion and returns the
// final state map.
func Collect(events <-chan Event) (map[string]any, error) {
	state := make(map[string]any)
	for ev := range events {
		if ev.Err != nil {
			return state, ev.Err
		}
		state[ev.Key] = ev.Value
	}
	return state, nil
}

// AssembleResult shapes the collected state into the API result.
func AssembleResult(runID string, state map[string]any) pkg.KeywordResult {
	result := pkg.KeywordResult{
		RunID:  runID,
		Status: "fertig",
	}

	if v, ok := state[StateKeyValidierteEingabe].(pkg.ValidierteEingabe); ok {
		result.Warnungen = v.Warnungen
	}
	if v, ok := state[StateKeySEOErgebnis].(pkg.SEOErgebnis); ok {
		result.TopKeywords = v.TopKeywords
		result.SEOTitel = v.SEOTitel
		result.MetaBeschreibung = v.MetaBeschreibung
		result.HookUeberschrift = v.HookUeberschrift
		result.Vorspann = v.Vorspann
		result.TrendsVerfuegbar = v.TrendsVerfuegbar
		if !v.TrendsVerfuegbar {
			result.Status = "fertig (Trenddaten nicht verfügbar)"
		}
	}
	if v, ok := state[StateKeyDiagrammCode].(string); ok {
		result.DiagrammSpec = v
	}
	if v, ok := state[StateKeyZusammenfassung].(string); ok {
		result.Zusammenfassung = v
	}
	return result
}
