package agent

import (
	"context"
	"strings"
	"testing"

	"keywordagent/internal/trends"
)

type noopProvider struct{}

func (noopProvider) FetchBatch(_ context.Context, keywords []string, _, _ string) (*trends.BatchData, error) {
	return &trends.BatchData{
		Interest: map[string][]float64{},
		Related:  map[string]trends.RelatedQueries{},
	}, nil
}

func TestNewTrendsTool(t *testing.T) {
	svc, err := trends.NewService(noopProvider{}, trends.Config{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	trendsTool, err := NewTrendsTool(svc)
	if err != nil {
		t.Fatalf("NewTrendsTool: %v", err)
	}

	info, err := trendsTool.Info(context.Background())
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Name != TrendsToolName {
		t.Errorf("expected tool name %q, got %q", TrendsToolName, info.Name)
	}

	out, err := trendsTool.InvokableRun(context.Background(), `{"keywords":["laptop test"]}`)
	if err != nil {
		t.Fatalf("InvokableRun: %v", err)
	}
	if !strings.Contains(out, `"trends_verfuegbar":true`) {
		t.Errorf("unexpected tool output: %s", out)
	}
	if !strings.Contains(out, "laptop test") {
		t.Errorf("keyword missing from tool output: %s", out)
	}
}
