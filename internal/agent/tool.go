package agent

import (
	"context"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"

	"keywordagent/internal/trends"
	"keywordagent/pkg"
)

// TrendsToolName is the tool the enrichment stage calls.
const TrendsToolName = "get_trend_daten_fuer_keywords"

// TrendToolRequest is the tool argument schema.
type TrendToolRequest struct {
	Keywords []string `json:"keywords" jsonschema:"description=Liste der Keywords (Strings)"`
}

// NewTrendsTool wraps the trends service as an eino tool.
func NewTrendsTool(svc *trends.Service) (tool.InvokableTool, error) {
	return utils.InferTool(TrendsToolName,
		"Holt Trend-Index (0-100 Proxy) und verwandte Suchanfragen für eine Liste deutscher Keywords.",
		func(ctx context.Context, req *TrendToolRequest) (*pkg.TrendDaten, error) {
			return svc.KeywordTrends(ctx, req.Keywords), nil
		})
}
