package agent

import (
	"sort"

	"github.com/bytedance/sonic"

	"keywordagent/pkg"
)

// BuildChartSpec builds a Vega-Lite bar chart of keyword scores:
// horizontal bars, sorted by gesamt_score descending. It backs the
// visualization stage when the model output is unusable.
func BuildChartSpec(top []pkg.TopKeyword) (string, error) {
	rows := make([]map[string]any, 0, len(top))
	for _, kw := range top {
		row := map[string]any{
			"keyword":      kw.Keyword,
			"gesamt_score": kw.GesamtScore,
		}
		if kw.TrendIndex != nil {
			row["trend_index"] = *kw.TrendIndex
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i]["gesamt_score"].(int) > rows[j]["gesamt_score"].(int)
	})

	spec := map[string]any{
		"$schema": "https://vega.github.io/schema/vega-lite/v5.json",
		"width":   500,
		"height":  350,
		"data":    map[string]any{"values": rows},
		"mark":    "bar",
		"encoding": map[string]any{
			"y": map[string]any{
				"field": "keyword",
				"type":  "nominal",
				"sort":  "-x",
				"title": "Keyword",
			},
			"x": map[string]any{
				"field": "gesamt_score",
				"type":  "quantitative",
				"title": "Gesamt-Score",
			},
			"tooltip": []map[string]any{
				{"field": "keyword", "type": "nominal"},
				{"field": "gesamt_score", "type": "quantitative"},
				{"field": "trend_index", "type": "quantitative"},
			},
		},
	}
	return sonic.MarshalString(spec)
}
