package trends

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"keywordagent/internal/logger"
	"keywordagent/pkg"
)

// Built-in brand-safety patterns. The agent prompts carry the real
// brand-safety instructions; this is a second net for keywords that
// slip through.
var defaultDenylist = []string{
	`\b(kokain|heroin|meth|crystal|drogen kaufen)\b`,
	`\b(waffe kaufen|schusswaffe|bombenbau)\b`,
	`\b(kindesmissbrauch)\b`,
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Config holds the tunables of the trends service.
type Config struct {
	Geo        string
	Timeframe  string
	BatchSize  int
	MaxRelated int
	Denylist   []string // extra patterns on top of the built-in ones
}

// Service turns a free-text keyword list into per-keyword trend
// records. It never returns an error: any provider failure degrades to
// the fixed "unavailable" shape.
type Service struct {
	provider      Provider
	cfg           Config
	denylist      []*regexp.Regexp
	batchObserver func(ok bool)
}

// NewService builds a Service. Invalid extra denylist patterns are
// rejected.
func NewService(provider Provider, cfg Config) (*Service, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.MaxRelated <= 0 {
		cfg.MaxRelated = 5
	}

	patterns := append(append([]string{}, defaultDenylist...), cfg.Denylist...)
	denylist := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid denylist pattern %q: %w", p, err)
		}
		denylist = append(denylist, re)
	}

	return &Service{provider: provider, cfg: cfg, denylist: denylist}, nil
}

// SetBatchObserver registers a per-batch outcome callback (metrics).
func (s *Service) SetBatchObserver(obs func(ok bool)) { s.batchObserver = obs }

// KeywordTrends cleans the keyword list, queries the provider in
// batches and returns one record per surviving keyword, in first-seen
// order.
func (s *Service) KeywordTrends(ctx context.Context, keywords []string) *pkg.TrendDaten {
	cleaned := s.clean(keywords)
	if len(cleaned) == 0 {
		return &pkg.TrendDaten{
			TrendsVerfuegbar: false,
			Ergebnisse:       []pkg.KeywordTrend{},
			Hinweis:          "Keine gültigen Keywords für Trends-Abfrage vorhanden.",
		}
	}

	ergebnisse := make([]pkg.KeywordTrend, 0, len(cleaned))
	for start := 0; start < len(cleaned); start += s.cfg.BatchSize {
		end := start + s.cfg.BatchSize
		if end > len(cleaned) {
			end = len(cleaned)
		}
		batch := cleaned[start:end]

		data, err := s.provider.FetchBatch(ctx, batch, s.cfg.Geo, s.cfg.Timeframe)
		if s.batchObserver != nil {
			s.batchObserver(err == nil)
		}
		if err != nil {
			logger.Warn().Err(err).
				Int("batch_start", start).
				Int("keywords", len(cleaned)).
				Msg("Trends batch failed, degrading to fallback")
			return s.fallback(cleaned, err)
		}

		for _, kw := range batch {
			ergebnisse = append(ergebnisse, pkg.KeywordTrend{
				Keyword:               kw,
				TrendIndex:            trendIndex(data.Interest[kw]),
				Suchvolumen:           nil,
				VerwandteSuchanfragen: s.relatedFor(data.Related[kw]),
			})
		}
	}

	return &pkg.TrendDaten{
		TrendsVerfuegbar: true,
		Ergebnisse:       ergebnisse,
		Hinweis:          "trend_index ist ein Proxy (0-100) aus Google Trends; echtes Suchvolumen ist hier nicht enthalten.",
	}
}

// clean normalizes, drops denylisted entries and deduplicates
// preserving first-seen order.
func (s *Service) clean(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = Normalize(kw)
		if kw == "" || !s.brandSafe(kw) {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

func (s *Service) brandSafe(keyword string) bool {
	k := strings.ToLower(keyword)
	for _, re := range s.denylist {
		if re.MatchString(k) {
			return false
		}
	}
	return true
}

// relatedFor picks up to MaxRelated related queries, rising entries
// first, then top entries, re-cleaned through the same rules as the
// input keywords.
func (s *Service) relatedFor(rq RelatedQueries) []string {
	raw := make([]string, 0, s.cfg.MaxRelated)
	for _, q := range rq.Rising {
		if len(raw) >= s.cfg.MaxRelated {
			break
		}
		raw = append(raw, q)
	}
	for _, q := range rq.Top {
		if len(raw) >= s.cfg.MaxRelated {
			break
		}
		raw = append(raw, q)
	}

	related := s.clean(raw)
	if len(related) > s.cfg.MaxRelated {
		related = related[:s.cfg.MaxRelated]
	}
	if related == nil {
		related = []string{}
	}
	return related
}

// fallback produces the "unavailable" shape: one record per surviving
// keyword with null index and empty related list.
func (s *Service) fallback(cleaned []string, cause error) *pkg.TrendDaten {
	ergebnisse := make([]pkg.KeywordTrend, 0, len(cleaned))
	for _, kw := range cleaned {
		ergebnisse = append(ergebnisse, pkg.KeywordTrend{
			Keyword:               kw,
			TrendIndex:            nil,
			Suchvolumen:           nil,
			VerwandteSuchanfragen: []string{},
		})
	}
	return &pkg.TrendDaten{
		TrendsVerfuegbar: false,
		Ergebnisse:       ergebnisse,
		Hinweis:          fmt.Sprintf("Trends-Abfrage nicht verfügbar: %v", cause),
	}
}

// trendIndex is the mean of the series rounded to the nearest integer,
// nil when the series is empty.
func trendIndex(series []float64) *int {
	if len(series) == 0 {
		return nil
	}
	var sum float64
	for _, v := range series {
		sum += v
	}
	idx := int(math.Round(sum / float64(len(series))))
	return &idx
}

// Normalize trims and collapses inner whitespace.
func Normalize(keyword string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(keyword), " ")
}
