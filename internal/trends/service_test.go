package trends

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	batches []([]string)
	data    map[string]*BatchData
	err     error
}

func (f *fakeProvider) FetchBatch(_ context.Context, keywords []string, _, _ string) (*BatchData, error) {
	f.batches = append(f.batches, append([]string{}, keywords...))
	if f.err != nil {
		return nil, f.err
	}
	data := &BatchData{
		Interest: make(map[string][]float64),
		Related:  make(map[string]RelatedQueries),
	}
	for _, kw := range keywords {
		if d, ok := f.data[kw]; ok {
			if series, ok := d.Interest[kw]; ok {
				data.Interest[kw] = series
			}
			if rq, ok := d.Related[kw]; ok {
				data.Related[kw] = rq
			}
		}
	}
	return data, nil
}

func newTestService(t *testing.T, provider Provider, cfg Config) *Service {
	t.Helper()
	svc, err := NewService(provider, cfg)
	require.NoError(t, err)
	return svc
}

func TestKeywordTrendsCleaning(t *testing.T) {
	provider := &fakeProvider{data: map[string]*BatchData{}}
	svc := newTestService(t, provider, Config{Geo: "DE", Timeframe: "today 12-m"})

	result := svc.KeywordTrends(context.Background(), []string{
		"  laptop   test ",
		"laptop test", // duplicate after normalization
		"",
		"   ",
		"waffe kaufen günstig", // denylisted
		"notebook vergleich",
	})

	require.True(t, result.TrendsVerfuegbar)
	require.Len(t, result.Ergebnisse, 2)
	assert.Equal(t, "laptop test", result.Ergebnisse[0].Keyword)
	assert.Equal(t, "notebook vergleich", result.Ergebnisse[1].Keyword)
}

func TestKeywordTrendsEmptyAfterCleaning(t *testing.T) {
	provider := &fakeProvider{}
	svc := newTestService(t, provider, Config{})

	result := svc.KeywordTrends(context.Background(), []string{"", "  ", "bombenbau anleitung"})

	assert.False(t, result.TrendsVerfuegbar)
	assert.Empty(t, result.Ergebnisse)
	assert.NotEmpty(t, result.Hinweis)
	assert.Empty(t, provider.batches, "provider must not be called for an empty cleaned list")
}

func TestKeywordTrendsBatching(t *testing.T) {
	provider := &fakeProvider{data: map[string]*BatchData{}}
	svc := newTestService(t, provider, Config{BatchSize: 2})

	keywords := []string{"a1", "a2", "a3", "a4", "a5"}
	result := svc.KeywordTrends(context.Background(), keywords)

	require.Len(t, provider.batches, 3)
	assert.Equal(t, []string{"a1", "a2"}, provider.batches[0])
	assert.Equal(t, []string{"a3", "a4"}, provider.batches[1])
	assert.Equal(t, []string{"a5"}, provider.batches[2])

	// Output order matches first-seen input order.
	require.Len(t, result.Ergebnisse, 5)
	for i, kw := range keywords {
		assert.Equal(t, kw, result.Ergebnisse[i].Keyword)
	}
}

func TestKeywordTrendsIndexIsRoundedMean(t *testing.T) {
	provider := &fakeProvider{data: map[string]*BatchData{
		"smartphone": {Interest: map[string][]float64{"smartphone": {80, 81}}},
	}}
	svc := newTestService(t, provider, Config{})

	result := svc.KeywordTrends(context.Background(), []string{"smartphone", "ohne daten"})

	require.Len(t, result.Ergebnisse, 2)
	require.NotNil(t, result.Ergebnisse[0].TrendIndex)
	assert.Equal(t, 81, *result.Ergebnisse[0].TrendIndex) // mean 80.5 rounds up
	assert.Nil(t, result.Ergebnisse[1].TrendIndex, "absent series yields null index")
	assert.Nil(t, result.Ergebnisse[0].Suchvolumen)
}

func TestKeywordTrendsRelatedPrefersRising(t *testing.T) {
	provider := &fakeProvider{data: map[string]*BatchData{
		"fahrrad": {Related: map[string]RelatedQueries{
			"fahrrad": {
				Rising: []string{"e bike  test", "fahrrad kaufen"},
				Top:    []string{"fahrrad kaufen", "fahrrad   reparatur", "drogen kaufen fahrrad", "fahrrad licht", "fahrrad schloss"},
			},
		}},
	}}
	svc := newTestService(t, provider, Config{MaxRelated: 4})

	result := svc.KeywordTrends(context.Background(), []string{"fahrrad"})

	require.Len(t, result.Ergebnisse, 1)
	related := result.Ergebnisse[0].VerwandteSuchanfragen
	assert.LessOrEqual(t, len(related), 4)
	// Rising first, then top, normalized and deduplicated.
	assert.Equal(t, []string{"e bike test", "fahrrad kaufen", "fahrrad reparatur"}, related[:3])
	assert.NotContains(t, related, "drogen kaufen fahrrad")
}

func TestKeywordTrendsRelatedNeverExceedsMax(t *testing.T) {
	many := RelatedQueries{
		Rising: []string{"r1", "r2", "r3", "r4", "r5", "r6", "r7"},
		Top:    []string{"t1", "t2", "t3", "t4", "t5"},
	}
	provider := &fakeProvider{data: map[string]*BatchData{
		"kw": {Related: map[string]RelatedQueries{"kw": many}},
	}}
	svc := newTestService(t, provider, Config{MaxRelated: 5})

	result := svc.KeywordTrends(context.Background(), []string{"kw"})

	require.Len(t, result.Ergebnisse, 1)
	assert.Len(t, result.Ergebnisse[0].VerwandteSuchanfragen, 5)
}

func TestKeywordTrendsProviderFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("quota exceeded")}
	svc := newTestService(t, provider, Config{BatchSize: 2})

	keywords := []string{"k1", "k2", "k3"}
	result := svc.KeywordTrends(context.Background(), keywords)

	assert.False(t, result.TrendsVerfuegbar)
	require.Len(t, result.Ergebnisse, 3, "every surviving keyword appears exactly once")
	for i, kw := range keywords {
		e := result.Ergebnisse[i]
		assert.Equal(t, kw, e.Keyword)
		assert.Nil(t, e.TrendIndex)
		assert.Nil(t, e.Suchvolumen)
		assert.Empty(t, e.VerwandteSuchanfragen)
	}
	assert.Contains(t, result.Hinweis, "quota exceeded")
}

func TestKeywordTrendsFailureInLaterBatch(t *testing.T) {
	provider := &failAfterProvider{failFrom: 1}
	svc := newTestService(t, provider, Config{BatchSize: 2})

	result := svc.KeywordTrends(context.Background(), []string{"k1", "k2", "k3", "k4"})

	// A mid-sequence failure degrades the whole result, not just the
	// failing batch.
	assert.False(t, result.TrendsVerfuegbar)
	require.Len(t, result.Ergebnisse, 4)
	for _, e := range result.Ergebnisse {
		assert.Nil(t, e.TrendIndex)
	}
}

type failAfterProvider struct {
	calls    int
	failFrom int
}

func (f *failAfterProvider) FetchBatch(context.Context, []string, string, string) (*BatchData, error) {
	defer func() { f.calls++ }()
	if f.calls >= f.failFrom {
		return nil, errors.New("rate limited")
	}
	return &BatchData{Interest: map[string][]float64{}, Related: map[string]RelatedQueries{}}, nil
}

func TestBatchObserverSeesOutcomes(t *testing.T) {
	provider := &failAfterProvider{failFrom: 1}
	svc := newTestService(t, provider, Config{BatchSize: 2})

	var outcomes []bool
	svc.SetBatchObserver(func(ok bool) { outcomes = append(outcomes, ok) })

	svc.KeywordTrends(context.Background(), []string{"k1", "k2", "k3"})
	assert.Equal(t, []bool{true, false}, outcomes)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "laptop test", Normalize("  laptop \t  test \n"))
	assert.Equal(t, "", Normalize("   "))
}

func TestCustomDenylistPattern(t *testing.T) {
	svc := newTestService(t, &fakeProvider{}, Config{Denylist: []string{`verbotene marke`}})
	assert.False(t, svc.brandSafe("Verbotene Marke kaufen"))
	assert.True(t, svc.brandSafe("erlaubte marke"))

	_, err := NewService(&fakeProvider{}, Config{Denylist: []string{`([`}})
	assert.Error(t, err)
}
