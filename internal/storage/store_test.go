package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keywordagent/pkg"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	result := pkg.KeywordResult{
		RunID:    "run-1",
		Status:   "fertig",
		SEOTitel: "Titel",
		TopKeywords: []pkg.TopKeyword{
			{Keyword: "e bike test", GesamtScore: 88},
		},
	}
	require.NoError(t, store.SaveRun(ctx, result, time.Minute))

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, result, *got)
}

func TestMemoryStoreUnknownRun(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.SaveRun(ctx, pkg.KeywordResult{RunID: "run-1"}, time.Minute))

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err := store.GetRun(ctx, "run-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
