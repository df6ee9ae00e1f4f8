package trends

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubTrendsServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "NID", Value: "stub"})
	})

	mux.HandleFunc(explorePath, func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("req"))
		_, _ = w.Write([]byte(")]}'\n" + `{
			"widgets": [
				{"id": "TIMESERIES", "token": "ts-token", "request": {"time": "today 12-m"}},
				{"id": "RELATED_QUERIES_0", "token": "rq-token-0", "request": {"restriction": 0}},
				{"id": "RELATED_QUERIES_1", "token": "rq-token-1", "request": {"restriction": 1}}
			]
		}`))
	})

	mux.HandleFunc(multilinePath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ts-token", r.URL.Query().Get("token"))
		_, _ = w.Write([]byte(")]}',\n" + `{
			"default": {"timelineData": [
				{"time": "1", "value": [50, 10], "hasData": [true, true]},
				{"time": "2", "value": [70, 0], "hasData": [true, false]}
			]}
		}`))
	})

	mux.HandleFunc(relatedSearchesPath, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("token") {
		case "rq-token-0":
			_, _ = w.Write([]byte(")]}',\n" + `{
				"default": {"rankedList": [
					{"rankedKeyword": [{"query": "laptop test"}, {"query": "laptop vergleich"}]},
					{"rankedKeyword": [{"query": "laptop 2026"}]}
				]}
			}`))
		default:
			_, _ = w.Write([]byte(")]}',\n" + `{"default": {"rankedList": []}}`))
		}
	})

	return httptest.NewServer(mux)
}

func TestClientFetchBatch(t *testing.T) {
	srv := newStubTrendsServer(t)
	defer srv.Close()

	client := NewClientWithBaseURL("de-DE", srv.URL)
	data, err := client.FetchBatch(context.Background(), []string{"laptop", "tablet"}, "DE", "today 12-m")
	require.NoError(t, err)

	assert.Equal(t, []float64{50, 70}, data.Interest["laptop"])
	assert.Equal(t, []float64{10}, data.Interest["tablet"], "points without data are skipped")

	laptop := data.Related["laptop"]
	assert.Equal(t, []string{"laptop test", "laptop vergleich"}, laptop.Top)
	assert.Equal(t, []string{"laptop 2026"}, laptop.Rising)
	assert.Empty(t, data.Related["tablet"].Top)
}

func TestClientPropagatesHTTPErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc(explorePath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClientWithBaseURL("de-DE", srv.URL)
	_, err := client.FetchBatch(context.Background(), []string{"laptop"}, "DE", "today 12-m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestStripJSONPrefix(t *testing.T) {
	assert.Equal(t, `{"a":1}`, string(stripJSONPrefix([]byte(")]}',\n{\"a\":1}"))))
	assert.Equal(t, `[1,2]`, string(stripJSONPrefix([]byte(")]}'[1,2]"))))
	assert.Equal(t, `{"a":1}`, string(stripJSONPrefix([]byte(`{"a":1}`))))
}
