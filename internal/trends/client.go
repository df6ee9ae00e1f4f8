package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"keywordagent/internal/logger"
)

const (
	defaultBaseURL = "https://trends.google.com"
	defaultTZ      = 360

	explorePath         = "/trends/api/explore"
	multilinePath       = "/trends/api/widgetdata/multiline"
	relatedSearchesPath = "/trends/api/widgetdata/relatedsearches"
)

// RelatedQueries holds the two ranked lists the provider returns per
// keyword.
type RelatedQueries struct {
	Top    []string
	Rising []string
}

// BatchData is the raw provider output for one batch of keywords.
type BatchData struct {
	Interest map[string][]float64
	Related  map[string]RelatedQueries
}

// Provider fetches trend data for one batch of keywords.
type Provider interface {
	FetchBatch(ctx context.Context, keywords []string, geo, timeframe string) (*BatchData, error)
}

// Client talks to the unofficial Google Trends widget API: an explore
// call hands out per-widget tokens, which unlock the timeseries and
// related-queries endpoints. Responses carry a `)]}'` anti-JSON prefix
// that has to be stripped before decoding.
type Client struct {
	httpClient *http.Client
	baseURL    string
	lang       string
	tz         int

	mu     sync.Mutex
	primed bool
}

// NewClient creates a trends client. lang is the hl parameter, e.g.
// "de-DE".
func NewClient(lang string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
		baseURL: defaultBaseURL,
		lang:    lang,
		tz:      defaultTZ,
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub
// server.
func NewClientWithBaseURL(lang, baseURL string) *Client {
	c := NewClient(lang)
	c.baseURL = baseURL
	return c
}

type exploreRequest struct {
	ComparisonItem []exploreItem `json:"comparisonItem"`
	Category       int           `json:"category"`
	Property       string        `json:"property"`
}

type exploreItem struct {
	Keyword string `json:"keyword"`
	Geo     string `json:"geo"`
	Time    string `json:"time"`
}

type exploreResponse struct {
	Widgets []widget `json:"widgets"`
}

type widget struct {
	ID      string          `json:"id"`
	Token   string          `json:"token"`
	Request json.RawMessage `json:"request"`
}

type multilineResponse struct {
	Default struct {
		TimelineData []struct {
			Time    string `json:"time"`
			Value   []int  `json:"value"`
			HasData []bool `json:"hasData"`
		} `json:"timelineData"`
	} `json:"default"`
}

type relatedResponse struct {
	Default struct {
		RankedList []struct {
			RankedKeyword []struct {
				Query string `json:"query"`
			} `json:"rankedKeyword"`
		} `json:"rankedList"`
	} `json:"default"`
}

// FetchBatch implements Provider.
func (c *Client) FetchBatch(ctx context.Context, keywords []string, geo, timeframe string) (*BatchData, error) {
	if err := c.prime(ctx, geo); err != nil {
		return nil, err
	}

	widgets, err := c.explore(ctx, keywords, geo, timeframe)
	if err != nil {
		return nil, err
	}

	data := &BatchData{
		Interest: make(map[string][]float64, len(keywords)),
		Related:  make(map[string]RelatedQueries, len(keywords)),
	}

	var timeseries *widget
	var relatedWidgets []widget
	for i := range widgets {
		w := widgets[i]
		switch {
		case w.ID == "TIMESERIES":
			timeseries = &w
		case strings.HasPrefix(w.ID, "RELATED_QUERIES"):
			relatedWidgets = append(relatedWidgets, w)
		}
	}

	if timeseries != nil {
		if err := c.interestOverTime(ctx, *timeseries, keywords, data); err != nil {
			return nil, err
		}
	}

	// Related-queries widgets come back in the same order as the
	// requested keywords.
	for i, w := range relatedWidgets {
		if i >= len(keywords) {
			break
		}
		rq, err := c.relatedQueries(ctx, w)
		if err != nil {
			return nil, err
		}
		data.Related[keywords[i]] = rq
	}

	return data, nil
}

// prime performs the initial page request once so Google hands out the
// session cookies the API endpoints expect.
func (c *Client) prime(ctx context.Context, geo string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.primed {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?geo="+url.QueryEscape(geo), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("priming trends cookies: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	c.primed = true
	return nil
}

func (c *Client) explore(ctx context.Context, keywords []string, geo, timeframe string) ([]widget, error) {
	items := make([]exploreItem, 0, len(keywords))
	for _, kw := range keywords {
		items = append(items, exploreItem{Keyword: kw, Geo: geo, Time: timeframe})
	}
	reqJSON, err := sonic.MarshalString(exploreRequest{ComparisonItem: items})
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("hl", c.lang)
	params.Set("tz", fmt.Sprint(c.tz))
	params.Set("req", reqJSON)

	body, err := c.get(ctx, explorePath, params)
	if err != nil {
		return nil, err
	}

	var er exploreResponse
	if err := sonic.Unmarshal(body, &er); err != nil {
		return nil, fmt.Errorf("decoding explore response: %w", err)
	}
	return er.Widgets, nil
}

func (c *Client) interestOverTime(ctx context.Context, w widget, keywords []string, data *BatchData) error {
	params := url.Values{}
	params.Set("hl", c.lang)
	params.Set("tz", fmt.Sprint(c.tz))
	params.Set("req", string(w.Request))
	params.Set("token", w.Token)

	body, err := c.get(ctx, multilinePath, params)
	if err != nil {
		return err
	}

	var mr multilineResponse
	if err := sonic.Unmarshal(body, &mr); err != nil {
		return fmt.Errorf("decoding timeseries response: %w", err)
	}

	for _, point := range mr.Default.TimelineData {
		for idx, kw := range keywords {
			if idx >= len(point.Value) {
				continue
			}
			if idx < len(point.HasData) && !point.HasData[idx] {
				continue
			}
			data.Interest[kw] = append(data.Interest[kw], float64(point.Value[idx]))
		}
	}
	return nil
}

func (c *Client) relatedQueries(ctx context.Context, w widget) (RelatedQueries, error) {
	params := url.Values{}
	params.Set("hl", c.lang)
	params.Set("tz", fmt.Sprint(c.tz))
	params.Set("req", string(w.Request))
	params.Set("token", w.Token)

	body, err := c.get(ctx, relatedSearchesPath, params)
	if err != nil {
		return RelatedQueries{}, err
	}

	var rr relatedResponse
	if err := sonic.Unmarshal(body, &rr); err != nil {
		return RelatedQueries{}, fmt.Errorf("decoding related queries response: %w", err)
	}

	var rq RelatedQueries
	if len(rr.Default.RankedList) > 0 {
		for _, rk := range rr.Default.RankedList[0].RankedKeyword {
			rq.Top = append(rq.Top, rk.Query)
		}
	}
	if len(rr.Default.RankedList) > 1 {
		for _, rk := range rr.Default.RankedList[1].RankedKeyword {
			rq.Rising = append(rq.Rising, rk.Query)
		}
	}
	return rq, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trends request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading trends response %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		logger.Warn().
			Int("status", resp.StatusCode).
			Str("path", path).
			Msg("Trends endpoint returned non-200")
		return nil, fmt.Errorf("trends endpoint %s returned status %d", path, resp.StatusCode)
	}

	return stripJSONPrefix(body), nil
}

// stripJSONPrefix removes the `)]}'` guard Google prepends to widget
// API responses.
func stripJSONPrefix(body []byte) []byte {
	for i, b := range body {
		if b == '{' || b == '[' {
			return body[i:]
		}
	}
	return body
}
