package yahoonews

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ymlin/twscreener/pkg/config"
	"github.com/ymlin/twscreener/pkg/httputil"
	"github.com/ymlin/twscreener/pkg/logger"
)

// Client searches recent headlines on the news portal
// SSOT: 新聞標題只從這個 client 取得
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new headline search client
func NewClient(cfg config.NewsConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.Component("news"),
		baseURL:    cfg.BaseURL,
	}
}

// Search fetches up to max headlines matching the query, newest first.
// Items older than the window are dropped by their relative timestamp
func (c *Client) Search(ctx context.Context, query string, window time.Duration, max int) ([]string, error) {
	fullURL := fmt.Sprintf("%s/search?q=%s", c.baseURL, url.QueryEscape(query))

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("news search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	headlines, err := parseHeadlines(body, window, max)
	if err != nil {
		return nil, fmt.Errorf("parse news page: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"query": query,
		"count": len(headlines),
	}).Debug("Fetched headlines")
	return headlines, nil
}

// parseHeadlines extracts headline titles from the search result list.
// Each item carries a title node and a relative age like "3 小時前"
func parseHeadlines(body []byte, window time.Duration, max int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse HTML failed: %w", err)
	}

	var headlines []string
	doc.Find("li.news-item").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		title := strings.TrimSpace(item.Find("h3").Text())
		if title == "" {
			return true
		}
		age, ok := parseRelativeAge(item.Find("span.time").Text())
		if ok && age > window {
			return false // list is newest first, everything below is staler
		}
		headlines = append(headlines, title)
		return len(headlines) < max
	})

	return headlines, nil
}

// parseRelativeAge converts portal timestamps like "3 小時前" or "2 天前" into
// a duration. Unrecognized formats report ok=false and the item is kept
func parseRelativeAge(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)

	units := []struct {
		suffix string
		unit   time.Duration
	}{
		{"分鐘前", time.Minute},
		{"小時前", time.Hour},
		{"天前", 24 * time.Hour},
	}

	for _, u := range units {
		if !strings.HasSuffix(s, u.suffix) {
			continue
		}
		numPart := strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
		var n int
		if _, err := fmt.Sscanf(numPart, "%d", &n); err != nil {
			return 0, false
		}
		return time.Duration(n) * u.unit, true
	}
	return 0, false
}
