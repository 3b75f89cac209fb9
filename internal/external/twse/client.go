package twse

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ymlin/twscreener/pkg/config"
	"github.com/ymlin/twscreener/pkg/httputil"
	"github.com/ymlin/twscreener/pkg/logger"
)

// Client handles communication with the Taiwan exchange endpoints
// SSOT: 證交所資料只從這個 client 取得
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	mopsURL    string
}

// NewClient creates a new exchange client
func NewClient(cfg config.TWSEConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.Component("twse"),
		baseURL:    cfg.BaseURL,
		mopsURL:    cfg.MopsURL,
	}
}

// fetchBody fetches a URL and returns the raw body
func (c *Client) fetchBody(ctx context.Context, fullURL string) ([]byte, error) {
	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	return body, nil
}

// parseNum parses exchange-formatted numbers: thousands commas, explicit
// signs, "--" for no data
func parseNum(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "+", "")
	if s == "" || s == "-" || s == "--" {
		return 0
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

// parseROCDate parses a 民國 date like "115/01/05" into 2026-01-05
func parseROCDate(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("not a ROC date: %q", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("bad ROC year in %q", s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("bad month in %q", s)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("bad day in %q", s)
	}
	return time.Date(year+1911, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}
