package yahoo

import (
	"github.com/ymlin/twscreener/pkg/config"
	"github.com/ymlin/twscreener/pkg/httputil"
	"github.com/ymlin/twscreener/pkg/logger"
)

// Client fetches daily history from the Yahoo Finance chart API
// SSOT: 歷史股價只從這個 client 取得
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new chart API client
func NewClient(cfg config.YahooConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.Component("yahoo"),
		baseURL:    cfg.BaseURL,
	}
}

// rangeForLookback maps a lookback in trading sessions to an API range
// parameter with enough calendar headroom
func rangeForLookback(sessions int) string {
	switch {
	case sessions <= 60:
		return "6mo"
	case sessions <= 120:
		return "1y"
	case sessions <= 480:
		return "2y"
	default:
		return "5y"
	}
}

// toFloat converts the API's nullable numbers; nil becomes 0
func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}
