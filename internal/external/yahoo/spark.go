package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ymlin/twscreener/internal/contracts"
)

// sparkBatchSize caps symbols per batch request
const sparkBatchSize = 20

// sparkResponse is the multi-symbol endpoint response shape: one chart-like
// result per requested symbol, failed symbols simply absent
type sparkResponse struct {
	Spark struct {
		Result []struct {
			Symbol   string        `json:"symbol"`
			Response []chartResult `json:"response"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"spark"`
}

// History fetches daily bars for many symbols in batches. The returned map
// holds whatever succeeded; symbols the upstream dropped are simply missing.
// A failed batch request fails the call so the store can fall back to
// single-symbol mode
func (c *Client) History(ctx context.Context, symbols []contracts.Symbol, lookback int) (map[string]*contracts.PriceSeries, error) {
	out := make(map[string]*contracts.PriceSeries, len(symbols))

	for start := 0; start < len(symbols); start += sparkBatchSize {
		end := start + sparkBatchSize
		if end > len(symbols) {
			end = len(symbols)
		}
		if err := c.fetchSparkBatch(ctx, symbols[start:end], lookback, out); err != nil {
			return out, err
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"requested": len(symbols),
		"received":  len(out),
	}).Debug("Fetched batch history")
	return out, nil
}

// fetchSparkBatch requests one batch and merges successful series into out
func (c *Client) fetchSparkBatch(ctx context.Context, symbols []contracts.Symbol, lookback int, out map[string]*contracts.PriceSeries) error {
	tickers := make([]string, 0, len(symbols))
	byTicker := make(map[string]contracts.Symbol, len(symbols))
	for _, sym := range symbols {
		ticker := sym.ChartTicker()
		tickers = append(tickers, ticker)
		byTicker[ticker] = sym
	}

	fullURL := fmt.Sprintf("%s/v8/finance/spark?symbols=%s&interval=1d&range=%s",
		c.baseURL, url.QueryEscape(strings.Join(tickers, ",")), rangeForLookback(lookback))

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return fmt.Errorf("batch request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body failed: %w", err)
	}

	var spark sparkResponse
	if err := json.Unmarshal(body, &spark); err != nil {
		return fmt.Errorf("decode batch JSON: %w", err)
	}
	if spark.Spark.Error != nil {
		return fmt.Errorf("batch API error: %s", spark.Spark.Error.Description)
	}

	for _, result := range spark.Spark.Result {
		sym, ok := byTicker[result.Symbol]
		if !ok || len(result.Response) == 0 {
			continue
		}
		series, err := resultToSeries(sym.Code, result.Response[0], lookback)
		if err != nil {
			// One bad symbol degrades that symbol only
			c.logger.WithError(err).WithField("code", sym.Code).Warn("Skipping unparsable batch series")
			continue
		}
		out[sym.Code] = series
	}

	return nil
}
