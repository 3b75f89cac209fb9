package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/ymlin/twscreener/internal/contracts"
)

// chartResponse is the single-symbol chart API response shape
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol string `json:"symbol"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []quoteArrays `json:"quote"`
	} `json:"indicators"`
}

type quoteArrays struct {
	Open   []interface{} `json:"open"`
	High   []interface{} `json:"high"`
	Low    []interface{} `json:"low"`
	Close  []interface{} `json:"close"`
	Volume []interface{} `json:"volume"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// HistoryOne fetches daily bars for a single symbol
func (c *Client) HistoryOne(ctx context.Context, symbol contracts.Symbol, lookback int) (*contracts.PriceSeries, error) {
	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		c.baseURL, url.PathEscape(symbol.ChartTicker()), rangeForLookback(lookback))

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("chart request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	series, err := c.parseChartResponse(symbol.Code, body, lookback)
	if err != nil {
		return nil, fmt.Errorf("parse chart response: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"code": symbol.Code,
		"bars": series.Len(),
	}).Debug("Fetched history")
	return series, nil
}

// parseChartResponse decodes one chart payload into a price series
func (c *Client) parseChartResponse(code string, body []byte, lookback int) (*contracts.PriceSeries, error) {
	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("decode chart JSON: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart returned no result")
	}

	return resultToSeries(code, chart.Chart.Result[0], lookback)
}

// resultToSeries converts one chart result into a trimmed price series
func resultToSeries(code string, result chartResult, lookback int) (*contracts.PriceSeries, error) {
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart result has no bars")
	}

	quote := result.Indicators.Quote[0]
	series := &contracts.PriceSeries{Code: code}

	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		o := toFloat(at(quote.Open, i))
		h := toFloat(at(quote.High, i))
		l := toFloat(at(quote.Low, i))
		cl := toFloat(at(quote.Close, i))
		if o == 0 && h == 0 && l == 0 && cl == 0 {
			continue // null bar (holiday, halted session)
		}
		series.Bars = append(series.Bars, contracts.Bar{
			Date:   time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  cl,
			Volume: int64(toFloat(at(quote.Volume, i))),
		})
	}

	sort.Slice(series.Bars, func(i, j int) bool {
		return series.Bars[i].Date.Before(series.Bars[j].Date)
	})

	// Trim to the requested lookback so every caller sees the same window
	if len(series.Bars) > lookback {
		series.Bars = series.Bars[len(series.Bars)-lookback:]
	}

	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}

func at(arr []interface{}, i int) interface{} {
	if i >= len(arr) {
		return nil
	}
	return arr[i]
}
