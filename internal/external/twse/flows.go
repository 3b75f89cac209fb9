package twse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/ymlin/twscreener/internal/contracts"
)

// flowResponse is the per-symbol institutional trading JSON shape. Each data
// row is [date(民國), foreign net, trust net, dealer net] in shares
type flowResponse struct {
	Stat string     `json:"stat"`
	Data [][]string `json:"data"`
}

// Flows fetches institutional net buy/sell records for a symbol since the
// given date, newest session first
func (c *Client) Flows(ctx context.Context, symbol contracts.Symbol, since time.Time) ([]contracts.FlowRecord, error) {
	fullURL := fmt.Sprintf("%s/rwd/zh/fund/T86?stockNo=%s&response=json",
		c.baseURL, url.QueryEscape(symbol.Code))

	body, err := c.fetchBody(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("fetch flows: %w", err)
	}

	var flows flowResponse
	if err := json.Unmarshal(body, &flows); err != nil {
		return nil, fmt.Errorf("decode flow JSON: %w", err)
	}
	if flows.Stat != "OK" {
		return nil, fmt.Errorf("flow API stat: %s", flows.Stat)
	}

	records := make([]contracts.FlowRecord, 0, len(flows.Data))
	for _, row := range flows.Data {
		if len(row) < 4 {
			continue
		}
		date, err := parseROCDate(row[0])
		if err != nil {
			c.logger.WithError(err).WithField("code", symbol.Code).Warn("Skipping flow row with bad date")
			continue
		}
		if date.Before(since) {
			continue
		}
		records = append(records, contracts.FlowRecord{
			Date:       date,
			ForeignNet: parseNum(row[1]),
			TrustNet:   parseNum(row[2]),
			DealerNet:  parseNum(row[3]),
		})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})

	c.logger.WithFields(map[string]interface{}{
		"code":     symbol.Code,
		"sessions": len(records),
	}).Debug("Fetched institutional flows")
	return records, nil
}
