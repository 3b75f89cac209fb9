package twse

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ymlin/twscreener/internal/contracts"
)

// rankingResponse is the daily top-by-traded-value JSON shape. Each data row
// is [rank, code, name, trade volume, transactions, trade value, ...]
type rankingResponse struct {
	Stat   string     `json:"stat"`
	Date   string     `json:"date"`
	Fields []string   `json:"fields"`
	Data   [][]string `json:"data"`
}

// TopByValue fetches the day's top-n symbols ranked by traded value
func (c *Client) TopByValue(ctx context.Context, n int) ([]contracts.Symbol, error) {
	fullURL := fmt.Sprintf("%s/rwd/zh/afterTrading/MI_INDEX20?response=json", c.baseURL)

	body, err := c.fetchBody(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("fetch value ranking: %w", err)
	}

	var ranking rankingResponse
	if err := json.Unmarshal(body, &ranking); err != nil {
		return nil, fmt.Errorf("decode ranking JSON: %w", err)
	}
	if ranking.Stat != "OK" {
		return nil, fmt.Errorf("ranking API stat: %s", ranking.Stat)
	}

	symbols := make([]contracts.Symbol, 0, n)
	for _, row := range ranking.Data {
		if len(row) < 3 {
			continue
		}
		code, name := row[1], row[2]
		if code == "" {
			continue
		}
		symbols = append(symbols, contracts.Symbol{
			Code:   code,
			Name:   name,
			Market: "TWSE",
		})
		if len(symbols) >= n {
			break
		}
	}

	if len(symbols) == 0 {
		return nil, fmt.Errorf("ranking returned no rows")
	}

	c.logger.WithFields(map[string]interface{}{
		"count": len(symbols),
		"date":  ranking.Date,
	}).Debug("Fetched value ranking")
	return symbols, nil
}
