package twse

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ymlin/twscreener/internal/contracts"
)

// balance-sheet row labels on the filing page
const (
	labelCash = "現金及約當現金"
	labelDebt = "負債總額"
)

// Balance fetches the latest reported balance-sheet figures for a symbol
// from the filing site. Figures are in TWD thousands
func (c *Client) Balance(ctx context.Context, symbol contracts.Symbol) (*contracts.BalanceSheet, error) {
	fullURL := fmt.Sprintf("%s/mops/web/t164sb03?co_id=%s", c.mopsURL, url.QueryEscape(symbol.Code))

	body, err := c.fetchBody(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("fetch balance sheet: %w", err)
	}

	sheet, err := parseBalanceSheet(body)
	if err != nil {
		return nil, fmt.Errorf("parse balance sheet: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"code": symbol.Code,
		"cash": sheet.Cash,
		"debt": sheet.TotalDebt,
	}).Debug("Fetched balance sheet")
	return sheet, nil
}

// parseBalanceSheet scans filing tables for the cash and total-debt rows.
// The latest period is the first amount cell after the label
func parseBalanceSheet(body []byte) (*contracts.BalanceSheet, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse HTML failed: %w", err)
	}

	var sheet contracts.BalanceSheet
	foundCash, foundDebt := false, false

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := strings.TrimSpace(cells.Eq(0).Text())

		switch {
		case !foundCash && strings.Contains(label, labelCash):
			sheet.Cash = parseNum(cells.Eq(1).Text())
			foundCash = true
		case !foundDebt && strings.Contains(label, labelDebt):
			sheet.TotalDebt = parseNum(cells.Eq(1).Text())
			foundDebt = true
		}
	})

	if !foundCash || !foundDebt {
		return nil, fmt.Errorf("balance-sheet rows not found (cash=%v debt=%v)", foundCash, foundDebt)
	}
	return &sheet, nil
}
