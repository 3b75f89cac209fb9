package twse

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ymlin/twscreener/internal/contracts"
)

// listing mode parameters on the ISIN registry page
const (
	listingModeTWSE = 2 // 上市
	listingModeTPEX = 4 // 上櫃
)

// Listing fetches the full equity listing of both boards from the ISIN
// registry pages. A board that fails to fetch fails the whole call; the
// universe builder decides whether a run survives without it
func (c *Client) Listing(ctx context.Context) ([]contracts.Symbol, error) {
	var symbols []contracts.Symbol

	boards := []struct {
		mode   int
		market string
	}{
		{listingModeTWSE, "TWSE"},
		{listingModeTPEX, "TPEX"},
	}

	for _, board := range boards {
		fullURL := fmt.Sprintf("%s/isin/C_public.jsp?strMode=%d", c.baseURL, board.mode)

		body, err := c.fetchBody(ctx, fullURL)
		if err != nil {
			return nil, fmt.Errorf("fetch %s listing: %w", board.market, err)
		}

		parsed, err := parseListing(body, board.market)
		if err != nil {
			return nil, fmt.Errorf("parse %s listing: %w", board.market, err)
		}
		symbols = append(symbols, parsed...)
	}

	c.logger.WithField("count", len(symbols)).Debug("Fetched exchange listing")
	return symbols, nil
}

// parseListing extracts equities from one ISIN registry page. Rows carry
// "code　name" in the first cell (full-width space separator) and the CFI
// code in the sixth; only common shares (ES prefix) are kept
func parseListing(body []byte, market string) ([]contracts.Symbol, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse HTML failed: %w", err)
	}

	var symbols []contracts.Symbol
	doc.Find("table.h4 tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 6 {
			return // header or section divider row
		}

		code, name, ok := splitCodeName(cells.Eq(0).Text())
		if !ok {
			return
		}
		cfi := strings.TrimSpace(cells.Eq(5).Text())
		if !strings.HasPrefix(cfi, "ES") {
			return // warrants, ETFs, TDRs
		}

		symbols = append(symbols, contracts.Symbol{
			Code:   code,
			Name:   name,
			Market: market,
		})
	})

	if len(symbols) == 0 {
		return nil, fmt.Errorf("no equities found in listing page")
	}
	return symbols, nil
}

// splitCodeName splits "2330　台積電" on the full-width space
func splitCodeName(s string) (code, name string, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(s), "　", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	code = strings.TrimSpace(parts[0])
	name = strings.TrimSpace(parts[1])
	if code == "" || name == "" {
		return "", "", false
	}
	return code, name, true
}
