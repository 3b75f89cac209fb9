package twse

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ymlin/twscreener/internal/contracts"
	"github.com/ymlin/twscreener/pkg/httputil"
	"github.com/ymlin/twscreener/pkg/logger"
)

func testClient(baseURL string) *Client {
	return &Client{
		httpClient: httputil.New(logger.NewNop(), 5*time.Second).DisableRetry(),
		logger:     logger.NewNop(),
		baseURL:    baseURL,
		mopsURL:    baseURL,
	}
}

func TestParseNum(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1,234,567", 1234567},
		{"+2,500", 2500},
		{"-1,200", -1200},
		{"--", 0},
		{"", 0},
		{" 42 ", 42},
	}

	for _, tt := range tests {
		if got := parseNum(tt.in); got != tt.want {
			t.Errorf("parseNum(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseROCDate(t *testing.T) {
	got, err := parseROCDate("115/01/05")
	if err != nil {
		t.Fatalf("parseROCDate() error = %v", err)
	}
	want := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("parseROCDate() = %v, want %v", got, want)
	}

	for _, bad := range []string{"2026-01-05", "115/01", "abc/01/05"} {
		if _, err := parseROCDate(bad); err == nil {
			t.Errorf("parseROCDate(%q) error = nil, want error", bad)
		}
	}
}

const listingPage = `<html><body><table class="h4">
<tr><td colspan="7">股票</td></tr>
<tr><td>有價證券代號及名稱</td><td>ISIN</td><td>上市日</td><td>市場別</td><td>產業別</td><td>CFICode</td><td>備註</td></tr>
<tr><td>2330　台積電</td><td>TW0002330008</td><td>1994/09/05</td><td>上市</td><td>半導體業</td><td>ESVUFR</td><td></td></tr>
<tr><td>2317　鴻海</td><td>TW0002317005</td><td>1991/06/18</td><td>上市</td><td>其他電子業</td><td>ESVUFR</td><td></td></tr>
<tr><td>0050　元大台灣50</td><td>TW0000050004</td><td>2003/06/30</td><td>上市</td><td></td><td>CEOGEU</td><td></td></tr>
</table></body></html>`

func TestParseListing(t *testing.T) {
	symbols, err := parseListing([]byte(listingPage), "TWSE")
	if err != nil {
		t.Fatalf("parseListing() error = %v", err)
	}

	// The ETF row (CFI CEOGEU) and header rows must be skipped
	if len(symbols) != 2 {
		t.Fatalf("got %d symbols, want 2", len(symbols))
	}
	if symbols[0].Code != "2330" || symbols[0].Name != "台積電" {
		t.Errorf("first symbol = %+v, want 2330 台積電", symbols[0])
	}
	if symbols[1].Market != "TWSE" {
		t.Errorf("market = %s, want TWSE", symbols[1].Market)
	}
}

func TestParseListingEmpty(t *testing.T) {
	if _, err := parseListing([]byte("<html><body></body></html>"), "TWSE"); err == nil {
		t.Error("parseListing() error = nil, want error for empty page")
	}
}

func TestListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingPage)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	symbols, err := c.Listing(context.Background())
	if err != nil {
		t.Fatalf("Listing() error = %v", err)
	}
	// Both board pages serve the same fixture here
	if len(symbols) != 4 {
		t.Errorf("got %d symbols, want 4", len(symbols))
	}
}

func TestTopByValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"stat":"OK","date":"20260831","fields":["排名","證券代號","證券名稱"],
			"data":[["1","2330","台積電"],["2","2317","鴻海"],["3","2454","聯發科"]]}`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	symbols, err := c.TopByValue(context.Background(), 2)
	if err != nil {
		t.Fatalf("TopByValue() error = %v", err)
	}
	if len(symbols) != 2 {
		t.Fatalf("got %d symbols, want top 2", len(symbols))
	}
	if symbols[0].Code != "2330" || symbols[1].Code != "2317" {
		t.Errorf("symbols = %+v, want 2330 then 2317", symbols)
	}
}

func TestTopByValueBadStat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"stat":"很抱歉，沒有符合條件的資料!","data":[]}`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	if _, err := c.TopByValue(context.Background(), 10); err == nil {
		t.Error("TopByValue() error = nil, want error on non-OK stat")
	}
}

func TestFlows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("stockNo"); got != "2330" {
			t.Errorf("stockNo = %s, want 2330", got)
		}
		// Rows arrive oldest first with formatted numbers
		fmt.Fprint(w, `{"stat":"OK","data":[
			["115/08/27","1,000","-200","50"],
			["115/08/28","-3,500","+400","0"],
			["115/08/29","2,000","600","--"]
		]}`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	since := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	records, err := c.Flows(context.Background(), contracts.Symbol{Code: "2330"}, since)
	if err != nil {
		t.Fatalf("Flows() error = %v", err)
	}

	// 08/27 predates since; remaining rows come back newest first
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Date.Day() != 29 || records[1].Date.Day() != 28 {
		t.Errorf("records not newest first: %+v", records)
	}
	if records[0].ForeignNet != 2000 || records[0].TrustNet != 600 || records[0].DealerNet != 0 {
		t.Errorf("newest record = %+v, want 2000/600/0", records[0])
	}
	if records[1].ForeignNet != -3500 || records[1].TrustNet != 400 {
		t.Errorf("second record = %+v, want -3500/400", records[1])
	}
}

const balancePage = `<html><body><table>
<tr><td>會計項目</td><td>本期</td><td>前期</td></tr>
<tr><td>現金及約當現金</td><td>1,465,428,000</td><td>1,200,000,000</td></tr>
<tr><td>存貨</td><td>250,000,000</td><td>240,000,000</td></tr>
<tr><td>負債總額</td><td>2,046,627,000</td><td>1,900,000,000</td></tr>
</table></body></html>`

func TestParseBalanceSheet(t *testing.T) {
	sheet, err := parseBalanceSheet([]byte(balancePage))
	if err != nil {
		t.Fatalf("parseBalanceSheet() error = %v", err)
	}
	if sheet.Cash != 1465428000 {
		t.Errorf("Cash = %d, want 1465428000", sheet.Cash)
	}
	if sheet.TotalDebt != 2046627000 {
		t.Errorf("TotalDebt = %d, want 2046627000", sheet.TotalDebt)
	}
}

func TestParseBalanceSheetMissingRows(t *testing.T) {
	page := `<html><body><table><tr><td>存貨</td><td>1</td></tr></table></body></html>`
	if _, err := parseBalanceSheet([]byte(page)); err == nil {
		t.Error("parseBalanceSheet() error = nil, want error when rows missing")
	}
}

func TestBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, balancePage)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	sheet, err := c.Balance(context.Background(), contracts.Symbol{Code: "2330"})
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}
	if sheet.Cash == 0 || sheet.TotalDebt == 0 {
		t.Errorf("sheet = %+v, want both figures parsed", sheet)
	}
}
