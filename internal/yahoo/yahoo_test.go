package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/apperrors"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const dividendChartJSON = `{
  "chart": {
    "result": [{
      "meta": {"currency": "GBp", "symbol": "VOD.L", "exchangeName": "LSE", "fullExchangeName": "LSE", "longName": "Vodafone Group Plc"},
      "timestamp": [1690876800],
      "indicators": {"quote": [{"close": [70.1]}]},
      "events": {"dividends": {
        "1690441200": {"amount": 3.885, "date": 1690441200},
        "1669849200": {"amount": 3.87, "date": 1669849200}
      }}
    }],
    "error": null
  }
}`

func TestFinanceClient_QueryDividendHistory(t *testing.T) {
	t.Run("parses and sorts dividend events", func(t *testing.T) {
		var gotPath, gotQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotQuery = r.URL.RawQuery
			w.Write([]byte(dividendChartJSON))
		}))
		defer srv.Close()

		client := NewFinanceClient(srv.URL, time.Second)
		history, err := client.QueryDividendHistory(context.Background(), "VOD.L")
		if err != nil {
			t.Fatalf("QueryDividendHistory() returned unexpected error: %v", err)
		}

		if gotPath != "/v8/finance/chart/VOD.L" {
			t.Errorf("Expected chart path, got %s", gotPath)
		}
		if !strings.Contains(gotQuery, "events=div") {
			t.Errorf("Expected events=div in query, got %s", gotQuery)
		}
		if history.Currency != "GBp" {
			t.Errorf("Expected currency 'GBp', got '%s'", history.Currency)
		}
		if len(history.Events) != 2 {
			t.Fatalf("Expected 2 events, got %d", len(history.Events))
		}
		if !history.Events[0].Date.Equal(day(2022, 11, 30)) {
			t.Errorf("Expected first event on 2022-11-30, got %s", history.Events[0].Date)
		}
		if !history.Events[1].Date.Equal(day(2023, 7, 27)) {
			t.Errorf("Expected second event on 2023-07-27, got %s", history.Events[1].Date)
		}
		if history.Events[1].Amount != 3.885 {
			t.Errorf("Expected amount 3.885, got %v", history.Events[1].Amount)
		}
	})

	t.Run("no events means empty history", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"chart":{"result":[{"meta":{"currency":"USD","symbol":"BRK-B"}}],"error":null}}`))
		}))
		defer srv.Close()

		history, err := NewFinanceClient(srv.URL, time.Second).QueryDividendHistory(context.Background(), "BRK-B")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(history.Events) != 0 {
			t.Errorf("Expected no events, got %d", len(history.Events))
		}
	})

	t.Run("yahoo error object is returned as error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
		}))
		defer srv.Close()

		_, err := NewFinanceClient(srv.URL, time.Second).QueryDividendHistory(context.Background(), "NOPE")
		if err == nil || !strings.Contains(err.Error(), "Not Found") {
			t.Errorf("Expected yahoo error, got %v", err)
		}
	})

	t.Run("empty result is symbol not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
		}))
		defer srv.Close()

		_, err := NewFinanceClient(srv.URL, time.Second).QueryDividendHistory(context.Background(), "NOPE")
		if !errors.Is(err, apperrors.ErrSymbolNotFound) {
			t.Errorf("Expected ErrSymbolNotFound, got %v", err)
		}
	})

	t.Run("non-JSON error page reports status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("Too Many Requests"))
		}))
		defer srv.Close()

		_, err := NewFinanceClient(srv.URL, time.Second).QueryDividendHistory(context.Background(), "AAPL")
		if err == nil || !strings.Contains(err.Error(), "429") {
			t.Errorf("Expected status error, got %v", err)
		}
	})
}

func TestParseDividends(t *testing.T) {
	t.Run("falls back to map key when date is missing", func(t *testing.T) {
		resp := Response{Chart: Chart{Result: []Result{{
			Meta:   Meta{Currency: "USD"},
			Events: &Events{Dividends: map[string]DividendEvent{"1673740800": {Amount: 0.23}}},
		}}}}

		history, err := ParseDividends(resp)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !history.Events[0].Date.Equal(day(2023, 1, 15)) {
			t.Errorf("Expected 2023-01-15, got %s", history.Events[0].Date)
		}
	})

	t.Run("rejects unparseable key", func(t *testing.T) {
		resp := Response{Chart: Chart{Result: []Result{{
			Events: &Events{Dividends: map[string]DividendEvent{"yesterday": {Amount: 0.23}}},
		}}}}

		if _, err := ParseDividends(resp); !errors.Is(err, apperrors.ErrMalformedResponse) {
			t.Errorf("Expected ErrMalformedResponse, got %v", err)
		}
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		resp := Response{Chart: Chart{Result: []Result{{
			Events: &Events{Dividends: map[string]DividendEvent{"1673740800": {Amount: -1, Date: 1673740800}}},
		}}}}

		if _, err := ParseDividends(resp); !errors.Is(err, apperrors.ErrMalformedResponse) {
			t.Errorf("Expected ErrMalformedResponse, got %v", err)
		}
	})
}

func TestFinanceClient_QueryQuoteSummary(t *testing.T) {
	t.Run("prefers calendar events ex-dividend date", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.URL.RawQuery, "calendarEvents") {
				t.Errorf("Expected calendarEvents module, got %s", r.URL.RawQuery)
			}
			w.Write([]byte(`{"quoteSummary":{"result":[{
				"calendarEvents":{"exDividendDate":{"raw":1699920000,"fmt":"2023-11-14"}},
				"summaryDetail":{"exDividendDate":{"raw":1691625600,"fmt":"2023-08-10"},"currency":"USD"},
				"price":{"currency":"USD","exchange":"NMS","exchangeName":"NasdaqGS","longName":"Apple Inc.","quoteType":"EQUITY"}
			}],"error":null}}`))
		}))
		defer srv.Close()

		details, err := NewFinanceClient(srv.URL, time.Second).QueryQuoteSummary(context.Background(), "AAPL")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if details.AnnouncedExDate == nil || !details.AnnouncedExDate.Equal(day(2023, 11, 14)) {
			t.Errorf("Expected announced date 2023-11-14, got %v", details.AnnouncedExDate)
		}
		if details.LongName != "Apple Inc." || details.Currency != "USD" || details.FullExchangeName != "NasdaqGS" {
			t.Errorf("Unexpected details: %+v", details)
		}
	})

	t.Run("missing ex-dividend date yields nil", func(t *testing.T) {
		details := ParseQuoteSummary(QuoteSummaryResult{})
		if details.AnnouncedExDate != nil {
			t.Errorf("Expected nil announced date, got %v", details.AnnouncedExDate)
		}
	})

	t.Run("error object is returned", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Unauthorized","description":"Invalid Crumb"}}}`))
		}))
		defer srv.Close()

		if _, err := NewFinanceClient(srv.URL, time.Second).QueryQuoteSummary(context.Background(), "AAPL"); err == nil {
			t.Error("Expected error, got nil")
		}
	})
}

func TestParseLatestPrice(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	t.Run("skips trailing null closes", func(t *testing.T) {
		resp := Response{Chart: Chart{Result: []Result{{
			Meta:      Meta{Currency: "GBp"},
			Timestamp: []int64{1690761600, 1690848000, 1690934400},
			Indicators: IndicatorsContainer{Quote: []Quote{{
				Close: []*float64{f(69.5), f(70.1), nil},
			}}},
		}}}}

		price, err := ParseLatestPrice(resp)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if price.Close != 70.1 {
			t.Errorf("Expected close 70.1, got %v", price.Close)
		}
		if !price.Date.Equal(day(2023, 8, 1)) {
			t.Errorf("Expected 2023-08-01, got %s", price.Date)
		}
		if price.Currency != "GBp" {
			t.Errorf("Expected currency GBp, got %s", price.Currency)
		}
	})

	t.Run("validation errors", func(t *testing.T) {
		tests := []struct {
			name string
			res  Result
		}{
			{"no timestamps", Result{}},
			{"no closes", Result{Timestamp: []int64{1}}},
			{"mismatched lengths", Result{Timestamp: []int64{1, 2}, Indicators: IndicatorsContainer{Quote: []Quote{{Close: []*float64{f(1)}}}}}},
			{"all null", Result{Timestamp: []int64{1}, Indicators: IndicatorsContainer{Quote: []Quote{{Close: []*float64{nil}}}}}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := ParseLatestPrice(Response{Chart: Chart{Result: []Result{tt.res}}}); err == nil {
					t.Error("Expected error, got nil")
				}
			})
		}
	})
}

func TestToYahooSymbol(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"AAPL", "AAPL"},
		{"VODl", "VOD.L"},
		{"LGENl", "LGEN.L"},
		{"BTl", "BT-A.L"},
		{"BT", "BT-A.L"},
		{"l", "l"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ToYahooSymbol(tt.in); got != tt.want {
				t.Errorf("ToYahooSymbol(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
