package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quoteJSON = `{"quoteResponse":{"result":[
 {"symbol":"AAPL","regularMarketPrice":185.92,"regularMarketVolume":5000,"currency":"USD"},
 {"symbol":"BARC.L","regularMarketPrice":6550,"regularMarketVolume":100,"currency":"GBp"}
],"error":null}}`

const chartJSON = `{"chart":{"result":[{
 "meta":{"currency":"GBp","symbol":"BARC.L","longName":"Barclays PLC"},
 "timestamp":[1709251200,1709337600,1709596800],
 "indicators":{"quote":[{"close":[6550,null,6600],"volume":[10,null,20]}]}
}],"error":null}}`

// TestGetBatchQuotes tests decoding of the batch quote endpoint.
//
// WHY: The fetcher depends on the raw provider values; pence conversion
// happens downstream, so the client must pass prices through untouched.
func TestGetBatchQuotes(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v7/finance/quote", r.URL.Path)
		gotQuery = r.URL.Query().Get("symbols")
		_, _ = w.Write([]byte(quoteJSON))
	}))
	defer srv.Close()

	c := NewFinanceClient(srv.URL, time.Second)
	got, err := c.GetBatchQuotes(context.Background(), []string{"AAPL", "BARC.L"})

	require.NoError(t, err)
	assert.Equal(t, "AAPL,BARC.L", gotQuery)
	require.Len(t, got, 2)
	assert.Equal(t, 185.92, got[0].Price)
	assert.Equal(t, int64(5000), got[0].Volume)
	assert.Equal(t, 6550.0, got[1].Price)
	assert.Equal(t, "GBp", got[1].Currency)
}

func TestGetBatchQuotes_Errors(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := NewFinanceClient(srv.URL, time.Second).GetBatchQuotes(context.Background(), []string{"AAPL"})
		assert.Error(t, err)
	})

	t.Run("api error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"quoteResponse":{"result":[],"error":{"code":"Bad","description":"nope"}}}`))
		}))
		defer srv.Close()

		_, err := NewFinanceClient(srv.URL, time.Second).GetBatchQuotes(context.Background(), []string{"AAPL"})
		assert.ErrorContains(t, err, "nope")
	})

	t.Run("empty input makes no request", func(t *testing.T) {
		got, err := NewFinanceClient("http://127.0.0.1:1", time.Second).GetBatchQuotes(context.Background(), nil)
		assert.NoError(t, err)
		assert.Empty(t, got)
	})
}

// TestGetFullHistory tests chart parsing including null closes and pence conversion.
func TestGetFullHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/BARC.L", r.URL.Path)
		assert.Equal(t, "max", r.URL.Query().Get("range"))
		_, _ = w.Write([]byte(chartJSON))
	}))
	defer srv.Close()

	points, err := NewFinanceClient(srv.URL, time.Second).GetFullHistory(context.Background(), "BARC.L")

	require.NoError(t, err)
	require.Len(t, points, 2, "null close is dropped")
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), points[0].Date)
	assert.Equal(t, 65.5, points[0].Close)
	assert.Equal(t, 66.0, points[1].Close)
}

// TestGetFullHistory_NoData tests that symbols without history are not errors.
//
// WHY: History replay counts a symbol with no series as zero; only a transport
// failure should be logged as a provider problem.
func TestGetFullHistory_NoData(t *testing.T) {
	bodies := map[string]string{
		"no results":    `{"chart":{"result":[],"error":null}}`,
		"no timestamps": `{"chart":{"result":[{"meta":{"currency":"USD","symbol":"NEW"},"indicators":{"quote":[{}]}}],"error":null}}`,
		"no closes":     `{"chart":{"result":[{"meta":{"currency":"USD","symbol":"NEW"},"timestamp":[1709251200],"indicators":{"quote":[]}}],"error":null}}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			points, err := NewFinanceClient(srv.URL, time.Second).GetFullHistory(context.Background(), "NEW")
			require.NoError(t, err)
			assert.Empty(t, points)
		})
	}

	t.Run("transport failure is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewFinanceClient(srv.URL, time.Second).GetFullHistory(context.Background(), "NEW")
		assert.Error(t, err)
	})
}

func TestParseChart_Invalid(t *testing.T) {
	t.Run("no timestamps", func(t *testing.T) {
		chart, err := ParseChart(ChartResult{})
		require.NoError(t, err)
		assert.Empty(t, chart.Indicators)
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		var r ChartResult
		r.Timestamp = []int64{1, 2}
		v := 1.0
		r.Indicators.Quote = append(r.Indicators.Quote, struct {
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		}{Close: []*float64{&v}})
		_, err := ParseChart(r)
		assert.ErrorContains(t, err, "mismatched")
	})
}
