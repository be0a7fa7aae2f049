// Package yahoo is a client for the Yahoo Finance quote and chart endpoints.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/ticker"
)

// DefaultBaseURL is the public Yahoo Finance query host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// FinanceClient fetches batch quotes and daily price history from Yahoo Finance.
// It satisfies quote.Source and service.HistoricalPriceSource.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewFinanceClient creates a new Yahoo Finance client.
//
// Parameters:
//   - baseURL: Query host; empty uses DefaultBaseURL
//   - timeout: Per-request HTTP timeout; zero means no client-level timeout
//
// Returns:
//   - *FinanceClient: A new client instance ready for use
func NewFinanceClient(baseURL string, timeout time.Duration) *FinanceClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &FinanceClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// GetBatchQuotes fetches current quotes for all symbols in one request.
// Prices are returned as reported; pence normalisation is the caller's concern.
//
// Parameters:
//   - ctx: Context for cancellation
//   - symbols: Ticker symbols in Yahoo format (e.g., "AAPL", "VUSA.L")
//
// Returns:
//   - []model.ProviderQuote: One row per symbol Yahoo knows about
//   - error: If the request fails or Yahoo reports an error
func (c *FinanceClient) GetBatchQuotes(ctx context.Context, symbols []string) ([]model.ProviderQuote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	u := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", c.baseURL, url.QueryEscape(strings.Join(symbols, ",")))

	var resp QuoteResponse
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, err
	}
	if resp.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("yahoo error: %w", resp.QuoteResponse.Error)
	}

	out := make([]model.ProviderQuote, 0, len(resp.QuoteResponse.Result))
	for _, r := range resp.QuoteResponse.Result {
		out = append(out, model.ProviderQuote{
			Symbol:   r.Symbol,
			Price:    r.RegularMarketPrice,
			Volume:   r.RegularMarketVolume,
			Currency: r.Currency,
		})
	}
	return out, nil
}

// GetFullHistory fetches the complete daily close history for a symbol.
//
// Parameters:
//   - ctx: Context for cancellation
//   - symbol: Ticker symbol in Yahoo format
//
// Returns:
//   - []model.PricePoint: Daily closes in ascending date order, pound denominated;
//     empty when Yahoo has no data for the symbol
//   - error: If the request fails or the chart cannot be parsed
func (c *FinanceClient) GetFullHistory(ctx context.Context, symbol string) ([]model.PricePoint, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=max", c.baseURL, url.PathEscape(symbol))

	var resp ChartResponse
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, err
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo error: %w", resp.Chart.Error)
	}
	if len(resp.Chart.Result) == 0 {
		return []model.PricePoint{}, nil
	}

	chart, err := ParseChart(resp.Chart.Result[0])
	if err != nil {
		return nil, fmt.Errorf("parse chart for %s: %w", symbol, err)
	}

	points := make([]model.PricePoint, len(chart.Indicators))
	for i, ind := range chart.Indicators {
		points[i] = model.PricePoint{Date: ind.Date, Close: ind.PriceClose}
	}
	return points, nil
}

// ParseChart converts a raw chart result into a PriceChart.
//
// Days with a missing or non-positive close are dropped. Pence-quoted closes
// are converted to pounds using the chart's reported currency. A chart without
// timestamps or closes yields no indicators.
//
// Returns an error only if timestamps and closes have different lengths.
func ParseChart(result ChartResult) (PriceChart, error) {
	chart := PriceChart{
		Symbol:    result.Meta.Symbol,
		Currency:  result.Meta.Currency,
		LongName:  result.Meta.LongName,
		ShortName: result.Meta.ShortName,
	}
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return chart, nil
	}
	q := result.Indicators.Quote[0]
	if len(q.Close) != len(result.Timestamp) {
		return PriceChart{}, fmt.Errorf("mismatched data lengths")
	}

	indicators := make([]Indicator, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if q.Close[i] == nil || *q.Close[i] <= 0 {
			continue
		}
		ind := Indicator{
			Date:       model.Day(time.Unix(ts, 0).UTC()),
			PriceClose: ticker.NormalizePrice(result.Meta.Symbol, *q.Close[i], result.Meta.Currency),
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			ind.Volume = *q.Volume[i]
		}
		indicators = append(indicators, ind)
	}

	chart.Indicators = indicators
	return chart, nil
}

// get executes a GET request and decodes the JSON body into dst.
// The browser User-Agent avoids Yahoo rejecting bare client requests.
func (c *FinanceClient) get(ctx context.Context, u string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo returned status %d", resp.StatusCode)
	}
	return json.Unmarshal(data, dst)
}
