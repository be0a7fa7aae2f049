// Package eodhd provides a client for the EODHD fundamentals API, used to
// resolve the constituents of funds and ETFs.
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/ticker"
)

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// yahooSuffixes maps Yahoo exchange suffixes to EODHD exchange codes.
var yahooSuffixes = map[string]string{
	"L":  "LSE",
	"DE": "XETRA",
	"PA": "PA",
	"AS": "AS",
	"SW": "SW",
	"TO": "TO",
	"AX": "AU",
	"HK": "HK",
	"MI": "MI",
	"MC": "MC",
	"F":  "F",
}

// eodhdSuffixes is the inverse of yahooSuffixes. EODHD's "US" covers every
// US venue, which the quote provider lists without a suffix.
var eodhdSuffixes = func() map[string]string {
	m := map[string]string{"US": ""}
	for suffix, exchange := range yahooSuffixes {
		m[exchange] = "." + suffix
	}
	return m
}()

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		num, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	if string(data) == "null" {
		*f = 0
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Client fetches fund constituents from EODHD.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a non-200 response
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// GetHoldings returns the constituents of a fund sorted by weight descending.
// Weights are percentages of the fund. A fund with no published holdings
// yields an empty slice and no error.
//
// issuerHint is used as the EODHD exchange code when fundSymbol carries none.
func (c *Client) GetHoldings(ctx context.Context, fundSymbol, issuerHint string) ([]model.Constituent, error) {
	code := eodhdTicker(fundSymbol, issuerHint)
	path := "/fundamentals/" + url.PathEscape(code)

	params := url.Values{}
	params.Set("filter", "ETF_Data::Holdings")

	var holdings map[string]holdingResponse
	if err := c.get(ctx, path, params, &holdings); err != nil {
		return nil, err
	}

	out := make([]model.Constituent, 0, len(holdings))
	for key, h := range holdings {
		out = append(out, model.Constituent{
			Symbol:  yahooSymbol(key, h.Code, h.Exchange),
			Name:    h.Name,
			Weight:  float64(h.AssetsPercent),
			Sector:  h.Sector,
			Country: h.Country,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Symbol < out[j].Symbol
	})

	c.logger.Debug().Str("fund", code).Int("constituents", len(out)).Msg("fetched fund holdings")
	return out, nil
}

type holdingResponse struct {
	Code          string      `json:"Code"`
	Exchange      string      `json:"Exchange"`
	Name          string      `json:"Name"`
	Sector        string      `json:"Sector"`
	Country       string      `json:"Country"`
	AssetsPercent flexFloat64 `json:"Assets_%"`
}

// eodhdTicker converts a symbol to EODHD's CODE.EXCHANGE form.
func eodhdTicker(symbol, issuerHint string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if i := strings.LastIndex(symbol, "."); i > 0 {
		if ex, ok := yahooSuffixes[symbol[i+1:]]; ok {
			return symbol[:i] + "." + ex
		}
		return symbol
	}
	if hint := strings.ToUpper(strings.TrimSpace(issuerHint)); hint != "" {
		return symbol + "." + hint
	}
	return symbol + ".US"
}

// yahooSymbol converts a constituent into the quote provider's ticker form so
// it merges with directly held instruments: AAPL on US becomes AAPL, VOD on
// LSE becomes VOD.L. The map key is used when Code is blank. Exchanges with no
// known suffix keep EODHD's CODE.EXCHANGE form.
func yahooSymbol(key, code, exchange string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	exchange = strings.ToUpper(strings.TrimSpace(exchange))
	if code == "" {
		code = strings.ToUpper(strings.TrimSpace(key))
		if exchange == "" {
			if i := strings.LastIndex(code, "."); i > 0 {
				code, exchange = code[:i], code[i+1:]
			}
		}
	}
	if exchange == "" {
		return code
	}
	code = strings.TrimSuffix(code, "."+exchange)
	if suffix, ok := eodhdSuffixes[exchange]; ok {
		return code + suffix
	}
	if suffix, ok := ticker.ExchangeSuffix(exchange); ok {
		return code + suffix
	}
	return code + "." + exchange
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
