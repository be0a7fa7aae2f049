package yahoo

import "time"

// ChartResponse represents the raw JSON response from the Yahoo Finance chart API.
// Close values are pointers because Yahoo reports null for days without a trade.
type ChartResponse struct {
	Chart struct {
		Result []ChartResult `json:"result"`
		Error  *APIError     `json:"error"`
	} `json:"chart"`
}

// ChartResult is one element of ChartResponse.Chart.Result.
type ChartResult struct {
	Meta struct {
		Currency     string `json:"currency"`
		Symbol       string `json:"symbol"`
		ExchangeName string `json:"exchangeName"`
		LongName     string `json:"longName"`
		ShortName    string `json:"shortName"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// QuoteResponse represents the raw JSON response from the Yahoo Finance batch quote API.
type QuoteResponse struct {
	QuoteResponse struct {
		Result []QuoteResult `json:"result"`
		Error  *APIError     `json:"error"`
	} `json:"quoteResponse"`
}

// QuoteResult is a single row of a batch quote response.
type QuoteResult struct {
	Symbol              string  `json:"symbol"`
	RegularMarketPrice  float64 `json:"regularMarketPrice"`
	RegularMarketVolume int64   `json:"regularMarketVolume"`
	Currency            string  `json:"currency"`
}

// APIError is the error object Yahoo embeds in otherwise successful responses.
type APIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Description
}

// PriceChart is the parsed form of a chart response. Closes are pound
// denominated for pence-quoted instruments.
type PriceChart struct {
	Symbol     string
	Currency   string
	LongName   string
	ShortName  string
	Indicators []Indicator
}

// Indicator is a single day's close.
type Indicator struct {
	Date       time.Time
	PriceClose float64
	Volume     int64
}
