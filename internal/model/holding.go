package model

// HoldingCategory classifies a holding as a direct instrument or a pooled fund.
type HoldingCategory string

// Supported holding categories.
const (
	CategoryEquity HoldingCategory = "equity"
	CategoryFund   HoldingCategory = "fund"
	CategoryETF    HoldingCategory = "etf"
)

// Holding identifies one position in a portfolio.
//
// The position is valued at LivePrice when one is available, otherwise at the
// manually entered ManualPrice. Sector and Country are optional metadata used
// for exposure breakdowns of direct instruments. IssuerHint is passed through to
// the fund holdings source for funds whose look-through data is keyed by issuer.
type Holding struct {
	ID          string          `json:"id"`
	PortfolioID string          `json:"portfolioId,omitempty"`
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name"`
	Category    HoldingCategory `json:"category"`
	Quantity    float64         `json:"quantity"`
	ManualPrice float64         `json:"manualPrice"`
	LivePrice   *float64        `json:"livePrice,omitempty"`
	Cost        float64         `json:"cost"`
	Account     string          `json:"account,omitempty"`
	Section     string          `json:"section,omitempty"`
	Sector      string          `json:"sector,omitempty"`
	Country     string          `json:"country,omitempty"`
	IssuerHint  string          `json:"issuerHint,omitempty"`
}

// IsFund reports whether the holding should be expanded through look-through.
func (h Holding) IsFund() bool {
	return h.Category == CategoryFund || h.Category == CategoryETF
}

// Price returns the live price if present, else the manual price.
func (h Holding) Price() float64 {
	if h.LivePrice != nil {
		return *h.LivePrice
	}
	return h.ManualPrice
}

// Value returns the market value of the position.
func (h Holding) Value() float64 {
	return h.Price() * h.Quantity
}
