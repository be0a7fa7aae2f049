package request

// CreatePortfolioRequest represents the request body for creating a portfolio
type CreatePortfolioRequest struct {
	Name        string  `json:"name"`
	CashBalance float64 `json:"cashBalance"`
}

// CreateHoldingRequest represents the request body for adding a holding to a portfolio
type CreateHoldingRequest struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Quantity    float64 `json:"quantity"`
	ManualPrice float64 `json:"manualPrice"`
	Cost        float64 `json:"cost"`
	Account     string  `json:"account"`
	Section     string  `json:"section"`
	Sector      string  `json:"sector"`
	Country     string  `json:"country"`
	Exchange    string  `json:"exchange"`
	IssuerHint  string  `json:"issuerHint"`
}
