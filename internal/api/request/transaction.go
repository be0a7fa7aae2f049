package request

// CreateTransactionRequest represents the request body for recording a transaction.
// Symbol and Quantity are only required for buy and sell. Exchange rewrites
// a bare symbol into its listing's ticker, as for holdings.
type CreateTransactionRequest struct {
	Date     string  `json:"date"`
	Type     string  `json:"type"`
	Symbol   string  `json:"symbol"`
	Exchange string  `json:"exchange"`
	Quantity float64 `json:"quantity"`
	Amount   float64 `json:"amount"`
}
