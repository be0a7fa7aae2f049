package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/api/request"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/api/response"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/service"
)

// PortfolioHandler handles portfolio-related HTTP requests
type PortfolioHandler struct {
	portfolioService   *service.PortfolioService
	transactionService *service.TransactionService
	historyDays        int
	now                func() time.Time
}

// NewPortfolioHandler creates a new PortfolioHandler. historyDays is the
// window length used when a history request names no start date.
func NewPortfolioHandler(portfolioService *service.PortfolioService, transactionService *service.TransactionService, historyDays int) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService:   portfolioService,
		transactionService: transactionService,
		historyDays:        historyDays,
		now:                time.Now,
	}
}

// CreatePortfolio handles POST requests to create a portfolio.
//
// Endpoint: POST /api/portfolio
// Request body: request.CreatePortfolioRequest
// Response: 201 Created with model.Portfolio
// Error: 400 Bad Request for malformed input
func (h *PortfolioHandler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePortfolioRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	p, err := h.portfolioService.CreatePortfolio(r.Context(), req)
	if err != nil {
		respondServiceError(w, "failed to create portfolio", err)
		return
	}
	response.RespondJSON(w, http.StatusCreated, p)
}

// CreateHolding handles POST requests to add a holding to a portfolio.
//
// Endpoint: POST /api/portfolio/{uuid}/holdings
// Request body: request.CreateHoldingRequest
// Response: 201 Created with model.Holding
// Error: 400 Bad Request for malformed input, 404 if the portfolio does not exist
func (h *PortfolioHandler) CreateHolding(w http.ResponseWriter, r *http.Request) {
	var req request.CreateHoldingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	holding, err := h.portfolioService.AddHolding(r.Context(), chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, "failed to add holding", err)
		return
	}
	response.RespondJSON(w, http.StatusCreated, holding)
}

// CreateTransaction handles POST requests to record a transaction.
//
// Endpoint: POST /api/portfolio/{uuid}/transactions
// Request body: request.CreateTransactionRequest
// Response: 201 Created with model.Transaction
// Error: 400 Bad Request for malformed input, 404 if the portfolio does not exist
func (h *PortfolioHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tx, err := h.transactionService.CreateTransaction(r.Context(), chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, "failed to create transaction", err)
		return
	}
	response.RespondJSON(w, http.StatusCreated, tx)
}

// Valuation handles GET requests for the current value of a portfolio.
//
// Endpoint: GET /api/portfolio/{uuid}/valuation
// Response: 200 OK with model.Valuation
func (h *PortfolioHandler) Valuation(w http.ResponseWriter, r *http.Request) {
	v, err := h.portfolioService.GetValuation(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, "failed to value portfolio", err)
		return
	}
	response.RespondJSON(w, http.StatusOK, v)
}

// HistoryPointResponse is one day of the history response.
type HistoryPointResponse struct {
	Date     string  `json:"date"`
	Cash     float64 `json:"cash"`
	Invested float64 `json:"invested"`
	Total    float64 `json:"total"`
}

// History handles GET requests for the daily value history of a portfolio.
//
// Endpoint: GET /api/portfolio/{uuid}/history?start=YYYY-MM-DD&end=YYYY-MM-DD
// Both parameters are optional; the default window ends today.
// Response: 200 OK with []HistoryPointResponse
// Error: 400 Bad Request for unparsable or unordered dates
func (h *PortfolioHandler) History(w http.ResponseWriter, r *http.Request) {
	window, err := request.ParseHistoryWindow(
		r.URL.Query().Get("start"),
		r.URL.Query().Get("end"),
		h.historyDays,
		h.now().UTC(),
	)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date parameters", err.Error())
		return
	}

	points, err := h.portfolioService.GetHistory(r.Context(), chi.URLParam(r, "uuid"), window.Start, window.End)
	if err != nil {
		respondServiceError(w, "failed to build portfolio history", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, historyResponse(points))
}

func historyResponse(points []model.HistoryPoint) []HistoryPointResponse {
	out := make([]HistoryPointResponse, len(points))
	for i, p := range points {
		out[i] = HistoryPointResponse{
			Date:     p.Date.Format("2006-01-02"),
			Cash:     p.Cash,
			Invested: p.Invested,
			Total:    p.Total,
		}
	}
	return out
}

// Exposure handles GET requests for the look-through exposure of a portfolio.
//
// Endpoint: GET /api/portfolio/{uuid}/exposure
// Response: 200 OK with model.ExposureBreakdown
func (h *PortfolioHandler) Exposure(w http.ResponseWriter, r *http.Request) {
	breakdown, err := h.portfolioService.GetExposure(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, "failed to aggregate exposure", err)
		return
	}
	response.RespondJSON(w, http.StatusOK, breakdown)
}
