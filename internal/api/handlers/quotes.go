package handlers

import (
	"context"
	"net/http"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/api/request"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/api/response"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/quote"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/ticker"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/validation"
)

// PersistedQuotes is the durable copy of the quote cache.
type PersistedQuotes interface {
	DeleteAll(ctx context.Context) error
}

// QuoteHandler exposes the quote fetcher and its cache.
type QuoteHandler struct {
	fetcher *quote.Fetcher
	store   PersistedQuotes
}

// NewQuoteHandler creates a new QuoteHandler. store may be nil when the
// cache is not persisted.
func NewQuoteHandler(fetcher *quote.Fetcher, store PersistedQuotes) *QuoteHandler {
	return &QuoteHandler{fetcher: fetcher, store: store}
}

// QuotesResponse lists quotes found and symbols with no known price.
type QuotesResponse struct {
	Quotes  map[string]model.Quote `json:"quotes"`
	Missing []string               `json:"missing"`
}

// Quotes handles GET requests for current quotes.
//
// Endpoint: GET /api/quotes?symbols=AAPL,VUSA.L&refresh=true
// Response: 200 OK with QuotesResponse; symbols without a price are listed in missing
// Error: 400 Bad Request when no symbol is given
func (h *QuoteHandler) Quotes(w http.ResponseWriter, r *http.Request) {
	symbols := request.ParseSymbols(r.URL.Query().Get("symbols"))
	if err := validation.ValidateSymbols(symbols); err != nil {
		respondServiceError(w, "invalid symbols", err)
		return
	}
	refresh, err := request.ParseBool(r.URL.Query().Get("refresh"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid refresh parameter", err.Error())
		return
	}

	var opts []quote.FetchOption
	if refresh {
		opts = append(opts, quote.WithForceRefresh())
	}
	quotes := h.fetcher.FetchQuotes(r.Context(), symbols, opts...)

	resp := QuotesResponse{Quotes: quotes, Missing: []string{}}
	seen := make(map[string]bool)
	for _, s := range symbols {
		sym := ticker.Normalize(s)
		if _, ok := quotes[sym]; !ok && !seen[sym] {
			seen[sym] = true
			resp.Missing = append(resp.Missing, sym)
		}
	}

	response.RespondJSON(w, http.StatusOK, resp)
}

// ClearCache handles DELETE requests that empty the quote cache.
//
// Endpoint: DELETE /api/quotes/cache
// Response: 204 No Content
// Error: 500 Internal Server Error if the persisted copy cannot be removed
func (h *QuoteHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.fetcher.Cache().Clear()
	if h.store != nil {
		if err := h.store.DeleteAll(r.Context()); err != nil {
			response.RespondError(w, http.StatusInternalServerError, "failed to clear persisted quotes", err.Error())
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
