package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/api"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/api/handlers"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/config"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/repository"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/testutil"
)

type testServer struct {
	handler http.Handler
	svcs    testutil.TestServices
	quotes  *testutil.FakeQuoteSource
	store   *repository.QuoteRepository
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	db := testutil.SetupTestDB(t)
	quotes := testutil.NewFakeQuoteSource(map[string]float64{"AAPL": 190, "VUSA.L": 8500})
	quotes.Prices["VUSA.L"] = model.ProviderQuote{Symbol: "VUSA.L", Price: 8500, Currency: "GBp"}
	svcs := testutil.NewTestServices(t, db, quotes, testutil.NewFakeHistorySource(), testutil.NewFakeFundSource())
	store := repository.NewQuoteRepository(db)

	cfg := &config.Config{
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		History: config.HistoryConfig{Days: 10},
	}
	h := api.NewRouter(api.Dependencies{
		SystemService:      svcs.System,
		PortfolioService:   svcs.Portfolio,
		TransactionService: svcs.Transaction,
		QuoteFetcher:       svcs.Fetcher,
		QuoteStore:         store,
		Log:                zerolog.Nop(),
	}, cfg)

	return testServer{handler: h, svcs: svcs, quotes: quotes, store: store}
}

func (s testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

// TestRouter_System tests the system endpoints.
//
// WHY: Health and version are used by deployment probes and must work on a
// freshly migrated database.
func TestRouter_System(t *testing.T) {
	s := newTestServer(t)

	t.Run("health", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/system/health", "")
		require.Equal(t, http.StatusOK, w.Code)
		body := testutil.DecodeJSON[handlers.HealthResponse](t, w)
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "connected", body.Database)
	})

	t.Run("version", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/system/version", "")
		require.Equal(t, http.StatusOK, w.Code)
		body := testutil.DecodeJSON[model.VersionInfo](t, w)
		assert.Equal(t, int64(1), body.DbVersion)
		assert.NotEmpty(t, body.AppVersion)
	})
}

// TestRouter_Portfolio tests routing and UUID validation of portfolio routes.
//
// WHY: The UUID middleware guards every per-portfolio route; malformed IDs
// must be rejected before any handler runs.
func TestRouter_Portfolio(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/portfolio", `{"name":"Main","cashBalance":10}`)
	require.Equal(t, http.StatusCreated, w.Code)
	p := testutil.DecodeJSON[model.Portfolio](t, w)

	t.Run("invalid uuid", func(t *testing.T) {
		for _, path := range []string{"/valuation", "/history", "/exposure"} {
			w := s.do(http.MethodGet, "/api/portfolio/not-a-uuid"+path, "")
			assert.Equal(t, http.StatusBadRequest, w.Code, path)
		}
	})

	t.Run("default history window", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/portfolio/"+p.ID+"/history", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, testutil.DecodeJSON[[]handlers.HistoryPointResponse](t, w), 10)
	})

	t.Run("pence quotes are valued in pounds", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/portfolio/"+p.ID+"/holdings", `{"symbol":"VUSA","exchange":"LSE","category":"etf","quantity":2}`)
		require.Equal(t, http.StatusCreated, w.Code)

		w = s.do(http.MethodGet, "/api/portfolio/"+p.ID+"/valuation", "")
		require.Equal(t, http.StatusOK, w.Code)
		v := testutil.DecodeJSON[model.Valuation](t, w)
		assert.InDelta(t, 170.0, v.TotalValue, 1e-9)
	})

	t.Run("method not allowed", func(t *testing.T) {
		w := s.do(http.MethodDelete, "/api/portfolio/"+p.ID+"/valuation", "")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

// TestRouter_Quotes tests the quote endpoints.
//
// WHY: The quote endpoint is the only direct window onto the cache. Missing
// prices must be listed rather than reported as zero, and clearing must reach
// both the in-memory and the persisted copy.
func TestRouter_Quotes(t *testing.T) {
	s := newTestServer(t)

	t.Run("quotes and missing symbols", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/quotes?symbols=aapl,NOPE,AAPL", "")
		require.Equal(t, http.StatusOK, w.Code)
		body := testutil.DecodeJSON[handlers.QuotesResponse](t, w)
		require.Contains(t, body.Quotes, "AAPL")
		assert.Equal(t, 190.0, body.Quotes["AAPL"].Price)
		assert.Equal(t, model.ProvenanceLive, body.Quotes["AAPL"].Provenance)
		assert.Equal(t, []string{"NOPE"}, body.Missing)
	})

	t.Run("second request is served from cache", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/quotes?symbols=AAPL", "")
		require.Equal(t, http.StatusOK, w.Code)
		body := testutil.DecodeJSON[handlers.QuotesResponse](t, w)
		assert.Equal(t, model.ProvenanceCache, body.Quotes["AAPL"].Provenance)

		w = s.do(http.MethodGet, "/api/quotes?symbols=AAPL&refresh=true", "")
		body = testutil.DecodeJSON[handlers.QuotesResponse](t, w)
		assert.Equal(t, model.ProvenanceLive, body.Quotes["AAPL"].Provenance)
	})

	t.Run("no symbols", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/quotes?symbols=,,", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid refresh flag", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/quotes?symbols=AAPL&refresh=maybe", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("clear cache", func(t *testing.T) {
		require.NoError(t, s.store.SaveQuotes(context.Background(), []model.Quote{
			{Symbol: "AAPL", Price: 1, FetchedAt: time.Now()},
		}))

		w := s.do(http.MethodDelete, "/api/quotes/cache", "")
		require.Equal(t, http.StatusNoContent, w.Code)
		assert.Zero(t, s.svcs.Fetcher.Cache().Len())

		persisted, err := s.store.LoadQuotes()
		require.NoError(t, err)
		assert.Empty(t, persisted)
	})
}
