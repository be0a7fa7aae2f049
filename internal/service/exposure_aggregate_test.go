package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
)

// This is an internal test (package service, not service_test) because
// aggregateExposure and its skip bookkeeping are unexported.

func direct(symbol string, value float64, sector, country string) model.Holding {
	return model.Holding{
		Symbol:      symbol,
		Name:        symbol + " Inc",
		Category:    model.CategoryEquity,
		Quantity:    1,
		ManualPrice: value,
		Sector:      sector,
		Country:     country,
	}
}

func fund(symbol string, value float64) model.Holding {
	return model.Holding{
		Symbol:      symbol,
		Name:        symbol + " Fund",
		Category:    model.CategoryFund,
		Quantity:    1,
		ManualPrice: value,
		IssuerHint:  "LSE",
	}
}

func rowByKey(t *testing.T, rows []model.ExposureRow, key string) model.ExposureRow {
	t.Helper()
	for _, r := range rows {
		if r.Key == key {
			return r
		}
	}
	t.Fatalf("row %q not found in %v", key, rows)
	return model.ExposureRow{}
}

// TestAggregateExposure_LookThrough tests weighting of direct and fund holdings.
//
// WHY: A user holding AAPL directly and through a world tracker needs to see
// the combined exposure. Getting the fund scaling wrong misstates concentration.
func TestAggregateExposure_LookThrough(t *testing.T) {
	holdings := []model.Holding{
		direct("AAPL", 400, "Technology", "US"),
		fund("VWRL", 600),
	}
	lookups := map[string]lookThroughResult{
		fundLookupKey(holdings[1]): lookThroughOK([]model.Constituent{
			{Symbol: "AAPL", Name: "Apple", Weight: 10, Sector: "Technology", Country: "US"},
			{Symbol: "MSFT", Name: "Microsoft", Weight: 5, Sector: "Technology", Country: "US"},
			{Symbol: "ASML", Name: "ASML", Weight: 5, Sector: "Technology", Country: "NL"},
		}),
	}

	agg := aggregateExposure(holdings, lookups)
	b := agg.breakdown()

	t.Run("direct and fund weights combine", func(t *testing.T) {
		aapl := rowByKey(t, b.TopExposures, "AAPL")
		assert.InDelta(t, 46.0, aapl.Weight, 1e-9)
		assert.InDelta(t, 3.0, rowByKey(t, b.TopExposures, "MSFT").Weight, 1e-9)
		assert.Equal(t, "AAPL", b.TopExposures[0].Key)
	})

	t.Run("sources record each holding's share", func(t *testing.T) {
		aapl := rowByKey(t, b.TopExposures, "AAPL")
		require.Len(t, aapl.Sources, 2)
		assert.Equal(t, "AAPL", aapl.Sources[0].Symbol)
		assert.InDelta(t, 40.0, aapl.Sources[0].Weight, 1e-9)
		assert.Equal(t, "VWRL", aapl.Sources[1].Symbol)
		assert.InDelta(t, 6.0, aapl.Sources[1].Weight, 1e-9)
	})

	t.Run("sector and country buckets", func(t *testing.T) {
		assert.InDelta(t, 52.0, rowByKey(t, b.SectorExposure, "Technology").Weight, 1e-9)
		assert.InDelta(t, 49.0, rowByKey(t, b.CountryExposure, "US").Weight, 1e-9)
		assert.InDelta(t, 3.0, rowByKey(t, b.CountryExposure, "NL").Weight, 1e-9)
		assert.Empty(t, b.SectorExposure[0].Sources)
	})

	t.Run("symbol total matches contributed look-through weight", func(t *testing.T) {
		// 40 direct + 20% of the 60 fund weight
		assert.InDelta(t, 52.0, agg.symbols.total(), 1e-6)
		assert.InDelta(t, 100.0, agg.contributedWeight, 1e-6)
		assert.Empty(t, agg.skipped)
	})
}

// TestAggregateExposure_Skips tests funds without usable look-through data.
//
// WHY: Provider gaps are routine. A skipped fund must vanish from the breakdown
// without distorting the other rows, and the reason must be reported.
func TestAggregateExposure_Skips(t *testing.T) {
	holdings := []model.Holding{
		direct("AAPL", 500, "", ""),
		fund("FAIL", 100),
		fund("EMPTY", 100),
		fund("SLOW", 100),
		fund("UNRESOLVED", 200),
	}
	lookups := map[string]lookThroughResult{
		fundLookupKey(holdings[1]): {skipReason: skipLookupFailed, err: errors.New("boom")},
		fundLookupKey(holdings[2]): lookThroughOK(nil),
		fundLookupKey(holdings[3]): {skipReason: skipLookupTimedOut},
	}

	agg := aggregateExposure(holdings, lookups)
	b := agg.breakdown()

	require.Len(t, agg.skipped, 4)
	reasons := map[string]string{}
	for _, sk := range agg.skipped {
		reasons[sk.symbol] = sk.reason
	}
	assert.Equal(t, skipLookupFailed, reasons["FAIL"])
	assert.Equal(t, skipNoConstituents, reasons["EMPTY"])
	assert.Equal(t, skipLookupTimedOut, reasons["SLOW"])
	assert.Equal(t, skipMissingResolver, reasons["UNRESOLVED"])

	require.Len(t, b.TopExposures, 1)
	// weights stay relative to the whole portfolio
	assert.InDelta(t, 50.0, b.TopExposures[0].Weight, 1e-9)
	assert.Empty(t, b.SectorExposure)
	assert.Empty(t, b.CountryExposure)
}

// TestAggregateExposure_Ranking tests clipping and tie ordering.
//
// WHY: The UI shows a fixed-size top list. It must hold the heaviest rows and
// be stable between refreshes when weights tie.
func TestAggregateExposure_Ranking(t *testing.T) {
	t.Run("top exposures clipped to limit", func(t *testing.T) {
		var holdings []model.Holding
		for i := 0; i < TopExposureLimit+5; i++ {
			holdings = append(holdings, direct(fmt.Sprintf("S%02d", i), float64(i+1), "Sector", ""))
		}

		b := aggregateExposure(holdings, nil).breakdown()
		require.Len(t, b.TopExposures, TopExposureLimit)
		assert.Equal(t, "S24", b.TopExposures[0].Key)
		assert.Equal(t, "S05", b.TopExposures[TopExposureLimit-1].Key)
		for i := 1; i < len(b.TopExposures); i++ {
			assert.GreaterOrEqual(t, b.TopExposures[i-1].Weight, b.TopExposures[i].Weight)
		}
		// sector rows are not clipped
		assert.InDelta(t, 100.0, b.SectorExposure[0].Weight, 1e-9)
	})

	t.Run("ties keep first-seen order", func(t *testing.T) {
		holdings := []model.Holding{
			direct("ZZZ", 100, "", ""),
			direct("AAA", 100, "", ""),
			direct("MMM", 100, "", ""),
		}
		b := aggregateExposure(holdings, nil).breakdown()
		keys := []string{b.TopExposures[0].Key, b.TopExposures[1].Key, b.TopExposures[2].Key}
		assert.Equal(t, []string{"ZZZ", "AAA", "MMM"}, keys)
	})

	t.Run("zero value holdings contribute nothing", func(t *testing.T) {
		holdings := []model.Holding{
			direct("AAPL", 100, "", ""),
			direct("DEAD", 0, "", ""),
			fund("ZERO", 0),
		}
		agg := aggregateExposure(holdings, nil)
		b := agg.breakdown()
		require.Len(t, b.TopExposures, 1)
		assert.Empty(t, agg.skipped)
	})

	t.Run("empty portfolio", func(t *testing.T) {
		b := aggregateExposure(nil, nil).breakdown()
		assert.Empty(t, b.TopExposures)
		assert.Empty(t, b.SectorExposure)
	})
}

// TestAggregateExposure_SourceMerge tests holdings of one fund across accounts.
//
// WHY: The same ETF is often held in an ISA and a general account. Its rows
// must show one source per fund, not one per account.
func TestAggregateExposure_SourceMerge(t *testing.T) {
	isa := fund("VWRL", 300)
	gia := fund("VWRL", 200)
	gia.Account = "GIA"
	other := direct("MSFT", 500, "", "")
	holdings := []model.Holding{isa, gia, other}

	lookups := map[string]lookThroughResult{
		fundLookupKey(isa): lookThroughOK([]model.Constituent{{Symbol: "msft", Name: "Microsoft", Weight: 10}}),
	}
	require.Equal(t, fundLookupKey(isa), fundLookupKey(gia))

	row := aggregateExposure(holdings, lookups).breakdown().TopExposures[0]
	assert.Equal(t, "MSFT", row.Key)
	assert.InDelta(t, 55.0, row.Weight, 1e-9)
	require.Len(t, row.Sources, 2)
	assert.Equal(t, "MSFT", row.Sources[0].Symbol)
	assert.InDelta(t, 5.0, row.Sources[1].Weight, 1e-9)
}

func TestPortfolioWeight(t *testing.T) {
	assert.InDelta(t, 60.0, portfolioWeight(600, 1000), 1e-9)
	assert.Zero(t, portfolioWeight(10, 0))
	assert.Zero(t, portfolioWeight(10, -5))
}

// TestAggregateExposure_OrderIndependent tests that holding order does not
// change the breakdown when no two rows tie.
//
// WHY: Holdings come back from storage in insertion order. The same portfolio
// entered in a different order must rank its exposures identically.
func TestAggregateExposure_OrderIndependent(t *testing.T) {
	holdings := []model.Holding{
		direct("AAPL", 410, "Technology", "US"),
		direct("SAP", 170, "Technology", "DE"),
		direct("BP", 93, "Energy", "GB"),
		fund("VWRL", 600),
		fund("IWDA", 230),
	}
	lookups := map[string]lookThroughResult{
		fundLookupKey(holdings[3]): lookThroughOK([]model.Constituent{
			{Symbol: "AAPL", Name: "Apple", Weight: 10, Sector: "Technology", Country: "US"},
			{Symbol: "MSFT", Name: "Microsoft", Weight: 5.5, Sector: "Technology", Country: "US"},
			{Symbol: "ASML", Name: "ASML", Weight: 3.1, Sector: "Technology", Country: "NL"},
			{Symbol: "SHEL", Name: "Shell", Weight: 2.3, Sector: "Energy", Country: "GB"},
		}),
		fundLookupKey(holdings[4]): lookThroughOK([]model.Constituent{
			{Symbol: "MSFT", Name: "Microsoft", Weight: 7, Sector: "Technology", Country: "US"},
			{Symbol: "NESN", Name: "Nestle", Weight: 1.9, Sector: "Consumer Staples", Country: "CH"},
		}),
	}

	want := aggregateExposure(holdings, lookups).breakdown()
	require.Len(t, want.TopExposures, 7)

	for i, perm := range permutations(holdings) {
		got := aggregateExposure(perm, lookups).breakdown()
		assertSameRows(t, fmt.Sprintf("permutation %d top", i), want.TopExposures, got.TopExposures)
		assertSameRows(t, fmt.Sprintf("permutation %d sector", i), want.SectorExposure, got.SectorExposure)
		assertSameRows(t, fmt.Sprintf("permutation %d country", i), want.CountryExposure, got.CountryExposure)
	}
}

func assertSameRows(t *testing.T, label string, want, got []model.ExposureRow) {
	t.Helper()
	require.Len(t, got, len(want), label)
	for i := range want {
		assert.Equal(t, want[i].Key, got[i].Key, "%s row %d", label, i)
		assert.InDelta(t, want[i].Weight, got[i].Weight, 1e-9, "%s row %d", label, i)
	}
}

// permutations returns every ordering of holdings.
func permutations(holdings []model.Holding) [][]model.Holding {
	if len(holdings) <= 1 {
		return [][]model.Holding{append([]model.Holding(nil), holdings...)}
	}
	var out [][]model.Holding
	for i := range holdings {
		rest := make([]model.Holding, 0, len(holdings)-1)
		rest = append(rest, holdings[:i]...)
		rest = append(rest, holdings[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]model.Holding{holdings[i]}, p...))
		}
	}
	return out
}
