package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/service"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/testutil"
)

// TestExposureService_AggregateExposure tests concurrent fund resolution.
//
// WHY: Look-through calls go to a slow, rate-limited provider. Each fund must be
// asked for once, and a hanging or failing lookup must only drop that fund.
func TestExposureService_AggregateExposure(t *testing.T) {
	newSource := func() *testutil.FakeFundSource {
		src := testutil.NewFakeFundSource()
		src.Constituents["VWRL"] = []model.Constituent{
			{Symbol: "AAPL", Name: "Apple", Weight: 10, Sector: "Technology", Country: "US"},
			{Symbol: "MSFT", Name: "Microsoft", Weight: 5, Sector: "Technology", Country: "US"},
		}
		return src
	}
	cfg := service.ExposureConfig{Concurrency: 4, Timeout: 50 * time.Millisecond}

	t.Run("46 percent combined exposure", func(t *testing.T) {
		src := newSource()
		svc := service.NewExposureService(src, cfg, zerolog.Nop())

		b, err := svc.AggregateExposure(context.Background(), []model.Holding{
			testutil.NewHolding("AAPL").WithQuantity(4).WithSector("Technology").WithCountry("US").Value(),
			testutil.NewHolding("VWRL").AsFund("LSE").WithQuantity(6).Value(),
		})
		require.NoError(t, err)
		require.Len(t, b.TopExposures, 2)
		assert.Equal(t, "AAPL", b.TopExposures[0].Key)
		assert.InDelta(t, 46.0, b.TopExposures[0].Weight, 1e-9)
		assert.InDelta(t, 3.0, b.TopExposures[1].Weight, 1e-9)
	})

	t.Run("one lookup per distinct fund", func(t *testing.T) {
		src := newSource()
		svc := service.NewExposureService(src, cfg, zerolog.Nop())

		_, err := svc.AggregateExposure(context.Background(), []model.Holding{
			testutil.NewHolding("VWRL").AsFund("LSE").Value(),
			testutil.NewHolding("vwrl").AsFund("lse").Value(),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, src.RequestCount())
	})

	t.Run("failing and hanging funds are skipped", func(t *testing.T) {
		src := newSource()
		src.Fail["BROKEN"] = true
		src.Hang["SLOW"] = true
		src.Constituents["EMPTY"] = nil
		svc := service.NewExposureService(src, cfg, zerolog.Nop())

		start := time.Now()
		b, err := svc.AggregateExposure(context.Background(), []model.Holding{
			testutil.NewHolding("VWRL").AsFund("LSE").Value(),
			testutil.NewHolding("BROKEN").AsFund("").Value(),
			testutil.NewHolding("SLOW").AsFund("").Value(),
			testutil.NewHolding("EMPTY").AsFund("").Value(),
		})
		require.NoError(t, err)
		assert.Less(t, time.Since(start), time.Second)

		require.Len(t, b.TopExposures, 2)
		// VWRL is a quarter of the portfolio
		assert.InDelta(t, 2.5, b.TopExposures[0].Weight, 1e-9)
		for _, row := range b.TopExposures {
			assert.NotContains(t, []string{"BROKEN", "SLOW", "EMPTY"}, row.Key)
		}
	})

	t.Run("no source configured", func(t *testing.T) {
		svc := service.NewExposureService(nil, cfg, zerolog.Nop())

		b, err := svc.AggregateExposure(context.Background(), []model.Holding{
			testutil.NewHolding("AAPL").Value(),
			testutil.NewHolding("VWRL").AsFund("LSE").Value(),
		})
		require.NoError(t, err)
		require.Len(t, b.TopExposures, 1)
		assert.InDelta(t, 50.0, b.TopExposures[0].Weight, 1e-9)
	})

	t.Run("negative quantity is rejected", func(t *testing.T) {
		src := newSource()
		svc := service.NewExposureService(src, cfg, zerolog.Nop())

		_, err := svc.AggregateExposure(context.Background(), []model.Holding{
			testutil.NewHolding("VWRL").AsFund("LSE").WithQuantity(-1).Value(),
		})
		assert.ErrorIs(t, err, apperrors.ErrNegativeQuantity)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Zero(t, src.RequestCount())
	})
}
