package service

import (
	"sort"
	"strings"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/ticker"
)

// TopExposureLimit is the number of symbol rows kept in ExposureBreakdown.TopExposures.
const TopExposureLimit = 20

// Skip reasons recorded on a lookThroughResult.
const (
	skipLookupFailed    = "lookup failed"
	skipNoConstituents  = "no constituents"
	skipLookupTimedOut  = "lookup timed out"
	skipMissingResolver = "no lookup result"
)

// lookThroughResult is the outcome of resolving one fund. Exactly one of
// constituents or skipReason is meaningful.
type lookThroughResult struct {
	constituents []model.Constituent
	skipReason   string
	err          error
}

func (r lookThroughResult) skipped() bool {
	return r.skipReason != ""
}

func lookThroughOK(constituents []model.Constituent) lookThroughResult {
	if len(constituents) == 0 {
		return lookThroughResult{skipReason: skipNoConstituents}
	}
	return lookThroughResult{constituents: constituents}
}

// skippedFund is a fund holding that contributed nothing.
type skippedFund struct {
	holdingIndex int
	symbol       string
	reason       string
	err          error
}

// exposureAggregation is the full, unclipped result of aggregateExposure.
type exposureAggregation struct {
	symbols   *bucketSet
	sectors   *bucketSet
	countries *bucketSet
	// contributedWeight is the summed portfolio weight of holdings that contributed.
	contributedWeight float64
	skipped           []skippedFund
}

// breakdown ranks the buckets and clips the symbol list.
func (a exposureAggregation) breakdown() model.ExposureBreakdown {
	top := a.symbols.ranked()
	if len(top) > TopExposureLimit {
		top = top[:TopExposureLimit]
	}
	return model.ExposureBreakdown{
		TopExposures:    top,
		SectorExposure:  a.sectors.ranked(),
		CountryExposure: a.countries.ranked(),
	}
}

// aggregateExposure folds holdings into symbol, sector and country buckets.
//
// Each holding's portfolio weight is its value over the total value of all
// holdings, in percentage points. A direct holding adds its whole weight to its
// own symbol and to its sector and country when set. A fund adds
// constituent.Weight/100 of its weight to each constituent's buckets, using the
// resolved entry in lookups keyed by fund lookup key. Funds whose lookup was
// skipped contribute nothing and are reported in skipped. Constituents are
// never expanded further.
func aggregateExposure(holdings []model.Holding, lookups map[string]lookThroughResult) exposureAggregation {
	agg := exposureAggregation{
		symbols:   newBucketSet(),
		sectors:   newBucketSet(),
		countries: newBucketSet(),
	}

	var total float64
	for _, h := range holdings {
		total += h.Value()
	}

	for i, h := range holdings {
		weight := portfolioWeight(h.Value(), total)
		if weight == 0 {
			continue
		}
		source := model.ExposureSource{Symbol: ticker.Normalize(h.Symbol), Name: h.Name}

		if !h.IsFund() {
			agg.symbols.add(source.Symbol, h.Name, weight, &source)
			agg.sectors.add(strings.TrimSpace(h.Sector), "", weight, nil)
			agg.countries.add(strings.TrimSpace(h.Country), "", weight, nil)
			agg.contributedWeight += weight
			continue
		}

		res, ok := lookups[fundLookupKey(h)]
		if !ok {
			res = lookThroughResult{skipReason: skipMissingResolver}
		}
		if res.skipped() {
			agg.skipped = append(agg.skipped, skippedFund{
				holdingIndex: i,
				symbol:       source.Symbol,
				reason:       res.skipReason,
				err:          res.err,
			})
			continue
		}

		for _, c := range res.constituents {
			contribution := c.Weight / 100 * weight
			key := constituentKey(c)
			if key == "" {
				continue
			}
			agg.symbols.add(key, c.Name, contribution, &source)
			agg.sectors.add(strings.TrimSpace(c.Sector), "", contribution, nil)
			agg.countries.add(strings.TrimSpace(c.Country), "", contribution, nil)
		}
		agg.contributedWeight += weight
	}

	return agg
}

// fundLookupKey identifies one distinct fund request; holdings of the same fund
// in different accounts share a lookup.
func fundLookupKey(h model.Holding) string {
	return ticker.Normalize(h.Symbol) + "|" + strings.ToUpper(strings.TrimSpace(h.IssuerHint))
}

func constituentKey(c model.Constituent) string {
	if sym := ticker.Normalize(c.Symbol); sym != "" {
		return sym
	}
	return strings.ToUpper(strings.TrimSpace(c.Name))
}

type bucket struct {
	row       model.ExposureRow
	sourceIdx map[string]int
}

// bucketSet accumulates weights per key, remembering first-seen order.
type bucketSet struct {
	buckets []*bucket
	index   map[string]int
}

func newBucketSet() *bucketSet {
	return &bucketSet{index: make(map[string]int)}
}

// add sums weight into key. Blank keys are ignored. When source is non-nil the
// contribution is also recorded against that holding, merging repeat sources.
func (s *bucketSet) add(key, name string, weight float64, source *model.ExposureSource) {
	if key == "" {
		return
	}
	i, ok := s.index[key]
	if !ok {
		i = len(s.buckets)
		s.index[key] = i
		s.buckets = append(s.buckets, &bucket{
			row:       model.ExposureRow{Key: key, Name: name},
			sourceIdx: make(map[string]int),
		})
	}
	b := s.buckets[i]
	b.row.Weight += weight
	if b.row.Name == "" {
		b.row.Name = name
	}
	if source == nil {
		return
	}
	if j, ok := b.sourceIdx[source.Symbol]; ok {
		b.row.Sources[j].Weight += weight
		return
	}
	b.sourceIdx[source.Symbol] = len(b.row.Sources)
	b.row.Sources = append(b.row.Sources, model.ExposureSource{
		Symbol: source.Symbol,
		Name:   source.Name,
		Weight: weight,
	})
}

func (s *bucketSet) total() float64 {
	var sum float64
	for _, b := range s.buckets {
		sum += b.row.Weight
	}
	return sum
}

// ranked returns rows by weight descending, ties in first-seen order. Sources
// within a row are ordered the same way, ties broken by symbol.
func (s *bucketSet) ranked() []model.ExposureRow {
	rows := make([]model.ExposureRow, len(s.buckets))
	for i, b := range s.buckets {
		row := b.row
		row.Sources = append([]model.ExposureSource(nil), b.row.Sources...)
		sort.SliceStable(row.Sources, func(i, j int) bool {
			if row.Sources[i].Weight != row.Sources[j].Weight {
				return row.Sources[i].Weight > row.Sources[j].Weight
			}
			return row.Sources[i].Symbol < row.Sources[j].Symbol
		})
		rows[i] = row
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Weight > rows[j].Weight
	})
	return rows
}
