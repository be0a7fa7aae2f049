package model

import (
	"sort"
	"time"
)

// PricePoint is one closing price sample.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is an ordered-by-date sequence of closing prices for one symbol.
// It does not contain every calendar day; PriceOn forward-fills gaps.
type PriceSeries struct {
	Symbol string
	Points []PricePoint
}

// NewPriceSeries builds a series from unordered samples. Samples are normalised
// to UTC midnight and sorted ascending; when two samples share a date the later
// one in the input wins.
func NewPriceSeries(symbol string, points []PricePoint) PriceSeries {
	byDay := make(map[time.Time]int, len(points))
	sorted := make([]PricePoint, 0, len(points))
	for _, p := range points {
		day := Day(p.Date)
		if i, ok := byDay[day]; ok {
			sorted[i].Close = p.Close
			continue
		}
		byDay[day] = len(sorted)
		sorted = append(sorted, PricePoint{Date: day, Close: p.Close})
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return PriceSeries{Symbol: symbol, Points: sorted}
}

// PriceOn returns the closing price for date, or the latest price dated before it.
// The boolean is false when the series has no sample on or before date; prices
// are never back-filled from later samples.
func (s PriceSeries) PriceOn(date time.Time) (float64, bool) {
	day := Day(date)
	// index of the first sample strictly after day
	i := sort.Search(len(s.Points), func(i int) bool {
		return s.Points[i].Date.After(day)
	})
	if i == 0 {
		return 0, false
	}
	return s.Points[i-1].Close, true
}

// Day truncates t to midnight UTC of its calendar date in its own location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
