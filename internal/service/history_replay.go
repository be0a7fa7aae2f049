package service

import (
	"math"
	"sort"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/ticker"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/validation"
)

// BuildHistory reconstructs one HistoryPoint per calendar day in [start, end].
//
// The replay keeps a running cash balance and a quantity per symbol. For each
// day it applies that day's transactions in their given order, then values every
// non-zero position at the day's close from series, forward-filling gaps with the
// latest earlier close. A position with no close on or before the day contributes
// zero. Transactions dated before start are applied as opening state; those after
// end are ignored.
//
// When transactions is empty the series is flat at initialCash. Otherwise cash
// starts at zero and is driven entirely by the log.
//
// The direction of each transaction follows its type, not the sign of its
// fields:
//   - buy: quantity added, amount paid from cash
//   - sell: quantity removed, amount received into cash
//   - deposit, dividend: amount added to cash
//   - withdraw: amount removed from cash
//
// Parameters:
//   - transactions: The portfolio's log, ordered by insertion for same-day ties
//   - series: Daily closes keyed by symbol; symbols without a series contribute zero
//   - start, end: Inclusive window; times are truncated to the day
//   - initialCash: Cash balance used only when there are no transactions
//
// Returns:
//   - []model.HistoryPoint: end-start+1 points in ascending date order
//   - error: A validation error for an unordered window or a malformed transaction
func BuildHistory(
	transactions []model.Transaction,
	series map[string]model.PriceSeries,
	start, end time.Time,
	initialCash float64,
) ([]model.HistoryPoint, error) {
	start, end = model.Day(start), model.Day(end)
	if err := validation.ValidateWindow(start, end); err != nil {
		return nil, err
	}
	if err := validation.ValidateTransactions(transactions); err != nil {
		return nil, err
	}

	points := make([]model.HistoryPoint, 0, calendarDays(start, end))

	if len(transactions) == 0 {
		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			points = append(points, model.HistoryPoint{Date: day, Cash: initialCash, Total: initialCash})
		}
		return points, nil
	}

	log := sortedByDay(transactions)
	prices := normalizedSeries(series)
	st := newReplayState()

	next := 0
	for next < len(log) && log[next].day.Before(start) {
		st.apply(log[next].tx)
		next++
	}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		for next < len(log) && log[next].day.Equal(day) {
			st.apply(log[next].tx)
			next++
		}
		invested := st.investedValue(day, prices)
		points = append(points, model.HistoryPoint{
			Date:     day,
			Cash:     st.cash,
			Invested: invested,
			Total:    st.cash + invested,
		})
	}

	return points, nil
}

type datedTransaction struct {
	day time.Time
	tx  model.Transaction
}

// sortedByDay returns the log ordered by calendar day, preserving the given
// order within a day.
func sortedByDay(transactions []model.Transaction) []datedTransaction {
	out := make([]datedTransaction, len(transactions))
	for i, tx := range transactions {
		out[i] = datedTransaction{day: model.Day(tx.Date), tx: tx}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].day.Before(out[j].day)
	})
	return out
}

func normalizedSeries(series map[string]model.PriceSeries) map[string]model.PriceSeries {
	out := make(map[string]model.PriceSeries, len(series))
	for sym, s := range series {
		out[ticker.Normalize(sym)] = s
	}
	return out
}

// replayState is the running cash and positions. order keeps symbols in
// first-seen order so valuation sums in a fixed sequence.
type replayState struct {
	cash     float64
	holdings map[string]float64
	order    []string
}

func newReplayState() *replayState {
	return &replayState{holdings: make(map[string]float64)}
}

func (st *replayState) apply(tx model.Transaction) {
	amount := math.Abs(tx.Amount)
	switch tx.Type {
	case model.TransactionBuy:
		st.move(tx.Symbol, math.Abs(tx.Quantity))
		st.cash -= amount
	case model.TransactionSell:
		st.move(tx.Symbol, -math.Abs(tx.Quantity))
		st.cash += amount
	case model.TransactionDeposit, model.TransactionDividend:
		st.cash += amount
	case model.TransactionWithdraw:
		st.cash -= amount
	}
}

func (st *replayState) move(symbol string, delta float64) {
	sym := ticker.Normalize(symbol)
	if _, ok := st.holdings[sym]; !ok {
		st.order = append(st.order, sym)
	}
	st.holdings[sym] += delta
}

func (st *replayState) investedValue(day time.Time, prices map[string]model.PriceSeries) float64 {
	var invested float64
	for _, sym := range st.order {
		qty := st.holdings[sym]
		if isZeroQuantity(qty) {
			continue
		}
		s, ok := prices[sym]
		if !ok {
			continue
		}
		if price, ok := s.PriceOn(day); ok {
			invested += qty * price
		}
	}
	return invested
}
