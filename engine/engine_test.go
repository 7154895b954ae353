package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"fairorder/clock"
	"fairorder/domain"
)

func newEngine(mode domain.MatchingMode, windowNs int64, ticks ...int64) *Engine {
	return New(Config{WindowNs: windowNs, Mode: mode, Clock: clock.NewFixed(ticks...)})
}

func TestSubmitRejectsNonPositiveQty(t *testing.T) {
	e := newEngine(domain.NaivePriceTime, 1000, 1)
	err := e.Submit(domain.OrderEvent{Type: domain.EventNew, OrderID: 1, Qty: 0, RecvTime: 1})
	require.ErrorIs(t, err, domain.ErrInvalidEvent)
	require.Equal(t, 0, e.PendingEvents())
}

func TestSubmitRejectsZeroOrderID(t *testing.T) {
	e := newEngine(domain.NaivePriceTime, 1000, 1)
	err := e.Submit(domain.OrderEvent{Type: domain.EventNew, OrderID: 0, Qty: 1, RecvTime: 1})
	require.ErrorIs(t, err, domain.ErrInvalidEvent)
}

func TestSubmitRejectsBackwardsRecvTime(t *testing.T) {
	e := newEngine(domain.NaivePriceTime, 1000, 1)
	require.NoError(t, e.Submit(domain.OrderEvent{Type: domain.EventNew, OrderID: 1, Qty: 1, RecvTime: 100}))

	err := e.Submit(domain.OrderEvent{Type: domain.EventNew, OrderID: 2, Qty: 1, RecvTime: 50})
	require.ErrorIs(t, err, domain.ErrInvalidEvent)
}

func TestTryFlushOnlyWhenWindowElapsed(t *testing.T) {
	e := newEngine(domain.NaivePriceTime, 50000, 1, 1)
	require.NoError(t, e.Submit(domain.OrderEvent{Type: domain.EventNew, OrderID: 1, Side: domain.SideBuy, Price: 100, Qty: 1, RecvTime: 0}))

	_, ok := e.TryFlush([]int{1})
	require.False(t, ok)

	require.NoError(t, e.Submit(domain.OrderEvent{Type: domain.EventNew, OrderID: 2, Side: domain.SideBuy, Price: 100, Qty: 1, RecvTime: 50000}))
	trades, ok := e.TryFlush([]int{1, 1})
	require.True(t, ok)
	require.Empty(t, trades)
	require.Equal(t, 2, e.Book().BuyDepth())
}

func TestForceFlushBelowThreshold(t *testing.T) {
	e := newEngine(domain.NaivePriceTime, 50000, 1)
	require.NoError(t, e.Submit(domain.OrderEvent{Type: domain.EventNew, OrderID: 1, Side: domain.SideSell, Price: 100, Qty: 10, RecvTime: 0}))

	_, ok := e.TryFlush([]int{1})
	require.False(t, ok)

	e.ForceFlush([]int{1})
	require.Equal(t, 1, e.Book().SellDepth())
	require.Equal(t, 0, e.PendingEvents())
}

func TestProcessImmediateMatchesDirectly(t *testing.T) {
	e := newEngine(domain.NaivePriceTime, 50000, 1)
	require.NoError(t, e.ProcessImmediate(domain.OrderEvent{Type: domain.EventNew, OrderID: 1, Side: domain.SideSell, Price: 100, Qty: 10, RecvTime: 0}, 1))
	require.NoError(t, e.ProcessImmediate(domain.OrderEvent{Type: domain.EventNew, OrderID: 2, Side: domain.SideBuy, Price: 100, Qty: 10, RecvTime: 1}, 2))

	require.Equal(t, 0, e.Book().BuyDepth())
	require.Equal(t, 0, e.Book().SellDepth())
}

func TestSetModeRejectsUnknown(t *testing.T) {
	e := newEngine(domain.NaivePriceTime, 1000, 1)
	err := e.SetMode(domain.MatchingMode(77))
	require.ErrorIs(t, err, domain.ErrUnknownMode)
	require.Equal(t, domain.NaivePriceTime, e.GetMode())
}

func TestResetIsIdempotentOverIdenticalTrace(t *testing.T) {
	e := newEngine(domain.LatencyFairBatched, 1000, 1, 1, 1)
	run := func() ([]domain.Trade, []float64) {
		events := []domain.OrderEvent{
			{Type: domain.EventNew, OrderID: 1, Side: domain.SideSell, Price: 100, Qty: 10, RecvTime: 0},
			{Type: domain.EventNew, OrderID: 2, Side: domain.SideBuy, Price: 100, Qty: 4, RecvTime: 100},
			{Type: domain.EventNew, OrderID: 3, Side: domain.SideBuy, Price: 100, Qty: 6, RecvTime: 1200},
		}
		var trades []domain.Trade
		for _, ev := range events {
			require.NoError(t, e.Submit(ev))
			if bt, ok := e.TryFlush([]int{1, 2, 3}); ok {
				trades = append(trades, bt...)
			}
		}
		trades = append(trades, e.ForceFlush([]int{1, 2, 3})...)
		return trades, []float64{e.Metrics().WinRate(1), e.Metrics().WinRate(2)}
	}

	firstTrades, firstRates := run()
	e.Reset()
	secondTrades, secondRates := run()

	require.Equal(t, firstTrades, secondTrades)
	require.Equal(t, firstRates, secondRates)
}

func TestSetWindowDiscardsPendingBatch(t *testing.T) {
	e := newEngine(domain.NaivePriceTime, 50000, 1)
	require.NoError(t, e.Submit(domain.OrderEvent{Type: domain.EventNew, OrderID: 1, Side: domain.SideBuy, Price: 100, Qty: 1, RecvTime: 0}))
	require.Equal(t, 1, e.PendingEvents())

	e.SetWindow(10000)
	require.Equal(t, 0, e.PendingEvents())
}
