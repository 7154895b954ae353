package matching

import (
	"testing"

	"github.com/stretchr/testify/require"

	"fairorder/clock"
	"fairorder/domain"
)

func buyEvent(id uint64, price, recv int64) domain.OrderEvent {
	return domain.OrderEvent{Type: domain.EventNew, OrderID: id, Side: domain.SideBuy, Price: price, Qty: 10, RecvTime: recv}
}

func sellEvent(id uint64, price, qty, recv int64) domain.OrderEvent {
	return domain.OrderEvent{Type: domain.EventNew, OrderID: id, Side: domain.SideSell, Price: price, Qty: qty, RecvTime: recv}
}

// TestCompetitionAttributionFair mirrors spec.md scenario S4's attribution
// half: FAIR mode credits the smallest order_id.
func TestCompetitionAttributionFair(t *testing.T) {
	m := New(domain.LatencyFairBatched, clock.NewFixed(1, 1, 1), nil)
	m.ProcessBatch([]domain.OrderEvent{sellEvent(1, 100, 10, 0)}, []int{99})

	a := buyEvent(7, 100, 1000) // trader F
	b := buyEvent(2, 100, 2000) // trader S
	m.ProcessBatch([]domain.OrderEvent{a, b}, []int{10, 20})

	require.Equal(t, 1.0, m.Metrics().WinRate(20), "trader S (smallest order_id) wins in FAIR mode")
	require.Equal(t, 0.0, m.Metrics().WinRate(10))
}

func TestCompetitionAttributionNaive(t *testing.T) {
	m := New(domain.NaivePriceTime, clock.NewFixed(1, 1, 1), nil)
	m.ProcessBatch([]domain.OrderEvent{sellEvent(1, 100, 10, 0)}, []int{99})

	a := buyEvent(7, 100, 1000) // trader F, earlier recv_time
	b := buyEvent(2, 100, 2000) // trader S
	m.ProcessBatch([]domain.OrderEvent{a, b}, []int{10, 20})

	require.Equal(t, 1.0, m.Metrics().WinRate(10), "trader F (earlier recv_time) wins in NAIVE mode")
	require.Equal(t, 0.0, m.Metrics().WinRate(20))
}

func TestAttributionSkipsSingletonGroups(t *testing.T) {
	m := New(domain.LatencyFairBatched, clock.NewFixed(1), nil)
	m.ProcessBatch([]domain.OrderEvent{buyEvent(1, 100, 0)}, []int{1})

	require.Equal(t, 0.0, m.Metrics().WinRate(1))
}

func TestSetModeRebuildsBookAndResetsMetrics(t *testing.T) {
	m := New(domain.NaivePriceTime, clock.NewFixed(1, 1), nil)
	m.ProcessBatch([]domain.OrderEvent{sellEvent(1, 100, 10, 0)}, []int{1})
	require.Equal(t, 1, m.Book().SellDepth())

	require.NoError(t, m.SetMode(domain.LatencyFairBatched))

	require.Equal(t, 0, m.Book().SellDepth(), "mode switch discards the prior book")
	require.Equal(t, domain.LatencyFairBatched, m.Mode())
	require.Empty(t, m.Metrics().TradeHistory())
}

func TestSetModeRejectsUnknownMode(t *testing.T) {
	m := New(domain.NaivePriceTime, clock.NewFixed(1), nil)
	err := m.SetMode(domain.MatchingMode(99))
	require.ErrorIs(t, err, domain.ErrUnknownMode)
	require.Equal(t, domain.NaivePriceTime, m.Mode(), "prior mode retained on rejection")
}

func TestCancelEventRemovesRestingOrder(t *testing.T) {
	m := New(domain.NaivePriceTime, clock.NewFixed(1), nil)
	m.ProcessBatch([]domain.OrderEvent{sellEvent(1, 100, 10, 0)}, []int{1})
	require.Equal(t, 1, m.Book().SellDepth())

	cancel := domain.OrderEvent{Type: domain.EventCancel, OrderID: 1}
	m.ProcessBatch([]domain.OrderEvent{cancel}, []int{1})

	require.Equal(t, 0, m.Book().SellDepth())
}

func TestProcessImmediateSkipsAttribution(t *testing.T) {
	m := New(domain.NaivePriceTime, clock.NewFixed(1), nil)
	m.ProcessImmediate(sellEvent(1, 100, 10, 0), 99)
	m.ProcessImmediate(buyEvent(2, 100, 1000), 10)
	m.ProcessImmediate(buyEvent(3, 100, 2000), 20)

	require.Equal(t, 0.0, m.Metrics().WinRate(10))
	require.Equal(t, 0.0, m.Metrics().WinRate(20))
}

// TestWinsSumToCompetitionGroupCount is spec.md invariant 8.
func TestWinsSumToCompetitionGroupCount(t *testing.T) {
	m := New(domain.LatencyFairBatched, clock.NewFixed(1), nil)
	events := []domain.OrderEvent{
		buyEvent(1, 100, 0),
		buyEvent(2, 100, 0),
		buyEvent(3, 101, 0), // singleton group, no attribution
		buyEvent(4, 102, 0),
		buyEvent(5, 102, 0),
		buyEvent(6, 102, 0),
	}
	traders := []int{1, 2, 3, 4, 5, 6}
	m.ProcessBatch(events, traders)

	totalWins := 0
	for _, s := range m.Metrics().Stats() {
		totalWins += s.TradesWon
	}
	require.Equal(t, 2, totalWins, "two contested groups of size >= 2")
}
