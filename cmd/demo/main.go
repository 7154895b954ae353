// Command demo drives fairorder/engine through a small, fixed event trace
// and prints the resulting trades and fairness metrics under both matching
// disciplines. It is a sequential driver: spec.md §5 forbids the core from
// doing its own concurrency, so nothing here spawns a goroutine either — the
// same shape the original engine's cmd/benchmark used for illustration, with
// the worker pool and ring buffers stripped out.
package main

import (
	"fmt"

	"go.uber.org/zap"

	"fairorder/domain"
	"fairorder/engine"
)

// trace is a small, reproducible sequence of NEW/CANCEL events. recv_time is
// in nanoseconds; traderIDs[i] attributes events[i] to a participant.
var trace = []domain.OrderEvent{
	{Type: domain.EventNew, OrderID: 1, Side: domain.SideSell, Price: 10_000, Qty: 50, RecvTime: 0},
	{Type: domain.EventNew, OrderID: 2, Side: domain.SideBuy, Price: 10_000, Qty: 20, RecvTime: 1_000},
	{Type: domain.EventNew, OrderID: 3, Side: domain.SideBuy, Price: 10_000, Qty: 40, RecvTime: 1_500},
	{Type: domain.EventNew, OrderID: 4, Side: domain.SideSell, Price: 10_005, Qty: 10, RecvTime: 2_200},
	{Type: domain.EventCancel, OrderID: 4, RecvTime: 2_400},
}

var traders = []int{101, 202, 303, 404, 404}

func main() {
	log, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	for _, mode := range []domain.MatchingMode{domain.NaivePriceTime, domain.LatencyFairBatched} {
		runTrace(log, mode)
	}
}

func runTrace(log *zap.Logger, mode domain.MatchingMode) {
	fmt.Printf("\n=== %s ===\n", mode)

	eng := engine.New(engine.Config{
		WindowNs: 2_000,
		Mode:     mode,
		Logger:   log,
	})

	var trades []domain.Trade
	var pending []int // trader ids of the events currently buffered, in order
	for i, ev := range trace {
		if err := eng.Submit(ev); err != nil {
			fmt.Printf("rejected event order_id=%d: %v\n", ev.OrderID, err)
			continue
		}
		pending = append(pending, traders[i])
		if batch, ok := eng.TryFlush(pending); ok {
			trades = append(trades, batch...)
			pending = nil
		}
	}
	trades = append(trades, eng.ForceFlush(pending)...)

	for _, t := range trades {
		fmt.Printf("trade: buy=%d sell=%d price=%d qty=%d\n", t.BuyOrderID, t.SellOrderID, t.Price, t.Qty)
	}

	for _, traderID := range []int{101, 202, 303, 404} {
		fmt.Printf("trader %d: win_rate=%.2f execution_rate=%.2f\n",
			traderID, eng.Metrics().WinRate(traderID), eng.Metrics().ExecutionRate(traderID))
	}
	fmt.Printf("fairness_index=%.3f latency_advantage_reduction=%.3f\n",
		eng.Metrics().FairnessIndex(), eng.Metrics().LatencyAdvantageReduction())
}
