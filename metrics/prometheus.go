package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder mirrors Metrics' counters into a prometheus.CounterVec
// labeled by trader_id, for a driver that wants to scrape the fairness
// experiment externally. Grounded on the counter-per-concern style of
// abdoElHodaky-tradSys's internal/hft/metrics (promauto.NewCounterVec), but
// built against a private prometheus.Registry rather than the package
// default: spec.md §5 requires set_mode/reset to be able to freely replace
// a Metrics instance, and registering the same metric name twice against
// the default registerer panics. Each PrometheusRecorder owns its own
// Registry so a driver can simply drop the old one on a mode switch.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	submitted *prometheus.CounterVec
	executed  *prometheus.CounterVec
	won       *prometheus.CounterVec
	lost      *prometheus.CounterVec
}

// NewPrometheusRecorder builds a Recorder with its own registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fairorder_orders_submitted_total",
			Help: "Orders submitted per trader.",
		}, []string{"trader_id"}),
		executed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fairorder_orders_executed_total",
			Help: "Orders executed (fully or partially) per trader.",
		}, []string{"trader_id"}),
		won: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fairorder_trades_won_total",
			Help: "Contested-price competitions won per trader.",
		}, []string{"trader_id"}),
		lost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fairorder_trades_lost_total",
			Help: "Contested-price competitions lost per trader.",
		}, []string{"trader_id"}),
	}
	r.registry.MustRegister(r.submitted, r.executed, r.won, r.lost)
	return r
}

// Registry exposes the underlying registry for a driver to serve over
// /metrics; the core itself never does HTTP (spec.md §1: no network
// transport in scope).
func (r *PrometheusRecorder) Registry() *prometheus.Registry { return r.registry }

func label(traderID int) string { return strconv.Itoa(traderID) }

func (r *PrometheusRecorder) OrderSubmitted(traderID int) {
	r.submitted.WithLabelValues(label(traderID)).Inc()
}

func (r *PrometheusRecorder) OrderExecuted(traderID int) {
	r.executed.WithLabelValues(label(traderID)).Inc()
}

func (r *PrometheusRecorder) TradeWon(traderID int) {
	r.won.WithLabelValues(label(traderID)).Inc()
}

func (r *PrometheusRecorder) TradeLost(traderID int) {
	r.lost.WithLabelValues(label(traderID)).Inc()
}

var _ Recorder = (*PrometheusRecorder)(nil)
