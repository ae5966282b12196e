// Package metrics provides Prometheus instrumentation for the game backend.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BetsPlacedTotal counts bets placed, partitioned by round side.
	BetsPlacedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamerit_bets_placed_total",
		Help: "Total number of bets placed",
	}, []string{"side"})

	// ChipsWagered tracks cumulative chips staked on rounds.
	ChipsWagered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gamerit_chips_wagered_total",
		Help: "Cumulative chips staked on rounds",
	})

	// RoundsSettledTotal counts settled rounds by winning side.
	RoundsSettledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamerit_rounds_settled_total",
		Help: "Total number of rounds settled",
	}, []string{"winner"})

	// ActiveRounds tracks the active round pool size.
	ActiveRounds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gamerit_active_rounds",
		Help: "Number of currently active betting rounds",
	})

	// ActiveStocks tracks the number of listed meme stocks.
	ActiveStocks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gamerit_active_stocks",
		Help: "Number of currently active meme stocks",
	})

	// TradesTotal counts stock trades executed, partitioned by side.
	TradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamerit_trades_total",
		Help: "Total number of stock trades executed",
	}, []string{"side"})

	// ChipFlow tracks chips moved through the ledger by direction and
	// transaction type, fed from balance change events.
	ChipFlow = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamerit_chip_flow_total",
		Help: "Cumulative chips credited or debited by transaction type",
	}, []string{"direction", "transaction_type"})

	// EventFeedTotal counts domain events observed on the push feed.
	EventFeedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamerit_event_feed_total",
		Help: "Total domain events consumed from the event stream",
	}, []string{"event_type"})

	// RedditRequestsTotal counts upstream Reddit API calls by outcome.
	RedditRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamerit_reddit_requests_total",
		Help: "Total Reddit API requests",
	}, []string{"outcome"})

	// WorkerRunsTotal counts periodic job executions by job and outcome.
	WorkerRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamerit_worker_runs_total",
		Help: "Total periodic worker executions",
	}, []string{"job", "outcome"})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamerit_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gamerit_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Use the raw path for now; route patterns keep cardinality in check.
		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
