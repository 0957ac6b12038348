package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	withdrawalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "withdrawals_total",
			Help: "Withdrawal requests by outcome",
		},
		[]string{"coin", "status"},
	)

	kycSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kyc_submissions_total",
			Help: "KYC submissions and reviews by resulting status",
		},
		[]string{"status"},
	)

	ticketMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_messages_total",
			Help: "Support ticket messages by sender role",
		},
		[]string{"role"},
	)

	realtimeSubscriptions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_subscriptions",
			Help: "Open realtime subscriptions",
		},
	)

	realtimeEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_events_total",
			Help: "Change events fanned out to subscribers",
		},
		[]string{"table", "type"},
	)

	marketFeedFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_feed_fetch_total",
			Help: "Market quote refreshes by result",
		},
		[]string{"result"},
	)
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequestsTotal,
		httpRequestDuration,
		withdrawalsTotal,
		kycSubmissionsTotal,
		ticketMessagesTotal,
		realtimeSubscriptions,
		realtimeEventsTotal,
		marketFeedFetchTotal,
	)
}

// Registry exposes the package registry, mainly for tests.
func Registry() *prometheus.Registry {
	return registry
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// GinHandler adapts Handler for gin routes.
func GinHandler() gin.HandlerFunc {
	h := Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware records request count and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func RecordWithdrawal(coin, status string) {
	withdrawalsTotal.WithLabelValues(coin, status).Inc()
}

func RecordKYC(status string) {
	kycSubmissionsTotal.WithLabelValues(status).Inc()
}

func RecordTicketMessage(role string) {
	ticketMessagesTotal.WithLabelValues(role).Inc()
}

func SubscriptionOpened() { realtimeSubscriptions.Inc() }

func SubscriptionClosed() { realtimeSubscriptions.Dec() }

func RecordRealtimeEvent(table, eventType string) {
	realtimeEventsTotal.WithLabelValues(table, eventType).Inc()
}

func RecordMarketFetch(result string) {
	marketFeedFetchTotal.WithLabelValues(result).Inc()
}
