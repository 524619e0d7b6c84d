package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walk_ledger",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route pattern, method and status code.",
	}, []string{"route", "method", "status"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "walk_ledger",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route pattern and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	walksLoggedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walk_ledger",
		Subsystem: "walks",
		Name:      "logged_total",
		Help:      "Walk records written, by kind.",
	}, []string{"kind"})

	offDayRejectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "walk_ledger",
		Subsystem: "walks",
		Name:      "off_day_rejections_total",
		Help:      "OFF days rejected because the weekly allowance was used up.",
	})
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, walksLoggedTotal, offDayRejectionsTotal)
}

// instrument records request count and latency per chi route pattern, so
// ids in query strings never blow up label cardinality.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
