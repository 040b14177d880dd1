//go:build !noprom

package metrics

import (
	"fmt"
	"net/http"
	"strconv"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

type promRecorder struct {
	storeTotal    *prom.CounterVec
	storeSeconds  *prom.HistogramVec
	toolTotal     *prom.CounterVec
	toolSeconds   *prom.HistogramVec
	queryTotal    *prom.CounterVec
	resolverTotal *prom.CounterVec
	httpSeconds   *prom.HistogramVec
	stmtCache     *prom.CounterVec
	poolInUse     prom.Gauge
	poolIdle      prom.Gauge
}

func (p *promRecorder) IncStoreOpTotal(op string, success bool) {
	p.storeTotal.WithLabelValues(op, fmt.Sprintf("%t", success)).Inc()
}

func (p *promRecorder) ObserveStoreOpSeconds(op string, success bool, seconds float64) {
	p.storeSeconds.WithLabelValues(op, fmt.Sprintf("%t", success)).Observe(seconds)
}

func (p *promRecorder) IncToolTotal(tool string, success bool) {
	p.toolTotal.WithLabelValues(tool, fmt.Sprintf("%t", success)).Inc()
}

func (p *promRecorder) ObserveToolSeconds(tool string, success bool, seconds float64) {
	p.toolSeconds.WithLabelValues(tool, fmt.Sprintf("%t", success)).Observe(seconds)
}

func (p *promRecorder) IncQueryTotal(intent string, outcome string) {
	p.queryTotal.WithLabelValues(intent, outcome).Inc()
}

func (p *promRecorder) IncResolverTier(kind string, tier string) {
	p.resolverTotal.WithLabelValues(kind, tier).Inc()
}

func (p *promRecorder) ObserveHTTPSeconds(route string, status int, seconds float64) {
	p.httpSeconds.WithLabelValues(route, strconv.Itoa(status)).Observe(seconds)
}

func (p *promRecorder) IncStmtCacheHit(kind string) {
	p.stmtCache.WithLabelValues(kind, "hit").Inc()
}

func (p *promRecorder) IncStmtCacheMiss(kind string) {
	p.stmtCache.WithLabelValues(kind, "miss").Inc()
}

func (p *promRecorder) ObservePoolStats(inUse, idle int) {
	p.poolInUse.Set(float64(inUse))
	p.poolIdle.Set(float64(idle))
}

func enablePrometheus(addr string) error {
	registry := prom.NewRegistry()
	p := &promRecorder{
		storeTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "statpad_store_ops_total",
			Help: "Total number of stats store operations",
		}, []string{"op", "success"}),
		storeSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "statpad_store_op_seconds",
			Help:    "Stats store operation duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"op", "success"}),
		toolTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "statpad_tool_calls_total",
			Help: "Total number of tool handler calls",
		}, []string{"tool", "success"}),
		toolSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "statpad_tool_call_seconds",
			Help:    "Tool handler duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"tool", "success"}),
		queryTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "statpad_queries_total",
			Help: "Interpreted queries by intent and outcome",
		}, []string{"intent", "outcome"}),
		resolverTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "statpad_resolver_matches_total",
			Help: "Entity resolutions by kind and match tier",
		}, []string{"kind", "tier"}),
		httpSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "statpad_http_request_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"route", "status"}),
		stmtCache: prom.NewCounterVec(prom.CounterOpts{
			Name: "statpad_stmt_cache_total",
			Help: "Prepared statement cache hits and misses",
		}, []string{"kind", "result"}),
		poolInUse: prom.NewGauge(prom.GaugeOpts{
			Name: "statpad_db_pool_in_use",
			Help: "Database connections currently in use",
		}),
		poolIdle: prom.NewGauge(prom.GaugeOpts{
			Name: "statpad_db_pool_idle",
			Help: "Idle database connections",
		}),
	}

	registry.MustRegister(
		p.storeTotal, p.storeSeconds,
		p.toolTotal, p.toolSeconds,
		p.queryTotal, p.resolverTotal,
		p.httpSeconds, p.stmtCache,
		p.poolInUse, p.poolIdle,
	)
	SetRecorder(p)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	go func() { _ = http.ListenAndServe(addr, mux) }()
	return nil
}
