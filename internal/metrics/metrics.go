package metrics

import (
	"os"
	"sync"
	"time"
)

// Package metrics provides a minimal instrumentation interface with a no-op
// default and optional Prometheus-backed implementation enabled via config
// or environment.

// Recorder defines the metrics surface used across the codebase.
type Recorder interface {
	IncStoreOpTotal(op string, success bool)
	ObserveStoreOpSeconds(op string, success bool, seconds float64)
	IncToolTotal(tool string, success bool)
	ObserveToolSeconds(tool string, success bool, seconds float64)
	IncQueryTotal(intent string, outcome string)
	IncResolverTier(kind string, tier string)
	ObserveHTTPSeconds(route string, status int, seconds float64)
	IncStmtCacheHit(kind string)
	IncStmtCacheMiss(kind string)
	ObservePoolStats(inUse, idle int)
}

// noopRecorder implements Recorder with no-ops.
type noopRecorder struct{}

func (n *noopRecorder) IncStoreOpTotal(string, bool)                {}
func (n *noopRecorder) ObserveStoreOpSeconds(string, bool, float64) {}
func (n *noopRecorder) IncToolTotal(string, bool)                   {}
func (n *noopRecorder) ObserveToolSeconds(string, bool, float64)    {}
func (n *noopRecorder) IncQueryTotal(string, string)                {}
func (n *noopRecorder) IncResolverTier(string, string)              {}
func (n *noopRecorder) ObserveHTTPSeconds(string, int, float64)     {}
func (n *noopRecorder) IncStmtCacheHit(string)                      {}
func (n *noopRecorder) IncStmtCacheMiss(string)                     {}
func (n *noopRecorder) ObservePoolStats(int, int)                   {}

var (
	recMu    sync.RWMutex
	recorder Recorder = &noopRecorder{}
)

// Default returns the current recorder.
func Default() Recorder {
	recMu.RLock()
	defer recMu.RUnlock()
	return recorder
}

// SetRecorder swaps the global recorder implementation.
func SetRecorder(r Recorder) {
	recMu.Lock()
	defer recMu.Unlock()
	recorder = r
}

// TimeOp is a helper to time store operations.
func TimeOp(op string) func(success bool) {
	start := time.Now()
	return func(success bool) {
		dur := time.Since(start).Seconds()
		Default().IncStoreOpTotal(op, success)
		Default().ObserveStoreOpSeconds(op, success, dur)
	}
}

// TimeTool is a helper to time MCP tool handler operations.
func TimeTool(tool string) func(success bool) {
	start := time.Now()
	return func(success bool) {
		dur := time.Since(start).Seconds()
		Default().IncToolTotal(tool, success)
		Default().ObserveToolSeconds(tool, success, dur)
	}
}

// TimeHTTP is a helper to time HTTP handlers; call the returned func with the
// final status code.
func TimeHTTP(route string) func(status int) {
	start := time.Now()
	return func(status int) {
		Default().ObserveHTTPSeconds(route, status, time.Since(start).Seconds())
	}
}

// Init enables the Prometheus exporter when requested. The exporter serves
// /metrics and /healthz on addr.
func Init(prometheus bool, addr string) {
	if !prometheus {
		return
	}
	if addr == "" {
		addr = ":9090"
	}
	// Try to install prometheus recorder; if it fails, keep noop.
	_ = enablePrometheus(addr)
}

// InitFromEnv enables the Prometheus exporter if STATPAD_METRICS_PROMETHEUS
// is set, listening on STATPAD_METRICS_ADDR (default :9090). Used by entry
// points that run without the config loader.
func InitFromEnv() {
	if os.Getenv("STATPAD_METRICS_PROMETHEUS") == "" {
		return
	}
	Init(true, os.Getenv("STATPAD_METRICS_ADDR"))
}

// enablePrometheus is provided by build-tagged files.
