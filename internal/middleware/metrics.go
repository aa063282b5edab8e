package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	AnalysesStored     uint64
	AnalysesRejected   uint64
	AnalysesFailed     uint64
	HistoryQueries     uint64
	HistoryFailed      uint64
	StartTime          time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

func IncrementRequests() { atomic.AddUint64(&globalMetrics.RequestsTotal, 1) }

func IncrementInProgress() { atomic.AddUint64(&globalMetrics.RequestsInProgress, 1) }

func DecrementInProgress() { atomic.AddUint64(&globalMetrics.RequestsInProgress, ^uint64(0)) }

func IncrementSuccess() { atomic.AddUint64(&globalMetrics.RequestsSuccess, 1) }

func IncrementFailed() { atomic.AddUint64(&globalMetrics.RequestsFailed, 1) }

// IncrementAnalysesStored counts analyses written to the store
func IncrementAnalysesStored() { atomic.AddUint64(&globalMetrics.AnalysesStored, 1) }

// IncrementAnalysesRejected counts requests without usable text
func IncrementAnalysesRejected() { atomic.AddUint64(&globalMetrics.AnalysesRejected, 1) }

// IncrementAnalysesFailed counts analyses the store could not persist
func IncrementAnalysesFailed() { atomic.AddUint64(&globalMetrics.AnalysesFailed, 1) }

func IncrementHistoryQueries() { atomic.AddUint64(&globalMetrics.HistoryQueries, 1) }

func IncrementHistoryFailed() { atomic.AddUint64(&globalMetrics.HistoryFailed, 1) }

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"requests_total":       atomic.LoadUint64(&globalMetrics.RequestsTotal),
		"requests_in_progress": atomic.LoadUint64(&globalMetrics.RequestsInProgress),
		"requests_success":     atomic.LoadUint64(&globalMetrics.RequestsSuccess),
		"requests_failed":      atomic.LoadUint64(&globalMetrics.RequestsFailed),
		"analyses_stored":      atomic.LoadUint64(&globalMetrics.AnalysesStored),
		"analyses_rejected":    atomic.LoadUint64(&globalMetrics.AnalysesRejected),
		"analyses_failed":      atomic.LoadUint64(&globalMetrics.AnalysesFailed),
		"history_queries":      atomic.LoadUint64(&globalMetrics.HistoryQueries),
		"history_failed":       atomic.LoadUint64(&globalMetrics.HistoryFailed),
		"uptime_seconds":       time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       m.Alloc,
			"total_alloc_bytes": m.TotalAlloc,
			"sys_bytes":         m.Sys,
			"num_gc":            m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()
		IncrementInProgress()
		defer DecrementInProgress()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			IncrementSuccess()
		} else {
			IncrementFailed()
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetMetrics())
}
