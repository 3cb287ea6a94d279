package middleware

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics counts requests, errors and generation latency for /metrics.
type Metrics struct {
	requests atomic.Int64
	errors   atomic.Int64

	mu       sync.Mutex
	byStatus map[int]int64
	slowest  time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{byStatus: make(map[int]int64)}
}

func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.requests.Add(1)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		// Count errors (4xx and 5xx)
		if rw.statusCode >= 400 {
			m.errors.Add(1)
		}

		elapsed := time.Since(start)
		m.mu.Lock()
		m.byStatus[rw.statusCode]++
		if elapsed > m.slowest {
			m.slowest = elapsed
		}
		m.mu.Unlock()
	})
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Requests int64         `json:"request_count"`
	Errors   int64         `json:"error_count"`
	ByStatus map[int]int64 `json:"by_status"`
	Slowest  float64       `json:"slowest_request_ms"`
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	byStatus := make(map[int]int64, len(m.byStatus))
	for k, v := range m.byStatus {
		byStatus[k] = v
	}
	return MetricsSnapshot{
		Requests: m.requests.Load(),
		Errors:   m.errors.Load(),
		ByStatus: byStatus,
		Slowest:  float64(m.slowest.Microseconds()) / 1000,
	}
}
