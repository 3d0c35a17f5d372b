package api

import (
	"sync/atomic"
	"time"

	"github.com/ignatzorin/proposely/internal/pkg/apperror"
)

// Metrics хранит счётчики вызовов бэкенда.
type Metrics struct {
	calls    int64
	failures int64
	timeouts int64
	latency  int64 // суммарно, наносекунды
}

var globalMetrics = &Metrics{}

// GetMetrics возвращает снимок счётчиков.
func GetMetrics() Metrics {
	return Metrics{
		calls:    atomic.LoadInt64(&globalMetrics.calls),
		failures: atomic.LoadInt64(&globalMetrics.failures),
		timeouts: atomic.LoadInt64(&globalMetrics.timeouts),
		latency:  atomic.LoadInt64(&globalMetrics.latency),
	}
}

// ResetMetrics обнуляет счётчики (для тестов).
func ResetMetrics() {
	atomic.StoreInt64(&globalMetrics.calls, 0)
	atomic.StoreInt64(&globalMetrics.failures, 0)
	atomic.StoreInt64(&globalMetrics.timeouts, 0)
	atomic.StoreInt64(&globalMetrics.latency, 0)
}

func recordCall(duration time.Duration, err error) {
	atomic.AddInt64(&globalMetrics.calls, 1)
	atomic.AddInt64(&globalMetrics.latency, duration.Nanoseconds())
	if err == nil {
		return
	}
	atomic.AddInt64(&globalMetrics.failures, 1)
	if apperror.IsTimeout(err) {
		atomic.AddInt64(&globalMetrics.timeouts, 1)
	}
}

func (m Metrics) Calls() int64    { return m.calls }
func (m Metrics) Failures() int64 { return m.failures }
func (m Metrics) Timeouts() int64 { return m.timeouts }

// AverageLatency возвращает среднюю задержку в миллисекундах.
func (m Metrics) AverageLatency() float64 {
	if m.calls == 0 {
		return 0
	}
	return float64(m.latency) / float64(m.calls) / 1e6
}

// ErrorRate возвращает долю неуспешных вызовов в процентах.
func (m Metrics) ErrorRate() float64 {
	if m.calls == 0 {
		return 0
	}
	return float64(m.failures) / float64(m.calls) * 100
}
