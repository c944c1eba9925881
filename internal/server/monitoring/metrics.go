// Package monitoring collects lightweight process counters and renders them
// in a plain text exposition format for the /metrics endpoint.
package monitoring

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics holds the server counters. All methods are safe for concurrent use.
type Metrics struct {
	startedAt time.Time

	httpRequestsTotal  atomic.Int64
	httpRequestsActive atomic.Int64

	registrationsTotal atomic.Int64
	loginsSucceeded    atomic.Int64
	loginsFailed       atomic.Int64
	loginsThrottled    atomic.Int64
	accountsLocked     atomic.Int64
}

func New() *Metrics {
	return &Metrics{startedAt: time.Now()}
}

// RequestStarted marks the beginning of an HTTP request; the returned
// function marks its end and is intended for a defer in middleware.
func (m *Metrics) RequestStarted() func() {
	m.httpRequestsTotal.Add(1)
	m.httpRequestsActive.Add(1)
	return func() { m.httpRequestsActive.Add(-1) }
}

func (m *Metrics) RecordRegistration() { m.registrationsTotal.Add(1) }

func (m *Metrics) RecordLogin(success bool) {
	if success {
		m.loginsSucceeded.Add(1)
	} else {
		m.loginsFailed.Add(1)
	}
}

func (m *Metrics) RecordThrottledLogin() { m.loginsThrottled.Add(1) }
func (m *Metrics) RecordAccountLocked()  { m.accountsLocked.Add(1) }

// Render returns the counters in "name value" lines, one per metric.
func (m *Metrics) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "uptime_seconds %d\n", int64(time.Since(m.startedAt).Seconds()))
	fmt.Fprintf(&b, "http_requests_total %d\n", m.httpRequestsTotal.Load())
	fmt.Fprintf(&b, "http_requests_active %d\n", m.httpRequestsActive.Load())
	fmt.Fprintf(&b, "registrations_total %d\n", m.registrationsTotal.Load())
	fmt.Fprintf(&b, "logins_succeeded_total %d\n", m.loginsSucceeded.Load())
	fmt.Fprintf(&b, "logins_failed_total %d\n", m.loginsFailed.Load())
	fmt.Fprintf(&b, "logins_throttled_total %d\n", m.loginsThrottled.Load())
	fmt.Fprintf(&b, "accounts_locked_total %d\n", m.accountsLocked.Load())
	return b.String()
}
