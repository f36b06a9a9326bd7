// Package metrics defines the instrumentation surface of the SDK.
package metrics

import "time"

// Recorder counts request and payment events and observes call latency.
type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}
