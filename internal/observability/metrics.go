package observability

import "sync"

// Metrics provides basic in-memory counters for storage operations.
type Metrics struct {
	mu      sync.Mutex
	opCount map[string]int64
	errors  map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		opCount: make(map[string]int64),
		errors:  make(map[string]int64),
	}
}

// RecordOperation increments counters for one storage operation against key.
func (m *Metrics) RecordOperation(key, op string, err error) {
	if m == nil {
		return
	}
	counter := key + "|" + op
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opCount[counter]++
	if err != nil {
		m.errors[counter]++
	}
}

// Operations returns the recorded count for one key/op pair.
func (m *Metrics) Operations(key, op string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opCount[key+"|"+op]
}

// Errors returns the recorded failure count for one key/op pair.
func (m *Metrics) Errors(key, op string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[key+"|"+op]
}
