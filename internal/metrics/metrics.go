package metrics

import "sync/atomic"

// MetricID identifies one counter in the in-process metrics block.
type MetricID uint8

const (
	MetricRegisterSuccess MetricID = iota
	MetricRegisterDuplicate
	MetricLoginSuccess
	MetricLoginFailure
	MetricPasswordRehash
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricAuthorizeSuccess
	MetricAuthorizeFailure
	MetricLogout
	MetricLogoutAll
	MetricRateLimitHit
	MetricLimiterDegraded

	MetricIDCount
)

// Config controls whether counters are recorded at all.
type Config struct {
	Enabled bool
}

// Metrics holds atomic counters. All operations are no-ops when disabled,
// so the guard can call Inc unconditionally on hot paths.
type Metrics struct {
	enabled  bool
	counters [MetricIDCount]atomic.Uint64
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

func New(cfg Config) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	m.counters[id].Add(1)
}

func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

func (m *Metrics) TakeSnapshot() Snapshot {
	snapshot := Snapshot{Counters: make(map[MetricID]uint64, MetricIDCount)}
	if m == nil || !m.enabled {
		return snapshot
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		snapshot.Counters[id] = m.counters[id].Load()
	}
	return snapshot
}
