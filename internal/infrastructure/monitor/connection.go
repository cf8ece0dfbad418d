package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger. Redis clients are wrapped with it.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// Sizer is satisfied by *buffer.Store.
type Sizer interface {
	Size() (int, error)
}

// Monitor periodically probes Postgres, Redis and the offline buffer and
// caches the result for the buffer processor and health endpoint.
type Monitor struct {
	pg     Pinger
	redis  Pinger
	buffer Sizer

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(pg, redis Pinger, buf Sizer, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		pg:       pg,
		redis:    redis,
		buffer:   buf,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	m.Refresh()
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Online()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh probes every dependency once and stores the result.
func (m *Monitor) Refresh() Status {
	bufferOK, bufferSize := m.checkBuffer()
	status := Status{
		PostgreSQL: probe(m.pg, 3*time.Second),
		Redis:      probe(m.redis, 2*time.Second),
		Buffer:     bufferOK,
		BufferSize: bufferSize,
		LastCheck:  time.Now(),
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	if !previous.LastCheck.IsZero() && previous.Online() != status.Online() {
		if status.Online() {
			m.logger.Info("primary storage reachable again", zap.Int("buffer_size", bufferSize))
		} else {
			m.logger.Warn("primary storage unreachable, writes will be buffered")
		}
	}
	return status
}

func probe(p Pinger, timeout time.Duration) bool {
	if p == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return p.Ping(ctx) == nil
}

func (m *Monitor) checkBuffer() (bool, int) {
	if m.buffer == nil {
		return false, 0
	}
	size, err := m.buffer.Size()
	if err != nil {
		m.logger.Warn("buffer size check failed", zap.Error(err))
		return false, size
	}
	return true, size
}
