package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/qcbd/app-beneficiary/internal/logging"
	"github.com/qcbd/app-beneficiary/internal/observability"
)

// Pinger checks one backing service
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger
type PingerFunc func(ctx context.Context) error

// Ping calls f(ctx)
func (f PingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// HealthStatus is the health check response
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

const healthCheckTimeout = 2 * time.Second

// HealthService reports dependency health and tracks degraded mode while
// any dependency is unreachable
type HealthService struct {
	checks      map[string]Pinger
	interval    time.Duration
	logger      *logging.SafeLogger
	mu          sync.RWMutex
	degraded    bool
	reason      string
	activatedAt time.Time
	stopOnce    sync.Once
	stopChan    chan struct{}
}

// NewHealthService creates a health service over the named checks
func NewHealthService(checks map[string]Pinger, interval time.Duration, logger *logging.SafeLogger) *HealthService {
	return &HealthService{
		checks:   checks,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Check pings every dependency
func (h *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Services:  make(map[string]string, len(h.checks)),
	}

	var failed string
	for name, check := range h.checks {
		pingCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		err := check.Ping(pingCtx)
		cancel()
		if err != nil {
			status.Services[name] = "unhealthy"
			status.Status = "unhealthy"
			failed = name
			h.logger.Warn("health check failed", zap.String("service", name), zap.Error(err))
			continue
		}
		status.Services[name] = "healthy"
	}

	if failed != "" {
		h.activate(failed + "_down")
	} else {
		h.deactivate()
	}
	return status
}

// StartMonitoring runs Check every interval until Stop is called
func (h *HealthService) StartMonitoring() {
	h.logger.Info("starting dependency monitoring", zap.Duration("interval", h.interval))

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.Check(context.Background())
		case <-h.stopChan:
			h.logger.Info("dependency monitoring stopped")
			return
		}
	}
}

// Stop ends monitoring
func (h *HealthService) Stop() {
	h.stopOnce.Do(func() { close(h.stopChan) })
}

func (h *HealthService) activate(reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.degraded {
		h.degraded = true
		h.reason = reason
		h.activatedAt = time.Now()
		observability.DegradedMode.Set(1)
		h.logger.Warn("degraded mode activated", zap.String("reason", reason))
	}
}

func (h *HealthService) deactivate() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.degraded {
		h.logger.Info("degraded mode deactivated",
			zap.String("previous_reason", h.reason),
			zap.Duration("duration", time.Since(h.activatedAt)))
		h.degraded = false
		h.reason = ""
		h.activatedAt = time.Time{}
		observability.DegradedMode.Set(0)
	}
}

// Degraded reports whether degraded mode is active and why
func (h *HealthService) Degraded() (bool, string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.degraded, h.reason
}
