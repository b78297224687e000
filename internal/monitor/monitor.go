package monitor

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/petmarket/petmarket-backend/config"
	"github.com/petmarket/petmarket-backend/internal/app/model"
	"github.com/petmarket/petmarket-backend/internal/app/repository"
	"github.com/petmarket/petmarket-backend/pkg/logger"
)

// Body capture is bounded so a misbehaving target cannot bloat the log.
const maxBodyBytes = 64 * 1024

// CheckSink receives every recorded probe outcome, e.g. for a live feed.
type CheckSink interface {
	BroadcastCheck(check model.HealthCheck)
}

// Monitor periodically probes the configured targets and records each
// outcome. Sweeps never overlap: a sweep still in flight when the next
// tick arrives makes the tick a no-op.
type Monitor struct {
	targets      []config.MonitorTarget
	healthRepo   repository.HealthRepository
	client       *http.Client
	cron         *cron.Cron
	interval     time.Duration
	startupDelay time.Duration
	sink         CheckSink
	startupTimer *time.Timer
}

// New builds a monitor from the config. sink may be nil.
func New(cfg config.MonitorConfig, healthRepo repository.HealthRepository, sink CheckSink) *Monitor {
	return &Monitor{
		targets:      cfg.Targets,
		healthRepo:   healthRepo,
		client:       &http.Client{Timeout: cfg.ProbeTimeout},
		interval:     cfg.Interval,
		startupDelay: cfg.StartupDelay,
		sink:         sink,
	}
}

// Start schedules the recurring sweep and fires the first one after the
// startup delay, giving co-hosted services time to begin listening.
func (m *Monitor) Start() error {
	if len(m.targets) == 0 {
		logger.Warn("Health monitor has no targets configured, not starting", nil)
		return nil
	}

	m.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))
	if _, err := m.cron.AddFunc("@every "+m.interval.String(), m.Sweep); err != nil {
		return err
	}

	m.startupTimer = time.AfterFunc(m.startupDelay, func() {
		m.Sweep()
		m.cron.Start()
	})

	logger.Info("Health monitor started", map[string]interface{}{
		"targets":       len(m.targets),
		"interval":      m.interval.String(),
		"startup_delay": m.startupDelay.String(),
	})
	return nil
}

// Stop cancels the schedule and waits for a running sweep to finish.
func (m *Monitor) Stop() {
	if m.startupTimer != nil {
		m.startupTimer.Stop()
	}
	if m.cron != nil {
		<-m.cron.Stop().Done()
	}
	logger.Info("Health monitor stopped", nil)
}

// Sweep probes every target in order. Targets are isolated from each
// other: one failing probe or record never skips the rest.
func (m *Monitor) Sweep() {
	logger.Debug("Starting health sweep", map[string]interface{}{
		"targets": len(m.targets),
	})

	for _, target := range m.targets {
		check := m.Probe(target)
		m.record(check)
	}
}

// Probe performs one GET against the target and classifies the outcome.
// Any HTTP response, whatever the status code, counts as reachable; only
// transport failures mark the target down.
func (m *Monitor) Probe(target config.MonitorTarget) model.HealthCheck {
	check := model.HealthCheck{
		ServiceName: target.Name,
		CheckedAt:   time.Now(),
	}

	start := time.Now()
	resp, err := m.client.Get(target.URL)
	check.TimeMs = time.Since(start).Milliseconds()

	if err != nil {
		check.OK = false
		msg := err.Error()
		if isTimeout(err) {
			msg = "timeout"
		}
		check.Error = &msg

		logger.Warn("Health probe failed", map[string]interface{}{
			"service": target.Name,
			"url":     target.URL,
			"error":   msg,
			"time_ms": check.TimeMs,
		})
		return check
	}
	defer resp.Body.Close()

	check.OK = true
	status := resp.StatusCode
	check.Status = &status

	// Best effort: a response whose body cannot be read still counts.
	if body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes)); readErr == nil {
		text := string(body)
		check.Body = &text
	}

	logger.Debug("Health probe succeeded", map[string]interface{}{
		"service": target.Name,
		"status":  status,
		"time_ms": check.TimeMs,
	})
	return check
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// record persists the outcome and pushes it to the live feed. A failed
// write is logged but never interrupts the sweep.
func (m *Monitor) record(check model.HealthCheck) {
	if err := m.healthRepo.Create(&check); err != nil {
		logger.Warn("Failed to record health check, continuing sweep", map[string]interface{}{
			"service": check.ServiceName,
			"error":   err.Error(),
		})
		return
	}
	if m.sink != nil {
		m.sink.BroadcastCheck(check)
	}
}
