// Package scanner periodically recomputes maintenance alerts and fleet stats,
// publishes them, and pushes notifications for newly critical checks.
package scanner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"pilot-logbook-backend/config"
	"pilot-logbook-backend/internal/maintenance"
	"pilot-logbook-backend/internal/metrics"
	"pilot-logbook-backend/internal/notification"
	"pilot-logbook-backend/internal/store"
)

// Snapshotter provides a consistent read of the fleet.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*store.Snapshot, error)
}

// Dispatcher queues a push notification for an alert.
type Dispatcher interface {
	Dispatch(ctx context.Context, alert maintenance.Alert) error
}

// Broadcaster publishes a report to live clients.
type Broadcaster interface {
	Broadcast(v any)
}

// Service runs the alert scan loop. Urgency is recomputed on every scan and
// never persisted; only the set of critical record ids is kept in memory.
type Service struct {
	store       Snapshotter
	interval    time.Duration
	loc         *time.Location
	now         func() time.Time
	enabled     bool
	workerPool  *notification.WorkerPool
	dispatcher  Dispatcher
	broadcaster Broadcaster
	metrics     *metrics.Metrics

	mu       sync.Mutex
	critical map[string]bool
	primed   bool
}

// NewService creates the scanner. Push notifications are only sent when VAPID
// keys are configured. broadcaster and m may be nil.
func NewService(cfg *config.Config, s store.Store, broadcaster Broadcaster, m *metrics.Metrics) *Service {
	svc := &Service{
		store:       s,
		interval:    cfg.Alerts.Interval,
		loc:         cfg.Alerts.Location,
		now:         time.Now,
		enabled:     cfg.Alerts.Enabled,
		broadcaster: broadcaster,
		metrics:     m,
		critical:    make(map[string]bool),
	}

	if cfg.PushEnabled() {
		webpushOptions := webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		svc.workerPool = notification.NewWorkerPool(cfg.WorkerPool.Size, s, &webpushOptions, m)
		svc.dispatcher = svc.workerPool
	} else {
		slog.Info("push notifications disabled: VAPID keys not configured")
	}
	return svc
}

// Run starts the scan loop and blocks until ctx is done.
func (s *Service) Run(ctx context.Context) {
	if !s.enabled {
		slog.Info("alert scanner is disabled, not starting")
		return
	}
	slog.Info("starting alert scanner", "interval", s.interval)

	if s.workerPool != nil {
		s.workerPool.Start(ctx)
	}

	s.ScanOnce(ctx)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("alert scanner shutting down")
			return
		case <-timer.C:
			s.ScanOnce(ctx)
			timer.Reset(s.interval)
		}
	}
}

// Report computes the current alert report without side effects.
func (s *Service) Report(ctx context.Context) (maintenance.Report, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return maintenance.Report{}, err
	}
	return maintenance.BuildReport(snap.Aircraft, snap.MaintenanceRecords, s.now(), s.loc), nil
}

// ScanOnce runs a single scan: it refreshes the gauges, broadcasts the report
// and dispatches notifications for records that became critical since the
// previous scan. The first scan only records the critical set.
func (s *Service) ScanOnce(ctx context.Context) {
	report, err := s.Report(ctx)
	s.metrics.ScanCompleted(err)
	if err != nil {
		slog.Error("alert scan failed", "error", err)
		return
	}

	s.metrics.ObserveAlerts(report.Alerts)
	s.metrics.ObserveFleet(report.FleetStats)
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(report)
	}

	fresh := s.newlyCritical(report.Critical())
	slog.Debug("alert scan finished", "alerts", len(report.Alerts), "newly_critical", len(fresh))

	if s.dispatcher == nil || len(fresh) == 0 {
		return
	}
	slog.Info("dispatching notifications", "alerts", len(fresh))
	for _, a := range fresh {
		if err := s.dispatcher.Dispatch(ctx, a); err != nil {
			slog.Warn("notification dispatch aborted", "record", a.RecordID, "error", err)
			return
		}
	}
}

// newlyCritical replaces the remembered critical set with the ids in
// critical and returns the alerts that were not in the previous set.
func (s *Service) newlyCritical(critical []maintenance.Alert) []maintenance.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]bool, len(critical))
	var fresh []maintenance.Alert
	for _, a := range critical {
		next[a.RecordID] = true
		if s.primed && !s.critical[a.RecordID] {
			fresh = append(fresh, a)
		}
	}
	s.critical = next
	s.primed = true
	return fresh
}
