package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"pilot-logbook-backend/internal/maintenance"
	"pilot-logbook-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// SubscriptionStore is the part of the record store the workers need.
type SubscriptionStore interface {
	SubscriptionsForAircraft(ctx context.Context, aircraftID string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// Recorder counts delivery outcomes.
type Recorder interface {
	NotificationSent(result string)
}

// Payload is the JSON body delivered to the browser's service worker.
type Payload struct {
	Title      string              `json:"title"`
	Body       string              `json:"body"`
	RecordID   string              `json:"recordId"`
	AircraftID string              `json:"aircraftId"`
	Urgency    maintenance.Urgency `json:"urgency"`
}

// WorkerPool manages a pool of workers for sending alert notifications.
type WorkerPool struct {
	size     int
	jobs     chan maintenance.Alert
	store    SubscriptionStore
	webpush  *webpush.Options
	sender   NotificationSender
	recorder Recorder
}

// NewWorkerPool creates a new worker pool. recorder may be nil.
func NewWorkerPool(size int, s SubscriptionStore, webpushOptions *webpush.Options, recorder Recorder) *WorkerPool {
	return &WorkerPool{
		size:     size,
		jobs:     make(chan maintenance.Alert, size),
		store:    s,
		webpush:  webpushOptions,
		sender:   &WebPushSender{},
		recorder: recorder,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	slog.Debug("notification worker started", "worker", id)
	for {
		select {
		case alert := <-wp.jobs:
			slog.Debug("processing alert", "worker", id, "record", alert.RecordID, "tail", alert.TailNumber)
			wp.notifyAircraftSubscribers(ctx, alert)
		case <-ctx.Done():
			slog.Debug("notification worker shutting down", "worker", id)
			return
		}
	}
}

// Dispatch queues an alert. It blocks while the queue is full unless ctx ends first.
func (wp *WorkerPool) Dispatch(ctx context.Context, alert maintenance.Alert) error {
	select {
	case wp.jobs <- alert:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan maintenance.Alert {
	return wp.jobs
}

func (wp *WorkerPool) notifyAircraftSubscribers(ctx context.Context, alert maintenance.Alert) {
	subscriptions, err := wp.store.SubscriptionsForAircraft(ctx, alert.AircraftID)
	if err != nil {
		slog.Error("failed to fetch subscriptions", "aircraft", alert.AircraftID, "error", err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(BuildPayload(alert))
	if err != nil {
		slog.Error("failed to encode notification", "record", alert.RecordID, "error", err)
		return
	}

	slog.Info("sending alert notifications", "tail", alert.TailNumber, "record", alert.RecordID, "subscriptions", len(subscriptions))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload, alert.Urgency)
	}
}

// BuildPayload renders an alert as a human-readable notification.
func BuildPayload(alert maintenance.Alert) Payload {
	return Payload{
		Title:      fmt.Sprintf("%s: %s %s", alert.TailNumber, alert.CheckType.Label(), alert.Urgency),
		Body:       describeDue(alert),
		RecordID:   alert.RecordID,
		AircraftID: alert.AircraftID,
		Urgency:    alert.Urgency,
	}
}

func describeDue(a maintenance.Alert) string {
	if a.Status == model.MaintenanceOverdue {
		return "Check is overdue."
	}
	var parts []string
	switch {
	case a.DaysUntilDue == maintenance.NoDueDate:
	case a.DaysUntilDue < 0:
		parts = append(parts, fmt.Sprintf("overdue by %d days", -a.DaysUntilDue))
	case a.DaysUntilDue == 0:
		parts = append(parts, "due today")
	default:
		parts = append(parts, fmt.Sprintf("due in %d days", a.DaysUntilDue))
	}
	if a.HoursUntilDue != maintenance.NoDueHours {
		parts = append(parts, fmt.Sprintf("%.1f hours remaining", a.HoursUntilDue))
	}
	if len(parts) == 0 {
		return "Check is pending."
	}
	msg := parts[0]
	if len(parts) == 2 {
		msg += ", " + parts[1]
	}
	return msg + "."
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte, urgency maintenance.Urgency) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	var opts webpush.Options
	if wp.webpush != nil {
		opts = *wp.webpush
	}
	if urgency == maintenance.UrgencyCritical {
		opts.Urgency = webpush.UrgencyHigh
	}

	resp, err := wp.sender.Send(payload, wpSub, &opts)
	if err != nil {
		slog.Error("failed to send notification", "endpoint", sub.Endpoint, "error", err)
		wp.record("failed")
		return
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		slog.Info("subscription expired, deleting", "endpoint", sub.Endpoint)
		wp.record("expired")
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			slog.Error("failed to delete expired subscription", "endpoint", sub.Endpoint, "error", err)
		}
	case resp.StatusCode >= 400:
		slog.Warn("push service rejected notification", "endpoint", sub.Endpoint, "status", resp.StatusCode)
		wp.record("failed")
	default:
		wp.record("sent")
	}
}

func (wp *WorkerPool) record(result string) {
	if wp.recorder != nil {
		wp.recorder.NotificationSent(result)
	}
}
