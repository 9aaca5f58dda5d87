package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/smartparking/backend/internal/apperr"
	"github.com/smartparking/backend/internal/hub"
	"github.com/smartparking/backend/internal/logging"
	"github.com/smartparking/backend/internal/models"
	"github.com/smartparking/backend/internal/notify"
	"github.com/smartparking/backend/internal/repository"
	"github.com/smartparking/backend/internal/serial"
)

const (
	defaultNotifyTimeout = 30 * time.Second
	emailLogWriteTimeout = 5 * time.Second
)

// HardwareLink is the part of the serial link the monitor needs.
type HardwareLink interface {
	IsOpen() bool
	WriteCommand(cmd string) error
}

// ClientCounter reports connected realtime clients.
type ClientCounter interface {
	Count() int
}

type GateEventInput struct {
	EventType string  `json:"event_type" validate:"required" example:"CAR_IN"`
	FreeSlots *int    `json:"free_slots" example:"1"`
	GateAngle *int    `json:"gate_angle" example:"90"`
	State     *string `json:"state" example:"OPEN"`
}

type AlertInput struct {
	AlertType string `json:"alert_type" validate:"required" example:"TAILGATE"`
	Message   string `json:"message" example:"car too close"`
	IsHandled bool   `json:"is_handled" example:"false"`
}

type SnapshotInput struct {
	Slot1Occupied *bool `json:"slot1_occupied" example:"true"`
	Slot2Occupied *bool `json:"slot2_occupied" example:"false"`
	FreeSlots     *int  `json:"free_slots" example:"1"`
}

type MonitorDeps struct {
	GateEvents repository.GateEventRepository
	Alerts     repository.AlertRepository
	Snapshots  repository.SnapshotRepository
	EmailLogs  repository.EmailLogRepository
	Bus        hub.Broadcaster
	Notifier   notify.Notifier
	Link       HardwareLink
	Clients    ClientCounter
	// NotifyTimeout bounds one alert email send. Default: 30s
	NotifyTimeout time.Duration
}

// MonitorService applies every parking write, whether it comes from the hardware or the
// API, and broadcasts exactly one realtime message per row written.
type MonitorService struct {
	deps     MonitorDeps
	validate *validator.Validate
	pending  sync.WaitGroup
}

func NewMonitorService(deps MonitorDeps) *MonitorService {
	if deps.NotifyTimeout <= 0 {
		deps.NotifyTimeout = defaultNotifyTimeout
	}
	return &MonitorService{deps: deps, validate: NewValidator()}
}

// Wait blocks until all in-flight alert notifications have finished.
func (s *MonitorService) Wait() {
	s.pending.Wait()
}

func (s *MonitorService) broadcast(msgType string, payload any) {
	s.deps.Bus.Broadcast(hub.Message{Type: msgType, Payload: payload})
}

// Gate events

func (s *MonitorService) ListGateEvents(ctx context.Context, page, limit int) (*repository.Page[models.GateEvent], error) {
	p, err := s.deps.GateEvents.List(ctx, page, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return p, nil
}

func (s *MonitorService) CreateGateEvent(ctx context.Context, in GateEventInput) (*models.GateEvent, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, ValidationError(err)
	}
	event := gateEventFromInput(in)
	if err := s.deps.GateEvents.Create(ctx, event); err != nil {
		return nil, apperr.Internal(err)
	}
	s.broadcast(hub.GateEventCreated, event)
	return event, nil
}

func (s *MonitorService) UpdateGateEvent(ctx context.Context, id uint, in GateEventInput) (*models.GateEvent, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, ValidationError(err)
	}
	event, err := s.deps.GateEvents.Update(ctx, id, gateEventFromInput(in))
	if err != nil {
		return nil, notFoundOrInternal(err, "gate event not found")
	}
	s.broadcast(hub.GateEventUpdated, event)
	return event, nil
}

func (s *MonitorService) DeleteGateEvent(ctx context.Context, id uint) error {
	if err := s.deps.GateEvents.Delete(ctx, id); err != nil {
		return notFoundOrInternal(err, "gate event not found")
	}
	s.broadcast(hub.GateEventDeleted, hub.Deleted{ID: id})
	return nil
}

func gateEventFromInput(in GateEventInput) *models.GateEvent {
	return &models.GateEvent{
		EventType: in.EventType,
		FreeSlots: in.FreeSlots,
		GateAngle: in.GateAngle,
		State:     in.State,
	}
}

// Alerts

func (s *MonitorService) ListAlerts(ctx context.Context, page, limit int) (*repository.Page[models.Alert], error) {
	p, err := s.deps.Alerts.List(ctx, page, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return p, nil
}

// RecordAlert stores an alert reported by the hardware. STAFF_RESET clears every open
// alert; anything else is stored unhandled and an email notification is attempted.
func (s *MonitorService) RecordAlert(ctx context.Context, alertType, message string) (*models.Alert, error) {
	if alertType == models.AlertTypeStaffReset {
		return s.StaffReset(ctx, message)
	}
	if err := s.validate.Var(alertType, "required"); err != nil {
		return nil, apperr.Validation("alert_type is required")
	}
	alert := &models.Alert{AlertType: alertType, Message: message}
	if err := s.deps.Alerts.Create(ctx, alert); err != nil {
		return nil, apperr.Internal(err)
	}
	s.broadcast(hub.AlertCreated, alert)
	s.notifyAlert(*alert)
	return alert, nil
}

// CreateAlert stores a manually entered alert with the caller's handled flag. Manual
// alerts never send email.
func (s *MonitorService) CreateAlert(ctx context.Context, in AlertInput) (*models.Alert, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, ValidationError(err)
	}
	if in.AlertType == models.AlertTypeStaffReset {
		return s.StaffReset(ctx, in.Message)
	}
	alert := &models.Alert{AlertType: in.AlertType, Message: in.Message, IsHandled: in.IsHandled}
	if err := s.deps.Alerts.Create(ctx, alert); err != nil {
		return nil, apperr.Internal(err)
	}
	s.broadcast(hub.AlertCreated, alert)
	return alert, nil
}

// StaffReset inserts a handled STAFF_RESET alert and marks every other open alert handled,
// then broadcasts ALERT_CREATED followed by ALERTS_RESET.
func (s *MonitorService) StaffReset(ctx context.Context, message string) (*models.Alert, error) {
	if message == "" {
		message = "Alert: " + models.AlertTypeStaffReset
	}
	alert := &models.Alert{Message: message}
	flipped, err := s.deps.Alerts.CreateStaffReset(ctx, alert)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	logging.Info().Uint("alert_id", alert.ID).Int64("cleared", flipped).Msg("staff reset recorded")
	s.broadcast(hub.AlertCreated, alert)
	s.broadcast(hub.AlertsReset, nil)
	return alert, nil
}

func (s *MonitorService) UpdateAlert(ctx context.Context, id uint, in AlertInput) (*models.Alert, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, ValidationError(err)
	}
	alert, err := s.deps.Alerts.Update(ctx, id, &models.Alert{
		AlertType: in.AlertType,
		Message:   in.Message,
		IsHandled: in.IsHandled,
	})
	if err != nil {
		return nil, notFoundOrInternal(err, "alert not found")
	}
	s.broadcast(hub.AlertUpdated, alert)
	return alert, nil
}

// MarkHandled sets handled=true; repeating it is harmless.
func (s *MonitorService) MarkHandled(ctx context.Context, id uint) (*models.Alert, error) {
	alert, err := s.deps.Alerts.MarkHandled(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "alert not found")
	}
	s.broadcast(hub.AlertUpdated, alert)
	return alert, nil
}

func (s *MonitorService) DeleteAlert(ctx context.Context, id uint) error {
	if err := s.deps.Alerts.Delete(ctx, id); err != nil {
		return notFoundOrInternal(err, "alert not found")
	}
	s.broadcast(hub.AlertDeleted, hub.Deleted{ID: id})
	return nil
}

// ResetFromUI asks the controller to clear its alarm. No alert row is written here; the
// controller answers with ALERT:STAFF_RESET which goes through RecordAlert.
func (s *MonitorService) ResetFromUI(ctx context.Context) error {
	if s.deps.Link == nil || !s.deps.Link.IsOpen() {
		return apperr.New(apperr.KindUnavailable, "hardware link is not connected")
	}
	if err := s.deps.Link.WriteCommand(serial.CommandReset); err != nil {
		if errors.Is(err, serial.ErrClosed) {
			return apperr.New(apperr.KindUnavailable, "hardware link is not connected")
		}
		logging.Error().Err(err).Msg("failed to write reset command")
		return apperr.Wrap(apperr.KindInternal, "failed to send reset command", err)
	}
	logging.Info().Msg("reset command sent to controller")
	return nil
}

func (s *MonitorService) notifyAlert(alert models.Alert) {
	if s.deps.Notifier == nil || !s.deps.Notifier.Enabled() {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		sendCtx, cancelSend := context.WithTimeout(context.Background(), s.deps.NotifyTimeout)
		res := s.deps.Notifier.SendAlert(sendCtx, alert.AlertType, alert.Message)
		cancelSend()
		entry := &models.EmailLog{
			AlertID:   &alert.ID,
			MessageID: optional(res.MessageID),
			ToEmail:   optional(res.To),
			Subject:   optional(res.Subject),
			Body:      optional(res.Body),
			Status:    models.EmailStatusFailed,
		}
		if res.Success {
			entry.Status = models.EmailStatusSuccess
		}
		if res.Err != nil {
			entry.ErrorMessage = optional(res.Err.Error())
		}
		// the send may have used up its deadline; the log row still has to be written
		ctx, cancel := context.WithTimeout(context.Background(), emailLogWriteTimeout)
		defer cancel()
		if err := s.deps.EmailLogs.Create(ctx, entry); err != nil {
			logging.Error().Err(err).Uint("alert_id", alert.ID).Msg("failed to write email log")
		}
	}()
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// Slot snapshots

func (s *MonitorService) ListSnapshots(ctx context.Context, page, limit int) (*repository.Page[models.SlotSnapshot], error) {
	p, err := s.deps.Snapshots.List(ctx, page, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return p, nil
}

// RecordSnapshot stores a snapshot as reported by the hardware; missing fields stay null.
func (s *MonitorService) RecordSnapshot(ctx context.Context, in SnapshotInput) (*models.SlotSnapshot, error) {
	snap := &models.SlotSnapshot{
		Slot1Occupied: in.Slot1Occupied,
		Slot2Occupied: in.Slot2Occupied,
		FreeSlots:     in.FreeSlots,
	}
	if err := s.deps.Snapshots.Create(ctx, snap); err != nil {
		return nil, apperr.Internal(err)
	}
	s.broadcast(hub.SnapshotCreated, snap)
	return snap, nil
}

// CreateSnapshot stores a manually entered snapshot. Omitted occupancy flags mean free.
func (s *MonitorService) CreateSnapshot(ctx context.Context, in SnapshotInput) (*models.SlotSnapshot, error) {
	return s.RecordSnapshot(ctx, normalizeSnapshot(in))
}

func (s *MonitorService) UpdateSnapshot(ctx context.Context, id uint, in SnapshotInput) (*models.SlotSnapshot, error) {
	in = normalizeSnapshot(in)
	snap, err := s.deps.Snapshots.Update(ctx, id, &models.SlotSnapshot{
		Slot1Occupied: in.Slot1Occupied,
		Slot2Occupied: in.Slot2Occupied,
		FreeSlots:     in.FreeSlots,
	})
	if err != nil {
		return nil, notFoundOrInternal(err, "snapshot not found")
	}
	s.broadcast(hub.SnapshotUpdated, snap)
	return snap, nil
}

func (s *MonitorService) DeleteSnapshot(ctx context.Context, id uint) error {
	if err := s.deps.Snapshots.Delete(ctx, id); err != nil {
		return notFoundOrInternal(err, "snapshot not found")
	}
	s.broadcast(hub.SnapshotDeleted, hub.Deleted{ID: id})
	return nil
}

func normalizeSnapshot(in SnapshotInput) SnapshotInput {
	no := false
	if in.Slot1Occupied == nil {
		in.Slot1Occupied = &no
	}
	if in.Slot2Occupied == nil {
		in.Slot2Occupied = &no
	}
	return in
}

// Email logs

func (s *MonitorService) ListEmailLogs(ctx context.Context, page, limit int) (*repository.Page[models.EmailLogView], error) {
	p, err := s.deps.EmailLogs.List(ctx, page, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	items := make([]models.EmailLogView, 0, len(p.Items))
	for i := range p.Items {
		items = append(items, p.Items[i].View())
	}
	return &repository.Page[models.EmailLogView]{Items: items, Total: p.Total, Page: p.Page, Limit: p.Limit}, nil
}

func (s *MonitorService) DeleteEmailLog(ctx context.Context, id uint) error {
	if err := s.deps.EmailLogs.Delete(ctx, id); err != nil {
		return notFoundOrInternal(err, "email log not found")
	}
	return nil
}

// Summary collects the dashboard overview.
func (s *MonitorService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	out := &models.DashboardSummary{}

	snap, err := s.deps.Snapshots.Latest(ctx)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal(err)
	}
	out.LatestSnapshot = snap

	event, err := s.deps.GateEvents.Latest(ctx)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal(err)
	}
	out.LatestGateEvent = event

	switch {
	case snap != nil && snap.FreeSlots != nil:
		out.FreeSlots = snap.FreeSlots
	case event != nil:
		out.FreeSlots = event.FreeSlots
	}

	counts := []struct {
		dst *int64
		fn  func(context.Context) (int64, error)
	}{
		{&out.UnhandledAlerts, s.deps.Alerts.CountUnhandled},
		{&out.TotalAlerts, s.deps.Alerts.Count},
		{&out.TotalGateEvents, s.deps.GateEvents.Count},
		{&out.TotalSnapshots, s.deps.Snapshots.Count},
	}
	for _, c := range counts {
		n, err := c.fn(ctx)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		*c.dst = n
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if out.GateEventsToday, err = s.deps.GateEvents.CountSince(ctx, startOfDay); err != nil {
		return nil, apperr.Internal(err)
	}

	out.HardwareConnected = s.deps.Link != nil && s.deps.Link.IsOpen()
	if s.deps.Clients != nil {
		out.RealtimeClients = s.deps.Clients.Count()
	}
	return out, nil
}
