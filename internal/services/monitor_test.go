package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartparking/backend/internal/apperr"
	"github.com/smartparking/backend/internal/hub"
	"github.com/smartparking/backend/internal/models"
	"github.com/smartparking/backend/internal/serial"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func TestGateEventCRUDBroadcastsOncePerWrite(t *testing.T) {
	f := newMonitorFixture(t)
	ctx := context.Background()

	ev, err := f.monitor.CreateGateEvent(ctx, GateEventInput{EventType: "CAR_IN", FreeSlots: intPtr(1), GateAngle: intPtr(90), State: strPtr("OPEN")})
	require.NoError(t, err)

	page, err := f.monitor.ListGateEvents(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "CAR_IN", page.Items[0].EventType)
	assert.Equal(t, 90, *page.Items[0].GateAngle)
	assert.Equal(t, "OPEN", *page.Items[0].State)

	updated, err := f.monitor.UpdateGateEvent(ctx, ev.ID, GateEventInput{EventType: "CAR_OUT", FreeSlots: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, "CAR_OUT", updated.EventType)
	assert.Nil(t, updated.State)

	require.NoError(t, f.monitor.DeleteGateEvent(ctx, ev.ID))
	page, err = f.monitor.ListGateEvents(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	assert.Equal(t, []string{hub.GateEventCreated, hub.GateEventUpdated, hub.GateEventDeleted}, f.bus.types())
	assert.Equal(t, hub.Deleted{ID: ev.ID}, f.bus.last().Payload)
}

func TestMissingRowsReturnNotFoundWithoutBroadcast(t *testing.T) {
	f := newMonitorFixture(t)
	ctx := context.Background()

	_, err := f.monitor.UpdateGateEvent(ctx, 404, GateEventInput{EventType: "X"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(f.monitor.DeleteGateEvent(ctx, 404)))
	_, err = f.monitor.UpdateAlert(ctx, 404, AlertInput{AlertType: "X"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = f.monitor.MarkHandled(ctx, 404)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = f.monitor.UpdateSnapshot(ctx, 404, SnapshotInput{})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(f.monitor.DeleteSnapshot(ctx, 404)))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(f.monitor.DeleteEmailLog(ctx, 404)))

	assert.Empty(t, f.bus.types())
}

func TestCreateGateEventRequiresType(t *testing.T) {
	f := newMonitorFixture(t)
	_, err := f.monitor.CreateGateEvent(context.Background(), GateEventInput{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "event_type is required", apperr.Message(err))
}

func TestRecordAlertWritesOneEmailLog(t *testing.T) {
	f := newMonitorFixture(t)
	ctx := context.Background()

	alert, err := f.monitor.RecordAlert(ctx, "TAILGATE", "car too close")
	require.NoError(t, err)
	assert.False(t, alert.IsHandled)
	f.monitor.Wait()

	assert.Equal(t, 1, f.notifier.calls)
	logs, err := f.monitor.ListEmailLogs(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, logs.Items, 1)
	view := logs.Items[0]
	assert.Equal(t, alert.ID, *view.AlertID)
	assert.True(t, view.Success)
	assert.Equal(t, models.EmailStatusSuccess, view.Status)
	assert.Equal(t, "<abc@example.com>", *view.MessageID)
	assert.Nil(t, view.Error)
}

func TestRecordAlertFailedEmailIsLogged(t *testing.T) {
	f := newMonitorFixture(t)
	f.notifier.fail = errors.New("smtp: 535 bad credentials")
	ctx := context.Background()

	_, err := f.monitor.RecordAlert(ctx, "FULL", "parking full")
	require.NoError(t, err, "notification failures never reach the caller")
	f.monitor.Wait()

	logs, err := f.monitor.ListEmailLogs(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, logs.Items, 1)
	assert.False(t, logs.Items[0].Success)
	assert.Equal(t, models.EmailStatusFailed, logs.Items[0].Status)
	require.NotNil(t, logs.Items[0].Error)
	assert.Contains(t, *logs.Items[0].Error, "535")
	assert.Nil(t, logs.Items[0].MessageID)
}

func TestRecordAlertTimedOutEmailIsStillLogged(t *testing.T) {
	f := newMonitorFixture(t)
	f.notifier.hang = true
	f.monitor = NewMonitorService(MonitorDeps{
		GateEvents:    f.repos.GateEvents,
		Alerts:        f.repos.Alerts,
		Snapshots:     f.repos.Snapshots,
		EmailLogs:     f.repos.EmailLogs,
		Bus:           f.bus,
		Notifier:      f.notifier,
		Link:          f.link,
		Clients:       hub.NewHub(),
		NotifyTimeout: 20 * time.Millisecond,
	})
	ctx := context.Background()

	alert, err := f.monitor.RecordAlert(ctx, "TAILGATE", "car too close")
	require.NoError(t, err)
	f.monitor.Wait()

	logs, err := f.monitor.ListEmailLogs(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, logs.Items, 1)
	assert.Equal(t, alert.ID, *logs.Items[0].AlertID)
	assert.Equal(t, models.EmailStatusFailed, logs.Items[0].Status)
	require.NotNil(t, logs.Items[0].Error)
	assert.Contains(t, *logs.Items[0].Error, context.DeadlineExceeded.Error())
}

func TestRecordAlertWithoutCredentialsWritesNoLog(t *testing.T) {
	f := newMonitorFixture(t)
	f.notifier.enabled = false
	ctx := context.Background()

	_, err := f.monitor.RecordAlert(ctx, "FULL", "parking full")
	require.NoError(t, err)
	f.monitor.Wait()

	assert.Zero(t, f.notifier.calls)
	logs, err := f.monitor.ListEmailLogs(ctx, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, logs.Total)
}

func TestManualAlertDoesNotNotify(t *testing.T) {
	f := newMonitorFixture(t)
	ctx := context.Background()

	alert, err := f.monitor.CreateAlert(ctx, AlertInput{AlertType: "TEST", Message: "manual", IsHandled: false})
	require.NoError(t, err)
	f.monitor.Wait()
	assert.False(t, alert.IsHandled)
	assert.Zero(t, f.notifier.calls)
	assert.Equal(t, []string{hub.AlertCreated}, f.bus.types())
}

func TestStaffResetClearsOpenAlerts(t *testing.T) {
	f := newMonitorFixture(t)
	ctx := context.Background()

	_, err := f.monitor.CreateAlert(ctx, AlertInput{AlertType: "TAILGATE", Message: "a"})
	require.NoError(t, err)
	_, err = f.monitor.CreateAlert(ctx, AlertInput{AlertType: "FULL", Message: "b"})
	require.NoError(t, err)

	reset, err := f.monitor.RecordAlert(ctx, models.AlertTypeStaffReset, "reset")
	require.NoError(t, err)
	f.monitor.Wait()
	assert.True(t, reset.IsHandled)
	assert.Equal(t, "reset", reset.Message)

	summary, err := f.monitor.Summary(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.UnhandledAlerts)
	assert.Equal(t, int64(3), summary.TotalAlerts)

	assert.Equal(t, []string{hub.AlertCreated, hub.AlertCreated, hub.AlertCreated, hub.AlertsReset}, f.bus.types())
	assert.Nil(t, f.bus.last().Payload)
	assert.Zero(t, f.notifier.calls)
}

func TestMarkHandledIsIdempotent(t *testing.T) {
	f := newMonitorFixture(t)
	ctx := context.Background()

	alert, err := f.monitor.CreateAlert(ctx, AlertInput{AlertType: "TAILGATE", Message: "a"})
	require.NoError(t, err)

	first, err := f.monitor.MarkHandled(ctx, alert.ID)
	require.NoError(t, err)
	second, err := f.monitor.MarkHandled(ctx, alert.ID)
	require.NoError(t, err)
	assert.True(t, first.IsHandled)
	assert.Equal(t, first.IsHandled, second.IsHandled)
	assert.Equal(t, first.Message, second.Message)
}

func TestResetFromUI(t *testing.T) {
	f := newMonitorFixture(t)
	ctx := context.Background()

	require.NoError(t, f.monitor.ResetFromUI(ctx))
	assert.Equal(t, []string{serial.CommandReset}, f.link.commands)

	total, err := f.repos.Alerts.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, total, "the alert row arrives later from the controller")

	f.link.open = false
	err = f.monitor.ResetFromUI(ctx)
	assert.Equal(t, apperr.KindUnavailable, apperr.KindOf(err))
	assert.Len(t, f.link.commands, 1)
}

func TestSnapshotManualDefaultsAndUpdate(t *testing.T) {
	f := newMonitorFixture(t)
	ctx := context.Background()

	snap, err := f.monitor.CreateSnapshot(ctx, SnapshotInput{Slot1Occupied: boolPtr(true), FreeSlots: intPtr(1)})
	require.NoError(t, err)
	require.NotNil(t, snap.Slot2Occupied)
	assert.False(t, *snap.Slot2Occupied)

	updated, err := f.monitor.UpdateSnapshot(ctx, snap.ID, SnapshotInput{Slot2Occupied: boolPtr(true), FreeSlots: intPtr(0)})
	require.NoError(t, err)
	assert.False(t, *updated.Slot1Occupied)
	assert.True(t, *updated.Slot2Occupied)

	require.NoError(t, f.monitor.DeleteSnapshot(ctx, snap.ID))
	assert.Equal(t, []string{hub.SnapshotCreated, hub.SnapshotUpdated, hub.SnapshotDeleted}, f.bus.types())
}

func TestSummary(t *testing.T) {
	f := newMonitorFixture(t)
	ctx := context.Background()

	empty, err := f.monitor.Summary(ctx)
	require.NoError(t, err)
	assert.Nil(t, empty.LatestSnapshot)
	assert.Nil(t, empty.FreeSlots)
	assert.True(t, empty.HardwareConnected)

	_, err = f.monitor.CreateGateEvent(ctx, GateEventInput{EventType: "CAR_IN", FreeSlots: intPtr(1)})
	require.NoError(t, err)
	_, err = f.monitor.RecordSnapshot(ctx, SnapshotInput{Slot1Occupied: boolPtr(true), Slot2Occupied: boolPtr(true), FreeSlots: intPtr(0)})
	require.NoError(t, err)
	_, err = f.monitor.CreateAlert(ctx, AlertInput{AlertType: "FULL", Message: "parking full"})
	require.NoError(t, err)

	summary, err := f.monitor.Summary(ctx)
	require.NoError(t, err)
	require.NotNil(t, summary.FreeSlots)
	assert.Equal(t, 0, *summary.FreeSlots)
	assert.Equal(t, int64(1), summary.UnhandledAlerts)
	assert.Equal(t, int64(1), summary.TotalGateEvents)
	assert.Equal(t, int64(1), summary.GateEventsToday)
	assert.Equal(t, int64(1), summary.TotalSnapshots)
	assert.Equal(t, "CAR_IN", summary.LatestGateEvent.EventType)
}
