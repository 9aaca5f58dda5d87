package ingest

import (
	"context"
	"errors"
	"strings"

	"github.com/smartparking/backend/internal/logging"
	"github.com/smartparking/backend/internal/metrics"
	"github.com/smartparking/backend/internal/models"
	"github.com/smartparking/backend/internal/services"
)

// Recorder is the subset of services.MonitorService the ingest path writes through.
type Recorder interface {
	CreateGateEvent(ctx context.Context, in services.GateEventInput) (*models.GateEvent, error)
	RecordAlert(ctx context.Context, alertType, message string) (*models.Alert, error)
	RecordSnapshot(ctx context.Context, in services.SnapshotInput) (*models.SlotSnapshot, error)
}

// LineSource produces controller lines until it fails or ctx ends.
type LineSource interface {
	ReadLines(ctx context.Context, handle func(line string)) error
}

type Processor struct {
	rec Recorder
}

func NewProcessor(rec Recorder) *Processor {
	return &Processor{rec: rec}
}

// Run feeds every line from src through Handle. It returns when src stops.
func (p *Processor) Run(ctx context.Context, src LineSource) error {
	err := src.ReadLines(ctx, func(line string) {
		_ = p.Handle(ctx, line)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("hardware link stopped")
		return err
	}
	logging.Info().Msg("ingest loop stopped")
	return nil
}

// Handle applies one line. Blank lines are ignored and unknown lines are dropped; a
// failing line is logged and reported, and never affects the next one.
func (p *Processor) Handle(ctx context.Context, line string) (err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	parsed, ok := Parse(line)
	if !ok {
		metrics.IngestLines.WithLabelValues(string(KindUnknown), "dropped").Inc()
		logging.Warn().Str("line", line).Msg("unrecognised hardware line dropped")
		return nil
	}
	logging.Debug().Str("line", line).Str("kind", string(parsed.Kind)).Msg("hardware line received")

	defer func() {
		if r := recover(); r != nil {
			err = errors.New("panic while handling line")
			logging.Error().Interface("panic", r).Str("line", line).Msg("hardware line handler panicked")
		}
		result := "ok"
		if err != nil {
			result = "error"
			logging.Error().Err(err).Str("line", line).Msg("failed to handle hardware line")
		}
		metrics.IngestLines.WithLabelValues(string(parsed.Kind), result).Inc()
	}()

	switch parsed.Kind {
	case KindGateEvent:
		ev := parsed.GateEvent
		_, err = p.rec.CreateGateEvent(ctx, services.GateEventInput{
			EventType: ev.EventType,
			FreeSlots: ev.FreeSlots,
			GateAngle: ev.GateAngle,
			State:     ev.State,
		})
	case KindAlert:
		_, err = p.rec.RecordAlert(ctx, parsed.Alert.AlertType, parsed.Alert.Message)
	case KindSnapshot:
		snap := parsed.Snapshot
		_, err = p.rec.RecordSnapshot(ctx, services.SnapshotInput{
			Slot1Occupied: snap.Slot1,
			Slot2Occupied: snap.Slot2,
			FreeSlots:     snap.FreeSlots,
		})
	}
	return err
}
