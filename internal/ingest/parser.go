// Package ingest decodes controller lines and applies them to the monitor.
package ingest

import (
	"strconv"
	"strings"
)

// Kind labels a decoded line. It doubles as the metrics label.
type Kind string

const (
	KindGateEvent Kind = "EV"
	KindAlert     Kind = "ALERT"
	KindSnapshot  Kind = "SNAP"
	KindUnknown   Kind = "unknown"
)

// Line is one decoded controller message. Exactly one of GateEvent, Alert and Snapshot is
// set, matching Kind.
type Line struct {
	Kind      Kind
	GateEvent *GateEventLine
	Alert     *AlertLine
	Snapshot  *SnapshotLine
}

// GateEventLine is EV:<type>|freeSlots=<int>|gate=<int>|state=<str>.
type GateEventLine struct {
	EventType string
	FreeSlots *int
	GateAngle *int
	State     *string
}

// AlertLine is ALERT:<type>|msg=<text>.
type AlertLine struct {
	AlertType string
	Message   string
}

// SnapshotLine is SNAP:slot1=0|1|slot2=0|1|freeSlots=<int>.
type SnapshotLine struct {
	Slot1     *bool
	Slot2     *bool
	FreeSlots *int
}

// Parse decodes a trimmed line. ok is false for blank lines and unrecognised prefixes.
func Parse(line string) (Line, bool) {
	switch {
	case strings.HasPrefix(line, "EV:"):
		head, fields := split(strings.TrimPrefix(line, "EV:"))
		ev := &GateEventLine{EventType: head}
		for _, f := range fields {
			switch f.key {
			case "freeSlots":
				ev.FreeSlots = atoi(f.value)
			case "gate":
				ev.GateAngle = atoi(f.value)
			case "state":
				v := f.value
				ev.State = &v
			}
		}
		return Line{Kind: KindGateEvent, GateEvent: ev}, true

	case strings.HasPrefix(line, "ALERT:"):
		head, fields := split(strings.TrimPrefix(line, "ALERT:"))
		alert := &AlertLine{AlertType: head}
		for _, f := range fields {
			if f.key == "msg" {
				alert.Message = f.value
			}
		}
		if alert.Message == "" {
			alert.Message = "Alert: " + head
		}
		return Line{Kind: KindAlert, Alert: alert}, true

	case strings.HasPrefix(line, "SNAP:"):
		// SNAP has no type segment; every segment is a field
		_, fields := split("|" + strings.TrimPrefix(line, "SNAP:"))
		snap := &SnapshotLine{}
		for _, f := range fields {
			switch f.key {
			case "slot1":
				snap.Slot1 = occupied(f.value)
			case "slot2":
				snap.Slot2 = occupied(f.value)
			case "freeSlots":
				snap.FreeSlots = atoi(f.value)
			}
		}
		return Line{Kind: KindSnapshot, Snapshot: snap}, true
	}
	return Line{Kind: KindUnknown}, false
}

type field struct {
	key, value string
}

// split breaks "head|k=v|k=v" apart. The value keeps everything after the first '=',
// so messages may contain '='.
func split(s string) (string, []field) {
	segs := strings.Split(s, "|")
	fields := make([]field, 0, len(segs)-1)
	for _, seg := range segs[1:] {
		key, value, _ := strings.Cut(seg, "=")
		fields = append(fields, field{key: key, value: value})
	}
	return segs[0], fields
}

func atoi(v string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return nil
	}
	return &n
}

func occupied(v string) *bool {
	b := v == "1"
	return &b
}
