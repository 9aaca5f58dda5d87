package hub

// Realtime message types, one per (entity, operation).
const (
	GateEventCreated    = "GATE_EVENT_CREATED"
	GateEventUpdated    = "GATE_EVENT_UPDATED"
	GateEventDeleted    = "GATE_EVENT_DELETED"
	AlertCreated        = "ALERT_CREATED"
	AlertUpdated        = "ALERT_UPDATED"
	AlertDeleted        = "ALERT_DELETED"
	AlertsReset         = "ALERTS_RESET"
	SnapshotCreated     = "SNAPSHOT_CREATED"
	SnapshotUpdated     = "SNAPSHOT_UPDATED"
	SnapshotDeleted     = "SNAPSHOT_DELETED"
	LoginHistoryCreated = "LOGIN_HISTORY_CREATED"
	LoginHistoryDeleted = "LOGIN_HISTORY_DELETED"
)

// Message is what every connected dashboard receives.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Deleted is the payload of *_DELETED messages.
type Deleted struct {
	ID uint `json:"id"`
}

// Broadcaster is implemented by Hub; services depend on this instead of the hub itself.
type Broadcaster interface {
	Broadcast(msg Message)
}
