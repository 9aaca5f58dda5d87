package models

import (
	"time"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"

	EmailStatusSuccess = "SUCCESS"
	EmailStatusFailed  = "FAILED"

	// AlertTypeStaffReset is reported by the controller after staff cleared the alarm on site.
	AlertTypeStaffReset = "STAFF_RESET"
)

type Account struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"not null;default:'USER'" json:"role"` // USER, ADMIN
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// PublicAccount is the part of an Account that is safe to hand to clients.
type PublicAccount struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *Account) Public() PublicAccount {
	return PublicAccount{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Role:      a.Role,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
	}
}

type GateEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventType string    `gorm:"not null;index" json:"event_type"`
	FreeSlots *int      `json:"free_slots"`
	GateAngle *int      `json:"gate_angle"`
	State     *string   `json:"state"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

type Alert struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AlertType string    `gorm:"not null;index" json:"alert_type"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsHandled bool      `gorm:"not null;default:false;index" json:"is_handled"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

type SlotSnapshot struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Slot1Occupied *bool     `gorm:"column:slot1_occupied" json:"slot1_occupied"`
	Slot2Occupied *bool     `gorm:"column:slot2_occupied" json:"slot2_occupied"`
	FreeSlots     *int      `json:"free_slots"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

type EmailLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AlertID      *uint     `gorm:"index" json:"alert_id"`
	MessageID    *string   `json:"message_id"`
	ToEmail      *string   `json:"to_email"`
	Subject      *string   `json:"subject"`
	Body         *string   `gorm:"type:text" json:"body"`
	SentAt       time.Time `gorm:"autoCreateTime;index" json:"sent_at"`
	Status       string    `gorm:"not null" json:"status"` // SUCCESS, FAILED
	ErrorMessage *string   `gorm:"type:text" json:"error_message"`
}

// EmailLogView is the listing projection the dashboard has always consumed.
type EmailLogView struct {
	ID        uint      `json:"id"`
	AlertID   *uint     `json:"alert_id"`
	MessageID *string   `json:"message_id"`
	ToEmail   *string   `json:"to_email"`
	Subject   *string   `json:"subject"`
	Body      *string   `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"`
	Success   bool      `json:"success"`
	Error     *string   `json:"error"`
}

func (l *EmailLog) View() EmailLogView {
	return EmailLogView{
		ID:        l.ID,
		AlertID:   l.AlertID,
		MessageID: l.MessageID,
		ToEmail:   l.ToEmail,
		Subject:   l.Subject,
		Body:      l.Body,
		CreatedAt: l.SentAt,
		Status:    l.Status,
		Success:   l.Status == EmailStatusSuccess,
		Error:     l.ErrorMessage,
	}
}

// DashboardSummary backs the overview page.
type DashboardSummary struct {
	LatestSnapshot    *SlotSnapshot `json:"latest_snapshot"`
	LatestGateEvent   *GateEvent    `json:"latest_gate_event"`
	FreeSlots         *int          `json:"free_slots"`
	UnhandledAlerts   int64         `json:"unhandled_alerts"`
	TotalAlerts       int64         `json:"total_alerts"`
	TotalGateEvents   int64         `json:"total_gate_events"`
	TotalSnapshots    int64         `json:"total_snapshots"`
	GateEventsToday   int64         `json:"gate_events_today"`
	HardwareConnected bool          `json:"hardware_connected"`
	RealtimeClients   int           `json:"realtime_clients"`
}
