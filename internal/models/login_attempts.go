package models

import (
	"time"
)

// LoginAttempt is appended for every login, successful or not. AccountID is nil when the
// username did not match any account.
type LoginAttempt struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AccountID *uint     `gorm:"index" json:"account_id"`
	Username  string    `gorm:"not null;index" json:"attempted_username"`
	LoginTime time.Time `gorm:"autoCreateTime;index" json:"login_time"`
	IPAddress string    `gorm:"not null" json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Success   bool      `gorm:"not null" json:"success"`
}

// LoginAttemptWithAccount is the admin listing row, joined with the owning account.
type LoginAttemptWithAccount struct {
	LoginAttempt
	AccountUsername *string `json:"username"`
	AccountEmail    *string `json:"email"`
}
