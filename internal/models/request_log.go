package models

import "time"

// RequestLog records authenticated API requests for auditing.
type RequestLog struct {
	ID        uint      `gorm:"primaryKey"`
	SessionID string    `gorm:"size:36;index"`
	Method    string    `gorm:"size:16"`
	Path      string    `gorm:"size:255"`
	Status    int
	IP        string    `gorm:"size:64"`
	UserAgent string    `gorm:"size:255"`
	CreatedAt time.Time
}
