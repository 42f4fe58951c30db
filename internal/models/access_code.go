package models

import "time"

// AccessCode is a redeemable code granting a fixed credit allotment.
// Codes are stored upper-case and matched case-insensitively at the API
// boundary. A code flips from unused to used exactly once, at the first
// successful redemption, and is never deleted in normal operation.
type AccessCode struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Code      string    `gorm:"size:32;uniqueIndex;not null"`
	Credits   int       `gorm:"not null;default:5"`
	Used      bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}
