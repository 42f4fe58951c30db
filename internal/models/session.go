package models

import "time"

// Session is the stateful record of remaining credits tied to one redeemed
// access code. The unique index on AccessCodeID enforces at most one session
// per code; a concurrent second redemption hits the constraint instead of
// creating a duplicate.
//
// CredentialSecret is kept for audit/recovery only; credential verification
// goes through the signed JWT, never through this column.
type Session struct {
	ID               string    `gorm:"primaryKey;size:36"`
	AccessCodeID     string    `gorm:"size:36;uniqueIndex;not null"`
	CredentialSecret string    `gorm:"size:64;uniqueIndex"`
	CreditsRemaining int       `gorm:"not null"` // never exceeds the code's grant, never negative
	CreatedAt        time.Time

	AccessCode AccessCode `gorm:"constraint:OnDelete:CASCADE"`
}
