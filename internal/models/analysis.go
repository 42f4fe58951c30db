package models

import "time"

// Analysis is one scored CV belonging to a session. Rows are immutable once
// written; FullData holds the raw JSON snapshot of the ranking entry so the
// history listing survives prompt/schema changes.
type Analysis struct {
	ID            string    `gorm:"primaryKey;size:36"`
	SessionID     string    `gorm:"size:36;index;not null"`
	CandidateName string    `gorm:"size:128"`
	Email         string    `gorm:"size:128"`
	Phone         string    `gorm:"size:64"`
	OverallScore  float64
	FullData      string    `gorm:"type:text"`
	CreatedAt     time.Time

	Session Session `gorm:"constraint:OnDelete:CASCADE"`
}
