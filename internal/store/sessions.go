package store

import (
	"errors"
	"strings"
	"time"

	"github.com/diego12655/cv-analyzer-pro/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInsufficientCredits is returned by Debit when the session balance is
// lower than the requested amount.
var ErrInsufficientCredits = errors.New("insufficient credits")

// SessionStore persists sessions and their credit balances.
type SessionStore struct {
	DB *gorm.DB
}

func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{DB: db}
}

func (s *SessionStore) FindByID(id string) (*models.Session, error) {
	var sess models.Session
	if err := s.DB.Where("id = ?", id).First(&sess).Error; err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *SessionStore) FindByCodeID(accessCodeID string) (*models.Session, error) {
	var sess models.Session
	if err := s.DB.Where("access_code_id = ?", accessCodeID).First(&sess).Error; err != nil {
		return nil, err
	}
	return &sess, nil
}

// CreateForCode inserts the session for a code. The unique index on
// access_code_id is the real guard against two concurrent redemptions;
// on a constraint violation the caller re-fetches the winner's row.
func (s *SessionStore) CreateForCode(tx *gorm.DB, accessCodeID, secret string, credits int) (*models.Session, error) {
	if tx == nil {
		tx = s.DB
	}
	sess := models.Session{
		ID:               uuid.NewString(),
		AccessCodeID:     accessCodeID,
		CredentialSecret: secret,
		CreditsRemaining: credits,
		CreatedAt:        time.Now(),
	}
	if err := tx.Create(&sess).Error; err != nil {
		return nil, err
	}
	return &sess, nil
}

// IsDuplicateKey reports whether err is a unique-constraint violation.
// gorm translates these for sqlite; the string check covers older driver
// versions that return the raw sqlite error.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Debit subtracts amount from the session balance as a single guarded
// UPDATE. The WHERE clause re-checks the balance so two concurrent debits
// can never both pass a stale read; the loser sees zero rows affected and
// gets ErrInsufficientCredits.
func (s *SessionStore) Debit(tx *gorm.DB, sessionID string, amount int) (*models.Session, error) {
	if tx == nil {
		tx = s.DB
	}
	res := tx.Model(&models.Session{}).
		Where("id = ? AND credits_remaining >= ?", sessionID, amount).
		Update("credits_remaining", gorm.Expr("credits_remaining - ?", amount))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInsufficientCredits
	}

	var sess models.Session
	if err := tx.Where("id = ?", sessionID).First(&sess).Error; err != nil {
		return nil, err
	}
	return &sess, nil
}

// SaveAnalyses persists the immutable usage records for a scoring run.
func (s *SessionStore) SaveAnalyses(tx *gorm.DB, analyses []models.Analysis) error {
	if tx == nil {
		tx = s.DB
	}
	if len(analyses) == 0 {
		return nil
	}
	return tx.Create(&analyses).Error
}

// ListAnalyses returns a session's scored documents, newest first.
func (s *SessionStore) ListAnalyses(sessionID string) ([]models.Analysis, error) {
	var out []models.Analysis
	err := s.DB.Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}
