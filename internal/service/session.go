package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/diego12655/cv-analyzer-pro/internal/models"
	"github.com/diego12655/cv-analyzer-pro/internal/store"
	"github.com/diego12655/cv-analyzer-pro/internal/util"

	"gorm.io/gorm"
)

// SessionService drives the access-code / session lifecycle:
// redeem code → session, credential → session, credit debit.
//
// Per access code the states are Unredeemed → Redeemed-Active
// (credits remaining > 0) → Redeemed-Exhausted (0). Exhausted is terminal;
// there is no replenishment or expiry of the session row itself.
type SessionService struct {
	DB        *gorm.DB
	Codes     *store.CodeStore
	Sessions  *store.SessionStore
	JWTSecret string
	TokenTTL  time.Duration
}

func NewSessionService(db *gorm.DB, jwtSecret string, ttlDays int) *SessionService {
	if ttlDays <= 0 {
		ttlDays = 30
	}
	return &SessionService{
		DB:        db,
		Codes:     store.NewCodeStore(db),
		Sessions:  store.NewSessionStore(db),
		JWTSecret: jwtSecret,
		TokenTTL:  time.Duration(ttlDays) * 24 * time.Hour,
	}
}

// RedeemResult carries the outcome of a code redemption.
type RedeemResult struct {
	Session   *models.Session
	Token     string
	Recovered bool // true when an existing session was returned
}

// Redeem exchanges an access code for a session and a signed credential.
//
// Redeeming an already-used code is not an error: it returns the existing
// session's current balance with a fresh credential, so a user who lost
// their token can recover the session without losing paid credits.
// First redemption creates the session and marks the code used in one
// transaction; a failed commit leaves no partial state.
func (s *SessionService) Redeem(code string) (*RedeemResult, error) {
	ac, err := s.Codes.FindByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("find code: %w", err)
	}

	// Used is the explicit state check; the row lookup below is the
	// recovery path rather than the existence signal.
	if ac.Used {
		if sess, err := s.Sessions.FindByCodeID(ac.ID); err == nil {
			return s.issue(sess, true)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find session: %w", err)
		}
		// used code without a session: fall through and create one,
		// the unique index still protects against duplicates
	}

	secret, err := util.NewSessionSecret()
	if err != nil {
		return nil, fmt.Errorf("session secret: %w", err)
	}

	var sess *models.Session
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		sess, txErr = s.Sessions.CreateForCode(tx, ac.ID, secret, ac.Credits)
		if txErr != nil {
			return txErr
		}
		return s.Codes.MarkUsed(tx, ac.ID)
	})
	if store.IsDuplicateKey(err) {
		// lost the race to a concurrent redemption; the winner's session
		// is the session for this code
		existing, ferr := s.Sessions.FindByCodeID(ac.ID)
		if ferr != nil {
			return nil, fmt.Errorf("find session after conflict: %w", ferr)
		}
		return s.issue(existing, true)
	}
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return s.issue(sess, false)
}

func (s *SessionService) issue(sess *models.Session, recovered bool) (*RedeemResult, error) {
	token, err := util.GenerateToken(s.JWTSecret, sess.ID, s.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &RedeemResult{Session: sess, Token: token, Recovered: recovered}, nil
}

// Authenticate verifies a credential and resolves it to a live session.
// Any verification failure or a missing session row yields
// ErrUnauthenticated; a stale credential must not be trusted on its own.
func (s *SessionService) Authenticate(token string) (*models.Session, error) {
	claims, err := util.ParseToken(s.JWTSecret, token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	sess, err := s.Sessions.FindByID(claims.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return sess, nil
}

// Consume gates a metered downstream operation with the session's balance.
//
// The balance is checked before do runs, so an underfunded request never
// reaches the scorer. Credits are charged only after do succeeds: the debit
// and the persistence of the produced usage records commit in one
// transaction, and a failed do leaves the balance untouched. The guarded
// debit re-checks the balance, so a concurrent spend between the preflight
// and the commit surfaces as ErrInsufficientCredits, not a negative balance.
func (s *SessionService) Consume(sessionID string, cost int, do func() ([]models.Analysis, error)) (*models.Session, error) {
	sess, err := s.Sessions.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	if sess.CreditsRemaining < cost {
		return nil, ErrInsufficientCredits
	}

	analyses, err := do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamScoring, err)
	}

	var updated *models.Session
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		updated, txErr = s.Sessions.Debit(tx, sessionID, cost)
		if txErr != nil {
			return txErr
		}
		return s.Sessions.SaveAnalyses(tx, analyses)
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientCredits) {
			return nil, ErrInsufficientCredits
		}
		return nil, fmt.Errorf("debit: %w", err)
	}
	return updated, nil
}
