package service

import (
	"errors"

	"github.com/diego12655/cv-analyzer-pro/internal/store"
)

var (
	// ErrCodeNotFound means the redemption code does not exist. Surfaced to
	// clients as "invalid code", never as an internal error.
	ErrCodeNotFound = errors.New("access code not found")

	// ErrUnauthenticated covers missing, malformed, tampered and expired
	// credentials, and credentials pointing at a session that no longer
	// exists. The session row is the source of truth; the JWT is only a
	// capability token.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInsufficientCredits means the session balance cannot cover the
	// requested operation. No mutation and no downstream call happen.
	ErrInsufficientCredits = store.ErrInsufficientCredits

	// ErrUpstreamScoring means extraction or the LLM call failed. The
	// request consumes no credit.
	ErrUpstreamScoring = errors.New("upstream scoring failed")
)
