package util

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewAccessCode generates a redemption code of the form XXXX-XXXX-XXXX
// (uppercase letters and digits). Uniqueness is enforced by the database;
// callers retry on the rare collision.
func NewAccessCode() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	var b strings.Builder
	for i, c := range buf {
		if i > 0 && i%4 == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(codeAlphabet[int(c)%len(codeAlphabet)])
	}
	return b.String(), nil
}

// NewSessionSecret generates the opaque per-session token stored alongside
// the session for audit purposes (equivalent to a 32-byte url-safe token).
func NewSessionSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
