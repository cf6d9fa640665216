package service

import (
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/pkg/errors"
)

// ErrCeremonyNotFound means the ceremony token is unknown, expired, or was
// already consumed.
var ErrCeremonyNotFound = errors.New("ceremony not found or expired")

// CeremonyStore holds in-flight WebAuthn session data between the Begin and
// Finish halves of a ceremony. Entries are single-use and expire after the
// configured TTL.
type CeremonyStore interface {
	// Put stores the session data under a fresh ceremony token and returns
	// the token.
	Put(username string, session *webauthn.SessionData) (string, error)

	// Take retrieves and removes the session data for a token. The stored
	// username must match.
	Take(token, username string) (*webauthn.SessionData, error)
}
