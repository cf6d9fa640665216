package webauthnx

import (
	"testing"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passwordless/config"
	"passwordless/internal/domain/service"
)

func newTestStore(ttl time.Duration) (*sessionStore, *time.Time) {
	now := time.Unix(0, 0)
	store := NewSessionStore(&config.Config{
		WebAuthn: &config.WebAuthnConfig{CeremonyTTL: ttl},
	}).(*sessionStore)
	store.now = func() time.Time { return now }

	return store, &now
}

func TestSessionStore_PutAndTake(t *testing.T) {
	store, _ := newTestStore(5 * time.Minute)
	session := &webauthn.SessionData{Challenge: "challenge-1"}

	token, err := store.Put("alice", session)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	got, err := store.Take(token, "alice")
	require.NoError(t, err)
	assert.Equal(t, "challenge-1", got.Challenge)
}

func TestSessionStore_TakeIsSingleUse(t *testing.T) {
	store, _ := newTestStore(5 * time.Minute)

	token, err := store.Put("alice", &webauthn.SessionData{})
	require.NoError(t, err)

	_, err = store.Take(token, "alice")
	require.NoError(t, err)

	_, err = store.Take(token, "alice")
	assert.ErrorIs(t, err, service.ErrCeremonyNotFound)
}

func TestSessionStore_UsernameMustMatch(t *testing.T) {
	store, _ := newTestStore(5 * time.Minute)

	token, err := store.Put("alice", &webauthn.SessionData{})
	require.NoError(t, err)

	_, err = store.Take(token, "mallory")
	assert.ErrorIs(t, err, service.ErrCeremonyNotFound)

	// The entry is consumed even on a mismatched take.
	_, err = store.Take(token, "alice")
	assert.ErrorIs(t, err, service.ErrCeremonyNotFound)
}

func TestSessionStore_Expiry(t *testing.T) {
	store, now := newTestStore(time.Minute)

	token, err := store.Put("alice", &webauthn.SessionData{})
	require.NoError(t, err)

	*now = now.Add(2 * time.Minute)
	_, err = store.Take(token, "alice")
	assert.ErrorIs(t, err, service.ErrCeremonyNotFound)
}

func TestSessionStore_UnknownToken(t *testing.T) {
	store, _ := newTestStore(time.Minute)

	_, err := store.Take("no-such-token", "alice")
	assert.ErrorIs(t, err, service.ErrCeremonyNotFound)
}
