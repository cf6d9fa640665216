package impl

import (
	"encoding/base64"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"

	"passwordless/internal/domain/entity"
)

// ceremonyUser adapts a principal and their stored credentials to the
// webauthn.User interface expected by the ceremony engine.
type ceremonyUser struct {
	username    string
	credentials []*entity.WebAuthnCredential
}

func (u *ceremonyUser) WebAuthnID() []byte {
	return []byte(u.username)
}

func (u *ceremonyUser) WebAuthnName() string {
	return u.username
}

func (u *ceremonyUser) WebAuthnDisplayName() string {
	return u.username
}

func (u *ceremonyUser) WebAuthnIcon() string {
	return ""
}

func (u *ceremonyUser) WebAuthnCredentials() []webauthn.Credential {
	credentials := make([]webauthn.Credential, 0, len(u.credentials))
	for _, credential := range u.credentials {
		credentials = append(credentials, toLibraryCredential(credential))
	}

	return credentials
}

// toLibraryCredential converts a stored credential into the library's shape.
func toLibraryCredential(data *entity.WebAuthnCredential) webauthn.Credential {
	id, err := base64.RawURLEncoding.DecodeString(data.CredentialID)
	if err != nil {
		// A stored id that fails to decode can only come from a corrupted
		// row; an empty id makes the ceremony reject it.
		id = nil
	}

	transports := make([]protocol.AuthenticatorTransport, 0, len(data.Transports))
	for _, transport := range data.Transports {
		transports = append(transports, protocol.AuthenticatorTransport(transport))
	}

	return webauthn.Credential{
		ID:              id,
		PublicKey:       data.PublicKey,
		AttestationType: data.AttestationType,
		Transport:       transports,
		Flags: webauthn.CredentialFlags{
			UserVerified:   data.UserVerified,
			BackupEligible: data.BackupEligible,
			BackupState:    data.BackedUp,
		},
		Authenticator: webauthn.Authenticator{
			SignCount: data.SignCount,
		},
	}
}

// fromLibraryCredential converts a ceremony result into the stored shape.
func fromLibraryCredential(username string, credential *webauthn.Credential) *entity.WebAuthnCredential {
	transports := make([]string, 0, len(credential.Transport))
	for _, transport := range credential.Transport {
		transports = append(transports, string(transport))
	}

	return &entity.WebAuthnCredential{
		CredentialID:    base64.RawURLEncoding.EncodeToString(credential.ID),
		Username:        username,
		PublicKey:       credential.PublicKey,
		AttestationType: credential.AttestationType,
		Transports:      transports,
		SignCount:       credential.Authenticator.SignCount,
		UserVerified:    credential.Flags.UserVerified,
		BackupEligible:  credential.Flags.BackupEligible,
		BackedUp:        credential.Flags.BackupState,
	}
}
