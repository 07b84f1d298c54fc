package usecase

import (
	"github.com/questlog/questd/internal/domain"
)

// CredentialVerifier confirms the requester may delete the account.
type CredentialVerifier struct {
	password PasswordVerifier
}

func NewCredentialVerifier(password PasswordVerifier) *CredentialVerifier {
	return &CredentialVerifier{password: password}
}

// Verify checks the supplied password against the account's credential. Local
// credentials are compared with the hash method recorded on the credential, so
// legacy accounts stay verifiable without a rehash. Externally-authenticated
// accounts have no password; they confirm with the fixed phrase instead.
// No side effects on failure.
func (v *CredentialVerifier) Verify(account domain.Account, supplied string) error {
	if supplied == "" {
		return domain.ErrMissingCredential
	}

	switch account.Auth.Kind {
	case domain.AuthKindLocal:
		if account.Auth.Local == nil || !v.password.Verify(*account.Auth.Local, supplied) {
			return domain.ErrInvalidCredential
		}
		return nil
	case domain.AuthKindExternal:
		if supplied != domain.ExternalAuthConfirmation {
			return domain.ErrInvalidCredential
		}
		return nil
	default:
		return domain.ErrInvalidCredential
	}
}
