package service

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/questlog/questd/internal/domain"
)

// PasswordService implements the password-hashing capability. The current
// scheme is bcrypt; the legacy scheme is salted SHA-1, kept verifiable forever
// so pre-migration accounts never need a rehash to authenticate or delete.
type PasswordService struct{}

func NewPasswordService() *PasswordService {
	return &PasswordService{}
}

func (s *PasswordService) Hash(plaintext, salt string, method domain.HashMethod) (string, error) {
	switch method {
	case domain.HashMethodBcrypt:
		// bcrypt embeds its own salt; the stored salt column is unused here.
		digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
		if err != nil {
			return "", err
		}
		return string(digest), nil
	case domain.HashMethodLegacySHA1:
		sum := sha1.Sum([]byte(salt + plaintext))
		return hex.EncodeToString(sum[:]), nil
	default:
		return "", fmt.Errorf("unknown hash method: %s", method)
	}
}

func (s *PasswordService) Verify(cred domain.LocalCredential, plaintext string) bool {
	switch cred.Method {
	case domain.HashMethodBcrypt:
		return bcrypt.CompareHashAndPassword([]byte(cred.HashedPassword), []byte(plaintext)) == nil
	case domain.HashMethodLegacySHA1:
		sum := sha1.Sum([]byte(cred.Salt + plaintext))
		digest := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(digest), []byte(cred.HashedPassword)) == 1
	default:
		return false
	}
}

func (s *PasswordService) GenerateSalt() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
