package usecase

import (
	"context"

	"github.com/questlog/questd/internal/domain"
)

// AccountRepository defines persistence/lookup for accounts.
type AccountRepository interface {
	Get(ctx context.Context, id string) (domain.Account, error)
	Delete(ctx context.Context, id string) error
}

// TaskRepository defines persistence for exclusively-owned tasks.
type TaskRepository interface {
	DeleteByOwner(ctx context.Context, accountID string) error
}

// ChallengeRepository defines challenge participation cleanup. LeaveAll must
// be idempotent: re-leaving a challenge the account is no longer recorded in
// is a no-op, and the cached member count is only decremented when a
// participant row was actually removed.
type ChallengeRepository interface {
	LeaveAll(ctx context.Context, accountID string) error
}

// GroupRepository defines group membership mutation. RemoveMember applies the
// whole exit for one group (membership removal plus group deletion or leader
// succession) atomically for that group.
type GroupRepository interface {
	MembershipsOf(ctx context.Context, accountID string) ([]string, error)
	RemoveMember(ctx context.Context, groupID, accountID string) error
}

// SessionRevoker invalidates every live session of an account.
type SessionRevoker interface {
	RevokeAll(ctx context.Context, accountID string) error
}

// DeletionGuard serializes cascades per account. Acquire returns
// domain.ErrDeletionInProgress when another cascade already holds the account;
// the returned release function is safe to call exactly once.
type DeletionGuard interface {
	Acquire(ctx context.Context, accountID string) (func(), error)
}

// PasswordVerifier is the password-hashing capability consumed by the
// credential verifier.
type PasswordVerifier interface {
	Verify(cred domain.LocalCredential, plaintext string) bool
	Hash(plaintext, salt string, method domain.HashMethod) (string, error)
	GenerateSalt() (string, error)
}

// Notifier delivers a one-shot operational notification. Best effort only.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}
