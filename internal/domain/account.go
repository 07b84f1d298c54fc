package domain

// HashMethod tags which password-hashing scheme a credential was stored with.
type HashMethod string

const (
	// HashMethodBcrypt is the current scheme.
	HashMethodBcrypt HashMethod = "bcrypt"
	// HashMethodLegacySHA1 is the pre-migration scheme, kept so old accounts
	// stay verifiable without a forced rehash.
	HashMethodLegacySHA1 HashMethod = "sha1"
)

type AuthKind string

const (
	AuthKindLocal    AuthKind = "local"
	AuthKindExternal AuthKind = "external"
)

// LocalCredential is a password credential stored on the account.
type LocalCredential struct {
	HashedPassword string     `json:"-"`
	Salt           string     `json:"-"`
	Method         HashMethod `json:"-"`
}

// ExternalIdentity marks an account authenticated through an outside provider.
type ExternalIdentity struct {
	Provider string `json:"provider"`
	Subject  string `json:"-"`
}

// Auth is a tagged variant: exactly one of Local or External is set,
// according to Kind.
type Auth struct {
	Kind     AuthKind          `json:"kind"`
	Local    *LocalCredential  `json:"-"`
	External *ExternalIdentity `json:"external,omitempty"`
}

// SubscriptionRef points at an active external-billing subscription.
type SubscriptionRef struct {
	CustomerID string `json:"customerID"`
	PlanID     string `json:"planID"`
}

// Account represents a user account without persistence concerns.
type Account struct {
	ID           string           `json:"id"`
	LoginName    string           `json:"loginName"`
	Email        string           `json:"email"`
	Auth         Auth             `json:"auth"`
	Subscription *SubscriptionRef `json:"subscription,omitempty"`
	Balance      float64          `json:"balance"`
}

// HasActiveSubscription reports whether the account still carries a billing
// reference that must be cancelled before the account can be deleted.
func (a Account) HasActiveSubscription() bool {
	return a.Subscription != nil && a.Subscription.CustomerID != ""
}
