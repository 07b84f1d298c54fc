package repository

import (
	"bytes"
	"context"
	"encoding/gob"

	"github.com/bradfitz/gomemcache/memcache"
	"gorm.io/gorm"

	"github.com/questlog/questd/internal/domain"
	"github.com/questlog/questd/internal/infra/database/models"
)

const accountCacheTTL = 60 // seconds

// AccountCache is the slice of the memcache client the repository uses.
type AccountCache interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Delete(key string) error
}

type AccountRepository struct {
	db *gorm.DB
	mc AccountCache
}

func NewAccountRepository(db *gorm.DB, mc AccountCache) *AccountRepository {
	return &AccountRepository{db: db, mc: mc}
}

func accountCacheKey(id string) string {
	return "account:" + id
}

// The cache stores the persistence model gob-encoded. The client-facing JSON
// shape hides the credential (json:"-"), so caching that shape would hand back
// accounts that can never pass password verification.
func encodeAccount(m models.Account) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeAccount(data []byte) (models.Account, error) {
	var m models.Account
	err := gob.NewDecoder(bytes.NewReader(data)).Decode(&m)
	return m, err
}

func (r *AccountRepository) Get(ctx context.Context, id string) (domain.Account, error) {
	if r.mc != nil {
		if item, err := r.mc.Get(accountCacheKey(id)); err == nil {
			if m, err := decodeAccount(item.Value); err == nil {
				return toDomainAccount(m), nil
			}
		}
	}

	var m models.Account
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if err == gorm.ErrRecordNotFound {
		return domain.Account{}, domain.NotFoundError{Resource: "account"}
	}
	if err != nil {
		return domain.Account{}, err
	}

	if r.mc != nil {
		if serialized, err := encodeAccount(m); err == nil {
			r.mc.Set(&memcache.Item{
				Key:        accountCacheKey(id),
				Value:      serialized,
				Expiration: accountCacheTTL,
			})
		}
	}

	return toDomainAccount(m), nil
}

// Delete removes the account record. Deleting an already-absent account is a
// no-op; callers detect "already gone" through Get.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Account{}).Error
	if err != nil {
		return err
	}
	if r.mc != nil {
		r.mc.Delete(accountCacheKey(id))
	}
	return nil
}

func toDomainAccount(m models.Account) domain.Account {
	account := domain.Account{
		ID:        m.ID,
		LoginName: m.LoginName,
		Email:     m.Email,
		Balance:   m.Balance,
	}

	switch domain.AuthKind(m.AuthKind) {
	case domain.AuthKindExternal:
		account.Auth = domain.Auth{
			Kind: domain.AuthKindExternal,
			External: &domain.ExternalIdentity{
				Provider: m.Provider,
				Subject:  m.ProviderSubject,
			},
		}
	default:
		account.Auth = domain.Auth{
			Kind: domain.AuthKindLocal,
			Local: &domain.LocalCredential{
				HashedPassword: m.HashedPassword,
				Salt:           m.Salt,
				Method:         domain.HashMethod(m.HashMethod),
			},
		}
	}

	if m.CustomerID != nil && *m.CustomerID != "" {
		sub := domain.SubscriptionRef{CustomerID: *m.CustomerID}
		if m.PlanID != nil {
			sub.PlanID = *m.PlanID
		}
		account.Subscription = &sub
	}

	return account
}
