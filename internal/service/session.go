package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/questlog/questd/internal/domain"
)

var sessionTracer = otel.Tracer("session")

const (
	sessionTTL        = 30 * 24 * time.Hour
	sessionKeyPrefix  = "session:"
	accountSessionSet = "account-sessions:"
)

// SessionService stores bearer tokens in redis, fronted by a short-lived
// in-process cache so hot tokens don't hit redis on every request.
type SessionService struct {
	rdb   *redis.Client
	cache *cache.Cache
}

func NewSessionService(rdb *redis.Client) *SessionService {
	return &SessionService{
		rdb:   rdb,
		cache: cache.New(1*time.Minute, 5*time.Minute),
	}
}

// Issue creates a new session token for the account.
func (s *SessionService) Issue(ctx context.Context, accountID string) (string, error) {
	ctx, span := sessionTracer.Start(ctx, "Session.Service.Issue")
	defer span.End()

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		span.RecordError(err)
		return "", err
	}
	token := hex.EncodeToString(b)

	if err := s.rdb.Set(ctx, sessionKeyPrefix+token, accountID, sessionTTL).Err(); err != nil {
		span.RecordError(err)
		return "", errors.Wrap(err, "storing session")
	}
	if err := s.rdb.SAdd(ctx, accountSessionSet+accountID, token).Err(); err != nil {
		span.RecordError(err)
		return "", errors.Wrap(err, "indexing session")
	}

	return token, nil
}

// Resolve maps a bearer token to its account ID.
func (s *SessionService) Resolve(ctx context.Context, token string) (string, error) {
	ctx, span := sessionTracer.Start(ctx, "Session.Service.Resolve")
	defer span.End()

	if cached, found := s.cache.Get(token); found {
		return cached.(string), nil
	}

	accountID, err := s.rdb.Get(ctx, sessionKeyPrefix+token).Result()
	if err == redis.Nil {
		return "", domain.NotFoundError{Resource: "session"}
	}
	if err != nil {
		span.RecordError(err)
		return "", errors.Wrap(err, "resolving session")
	}

	s.cache.SetDefault(token, accountID)
	return accountID, nil
}

// RevokeAll drops every session of the account. Idempotent: revoking an
// account with no sessions is a no-op.
func (s *SessionService) RevokeAll(ctx context.Context, accountID string) error {
	ctx, span := sessionTracer.Start(ctx, "Session.Service.RevokeAll")
	defer span.End()

	tokens, err := s.rdb.SMembers(ctx, accountSessionSet+accountID).Result()
	if err != nil && err != redis.Nil {
		span.RecordError(err)
		return errors.Wrap(err, "listing sessions")
	}

	for _, token := range tokens {
		if err := s.rdb.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
			span.RecordError(err)
			return errors.Wrap(err, "revoking session")
		}
		s.cache.Delete(token)
	}

	if err := s.rdb.Del(ctx, accountSessionSet+accountID).Err(); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "dropping session index")
	}
	return nil
}
