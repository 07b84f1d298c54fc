package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/questlog/questd/internal/domain"
)

const (
	guardKeyPrefix = "deletion:"
	// guardTTL bounds how long a crashed cascade can block a retry.
	guardTTL = 5 * time.Minute
)

// DeletionGuardService serializes deletion cascades per account with a redis
// SETNX lease. Two near-simultaneous requests for the same account cannot both
// run the cascade; the loser gets domain.ErrDeletionInProgress and retries.
type DeletionGuardService struct {
	rdb *redis.Client
}

func NewDeletionGuardService(rdb *redis.Client) *DeletionGuardService {
	return &DeletionGuardService{rdb: rdb}
}

func (g *DeletionGuardService) Acquire(ctx context.Context, accountID string) (func(), error) {
	key := guardKeyPrefix + accountID
	holder := uuid.NewString()

	ok, err := g.rdb.SetNX(ctx, key, holder, guardTTL).Result()
	if err != nil {
		return nil, errors.Wrap(err, "acquiring deletion guard")
	}
	if !ok {
		return nil, domain.ErrDeletionInProgress
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		// Only the holder removes the lease; an expired lease taken over by a
		// retry must not be deleted out from under it.
		current, err := g.rdb.Get(ctx, key).Result()
		if err == nil && current == holder {
			g.rdb.Del(ctx, key)
		}
	}
	return release, nil
}
