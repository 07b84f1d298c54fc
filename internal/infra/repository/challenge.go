package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/questlog/questd/internal/infra/database/models"
)

type ChallengeRepository struct {
	db *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// LeaveAll removes the account from every challenge it joined and decrements
// each cached member count by one. Per-challenge atomic: the count only moves
// when the participant row was actually removed, so a retried run that
// re-observes cleaned state adjusts nothing.
func (r *ChallengeRepository) LeaveAll(ctx context.Context, accountID string) error {
	var challengeIDs []string
	err := r.db.WithContext(ctx).
		Model(&models.ChallengeMember{}).
		Where("account_id = ?", accountID).
		Order("challenge_id").
		Pluck("challenge_id", &challengeIDs).Error
	if err != nil {
		return err
	}

	for _, challengeID := range challengeIDs {
		if err := r.leave(ctx, challengeID, accountID); err != nil {
			return err
		}
	}
	return nil
}

func (r *ChallengeRepository) leave(ctx context.Context, challengeID, accountID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("challenge_id = ? AND account_id = ?", challengeID, accountID).
			Delete(&models.ChallengeMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		return tx.Model(&models.Challenge{}).
			Where("id = ? AND member_count > 0", challengeID).
			UpdateColumn("member_count", gorm.Expr("member_count - 1")).Error
	})
}
