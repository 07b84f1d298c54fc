package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/questlog/questd/internal/domain"
	"github.com/questlog/questd/internal/infra/database/models"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) MembershipsOf(ctx context.Context, accountID string) ([]string, error) {
	var groupIDs []string
	err := r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("account_id = ?", accountID).
		Order("group_id").
		Pluck("group_id", &groupIDs).Error
	return groupIDs, err
}

// RemoveMember applies one account's exit from one group atomically. The group
// row is locked for the duration, so two members of the same group deleting
// their accounts at once serialize: they cannot both observe themselves as the
// last member, nor elect different successors.
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, accountID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var g models.Group
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", groupID).
			Take(&g).Error
		if err == gorm.ErrRecordNotFound {
			// A concurrent exit already deleted the group.
			return nil
		}
		if err != nil {
			return err
		}

		var members []models.GroupMember
		if err := tx.Where("group_id = ?", groupID).Find(&members).Error; err != nil {
			return err
		}

		exit := domain.PlanExit(toDomainGroup(g, members), accountID)

		if err := tx.Where("group_id = ? AND account_id = ?", groupID, accountID).
			Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}

		switch exit.Kind {
		case domain.GroupExitDelete:
			return tx.Where("id = ?", groupID).Delete(&models.Group{}).Error
		case domain.GroupExitPromote:
			return tx.Model(&models.Group{}).
				Where("id = ?", groupID).
				UpdateColumn("leader_id", exit.NewLeaderID).Error
		default:
			return nil
		}
	})
}

func toDomainGroup(g models.Group, members []models.GroupMember) domain.Group {
	group := domain.Group{
		ID:       g.ID,
		Name:     g.Name,
		Type:     domain.GroupType(g.Type),
		Privacy:  domain.GroupPrivacy(g.Privacy),
		LeaderID: g.LeaderID,
	}
	for _, m := range members {
		group.Members = append(group.Members, domain.GroupMember{
			AccountID: m.AccountID,
			JoinedAt:  m.CDate,
		})
	}
	return group
}
