package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/questlog/questd/internal/infra/database/models"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// DeleteByOwner removes every task the account owns in one statement, so no
// ordering or paging bucket can be missed. Idempotent by construction.
func (r *TaskRepository) DeleteByOwner(ctx context.Context, accountID string) error {
	return r.db.WithContext(ctx).
		Where("owner_id = ?", accountID).
		Delete(&models.Task{}).Error
}
