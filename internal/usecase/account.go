package usecase

import (
	"context"

	"github.com/questlog/questd/internal/domain"
)

type AccountUsecase struct {
	repo AccountRepository
}

func NewAccountUsecase(repo AccountRepository) *AccountUsecase {
	return &AccountUsecase{repo: repo}
}

func (uc *AccountUsecase) Get(ctx context.Context, id string) (domain.Account, error) {
	return uc.repo.Get(ctx, id)
}
