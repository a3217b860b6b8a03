package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"watchpay-back/internal/model"
	"watchpay-back/internal/repository"
)

type UserRepository interface {
	Pool() *pgxpool.Pool

	InsertUser(ctx context.Context, ext repository.RepoExtension, user *model.User) (*model.User, error)
	SelectUserByID(ctx context.Context, ext repository.RepoExtension, id int64) (*model.User, error)
	SelectUserByEmail(ctx context.Context, ext repository.RepoExtension, email string) (*model.User, error)
	UpdateUser(ctx context.Context, ext repository.RepoExtension, id int64, upd *model.UserUpdateRequest) error
	Delete(ctx context.Context, ext repository.RepoExtension, id int64) error
}

type UserService struct {
	userRepo UserRepository
}

func NewUserService(userRepo UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.SelectUserByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}

	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id int64, upd *model.UserUpdateRequest) (*model.User, error) {
	if err := s.userRepo.UpdateUser(ctx, nil, id, upd); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	user, err := s.userRepo.SelectUserByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}

	return user, nil
}

func (s *UserService) DeleteSelf(ctx context.Context, userID int64) error {
	if err := s.userRepo.Delete(ctx, nil, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}
