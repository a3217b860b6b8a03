package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"watchpay-back/internal/apperrors"
	"watchpay-back/internal/model"
	"watchpay-back/internal/repository"
)

type WebsiteRepository interface {
	Pool() *pgxpool.Pool

	InsertWebsite(ctx context.Context, ext repository.RepoExtension, website *model.Website) (*model.Website, error)
	SelectWebsiteByID(ctx context.Context, ext repository.RepoExtension, id int64) (*model.Website, error)
	List(ctx context.Context, ext repository.RepoExtension, params model.WebsiteQueryParams) ([]model.Website, int, error)
	Update(ctx context.Context, ext repository.RepoExtension, id int64, upd *model.WebsiteUpdateRequest) error
	Delete(ctx context.Context, ext repository.RepoExtension, id int64) error
	UpdateStatus(ctx context.Context, ext repository.RepoExtension, id int64, status string) error
}

type WebsiteService struct {
	log         *zap.Logger
	websiteRepo WebsiteRepository
}

func NewWebsiteService(log *zap.Logger, websiteRepo WebsiteRepository) *WebsiteService {
	return &WebsiteService{
		log:         log,
		websiteRepo: websiteRepo,
	}
}

func (s *WebsiteService) Create(ctx context.Context, ownerID int64, req *model.WebsiteCreateRequest) (*model.Website, error) {
	website := &model.Website{
		OwnerID:       ownerID,
		URL:           req.URL,
		Category:      req.Category,
		Status:        model.WebsiteStatusUnknown,
		IsPublic:      req.IsPublic,
		AlertsEnabled: req.AlertsEnabled,
	}

	website, err := s.websiteRepo.InsertWebsite(ctx, nil, website)
	if err != nil {
		return nil, fmt.Errorf("failed to insert website: %w", err)
	}

	return website, nil
}

func (s *WebsiteService) Get(ctx context.Context, id int64) (*model.Website, error) {
	website, err := s.websiteRepo.SelectWebsiteByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select website: %w", err)
	}

	return website, nil
}

func (s *WebsiteService) List(ctx context.Context, params model.WebsiteQueryParams) (*model.WebsiteListResponse, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = model.DefaultPageSize
	}

	websites, total, err := s.websiteRepo.List(ctx, nil, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list websites: %w", err)
	}

	return &model.WebsiteListResponse{
		Websites:   websites,
		TotalCount: total,
		Page:       params.Page,
		PageSize:   params.PageSize,
	}, nil
}

// Update mutates a website. Only the owner may do it.
func (s *WebsiteService) Update(ctx context.Context, userID, id int64, req *model.WebsiteUpdateRequest) (*model.Website, error) {
	website, err := s.websiteRepo.SelectWebsiteByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select website: %w", err)
	}

	if website.OwnerID != userID {
		return nil, apperrors.ErrForbidden
	}

	if err := s.websiteRepo.Update(ctx, nil, id, req); err != nil {
		return nil, fmt.Errorf("failed to update website: %w", err)
	}

	website, err = s.websiteRepo.SelectWebsiteByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select website: %w", err)
	}

	return website, nil
}

func (s *WebsiteService) Delete(ctx context.Context, userID, id int64) error {
	website, err := s.websiteRepo.SelectWebsiteByID(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to select website: %w", err)
	}

	if website.OwnerID != userID {
		return apperrors.ErrForbidden
	}

	if err := s.websiteRepo.Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete website: %w", err)
	}

	return nil
}
