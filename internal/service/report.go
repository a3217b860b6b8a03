package service

import (
	"context"
	"fmt"

	"watchpay-back/internal/model"
)

const (
	defaultSearchSize = 20
	maxSearchSize     = 100
)

type ReportRepository interface {
	EnsureIndex(ctx context.Context) error
	Create(ctx context.Context, report *model.Report) error
	Get(ctx context.Context, id string) (*model.Report, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, from, size int) ([]model.ReportSearchResult, error)
}

// ReportService handles free-text abuse and outage reports attached to
// pings. Reports live in Elasticsearch so reasons are searchable.
type ReportService struct {
	reportRepo ReportRepository
	pingRepo   PingRepository
}

func NewReportService(reportRepo ReportRepository, pingRepo PingRepository) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		pingRepo:   pingRepo,
	}
}

func (s *ReportService) Create(ctx context.Context, userID int64, req *model.ReportCreateRequest) (*model.Report, error) {
	if _, err := s.pingRepo.SelectPingByID(ctx, nil, req.PingID); err != nil {
		return nil, fmt.Errorf("failed to select ping: %w", err)
	}

	report := model.NewReport(req.PingID, userID, req.Reason)

	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	return report, nil
}

func (s *ReportService) Get(ctx context.Context, id string) (*model.Report, error) {
	report, err := s.reportRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return report, nil
}

func (s *ReportService) Delete(ctx context.Context, id string) error {
	if err := s.reportRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	return nil
}

func (s *ReportService) Search(ctx context.Context, query string, from, size int) ([]model.ReportSearchResult, error) {
	if size <= 0 {
		size = defaultSearchSize
	}
	if size > maxSearchSize {
		size = maxSearchSize
	}
	if from < 0 {
		from = 0
	}

	results, err := s.reportRepo.Search(ctx, query, from, size)
	if err != nil {
		return nil, fmt.Errorf("failed to search reports: %w", err)
	}

	return results, nil
}
