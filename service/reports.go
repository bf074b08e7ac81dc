package service

import (
	"context"

	"timesheet/models"
	"timesheet/policy"
	"timesheet/reportcache"
	"timesheet/repository"
)

// ReportService aggregates approved hours for managers.
type ReportService interface {
	HoursByEmployee(ctx context.Context, p models.Principal) ([]models.MonthlyHours, error)
	HoursByDateRange(ctx context.Context, p models.Principal, start, end string) ([]models.RangeHours, error)
}

type reportService struct {
	reports repository.ReportRepository
	cache   *reportcache.Cache
}

// NewReportService answers through cache. The cache must be the Invalidator
// handed to the entry service so that writes drop stale reports.
func NewReportService(reports repository.ReportRepository, cache *reportcache.Cache) ReportService {
	return &reportService{reports: reports, cache: cache}
}

func (s *reportService) HoursByEmployee(ctx context.Context, p models.Principal) ([]models.MonthlyHours, error) {
	if !policy.CanReport(p) {
		return nil, Forbidden("reports are restricted to managers")
	}

	rows, err := reportcache.Fetch(ctx, s.cache, reportcache.Key("hours"), func(ctx context.Context) ([]models.MonthlyHours, error) {
		rows, err := s.reports.HoursByEmployee(ctx)
		if rows == nil && err == nil {
			rows = []models.MonthlyHours{}
		}
		return rows, err
	})
	if err != nil {
		return nil, Internal(err)
	}
	return rows, nil
}

func (s *reportService) HoursByDateRange(ctx context.Context, p models.Principal, start, end string) ([]models.RangeHours, error) {
	if !policy.CanReport(p) {
		return nil, Forbidden("reports are restricted to managers")
	}

	from, err := ParseDate(start)
	if err != nil {
		return nil, Validation("start must be a valid YYYY-MM-DD date")
	}
	to, err := ParseDate(end)
	if err != nil {
		return nil, Validation("end must be a valid YYYY-MM-DD date")
	}
	if from.After(to) {
		return nil, Validation("start must not be after end")
	}

	key := reportcache.Key("hours-range", from.Format(models.DateLayout), to.Format(models.DateLayout))
	rows, err := reportcache.Fetch(ctx, s.cache, key, func(ctx context.Context) ([]models.RangeHours, error) {
		rows, err := s.reports.HoursByDateRange(ctx, from, to)
		if rows == nil && err == nil {
			rows = []models.RangeHours{}
		}
		return rows, err
	})
	if err != nil {
		return nil, Internal(err)
	}
	return rows, nil
}
