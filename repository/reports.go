package repository

import (
	"context"
	"fmt"
	"time"

	"timesheet/models"

	"gorm.io/gorm"
)

type ReportStore struct {
	db *gorm.DB
}

func NewReportStore(db *gorm.DB) *ReportStore {
	return &ReportStore{db: db}
}

// HoursByEmployee sums approved hours per (user, month, year) in one grouped
// join.
func (s *ReportStore) HoursByEmployee(ctx context.Context) ([]models.MonthlyHours, error) {
	month, year := s.datePartExprs("t.date")

	var rows []models.MonthlyHours
	err := s.db.WithContext(ctx).
		Table("timesheet_entries AS t").
		Select("u.id AS user_id, u.name AS user_name, "+month+" AS month, "+year+" AS year, SUM(t.hours) AS total_hours").
		Joins("JOIN users u ON u.id = t.owner_id").
		Where("t.status = ?", models.StatusApproved).
		Group("u.id, u.name, " + month + ", " + year).
		Order("u.name, year, month, u.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("hours by employee: %w", err)
	}
	return rows, nil
}

// HoursByDateRange sums approved hours per user for start <= date <= end.
func (s *ReportStore) HoursByDateRange(ctx context.Context, start, end time.Time) ([]models.RangeHours, error) {
	var rows []models.RangeHours
	err := s.db.WithContext(ctx).
		Table("timesheet_entries AS t").
		Select("u.id AS user_id, u.name AS user_name, SUM(t.hours) AS total_hours").
		Joins("JOIN users u ON u.id = t.owner_id").
		Where("t.status = ? AND t.date >= ? AND t.date <= ?", models.StatusApproved, start, end).
		Group("u.id, u.name").
		Order("u.name, u.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("hours by date range: %w", err)
	}
	return rows, nil
}

// datePartExprs returns fixed SQL for the month and year of column. Only the
// dialect picks between them; no request data reaches the text.
func (s *ReportStore) datePartExprs(column string) (month, year string) {
	if s.db.Dialector.Name() == "sqlite" {
		return "CAST(strftime('%m', " + column + ") AS INTEGER)",
			"CAST(strftime('%Y', " + column + ") AS INTEGER)"
	}
	return "CAST(EXTRACT(MONTH FROM " + column + ") AS INTEGER)",
		"CAST(EXTRACT(YEAR FROM " + column + ") AS INTEGER)"
}
