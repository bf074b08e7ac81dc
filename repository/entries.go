package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timesheet/models"

	"gorm.io/gorm"
)

type EntryStore struct {
	db *gorm.DB
}

func NewEntryStore(db *gorm.DB) *EntryStore {
	return &EntryStore{db: db}
}

func (s *EntryStore) Create(ctx context.Context, entry *models.TimesheetEntry) error {
	if err := s.db.WithContext(ctx).Omit("Owner", "Approver").Create(entry).Error; err != nil {
		if errors.Is(translate(err), ErrDuplicate) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

func (s *EntryStore) Get(ctx context.Context, id uint) (*models.TimesheetEntry, error) {
	var entry models.TimesheetEntry
	if err := s.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, lookupError("entry", err)
	}
	return &entry, nil
}

// List returns entries joined with their owner's name in one query, newest
// date first.
func (s *EntryStore) List(ctx context.Context, filter models.EntryFilter) ([]models.EntryWithOwner, error) {
	query := s.db.WithContext(ctx).
		Table("timesheet_entries").
		Select("timesheet_entries.*, users.name AS owner_name").
		Joins("JOIN users ON users.id = timesheet_entries.owner_id")

	if filter.OwnerID != 0 {
		query = query.Where("timesheet_entries.owner_id = ?", filter.OwnerID)
	}
	if filter.Status != "" {
		query = query.Where("timesheet_entries.status = ?", filter.Status)
	}

	var rows []models.EntryWithOwner
	err := query.Order("timesheet_entries.date DESC, timesheet_entries.id DESC").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return rows, nil
}

// HasActiveOnDate reports whether the owner already holds a pending or
// approved entry for date, ignoring excludeID.
func (s *EntryStore) HasActiveOnDate(ctx context.Context, ownerID uint, date time.Time, excludeID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.TimesheetEntry{}).
		Where("owner_id = ? AND date = ? AND status IN ? AND id <> ?", ownerID, date, models.BlockingStatuses(), excludeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count entries on date: %w", err)
	}
	return count > 0, nil
}

// UpdateIfUnchanged writes date, hours, description and updated_at only while
// the row is still pending and still carries readAt.
func (s *EntryStore) UpdateIfUnchanged(ctx context.Context, entry *models.TimesheetEntry, readAt time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&models.TimesheetEntry{}).
		Where("id = ? AND updated_at = ? AND status = ?", entry.ID, readAt, models.StatusPending).
		Updates(map[string]any{
			"date":        entry.Date,
			"hours":       entry.Hours,
			"description": entry.Description,
			"updated_at":  entry.UpdatedAt,
		})
	if res.Error != nil {
		if errors.Is(translate(res.Error), ErrDuplicate) {
			return ErrDuplicate
		}
		return fmt.Errorf("update entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

// SetStatusIfPending records a resolution. It fails with ErrStale when the
// entry is no longer pending or was modified after readAt.
func (s *EntryStore) SetStatusIfPending(ctx context.Context, entry *models.TimesheetEntry, readAt time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&models.TimesheetEntry{}).
		Where("id = ? AND updated_at = ? AND status = ?", entry.ID, readAt, models.StatusPending).
		Updates(map[string]any{
			"status":      entry.Status,
			"approver_id": entry.ApproverID,
			"updated_at":  entry.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("set entry status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

func (s *EntryStore) DeleteIfUnchanged(ctx context.Context, id uint, readAt time.Time) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND updated_at = ?", id, readAt).
		Delete(&models.TimesheetEntry{})
	if res.Error != nil {
		return fmt.Errorf("delete entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}
