package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"timesheet/models"
	"timesheet/policy"
	"timesheet/repository"
)

const maxDescriptionLength = 500

// EntryService runs the timesheet entry lifecycle on behalf of a principal.
type EntryService interface {
	List(ctx context.Context, p models.Principal, status string) ([]models.EntryWithOwner, error)
	Get(ctx context.Context, p models.Principal, id uint) (*models.TimesheetEntry, error)
	Create(ctx context.Context, p models.Principal, input EntryInput) (*models.TimesheetEntry, error)
	Update(ctx context.Context, p models.Principal, id uint, input EntryInput) (*models.TimesheetEntry, error)
	SetStatus(ctx context.Context, p models.Principal, id uint, status string) (*models.TimesheetEntry, error)
	Delete(ctx context.Context, p models.Principal, id uint) error
}

// EntryInput is the client-editable part of an entry.
type EntryInput struct {
	Date        string
	Hours       float64
	Description string
}

// Invalidator is told about every successful entry write.
type Invalidator interface {
	Invalidate()
}

type entryService struct {
	entries repository.EntryRepository
	reports Invalidator
	now     func() time.Time
}

func NewEntryService(entries repository.EntryRepository, reports Invalidator) EntryService {
	return &entryService{
		entries: entries,
		reports: reports,
		now:     time.Now,
	}
}

func (s *entryService) List(ctx context.Context, p models.Principal, status string) ([]models.EntryWithOwner, error) {
	filter := models.EntryFilter{}
	if status != "" {
		st, ok := models.ParseStatus(status)
		if !ok {
			return nil, Validation("status must be pending, approved or rejected")
		}
		filter.Status = st
	}
	if !p.IsManager() {
		filter.OwnerID = p.UserID
	}

	rows, err := s.entries.List(ctx, filter)
	if err != nil {
		return nil, Internal(err)
	}
	if rows == nil {
		rows = []models.EntryWithOwner{}
	}
	return rows, nil
}

func (s *entryService) Get(ctx context.Context, p models.Principal, id uint) (*models.TimesheetEntry, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(p, entry) {
		return nil, Forbidden("you may not view this entry")
	}
	return entry, nil
}

func (s *entryService) Create(ctx context.Context, p models.Principal, input EntryInput) (*models.TimesheetEntry, error) {
	fields, err := validateInput(input)
	if err != nil {
		return nil, err
	}

	taken, err := s.entries.HasActiveOnDate(ctx, p.UserID, fields.Date, 0)
	if err != nil {
		return nil, Internal(err)
	}
	if taken {
		return nil, duplicateDate()
	}

	now := s.timestamp()
	entry := &models.TimesheetEntry{
		OwnerID:     p.UserID,
		Date:        fields.Date,
		Hours:       fields.Hours,
		Description: fields.Description,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateDate()
		}
		return nil, Internal(err)
	}

	s.reports.Invalidate()
	return entry, nil
}

func (s *entryService) Update(ctx context.Context, p models.Principal, id uint, input EntryInput) (*models.TimesheetEntry, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanEdit(p, entry) {
		return nil, Forbidden("only the owner may edit a pending entry")
	}

	fields, err := validateInput(input)
	if err != nil {
		return nil, err
	}

	if !fields.Date.Equal(entry.Date) {
		taken, err := s.entries.HasActiveOnDate(ctx, entry.OwnerID, fields.Date, entry.ID)
		if err != nil {
			return nil, Internal(err)
		}
		if taken {
			return nil, duplicateDate()
		}
	}

	readAt := entry.UpdatedAt
	updated := *entry
	updated.Date = fields.Date
	updated.Hours = fields.Hours
	updated.Description = fields.Description
	updated.UpdatedAt = s.timestampAfter(readAt)

	switch err := s.entries.UpdateIfUnchanged(ctx, &updated, readAt); {
	case errors.Is(err, repository.ErrStale):
		return nil, Conflict("entry was changed by someone else; reload and try again")
	case errors.Is(err, repository.ErrDuplicate):
		return nil, duplicateDate()
	case err != nil:
		return nil, Internal(err)
	}

	s.reports.Invalidate()
	return &updated, nil
}

func (s *entryService) SetStatus(ctx context.Context, p models.Principal, id uint, status string) (*models.TimesheetEntry, error) {
	target, ok := models.ParseStatus(status)
	if !ok || target == models.StatusPending {
		return nil, Validation("status must be approved or rejected")
	}
	if !policy.CanTransitionStatus(p) {
		return nil, Forbidden("only managers may approve or reject entries")
	}

	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanResolve(p, entry) {
		return nil, Forbidden("you may not resolve your own entry")
	}
	if entry.Status != models.StatusPending {
		return nil, Conflict("entry is already " + string(entry.Status))
	}

	readAt := entry.UpdatedAt
	approver := p.UserID
	resolved := *entry
	resolved.Status = target
	resolved.ApproverID = &approver
	resolved.UpdatedAt = s.timestampAfter(readAt)

	if err := s.entries.SetStatusIfPending(ctx, &resolved, readAt); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return nil, Conflict("entry was changed by someone else; reload and try again")
		}
		return nil, Internal(err)
	}

	s.reports.Invalidate()
	return &resolved, nil
}

func (s *entryService) Delete(ctx context.Context, p models.Principal, id uint) error {
	entry, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanDelete(p, entry) {
		return Forbidden("you may not delete this entry")
	}

	if err := s.entries.DeleteIfUnchanged(ctx, entry.ID, entry.UpdatedAt); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return Conflict("entry was changed by someone else; reload and try again")
		}
		return Internal(err)
	}

	s.reports.Invalidate()
	return nil
}

func (s *entryService) load(ctx context.Context, id uint) (*models.TimesheetEntry, error) {
	entry, err := s.entries.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("timesheet entry not found")
	}
	if err != nil {
		return nil, Internal(err)
	}
	return entry, nil
}

// Stored timestamps have microsecond precision on every supported database.
func (s *entryService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// timestampAfter never returns a value equal to readAt, so every write moves
// updated_at forward and conditional writes keep detecting each other.
func (s *entryService) timestampAfter(readAt time.Time) time.Time {
	ts := s.timestamp()
	if !ts.After(readAt) {
		ts = readAt.UTC().Add(time.Microsecond)
	}
	return ts
}

type entryFields struct {
	Date        time.Time
	Hours       float64
	Description string
}

func validateInput(input EntryInput) (entryFields, error) {
	date, err := ParseDate(input.Date)
	if err != nil {
		return entryFields{}, err
	}

	if math.IsNaN(input.Hours) || input.Hours <= 0 || input.Hours > 24 {
		return entryFields{}, Validation("hours must be greater than 0 and at most 24")
	}
	// numeric(5,2) keeps two decimals.
	hours := math.Round(input.Hours*100) / 100
	if hours <= 0 {
		return entryFields{}, Validation("hours must be at least 0.01")
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return entryFields{}, Validation("description is required")
	}
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return entryFields{}, Validation("description must be at most 500 characters")
	}

	return entryFields{Date: date, Hours: hours, Description: description}, nil
}

// ParseDate accepts a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	date, err := time.Parse(models.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, Validation("date must be a valid YYYY-MM-DD calendar date")
	}
	return date, nil
}

func duplicateDate() error {
	return Conflict("an entry for this date already exists")
}
