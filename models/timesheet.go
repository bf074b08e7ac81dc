package models

import (
	"time"
)

const DateLayout = "2006-01-02"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), true
	}
	return "", false
}

var Statuses = []Status{StatusPending, StatusApproved, StatusRejected}

// Blocking reports whether an entry in this status occupies its owner's date.
func (s Status) Blocking() bool {
	return s == StatusPending || s == StatusApproved
}

// BlockingStatuses lists every status for which Blocking is true.
func BlockingStatuses() []Status {
	var out []Status
	for _, s := range Statuses {
		if s.Blocking() {
			out = append(out, s)
		}
	}
	return out
}

type TimesheetEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
	OwnerID     uint      `gorm:"not null;index" json:"owner_id"`
	Owner       *User     `gorm:"foreignKey:OwnerID" json:"-"`
	Date        time.Time `gorm:"not null;type:date" json:"-"`
	Hours       float64   `gorm:"not null;type:numeric(5,2)" json:"hours"`
	Description string    `gorm:"not null;size:500" json:"description"`
	Status      Status    `gorm:"not null;size:20;index" json:"status"`
	ApproverID  *uint     `json:"approver_id"`
	Approver    *User     `gorm:"foreignKey:ApproverID" json:"-"`
}

func (TimesheetEntry) TableName() string {
	return "timesheet_entries"
}

func (e *TimesheetEntry) DateString() string {
	return e.Date.Format(DateLayout)
}

// EntryFilter narrows a list query. A zero OwnerID means every owner.
type EntryFilter struct {
	OwnerID uint
	Status  Status
}

// EntryWithOwner is an entry joined with its owner's display name.
type EntryWithOwner struct {
	TimesheetEntry
	OwnerName string `json:"owner_name"`
}
