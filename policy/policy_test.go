package policy

import (
	"testing"

	"timesheet/models"
)

var (
	employee = models.Principal{UserID: 1, Role: models.RoleEmployee}
	other    = models.Principal{UserID: 2, Role: models.RoleEmployee}
	manager  = models.Principal{UserID: 3, Role: models.RoleManager}
	admin    = models.Principal{UserID: 4, Role: models.RoleAdmin}
)

func entry(owner uint, status models.Status) *models.TimesheetEntry {
	return &models.TimesheetEntry{ID: 10, OwnerID: owner, Status: status, Hours: 8}
}

func TestCanView(t *testing.T) {
	tests := []struct {
		name string
		p    models.Principal
		e    *models.TimesheetEntry
		want bool
	}{
		{"owner", employee, entry(1, models.StatusPending), true},
		{"owner approved", employee, entry(1, models.StatusApproved), true},
		{"other employee", other, entry(1, models.StatusPending), false},
		{"manager", manager, entry(1, models.StatusRejected), true},
		{"admin", admin, entry(1, models.StatusApproved), true},
		{"nil entry", admin, nil, false},
	}
	for _, tt := range tests {
		if got := CanView(tt.p, tt.e); got != tt.want {
			t.Errorf("%s: CanView = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCanEdit(t *testing.T) {
	tests := []struct {
		name string
		p    models.Principal
		e    *models.TimesheetEntry
		want bool
	}{
		{"owner pending", employee, entry(1, models.StatusPending), true},
		{"owner approved", employee, entry(1, models.StatusApproved), false},
		{"owner rejected", employee, entry(1, models.StatusRejected), false},
		{"other employee", other, entry(1, models.StatusPending), false},
		{"manager not owner", manager, entry(1, models.StatusPending), false},
		{"admin not owner", admin, entry(1, models.StatusPending), false},
	}
	for _, tt := range tests {
		if got := CanEdit(tt.p, tt.e); got != tt.want {
			t.Errorf("%s: CanEdit = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCanTransitionStatus(t *testing.T) {
	if CanTransitionStatus(employee) {
		t.Error("employee must not transition status")
	}
	if !CanTransitionStatus(manager) || !CanTransitionStatus(admin) {
		t.Error("manager and admin must transition status")
	}
	if CanTransitionStatus(models.Principal{UserID: 9, Role: "superuser"}) {
		t.Error("unknown role must not transition status")
	}
}

func TestCanResolveOwnEntry(t *testing.T) {
	if CanResolve(manager, entry(manager.UserID, models.StatusPending)) {
		t.Error("manager resolved their own entry")
	}
	if !CanResolve(manager, entry(1, models.StatusPending)) {
		t.Error("manager could not resolve an employee entry")
	}
	if CanResolve(employee, entry(2, models.StatusPending)) {
		t.Error("employee resolved an entry")
	}
}

func TestCanDelete(t *testing.T) {
	tests := []struct {
		name string
		p    models.Principal
		e    *models.TimesheetEntry
		want bool
	}{
		{"owner pending", employee, entry(1, models.StatusPending), true},
		{"owner approved", employee, entry(1, models.StatusApproved), false},
		{"other employee", other, entry(1, models.StatusPending), false},
		{"manager approved", manager, entry(1, models.StatusApproved), true},
		{"admin rejected", admin, entry(1, models.StatusRejected), true},
	}
	for _, tt := range tests {
		if got := CanDelete(tt.p, tt.e); got != tt.want {
			t.Errorf("%s: CanDelete = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCanReport(t *testing.T) {
	if CanReport(employee) {
		t.Error("employee must not read reports")
	}
	if !CanReport(manager) || !CanReport(admin) {
		t.Error("manager and admin must read reports")
	}
}
