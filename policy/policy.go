// Package policy decides who may do what to a timesheet entry. Every function
// is a pure decision over a server-side principal; callers turn a false into
// a 403.
package policy

import "timesheet/models"

// CanView allows managers and admins to see any entry and everyone else to see
// their own.
func CanView(p models.Principal, e *models.TimesheetEntry) bool {
	if e == nil {
		return false
	}
	return p.IsManager() || e.OwnerID == p.UserID
}

// CanEdit allows only the owner to change an entry's date, hours or
// description, and only while it is pending.
func CanEdit(p models.Principal, e *models.TimesheetEntry) bool {
	if e == nil {
		return false
	}
	return e.OwnerID == p.UserID && e.Status == models.StatusPending
}

// CanTransitionStatus allows approval and rejection by managers and admins.
func CanTransitionStatus(p models.Principal) bool {
	return p.IsManager()
}

// CanResolve is CanTransitionStatus applied to a concrete entry: nobody
// resolves their own entry, whatever their role.
func CanResolve(p models.Principal, e *models.TimesheetEntry) bool {
	if e == nil || !CanTransitionStatus(p) {
		return false
	}
	return e.OwnerID != p.UserID
}

// CanDelete allows managers and admins to delete any entry and owners to
// delete their own pending entries.
func CanDelete(p models.Principal, e *models.TimesheetEntry) bool {
	if e == nil {
		return false
	}
	if p.IsManager() {
		return true
	}
	return CanEdit(p, e)
}

// CanReport gates every aggregate report.
func CanReport(p models.Principal) bool {
	return p.IsManager()
}
