package handlers

import (
	"net/http"
	"time"

	"timesheet/models"
	"timesheet/service"
)

type TimesheetHandler struct {
	entries service.EntryService
}

func NewTimesheetHandler(entries service.EntryService) *TimesheetHandler {
	return &TimesheetHandler{entries: entries}
}

type entryRequest struct {
	Date        string  `json:"date"`
	EntryDate   string  `json:"entry_date"`
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
}

func (req entryRequest) input() service.EntryInput {
	date := req.Date
	if date == "" {
		date = req.EntryDate
	}
	return service.EntryInput{Date: date, Hours: req.Hours, Description: req.Description}
}

type statusRequest struct {
	Status string `json:"status"`
}

type entryResponse struct {
	ID          uint          `json:"id"`
	OwnerID     uint          `json:"owner_id"`
	OwnerName   string        `json:"owner_name,omitempty"`
	Date        string        `json:"date"`
	Hours       float64       `json:"hours"`
	Description string        `json:"description"`
	Status      models.Status `json:"status"`
	ApproverID  *uint         `json:"approver_id"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func newEntryResponse(e *models.TimesheetEntry, ownerName string) entryResponse {
	return entryResponse{
		ID:          e.ID,
		OwnerID:     e.OwnerID,
		OwnerName:   ownerName,
		Date:        e.DateString(),
		Hours:       e.Hours,
		Description: e.Description,
		Status:      e.Status,
		ApproverID:  e.ApproverID,
		CreatedAt:   e.CreatedAt.UTC(),
		UpdatedAt:   e.UpdatedAt.UTC(),
	}
}

// List answers with the caller's entries, or every entry for managers.
// ?status= narrows the list.
func (h *TimesheetHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.entries.List(r.Context(), principal(r), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]entryResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, newEntryResponse(&rows[i].TimesheetEntry, rows[i].OwnerName))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *TimesheetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := h.entries.Get(r.Context(), principal(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newEntryResponse(entry, ""))
}

func (h *TimesheetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := h.entries.Create(r.Context(), principal(r), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newEntryResponse(entry, ""))
}

func (h *TimesheetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req entryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := h.entries.Update(r.Context(), principal(r), id, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newEntryResponse(entry, ""))
}

// SetStatus approves or rejects an entry. Any role in the query string or
// body is ignored; only the session's role counts.
func (h *TimesheetHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := h.entries.SetStatus(r.Context(), principal(r), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newEntryResponse(entry, ""))
}

func (h *TimesheetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.entries.Delete(r.Context(), principal(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
}
