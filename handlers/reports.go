package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"timesheet/archive"
	"timesheet/middleware"
	"timesheet/models"
	"timesheet/service"
)

type ReportHandler struct {
	reports service.ReportService
	sink    archive.Sink
	prefix  string
	now     func() time.Time
}

// NewReportHandler takes a nil sink when archiving is not configured.
func NewReportHandler(reports service.ReportService, sink archive.Sink, prefix string) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		sink:    sink,
		prefix:  prefix,
		now:     time.Now,
	}
}

func (h *ReportHandler) Hours(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.HoursByEmployee(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *ReportHandler) HoursByDateRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.reports.HoursByDateRange(r.Context(), principal(r), q.Get("start"), q.Get("end"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *ReportHandler) HoursCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.HoursByEmployee(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("hours_%s.csv", h.now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	if err := writeHoursCSV(w, rows); err != nil {
		middleware.LoggerFrom(r.Context()).WithError(err).Warn("write csv export")
	}
}

// Archive uploads the hours report as CSV to the configured bucket.
func (h *ReportHandler) Archive(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.HoursByEmployee(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if h.sink == nil {
		writeError(w, r, service.Unavailable("report archive is not configured"))
		return
	}

	var buf bytes.Buffer
	if err := writeHoursCSV(&buf, rows); err != nil {
		writeError(w, r, service.Internal(err))
		return
	}

	name := archive.ObjectName(h.prefix, "hours", h.now())
	location, err := h.sink.Put(r.Context(), name, "text/csv", &buf)
	if err != nil {
		writeError(w, r, service.Internal(err))
		return
	}

	middleware.LoggerFrom(r.Context()).WithField("location", location).Info("hours report archived")
	writeJSON(w, http.StatusCreated, map[string]string{"location": location})
}

func writeHoursCSV(w io.Writer, rows []models.MonthlyHours) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Employee", "Month", "Year", "Hours"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.UserName,
			strconv.Itoa(row.Month),
			strconv.Itoa(row.Year),
			fmt.Sprintf("%.2f", row.TotalHours),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
