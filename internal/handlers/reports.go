package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lektion/internal/app"
)

type ReportHandler struct {
	service *app.Service
}

func NewReportHandler(service *app.Service) *ReportHandler {
	return &ReportHandler{
		service: service,
	}
}

func (h *ReportHandler) HandleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	studentID, ok := pathID(r, "student_id")
	if !ok {
		http.Error(w, "Invalid student id", http.StatusBadRequest)
		return
	}

	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		http.Error(w, "month is a required integer", http.StatusBadRequest)
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		http.Error(w, "year is a required integer", http.StatusBadRequest)
		return
	}

	report, err := h.service.Ledger.MonthlyReport(studentID, month, year)
	if err != nil {
		logger.Error.Printf("Failed to build monthly report for student %d: %v", studentID, err)
		http.Error(w, "Failed to build monthly report", statusForError(err))
		return
	}
	if report == nil {
		http.Error(w, "No scores for this month", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"student_id": studentID,
		"month":      month,
		"year":       year,
		"report":     report,
	}); err != nil {
		logger.Error.Printf("Failed to encode report: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

func (h *ReportHandler) HandleStudentAttendance(w http.ResponseWriter, r *http.Request) {
	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	studentID, ok := pathID(r, "student_id")
	if !ok {
		http.Error(w, "Invalid student id", http.StatusBadRequest)
		return
	}
	classID, err := strconv.ParseInt(r.URL.Query().Get("class_id"), 10, 64)
	if err != nil {
		http.Error(w, "class_id is a required integer", http.StatusBadRequest)
		return
	}

	stats, err := h.service.Ledger.StudentAttendance(
		studentID,
		classID,
		r.URL.Query().Get("start_date"),
		r.URL.Query().Get("end_date"),
	)
	if err != nil {
		logger.Error.Printf("Failed to compute attendance for student %d: %v", studentID, err)
		http.Error(w, "Failed to compute attendance", statusForError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		logger.Error.Printf("Failed to encode attendance stats: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

func (h *ReportHandler) HandleSchoolAttendance(w http.ResponseWriter, r *http.Request) {
	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	stats, err := h.service.Ledger.SchoolAttendance(
		r.URL.Query().Get("start_date"),
		r.URL.Query().Get("end_date"),
	)
	if err != nil {
		logger.Error.Printf("Failed to compute school attendance: %v", err)
		http.Error(w, "Failed to compute school attendance", statusForError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		logger.Error.Printf("Failed to encode school attendance: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

func (h *ReportHandler) HandleClassAttendance(w http.ResponseWriter, r *http.Request) {
	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	classID, ok := pathID(r, "class_id")
	if !ok {
		http.Error(w, "Invalid class id", http.StatusBadRequest)
		return
	}

	stats, err := h.service.Ledger.ClassAttendance(
		classID,
		r.URL.Query().Get("start_date"),
		r.URL.Query().Get("end_date"),
	)
	if err != nil {
		logger.Error.Printf("Failed to compute class attendance for class %d: %v", classID, err)
		http.Error(w, "Failed to compute class attendance", statusForError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		logger.Error.Printf("Failed to encode class attendance: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}
