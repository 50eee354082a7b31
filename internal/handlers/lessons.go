package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lektion/internal/app"
	"github.com/shrimpsizemoose/lektion/internal/ledger"
	"github.com/shrimpsizemoose/lektion/internal/metrics"
	"github.com/shrimpsizemoose/lektion/internal/models"
)

type LessonHandler struct {
	service *app.Service
}

func NewLessonHandler(service *app.Service) *LessonHandler {
	return &LessonHandler{
		service: service,
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNoExpectedLessons):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrAttendanceCriterionMissing):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func (h *LessonHandler) HandleSubmitLesson(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "200"
	defer func() {
		duration := time.Since(start).Seconds()
		metrics.APIRequestDuration.WithLabelValues(
			r.URL.Path,
			r.Method,
			status,
		).Observe(duration)
	}()

	if !h.service.ValidateHeaders(r.Header) {
		status = "403"
		http.Error(w, "these are not the droids you are looking for", http.StatusForbidden)
		return
	}

	classID, ok := pathID(r, "class_id")
	if !ok {
		status = "400"
		http.Error(w, "Invalid class id", http.StatusBadRequest)
		return
	}

	teacher := r.Header.Get(h.service.Config.API.TeacherIDHeader)
	if err := h.service.ValidateAuthAndTeacher(r, teacher); err != nil {
		logger.Error.Printf("Auth failed: %v", err)
		status = "401"
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var submission models.LessonSubmission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		status = "400"
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.Ledger.SubmitLesson(classID, &submission); err != nil {
		logger.Error.Printf("Failed to submit lesson for class %d: %v", classID, err)
		metrics.SubmissionsTotal.WithLabelValues(r.PathValue("class_id"), "error").Inc()
		code := statusForError(err)
		status = strconv.Itoa(code)
		http.Error(w, "Failed to save lesson", code)
		return
	}

	metrics.SubmissionsTotal.WithLabelValues(r.PathValue("class_id"), "ok").Inc()

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *LessonHandler) HandleGetLessonScores(w http.ResponseWriter, r *http.Request) {
	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusNotFound)
		return
	}

	classID, ok := pathID(r, "class_id")
	if !ok {
		http.Error(w, "Invalid class id", http.StatusBadRequest)
		return
	}
	lessonDate := r.PathValue("date")

	includeAdjacent := r.URL.Query().Get("adjacent") == "true"

	scores, err := h.service.Ledger.GetLessonScores(classID, lessonDate, includeAdjacent)
	if err != nil {
		logger.Error.Printf("Failed to fetch lesson scores: %v", err)
		http.Error(w, "Failed to fetch lesson scores", statusForError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(scores); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

func (h *LessonHandler) HandleDeleteLesson(w http.ResponseWriter, r *http.Request) {
	if !h.service.ValidateHeaders(r.Header) {
		http.Error(w, "these are not the droids you are looking for", http.StatusForbidden)
		return
	}

	classID, ok := pathID(r, "class_id")
	if !ok {
		http.Error(w, "Invalid class id", http.StatusBadRequest)
		return
	}
	lessonDate := r.PathValue("date")

	teacher := r.Header.Get(h.service.Config.API.TeacherIDHeader)
	if err := h.service.ValidateAuthAndTeacher(r, teacher); err != nil {
		logger.Error.Printf("Auth failed: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.service.Ledger.DeleteLesson(classID, lessonDate); err != nil {
		logger.Error.Printf("Failed to delete lesson %s for class %d: %v", lessonDate, classID, err)
		http.Error(w, "Failed to delete lesson", statusForError(err))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
