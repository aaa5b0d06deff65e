package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/seguimed/notas/internal/app"
	"github.com/seguimed/notas/internal/metrics"
	"github.com/seguimed/notas/internal/models"
)

type GradeHandler struct {
	service *app.Service
}

func NewGradeHandler(service *app.Service) *GradeHandler {
	return &GradeHandler{
		service: service,
	}
}

func (h *GradeHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.service, w, r) {
		return
	}

	var grade models.Grade
	if err := json.NewDecoder(r.Body).Decode(&grade); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	grade.ProcessID = r.PathValue("id")

	if err := h.service.RegisterGrade(&grade); err != nil {
		writeError(w, err)
		return
	}

	metrics.GradesRegisteredTotal.WithLabelValues(grade.ProcessID).Inc()
	if !grade.Absent {
		metrics.GradeAverageHistogram.WithLabelValues(grade.ProcessID).Observe(grade.Average)
	}

	writeJSON(w, http.StatusCreated, grade)
}

func (h *GradeHandler) HandleListByProcess(w http.ResponseWriter, r *http.Request) {
	if !requireHeaders(h.service, w, r) {
		return
	}

	grades, err := h.service.Store.ListGradesByProcess(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"rows": grades})
}

// HandleFind answers the grade-entry form's "does this month already have a
// grade" question. 200 with the grade, or 404 when the month is open.
func (h *GradeHandler) HandleFind(w http.ResponseWriter, r *http.Request) {
	if !requireHeaders(h.service, w, r) {
		return
	}

	month, err := strconv.Atoi(r.PathValue("month"))
	if err != nil {
		http.Error(w, "Invalid month", http.StatusBadRequest)
		return
	}

	grade, err := h.service.Progress.FindExistingGrade(r.PathValue("id"), r.PathValue("rid"), month)
	if err != nil {
		writeError(w, err)
		return
	}
	if grade == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no grade registered for this month"})
		return
	}

	writeJSON(w, http.StatusOK, grade)
}

func (h *GradeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.service, w, r) {
		return
	}

	if err := h.service.Store.DeleteGrade(r.PathValue("gid")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
