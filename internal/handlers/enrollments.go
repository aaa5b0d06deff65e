package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/seguimed/notas/internal/app"
)

type EnrollmentHandler struct {
	service *app.Service
}

func NewEnrollmentHandler(service *app.Service) *EnrollmentHandler {
	return &EnrollmentHandler{
		service: service,
	}
}

type enrollmentRequest struct {
	ResidentID string `json:"resident_id"`
}

func (h *EnrollmentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if !requireHeaders(h.service, w, r) {
		return
	}

	enrollments, err := h.service.Store.ListActiveEnrollments(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"rows": enrollments})
}

func (h *EnrollmentHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.service, w, r) {
		return
	}

	var req enrollmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ResidentID == "" {
		http.Error(w, "resident_id is required", http.StatusBadRequest)
		return
	}

	enrollment, err := h.service.Enroll(r.PathValue("id"), req.ResidentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, enrollment)
}

func (h *EnrollmentHandler) HandleUnenroll(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.service, w, r) {
		return
	}

	if err := h.service.Unenroll(r.PathValue("id"), r.PathValue("rid")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
