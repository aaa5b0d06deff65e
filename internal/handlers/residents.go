package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/seguimed/notas/internal/app"
	"github.com/seguimed/notas/internal/models"
)

type ResidentHandler struct {
	service *app.Service
}

func NewResidentHandler(service *app.Service) *ResidentHandler {
	return &ResidentHandler{
		service: service,
	}
}

func (h *ResidentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if !requireHeaders(h.service, w, r) {
		return
	}

	residents, err := h.service.Store.ListResidents()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"rows": residents})
}

func (h *ResidentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if !requireHeaders(h.service, w, r) {
		return
	}

	resident, err := h.service.Store.GetResident(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resident)
}

func (h *ResidentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.service, w, r) {
		return
	}

	var resident models.Resident
	if err := json.NewDecoder(r.Body).Decode(&resident); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.CreateResident(&resident); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resident)
}

func (h *ResidentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.service, w, r) {
		return
	}

	var resident models.Resident
	if err := json.NewDecoder(r.Body).Decode(&resident); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	resident.ID = r.PathValue("id")

	if err := h.service.UpdateResident(&resident); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resident)
}

func (h *ResidentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.service, w, r) {
		return
	}

	if err := h.service.Store.DeleteResident(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleLookup is the public credential-triple lookup: a resident can check
// their own progress with email+CUI+DNI, no admin session needed.
func (h *ResidentHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	cui := r.URL.Query().Get("cui")
	dni := r.URL.Query().Get("dni")
	if email == "" || cui == "" || dni == "" {
		http.Error(w, "email, cui and dni are all required", http.StatusBadRequest)
		return
	}

	result, err := h.service.LookupResident(email, cui, dni)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
