package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/seguimed/notas/internal/app"
	"github.com/seguimed/notas/internal/models"
)

type ProcessHandler struct {
	service *app.Service
}

func NewProcessHandler(service *app.Service) *ProcessHandler {
	return &ProcessHandler{
		service: service,
	}
}

func (h *ProcessHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if !requireHeaders(h.service, w, r) {
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"
	processes, err := h.service.Store.ListProcesses(activeOnly)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"rows": processes})
}

func (h *ProcessHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if !requireHeaders(h.service, w, r) {
		return
	}

	process, err := h.service.Store.GetProcess(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, process)
}

func (h *ProcessHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.service, w, r) {
		return
	}

	var process models.Process
	if err := json.NewDecoder(r.Body).Decode(&process); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.CreateProcess(&process); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, process)
}

func (h *ProcessHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.service, w, r) {
		return
	}

	var process models.Process
	if err := json.NewDecoder(r.Body).Decode(&process); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	process.ID = r.PathValue("id")

	if err := h.service.UpdateProcess(&process); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, process)
}

func (h *ProcessHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.service, w, r) {
		return
	}

	if err := h.service.Store.DeleteProcess(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleProgress reports how complete the grade-entry campaign is, overall
// and per month.
func (h *ProcessHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	if !requireHeaders(h.service, w, r) {
		return
	}

	progress, err := h.service.Progress.ProcessProgress(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

func (h *ProcessHandler) HandleResidentSummary(w http.ResponseWriter, r *http.Request) {
	if !requireHeaders(h.service, w, r) {
		return
	}

	summary, err := h.service.Progress.ResidentSummary(r.PathValue("id"), r.PathValue("rid"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
