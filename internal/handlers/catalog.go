package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/seguimed/notas/internal/app"
	"github.com/seguimed/notas/internal/models"
)

// CatalogHandler serves the three lookup entities (specialties, sites,
// teachers). They share a shape, so one handler covers all of them, keyed by
// the {catalog} path segment.
type CatalogHandler struct {
	service *app.Service
}

func NewCatalogHandler(service *app.Service) *CatalogHandler {
	return &CatalogHandler{
		service: service,
	}
}

type catalogItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

func (h *CatalogHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if !requireHeaders(h.service, w, r) {
		return
	}

	var items []catalogItem
	switch r.PathValue("catalog") {
	case "specialties":
		rows, err := h.service.Store.ListSpecialties()
		if err != nil {
			writeError(w, err)
			return
		}
		for _, s := range rows {
			items = append(items, catalogItem{s.ID, s.Name, s.CreatedAt})
		}
	case "sites":
		rows, err := h.service.Store.ListSites()
		if err != nil {
			writeError(w, err)
			return
		}
		for _, s := range rows {
			items = append(items, catalogItem{s.ID, s.Name, s.CreatedAt})
		}
	case "teachers":
		rows, err := h.service.Store.ListTeachers()
		if err != nil {
			writeError(w, err)
			return
		}
		for _, t := range rows {
			items = append(items, catalogItem{t.ID, t.Name, t.CreatedAt})
		}
	default:
		http.Error(w, "Unknown catalog", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"rows": items})
}

func (h *CatalogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.service, w, r) {
		return
	}

	var item catalogItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if item.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	var err error
	switch r.PathValue("catalog") {
	case "specialties":
		s := models.Specialty{Name: item.Name}
		if err = s.Validate(); err == nil {
			err = h.service.Store.CreateSpecialty(&s)
			item = catalogItem{s.ID, s.Name, s.CreatedAt}
		}
	case "sites":
		s := models.Site{Name: item.Name}
		if err = s.Validate(); err == nil {
			err = h.service.Store.CreateSite(&s)
			item = catalogItem{s.ID, s.Name, s.CreatedAt}
		}
	case "teachers":
		t := models.Teacher{Name: item.Name}
		if err = t.Validate(); err == nil {
			err = h.service.Store.CreateTeacher(&t)
			item = catalogItem{t.ID, t.Name, t.CreatedAt}
		}
	default:
		http.Error(w, "Unknown catalog", http.StatusNotFound)
		return
	}

	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

func (h *CatalogHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.service, w, r) {
		return
	}

	var item catalogItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	item.ID = r.PathValue("cid")

	var err error
	switch r.PathValue("catalog") {
	case "specialties":
		err = h.service.Store.UpdateSpecialty(&models.Specialty{ID: item.ID, Name: item.Name})
	case "sites":
		err = h.service.Store.UpdateSite(&models.Site{ID: item.ID, Name: item.Name})
	case "teachers":
		err = h.service.Store.UpdateTeacher(&models.Teacher{ID: item.ID, Name: item.Name})
	default:
		http.Error(w, "Unknown catalog", http.StatusNotFound)
		return
	}

	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *CatalogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.service, w, r) {
		return
	}

	var err error
	switch r.PathValue("catalog") {
	case "specialties":
		err = h.service.Store.DeleteSpecialty(r.PathValue("cid"))
	case "sites":
		err = h.service.Store.DeleteSite(r.PathValue("cid"))
	case "teachers":
		err = h.service.Store.DeleteTeacher(r.PathValue("cid"))
	default:
		http.Error(w, "Unknown catalog", http.StatusNotFound)
		return
	}

	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
