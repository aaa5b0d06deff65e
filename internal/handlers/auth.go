package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/seguimed/notas/internal/app"
	"github.com/seguimed/notas/internal/models"
)

type AuthHandler struct {
	service *app.Service
}

func NewAuthHandler(service *app.Service) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

// HandleLogin accepts the identity asserted by the external identity
// provider and trades it for a session token. A pending admin grant matching
// the email is activated here.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !requireHeaders(h.service, w, r) {
		return
	}

	var identity models.Identity
	if err := json.NewDecoder(r.Body).Decode(&identity); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.service.Login(r.Context(), &identity)
	if err != nil {
		logger.Error.Printf("Login failed for %s: %v", identity.Email, err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":    token,
		"is_admin": identity.IsAdmin,
	})
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if !requireHeaders(h.service, w, r) {
		return
	}

	authHeader := r.Header.Get(h.service.Sessions.Header())
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		http.Error(w, "No session token given", http.StatusBadRequest)
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleListGrants lists admin grants; HandleCreateGrant adds a pending one
// for an email that has not logged in yet.
func (h *AuthHandler) HandleListGrants(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.service, w, r) {
		return
	}

	grants, err := h.service.Store.ListAdminGrants()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"rows": grants})
}

func (h *AuthHandler) HandleCreateGrant(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.service, w, r) {
		return
	}

	var grant models.AdminGrant
	if err := json.NewDecoder(r.Body).Decode(&grant); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	grant.Status = models.GrantPending
	grant.AccountID = ""

	if err := grant.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.Store.CreateAdminGrant(&grant); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, grant)
}

func (h *AuthHandler) HandleDeleteGrant(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.service, w, r) {
		return
	}

	if err := h.service.Store.DeleteAdminGrant(r.PathValue("gid")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
