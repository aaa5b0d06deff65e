package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/seguimed/notas/internal/models"
	"github.com/seguimed/notas/internal/progress"
	"github.com/seguimed/notas/internal/store"
)

type Service struct {
	Config   *Config
	Store    store.Store
	Sessions *Sessions
	Progress *progress.Tracker
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	st, err := NewStore(config.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	sessions, err := NewSessions(config)
	if err != nil {
		return nil, fmt.Errorf("failed to init sessions: %w", err)
	}

	return &Service{
		Config:   config,
		Store:    st,
		Sessions: sessions,
		Progress: progress.NewTracker(st),
	}, nil
}

// ValidationError is a malformed or out-of-range input; the HTTP layer turns
// it into a 400 with the field name attached.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (s *Service) ValidateHeaders(headers map[string][]string) bool {
	for _, required := range s.Config.API.RequiredHeaders {
		value := headers[http.CanonicalHeaderKey(required.Name)]
		if len(value) == 0 || !strings.EqualFold(value[0], required.Value) {
			return false
		}
	}
	return true
}

// RequireAdmin checks the request's bearer session token resolves to an
// admin identity. A no-op when auth is disabled in config.
func (s *Service) RequireAdmin(r *http.Request) error {
	if !s.Config.Server.EnableAuth {
		return nil
	}

	authHeader := r.Header.Get(s.Sessions.Header())
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return fmt.Errorf("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	identity, err := s.Sessions.Validate(r.Context(), token)
	if err != nil {
		return err
	}
	if !identity.IsAdmin {
		return fmt.Errorf("account %s is not an admin", identity.AccountID)
	}
	return nil
}

// CheckResidentDuplicate independently checks email, then cui, then dni for
// another resident already holding the value. First conflicting field wins;
// the remaining fields are not reported.
func (s *Service) CheckResidentDuplicate(email, cui, dni, excludeID string) (string, error) {
	checks := []struct {
		field string
		find  func() (*models.Resident, error)
	}{
		{"email", func() (*models.Resident, error) { return s.Store.FindResidentByEmail(email, excludeID) }},
		{"cui", func() (*models.Resident, error) { return s.Store.FindResidentByCUI(cui, excludeID) }},
		{"dni", func() (*models.Resident, error) { return s.Store.FindResidentByDNI(dni, excludeID) }},
	}

	for _, check := range checks {
		existing, err := check.find()
		if err != nil {
			return "", err
		}
		if existing != nil {
			return check.field, nil
		}
	}
	return "", nil
}

func (s *Service) CreateResident(r *models.Resident) error {
	if err := r.Validate(); err != nil {
		return &ValidationError{Field: "resident", Message: err.Error()}
	}

	field, err := s.CheckResidentDuplicate(r.Email, r.CUI, r.DNI, r.ID)
	if err != nil {
		return err
	}
	if field != "" {
		return &ValidationError{Field: field, Message: "already registered for another resident"}
	}

	return s.Store.CreateResident(r)
}

func (s *Service) UpdateResident(r *models.Resident) error {
	if err := r.Validate(); err != nil {
		return &ValidationError{Field: "resident", Message: err.Error()}
	}

	field, err := s.CheckResidentDuplicate(r.Email, r.CUI, r.DNI, r.ID)
	if err != nil {
		return err
	}
	if field != "" {
		return &ValidationError{Field: field, Message: "already registered for another resident"}
	}

	return s.Store.UpdateResident(r)
}

func (s *Service) CreateProcess(p *models.Process) error {
	if err := p.Validate(); err != nil {
		return &ValidationError{Field: "process", Message: err.Error()}
	}
	return s.Store.CreateProcess(p)
}

// UpdateProcess rejects duration or date changes once grades reference
// specific month numbers for the process.
func (s *Service) UpdateProcess(p *models.Process) error {
	if err := p.Validate(); err != nil {
		return &ValidationError{Field: "process", Message: err.Error()}
	}

	current, err := s.Store.GetProcess(p.ID)
	if err != nil {
		return err
	}

	frozen := current.DurationMonths != p.DurationMonths ||
		current.StartDate != p.StartDate ||
		current.EndDate != p.EndDate
	if frozen {
		hasGrades, err := s.Store.ProcessHasGrades(p.ID)
		if err != nil {
			return err
		}
		if hasGrades {
			return fmt.Errorf("process schedule is frozen once grades exist: %w", store.ErrConflict)
		}
	}

	return s.Store.UpdateProcess(p)
}

// Enroll adds a resident to a process. Fails with a conflict if an active
// enrollment already exists for the pair.
func (s *Service) Enroll(processID, residentID string) (*models.Enrollment, error) {
	if _, err := s.Store.GetProcess(processID); err != nil {
		return nil, err
	}
	if _, err := s.Store.GetResident(residentID); err != nil {
		return nil, err
	}

	existing, err := s.Store.GetActiveEnrollment(processID, residentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("resident already enrolled in process: %w", store.ErrConflict)
	}

	enrollment := &models.Enrollment{
		ProcessID:  processID,
		ResidentID: residentID,
		Active:     true,
	}
	if err := s.Store.CreateEnrollment(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// Unenroll soft-deletes the active enrollment; the row is kept for history
// and a later re-enroll creates a fresh record.
func (s *Service) Unenroll(processID, residentID string) error {
	existing, err := s.Store.GetActiveEnrollment(processID, residentID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("no active enrollment for resident in process: %w", store.ErrConflict)
	}
	return s.Store.DeactivateEnrollment(existing.ID)
}

// RegisterGrade validates and persists one month's evaluation. The
// pre-insert existence check gives the form its "already exists" warning;
// the store's unique index closes the race two concurrent submissions would
// otherwise win together.
func (s *Service) RegisterGrade(g *models.Grade) error {
	if err := g.Validate(); err != nil {
		return &ValidationError{Field: "grade", Message: err.Error()}
	}

	process, err := s.Store.GetProcess(g.ProcessID)
	if err != nil {
		return err
	}
	if g.Month > process.DurationMonths {
		return &ValidationError{
			Field:   "month",
			Message: fmt.Sprintf("month %d is outside process duration of %d months", g.Month, process.DurationMonths),
		}
	}

	if _, err := s.Store.GetResident(g.ResidentID); err != nil {
		return err
	}

	enrollment, err := s.Store.GetActiveEnrollment(g.ProcessID, g.ResidentID)
	if err != nil {
		return err
	}
	if enrollment == nil {
		return fmt.Errorf("resident is not enrolled in process: %w", store.ErrNotFound)
	}

	existing, err := s.Progress.FindExistingGrade(g.ProcessID, g.ResidentID, g.Month)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("grade for month %d already registered: %w", g.Month, store.ErrConflict)
	}

	g.ComputeAverage()
	return s.Store.CreateGrade(g)
}

// LookupProcess is one process a publicly looked-up resident participates
// in, with their completion summary attached.
type LookupProcess struct {
	Process models.Process            `json:"process"`
	Summary *progress.ResidentSummary `json:"summary"`
}

type LookupResult struct {
	Resident  *models.Resident `json:"resident"`
	Processes []LookupProcess  `json:"processes"`
}

// LookupResident is the public lookup by credential triple. All three values
// must match a single resident.
func (s *Service) LookupResident(email, cui, dni string) (*LookupResult, error) {
	resident, err := s.Store.FindResidentByCredentials(email, cui, dni)
	if err != nil {
		return nil, err
	}
	if resident == nil {
		return nil, fmt.Errorf("no resident matches the given credentials: %w", store.ErrNotFound)
	}

	processes, err := s.Store.ListProcessesForResident(resident.ID)
	if err != nil {
		return nil, err
	}

	result := &LookupResult{Resident: resident, Processes: []LookupProcess{}}
	for _, p := range processes {
		summary, err := s.Progress.ResidentSummary(p.ID, resident.ID)
		if err != nil {
			return nil, err
		}
		result.Processes = append(result.Processes, LookupProcess{Process: p, Summary: summary})
	}

	return result, nil
}

// Login resolves the identity asserted by the identity provider into a
// session. A pending admin grant matching the email activates here, keyed by
// the account id from then on.
func (s *Service) Login(ctx context.Context, identity *models.Identity) (string, error) {
	if err := identity.Validate(); err != nil {
		return "", &ValidationError{Field: "identity", Message: err.Error()}
	}

	pending, err := s.Store.GetPendingGrantByEmail(identity.Email)
	if err != nil {
		return "", err
	}
	if pending != nil {
		if _, err := s.Store.ActivateGrant(pending, identity.AccountID); err != nil {
			return "", err
		}
	}

	active, err := s.Store.GetActiveGrantByAccount(identity.AccountID)
	if err != nil {
		return "", err
	}
	identity.IsAdmin = active != nil

	return s.Sessions.Issue(ctx, identity)
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.Sessions.Revoke(ctx, token)
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Sessions.Close(); err != nil {
		errs = append(errs, fmt.Errorf("sessions: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
