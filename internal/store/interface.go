package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/seguimed/notas/internal/models"
)

var (
	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict means the write would violate a uniqueness rule, e.g. a
	// second grade for the same (process, resident, month).
	ErrConflict = errors.New("record conflict")
)

type Store interface {
	Close() error
	ApplyMigrations(dir string) error

	CreateResident(r *models.Resident) error
	GetResident(id string) (*models.Resident, error)
	UpdateResident(r *models.Resident) error
	DeleteResident(id string) error
	ListResidents() ([]models.Resident, error)
	FindResidentByEmail(email, excludeID string) (*models.Resident, error)
	FindResidentByCUI(cui, excludeID string) (*models.Resident, error)
	FindResidentByDNI(dni, excludeID string) (*models.Resident, error)
	FindResidentByCredentials(email, cui, dni string) (*models.Resident, error)

	CreateProcess(p *models.Process) error
	GetProcess(id string) (*models.Process, error)
	UpdateProcess(p *models.Process) error
	DeleteProcess(id string) error
	ListProcesses(activeOnly bool) ([]models.Process, error)

	CreateEnrollment(e *models.Enrollment) error
	GetActiveEnrollment(processID, residentID string) (*models.Enrollment, error)
	DeactivateEnrollment(id string) error
	ListActiveEnrollments(processID string) ([]models.Enrollment, error)
	CountActiveEnrollments(processID string) (int, error)
	ListProcessesForResident(residentID string) ([]models.Process, error)

	CreateGrade(g *models.Grade) error
	GetGrade(id string) (*models.Grade, error)
	UpdateGrade(g *models.Grade) error
	DeleteGrade(id string) error
	FindGrade(processID, residentID string, month int) (*models.Grade, error)
	ListGradesByProcess(processID string) ([]models.Grade, error)
	ListResidentGrades(processID, residentID string) ([]models.Grade, error)
	CountGrades(processID string) (int, error)
	CountGradesPerMonth(processID string) (map[int]int, error)
	ProcessHasGrades(processID string) (bool, error)

	CreateSpecialty(s *models.Specialty) error
	ListSpecialties() ([]models.Specialty, error)
	UpdateSpecialty(s *models.Specialty) error
	DeleteSpecialty(id string) error
	CreateSite(s *models.Site) error
	ListSites() ([]models.Site, error)
	UpdateSite(s *models.Site) error
	DeleteSite(id string) error
	CreateTeacher(t *models.Teacher) error
	ListTeachers() ([]models.Teacher, error)
	UpdateTeacher(t *models.Teacher) error
	DeleteTeacher(id string) error

	CreateAdminGrant(g *models.AdminGrant) error
	ListAdminGrants() ([]models.AdminGrant, error)
	DeleteAdminGrant(id string) error
	GetPendingGrantByEmail(email string) (*models.AdminGrant, error)
	GetActiveGrantByAccount(accountID string) (*models.AdminGrant, error)
	ActivateGrant(pending *models.AdminGrant, accountID string) (*models.AdminGrant, error)
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB *sqlx.DB
	// Converter rewrites '?' placeholders into the dialect's own form.
	Converter func(string) string
	// IsUniqueViolation reports whether a driver error came from a unique
	// constraint, so callers can surface ErrConflict instead of a raw error.
	IsUniqueViolation func(error) bool
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

// stampNew assigns the store-side fields of a fresh record. Callers may
// pre-set the id to create a record under an explicit key.
func stampNew(id *string, createdAt *int64) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if *createdAt == 0 {
		*createdAt = time.Now().Unix()
	}
}

func (s *BaseStore) conflictOr(err error, what string) error {
	if s.IsUniqueViolation != nil && s.IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w", what, ErrConflict)
	}
	return fmt.Errorf("failed to create %s: %w", what, err)
}
