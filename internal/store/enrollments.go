package store

import (
	"database/sql"
	"fmt"

	"github.com/seguimed/notas/internal/models"
)

func (s *BaseStore) CreateEnrollment(e *models.Enrollment) error {
	stampNew(&e.ID, &e.CreatedAt)
	_, err := s.DB.NamedExec(`
		INSERT INTO enrollments (id, process_id, resident_id, active, created_at)
		VALUES (:id, :process_id, :resident_id, :active, :created_at)
	`, e)
	if err != nil {
		return s.conflictOr(err, "enrollment")
	}
	return nil
}

func (s *BaseStore) GetActiveEnrollment(processID, residentID string) (*models.Enrollment, error) {
	var e models.Enrollment
	query := s.Converter(`
		SELECT id, process_id, resident_id, active, created_at
		FROM enrollments
		WHERE process_id = ?
		AND resident_id = ?
		AND active
		LIMIT 1
	`)

	err := s.DB.Get(&e, query, processID, residentID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active enrollment: %w", err)
	}
	return &e, nil
}

// DeactivateEnrollment soft-deletes: the row stays so enrollment history
// survives re-enrollment.
func (s *BaseStore) DeactivateEnrollment(id string) error {
	query := s.Converter(`UPDATE enrollments SET active = FALSE WHERE id = ?`)
	res, err := s.DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate enrollment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("enrollment %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *BaseStore) ListActiveEnrollments(processID string) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	query := s.Converter(`
		SELECT id, process_id, resident_id, active, created_at
		FROM enrollments
		WHERE process_id = ?
		AND active
		ORDER BY created_at, id
	`)

	err := s.DB.Select(&enrollments, query, processID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active enrollments: %w", err)
	}
	return enrollments, nil
}

func (s *BaseStore) CountActiveEnrollments(processID string) (int, error) {
	var count int
	query := s.Converter(`
		SELECT COUNT(*) FROM enrollments
		WHERE process_id = ?
		AND active
	`)

	if err := s.DB.Get(&count, query, processID); err != nil {
		return 0, fmt.Errorf("failed to count active enrollments: %w", err)
	}
	return count, nil
}

func (s *BaseStore) ListProcessesForResident(residentID string) ([]models.Process, error) {
	var processes []models.Process
	query := s.Converter(`
		SELECT p.id, p.name, p.academic_year, p.start_date, p.end_date, p.duration_months, p.active, p.created_at
		FROM processes p
		JOIN enrollments e ON e.process_id = p.id
		WHERE e.resident_id = ?
		AND e.active
		ORDER BY p.start_date DESC, p.name
	`)

	err := s.DB.Select(&processes, query, residentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes for resident: %w", err)
	}
	return processes, nil
}
