package store

import (
	"database/sql"
	"fmt"

	"github.com/seguimed/notas/internal/models"
)

func (s *BaseStore) CreateResident(r *models.Resident) error {
	stampNew(&r.ID, &r.CreatedAt)
	_, err := s.DB.NamedExec(`
		INSERT INTO residents (id, full_name, email, cui, dni, specialty_id, site_id, admission_year, academic_year, created_at)
		VALUES (:id, :full_name, :email, :cui, :dni, :specialty_id, :site_id, :admission_year, :academic_year, :created_at)
	`, r)
	if err != nil {
		return s.conflictOr(err, "resident")
	}
	return nil
}

func (s *BaseStore) GetResident(id string) (*models.Resident, error) {
	var r models.Resident
	query := s.Converter(`
		SELECT id, full_name, email, cui, dni, specialty_id, site_id, admission_year, academic_year, created_at
		FROM residents
		WHERE id = ?
	`)

	err := s.DB.Get(&r, query, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("resident %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resident: %w", err)
	}
	return &r, nil
}

func (s *BaseStore) UpdateResident(r *models.Resident) error {
	res, err := s.DB.NamedExec(`
		UPDATE residents SET
			full_name = :full_name,
			email = :email,
			cui = :cui,
			dni = :dni,
			specialty_id = :specialty_id,
			site_id = :site_id,
			admission_year = :admission_year,
			academic_year = :academic_year
		WHERE id = :id
	`, r)
	if err != nil {
		return fmt.Errorf("failed to update resident: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("resident %s: %w", r.ID, ErrNotFound)
	}
	return nil
}

func (s *BaseStore) DeleteResident(id string) error {
	res, err := s.DB.Exec(s.Converter(`DELETE FROM residents WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete resident: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("resident %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *BaseStore) ListResidents() ([]models.Resident, error) {
	var residents []models.Resident
	err := s.DB.Select(&residents, `
		SELECT id, full_name, email, cui, dni, specialty_id, site_id, admission_year, academic_year, created_at
		FROM residents
		ORDER BY full_name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list residents: %w", err)
	}
	return residents, nil
}

func (s *BaseStore) FindResidentByEmail(email, excludeID string) (*models.Resident, error) {
	return s.findResidentBy("email", email, excludeID)
}

func (s *BaseStore) FindResidentByCUI(cui, excludeID string) (*models.Resident, error) {
	return s.findResidentBy("cui", cui, excludeID)
}

func (s *BaseStore) FindResidentByDNI(dni, excludeID string) (*models.Resident, error) {
	return s.findResidentBy("dni", dni, excludeID)
}

// findResidentBy looks a resident up by one credential column, skipping
// excludeID so an edit does not collide with the record being edited.
func (s *BaseStore) findResidentBy(column, value, excludeID string) (*models.Resident, error) {
	var r models.Resident
	query := s.Converter(fmt.Sprintf(`
		SELECT id, full_name, email, cui, dni, specialty_id, site_id, admission_year, academic_year, created_at
		FROM residents
		WHERE %s = ?
		AND id <> ?
		LIMIT 1
	`, column))

	err := s.DB.Get(&r, query, value, excludeID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find resident by %s: %w", column, err)
	}
	return &r, nil
}

func (s *BaseStore) FindResidentByCredentials(email, cui, dni string) (*models.Resident, error) {
	var r models.Resident
	query := s.Converter(`
		SELECT id, full_name, email, cui, dni, specialty_id, site_id, admission_year, academic_year, created_at
		FROM residents
		WHERE email = ?
		AND cui = ?
		AND dni = ?
		LIMIT 1
	`)

	err := s.DB.Get(&r, query, email, cui, dni)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find resident by credentials: %w", err)
	}
	return &r, nil
}
