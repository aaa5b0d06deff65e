package store

import (
	"database/sql"
	"fmt"

	"github.com/seguimed/notas/internal/models"
)

func (s *BaseStore) CreateProcess(p *models.Process) error {
	stampNew(&p.ID, &p.CreatedAt)
	_, err := s.DB.NamedExec(`
		INSERT INTO processes (id, name, academic_year, start_date, end_date, duration_months, active, created_at)
		VALUES (:id, :name, :academic_year, :start_date, :end_date, :duration_months, :active, :created_at)
	`, p)
	if err != nil {
		return s.conflictOr(err, "process")
	}
	return nil
}

func (s *BaseStore) GetProcess(id string) (*models.Process, error) {
	var p models.Process
	query := s.Converter(`
		SELECT id, name, academic_year, start_date, end_date, duration_months, active, created_at
		FROM processes
		WHERE id = ?
	`)

	err := s.DB.Get(&p, query, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("process %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get process: %w", err)
	}
	return &p, nil
}

func (s *BaseStore) UpdateProcess(p *models.Process) error {
	res, err := s.DB.NamedExec(`
		UPDATE processes SET
			name = :name,
			academic_year = :academic_year,
			start_date = :start_date,
			end_date = :end_date,
			duration_months = :duration_months,
			active = :active
		WHERE id = :id
	`, p)
	if err != nil {
		return fmt.Errorf("failed to update process: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("process %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

func (s *BaseStore) DeleteProcess(id string) error {
	res, err := s.DB.Exec(s.Converter(`DELETE FROM processes WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete process: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("process %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *BaseStore) ListProcesses(activeOnly bool) ([]models.Process, error) {
	query := `
		SELECT id, name, academic_year, start_date, end_date, duration_months, active, created_at
		FROM processes
	`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY start_date DESC, name`

	var processes []models.Process
	if err := s.DB.Select(&processes, query); err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	return processes, nil
}
