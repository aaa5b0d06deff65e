package store

import (
	"fmt"

	"github.com/seguimed/notas/internal/models"
)

// The three lookup tables share one shape, so the real work happens in a
// handful of table-parameterized helpers.

func (s *BaseStore) createNamed(table string, row *catalogRow) error {
	stampNew(&row.ID, &row.CreatedAt)
	query := s.Converter(fmt.Sprintf(
		`INSERT INTO %s (id, name, created_at) VALUES (?, ?, ?)`, table,
	))
	if _, err := s.DB.Exec(query, row.ID, row.Name, row.CreatedAt); err != nil {
		return s.conflictOr(err, table)
	}
	return nil
}

func (s *BaseStore) listNamed(table string) ([]catalogRow, error) {
	var rows []catalogRow
	query := fmt.Sprintf(`SELECT id, name, created_at FROM %s ORDER BY name, id`, table)
	if err := s.DB.Select(&rows, query); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	return rows, nil
}

func (s *BaseStore) renameNamed(table, id, name string) error {
	query := s.Converter(fmt.Sprintf(`UPDATE %s SET name = ? WHERE id = ?`, table))
	res, err := s.DB.Exec(query, name, id)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %s: %w", table, id, ErrNotFound)
	}
	return nil
}

func (s *BaseStore) deleteNamed(table, id string) error {
	query := s.Converter(fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table))
	res, err := s.DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %s: %w", table, id, ErrNotFound)
	}
	return nil
}

func (s *BaseStore) CreateSpecialty(sp *models.Specialty) error {
	row := catalogRow{ID: sp.ID, Name: sp.Name, CreatedAt: sp.CreatedAt}
	if err := s.createNamed("specialties", &row); err != nil {
		return err
	}
	sp.ID, sp.CreatedAt = row.ID, row.CreatedAt
	return nil
}

func (s *BaseStore) ListSpecialties() ([]models.Specialty, error) {
	rows, err := s.listNamed("specialties")
	if err != nil {
		return nil, err
	}
	out := make([]models.Specialty, len(rows))
	for i, r := range rows {
		out[i] = models.Specialty{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt}
	}
	return out, nil
}

func (s *BaseStore) UpdateSpecialty(sp *models.Specialty) error {
	return s.renameNamed("specialties", sp.ID, sp.Name)
}

func (s *BaseStore) DeleteSpecialty(id string) error {
	return s.deleteNamed("specialties", id)
}

func (s *BaseStore) CreateSite(site *models.Site) error {
	row := catalogRow{ID: site.ID, Name: site.Name, CreatedAt: site.CreatedAt}
	if err := s.createNamed("sites", &row); err != nil {
		return err
	}
	site.ID, site.CreatedAt = row.ID, row.CreatedAt
	return nil
}

func (s *BaseStore) ListSites() ([]models.Site, error) {
	rows, err := s.listNamed("sites")
	if err != nil {
		return nil, err
	}
	out := make([]models.Site, len(rows))
	for i, r := range rows {
		out[i] = models.Site{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt}
	}
	return out, nil
}

func (s *BaseStore) UpdateSite(site *models.Site) error {
	return s.renameNamed("sites", site.ID, site.Name)
}

func (s *BaseStore) DeleteSite(id string) error {
	return s.deleteNamed("sites", id)
}

func (s *BaseStore) CreateTeacher(t *models.Teacher) error {
	row := catalogRow{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt}
	if err := s.createNamed("teachers", &row); err != nil {
		return err
	}
	t.ID, t.CreatedAt = row.ID, row.CreatedAt
	return nil
}

func (s *BaseStore) ListTeachers() ([]models.Teacher, error) {
	rows, err := s.listNamed("teachers")
	if err != nil {
		return nil, err
	}
	out := make([]models.Teacher, len(rows))
	for i, r := range rows {
		out[i] = models.Teacher{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt}
	}
	return out, nil
}

func (s *BaseStore) UpdateTeacher(t *models.Teacher) error {
	return s.renameNamed("teachers", t.ID, t.Name)
}

func (s *BaseStore) DeleteTeacher(id string) error {
	return s.deleteNamed("teachers", id)
}
