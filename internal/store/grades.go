package store

import (
	"database/sql"
	"fmt"

	"github.com/seguimed/notas/internal/models"
)

const gradeColumns = `id, process_id, resident_id, month, knowledge, skills, aptitude,
	absent, absence_reason, absence_detail, average, evaluator, hospital, rotation,
	observation, created_at`

func (s *BaseStore) CreateGrade(g *models.Grade) error {
	stampNew(&g.ID, &g.CreatedAt)
	_, err := s.DB.NamedExec(`
		INSERT INTO grades (id, process_id, resident_id, month, knowledge, skills, aptitude,
			absent, absence_reason, absence_detail, average, evaluator, hospital, rotation,
			observation, created_at)
		VALUES (:id, :process_id, :resident_id, :month, :knowledge, :skills, :aptitude,
			:absent, :absence_reason, :absence_detail, :average, :evaluator, :hospital, :rotation,
			:observation, :created_at)
	`, g)
	if err != nil {
		return s.conflictOr(err, "grade")
	}
	return nil
}

func (s *BaseStore) GetGrade(id string) (*models.Grade, error) {
	var g models.Grade
	query := s.Converter(fmt.Sprintf(`SELECT %s FROM grades WHERE id = ?`, gradeColumns))

	err := s.DB.Get(&g, query, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("grade %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get grade: %w", err)
	}
	return &g, nil
}

func (s *BaseStore) UpdateGrade(g *models.Grade) error {
	res, err := s.DB.NamedExec(`
		UPDATE grades SET
			knowledge = :knowledge,
			skills = :skills,
			aptitude = :aptitude,
			absent = :absent,
			absence_reason = :absence_reason,
			absence_detail = :absence_detail,
			average = :average,
			evaluator = :evaluator,
			hospital = :hospital,
			rotation = :rotation,
			observation = :observation
		WHERE id = :id
	`, g)
	if err != nil {
		return fmt.Errorf("failed to update grade: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("grade %s: %w", g.ID, ErrNotFound)
	}
	return nil
}

func (s *BaseStore) DeleteGrade(id string) error {
	res, err := s.DB.Exec(s.Converter(`DELETE FROM grades WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete grade: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("grade %s: %w", id, ErrNotFound)
	}
	return nil
}

// FindGrade returns the grade for a (process, resident, month) triple, or nil
// when none exists. Newest row wins, id as tiebreak, so the answer is
// deterministic even against inconsistent data.
func (s *BaseStore) FindGrade(processID, residentID string, month int) (*models.Grade, error) {
	var g models.Grade
	query := s.Converter(fmt.Sprintf(`
		SELECT %s FROM grades
		WHERE process_id = ?
		AND resident_id = ?
		AND month = ?
		ORDER BY created_at DESC, id
		LIMIT 1
	`, gradeColumns))

	err := s.DB.Get(&g, query, processID, residentID, month)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find grade: %w", err)
	}
	return &g, nil
}

func (s *BaseStore) ListGradesByProcess(processID string) ([]models.Grade, error) {
	var grades []models.Grade
	query := s.Converter(fmt.Sprintf(`
		SELECT %s FROM grades
		WHERE process_id = ?
		ORDER BY resident_id, month
	`, gradeColumns))

	err := s.DB.Select(&grades, query, processID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}
	return grades, nil
}

func (s *BaseStore) ListResidentGrades(processID, residentID string) ([]models.Grade, error) {
	var grades []models.Grade
	query := s.Converter(fmt.Sprintf(`
		SELECT %s FROM grades
		WHERE process_id = ?
		AND resident_id = ?
		ORDER BY month
	`, gradeColumns))

	err := s.DB.Select(&grades, query, processID, residentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resident grades: %w", err)
	}
	return grades, nil
}

func (s *BaseStore) CountGrades(processID string) (int, error) {
	var count int
	query := s.Converter(`SELECT COUNT(*) FROM grades WHERE process_id = ?`)

	if err := s.DB.Get(&count, query, processID); err != nil {
		return 0, fmt.Errorf("failed to count grades: %w", err)
	}
	return count, nil
}

func (s *BaseStore) CountGradesPerMonth(processID string) (map[int]int, error) {
	var rows []monthCount
	query := s.Converter(`
		SELECT month, COUNT(*) as count
		FROM grades
		WHERE process_id = ?
		GROUP BY month
	`)

	if err := s.DB.Select(&rows, query, processID); err != nil {
		return nil, fmt.Errorf("failed to count grades per month: %w", err)
	}

	counts := make(map[int]int, len(rows))
	for _, r := range rows {
		counts[r.Month] = r.Count
	}
	return counts, nil
}

func (s *BaseStore) ProcessHasGrades(processID string) (bool, error) {
	count, err := s.CountGrades(processID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
