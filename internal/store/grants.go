package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/seguimed/notas/internal/models"
)

func (s *BaseStore) CreateAdminGrant(g *models.AdminGrant) error {
	stampNew(&g.ID, &g.CreatedAt)
	_, err := s.DB.NamedExec(`
		INSERT INTO admin_grants (id, email, account_id, status, created_at)
		VALUES (:id, :email, :account_id, :status, :created_at)
	`, g)
	if err != nil {
		return s.conflictOr(err, "admin grant")
	}
	return nil
}

func (s *BaseStore) ListAdminGrants() ([]models.AdminGrant, error) {
	var grants []models.AdminGrant
	err := s.DB.Select(&grants, `
		SELECT id, email, account_id, status, created_at
		FROM admin_grants
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin grants: %w", err)
	}
	return grants, nil
}

func (s *BaseStore) DeleteAdminGrant(id string) error {
	res, err := s.DB.Exec(s.Converter(`DELETE FROM admin_grants WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete admin grant: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("admin grant %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *BaseStore) GetPendingGrantByEmail(email string) (*models.AdminGrant, error) {
	return s.findGrant(`WHERE email = ? AND status = 'pending'`, email)
}

func (s *BaseStore) GetActiveGrantByAccount(accountID string) (*models.AdminGrant, error) {
	return s.findGrant(`WHERE account_id = ? AND status = 'active'`, accountID)
}

func (s *BaseStore) findGrant(where, arg string) (*models.AdminGrant, error) {
	var g models.AdminGrant
	query := s.Converter(fmt.Sprintf(`
		SELECT id, email, account_id, status, created_at
		FROM admin_grants
		%s
		LIMIT 1
	`, where))

	err := s.DB.Get(&g, query, arg)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find admin grant: %w", err)
	}
	return &g, nil
}

// ActivateGrant swaps a pending grant for an active one keyed by the
// authenticated account, in one transaction, keeping the original creation
// timestamp.
func (s *BaseStore) ActivateGrant(pending *models.AdminGrant, accountID string) (*models.AdminGrant, error) {
	active := &models.AdminGrant{
		ID:        uuid.NewString(),
		Email:     pending.Email,
		AccountID: accountID,
		Status:    models.GrantActive,
		CreatedAt: pending.CreatedAt,
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(s.Converter(`DELETE FROM admin_grants WHERE id = ?`), pending.ID); err != nil {
		return nil, fmt.Errorf("failed to delete pending grant: %w", err)
	}

	_, err = tx.NamedExec(`
		INSERT INTO admin_grants (id, email, account_id, status, created_at)
		VALUES (:id, :email, :account_id, :status, :created_at)
	`, active)
	if err != nil {
		return nil, fmt.Errorf("failed to insert active grant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit grant activation: %w", err)
	}
	return active, nil
}
