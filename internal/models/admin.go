package models

import (
	"github.com/go-playground/validator/v10"
)

const (
	GrantPending = "pending"
	GrantActive  = "active"
)

// AdminGrant allows an email to act as an administrator. A pending grant has
// no account yet; it activates the first time an identity with a matching
// email logs in.
type AdminGrant struct {
	ID        string `db:"id" json:"id"`
	Email     string `db:"email" json:"email" validate:"required,email"`
	AccountID string `db:"account_id" json:"account_id"`
	Status    string `db:"status" json:"status" validate:"required,oneof=pending active"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
}

func (g *AdminGrant) Validate() error {
	validate := validator.New()
	return validate.Struct(g)
}

// Identity is what the external identity provider asserts about a logged-in
// account. IsAdmin is resolved against admin grants at login, never taken
// from the provider.
type Identity struct {
	AccountID   string `json:"account_id" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin"`
}

func (i *Identity) Validate() error {
	validate := validator.New()
	return validate.Struct(i)
}
