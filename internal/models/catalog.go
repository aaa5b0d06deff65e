package models

import (
	"github.com/go-playground/validator/v10"
)

// Specialty, Site and Teacher are flat lookup tables: a unique name each,
// referenced from residents and grade entry forms.

type Specialty struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name" validate:"required"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
}

type Site struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name" validate:"required"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
}

type Teacher struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name" validate:"required"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
}

func (s *Specialty) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}

func (s *Site) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}

func (t *Teacher) Validate() error {
	validate := validator.New()
	return validate.Struct(t)
}
