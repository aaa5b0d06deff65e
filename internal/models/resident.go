package models

import (
	"github.com/go-playground/validator/v10"
)

// AcademicYearGraduated marks a resident who finished the program; active
// residents carry year 1..7.
const AcademicYearGraduated = 0

type Resident struct {
	ID            string `db:"id" json:"id"`
	FullName      string `db:"full_name" json:"full_name" validate:"required"`
	Email         string `db:"email" json:"email" validate:"required,email"`
	CUI           string `db:"cui" json:"cui" validate:"required"`
	DNI           string `db:"dni" json:"dni" validate:"required"`
	SpecialtyID   string `db:"specialty_id" json:"specialty_id"`
	SiteID        string `db:"site_id" json:"site_id"`
	AdmissionYear int    `db:"admission_year" json:"admission_year" validate:"required,min=1990"`
	AcademicYear  int    `db:"academic_year" json:"academic_year" validate:"min=0,max=7"`
	CreatedAt     int64  `db:"created_at" json:"created_at"`
}

func (r *Resident) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

func (r *Resident) Graduated() bool {
	return r.AcademicYear == AcademicYearGraduated
}
