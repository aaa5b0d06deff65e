package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

type Process struct {
	ID             string `db:"id" json:"id"`
	Name           string `db:"name" json:"name" validate:"required"`
	AcademicYear   string `db:"academic_year" json:"academic_year" validate:"required"`
	StartDate      int64  `db:"start_date" json:"start_date" validate:"required"`
	EndDate        int64  `db:"end_date" json:"end_date" validate:"required"`
	DurationMonths int    `db:"duration_months" json:"duration_months" validate:"required,min=1,max=60"`
	Active         bool   `db:"active" json:"active"`
	CreatedAt      int64  `db:"created_at" json:"created_at"`
}

// Validate checks field-level constraints plus the schedule invariant: the
// calendar span between start and end must be within one month short of the
// duration and two months past it.
func (p *Process) Validate() error {
	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.EndDate <= p.StartDate {
		return fmt.Errorf("end date must be after start date")
	}

	span := monthsBetween(p.StartDate, p.EndDate)
	if span < p.DurationMonths-1 || span > p.DurationMonths+2 {
		return fmt.Errorf(
			"date span of %d months does not match duration of %d months",
			span, p.DurationMonths,
		)
	}
	return nil
}

// MonthLabel is the human name of campaign month m (1-based), derived from
// the process start date. Month 1 of a process starting in January is
// "January". Anchored to the first of the start month: AddDate on a day-31
// start would normalize past short months and skip labels.
func (p *Process) MonthLabel(m int) string {
	start := time.Unix(p.StartDate, 0).UTC()
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, m-1, 0).Month().String()
}

func monthsBetween(start, end int64) int {
	s := time.Unix(start, 0).UTC()
	e := time.Unix(end, 0).UTC()
	return (e.Year()-s.Year())*12 + int(e.Month()) - int(s.Month())
}
