package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	AbsenceVacation  = "vacation"
	AbsenceMaternity = "maternity"
	AbsenceOther     = "other"
)

// Grade is one month's evaluation of one resident in one process: either
// three 0-20 scores or an absence with a reason.
type Grade struct {
	ID            string  `db:"id" json:"id"`
	ProcessID     string  `db:"process_id" json:"process_id" validate:"required"`
	ResidentID    string  `db:"resident_id" json:"resident_id" validate:"required"`
	Month         int     `db:"month" json:"month" validate:"required,min=1"`
	Knowledge     float64 `db:"knowledge" json:"knowledge" validate:"min=0,max=20"`
	Skills        float64 `db:"skills" json:"skills" validate:"min=0,max=20"`
	Aptitude      float64 `db:"aptitude" json:"aptitude" validate:"min=0,max=20"`
	Absent        bool    `db:"absent" json:"absent"`
	AbsenceReason string  `db:"absence_reason" json:"absence_reason"`
	AbsenceDetail string  `db:"absence_detail" json:"absence_detail"`
	Average       float64 `db:"average" json:"average"`
	Evaluator     string  `db:"evaluator" json:"evaluator"`
	Hospital      string  `db:"hospital" json:"hospital"`
	Rotation      string  `db:"rotation" json:"rotation"`
	Observation   string  `db:"observation" json:"observation"`
	CreatedAt     int64   `db:"created_at" json:"created_at"`
}

func (g *Grade) Validate() error {
	validate := validator.New()
	if err := validate.Struct(g); err != nil {
		return err
	}

	if !g.Absent {
		return nil
	}

	switch g.AbsenceReason {
	case "", AbsenceVacation, AbsenceMaternity:
		return nil
	case AbsenceOther:
		if g.AbsenceDetail == "" {
			return fmt.Errorf("absence reason %q requires a detail", AbsenceOther)
		}
		return nil
	default:
		return fmt.Errorf("unknown absence reason %q", g.AbsenceReason)
	}
}

// ComputeAverage fills the derived average: the mean of the three scores, or
// exactly 0 for an absence month.
func (g *Grade) ComputeAverage() {
	if g.Absent {
		g.Average = 0
		return
	}
	g.Average = (g.Knowledge + g.Skills + g.Aptitude) / 3
}

// AbsenceText is the reason as shown in reports. An absence flagged without a
// reason reads as a vacation.
func (g *Grade) AbsenceText() string {
	switch g.AbsenceReason {
	case AbsenceMaternity:
		return "Maternity leave"
	case AbsenceOther:
		return g.AbsenceDetail
	default:
		return "Vacation"
	}
}
