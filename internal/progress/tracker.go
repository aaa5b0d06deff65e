package progress

import (
	"fmt"

	"github.com/seguimed/notas/internal/models"
)

// Store is the slice of the record store the aggregator reads from.
type Store interface {
	GetProcess(id string) (*models.Process, error)
	CountActiveEnrollments(processID string) (int, error)
	CountGrades(processID string) (int, error)
	CountGradesPerMonth(processID string) (map[int]int, error)
	ListResidentGrades(processID, residentID string) ([]models.Grade, error)
	FindGrade(processID, residentID string, month int) (*models.Grade, error)
}

type Tracker struct {
	store Store
}

func NewTracker(store Store) *Tracker {
	return &Tracker{store: store}
}

type MonthProgress struct {
	Month         int     `json:"month"`
	Registered    int     `json:"registered"`
	Pending       int     `json:"pending"`
	CompletionPct float64 `json:"completion_pct"`
}

type ProcessProgress struct {
	ProcessID         string          `json:"process_id"`
	ActiveEnrollments int             `json:"active_enrollments"`
	DurationMonths    int             `json:"duration_months"`
	TotalExpected     int             `json:"total_expected"`
	Registered        int             `json:"registered"`
	Pending           int             `json:"pending"`
	CompletionPct     float64         `json:"completion_pct"`
	Months            []MonthProgress `json:"months"`
}

type ResidentSummary struct {
	ProcessID     string  `json:"process_id"`
	ResidentID    string  `json:"resident_id"`
	GradeCount    int     `json:"grade_count"`
	PendingMonths []int   `json:"pending_months"`
	AverageScore  float64 `json:"average_score"`
}

// ProcessProgress reports how complete the grade-entry campaign for a process
// is, overall and month by month. Everything is recomputed from the store on
// each call; nothing is cached.
//
// Pending is deliberately not clamped at zero: registered > expected means
// stale data (grades from unenrolled residents, say) and the caller should
// see that, not have it hidden.
func (t *Tracker) ProcessProgress(processID string) (*ProcessProgress, error) {
	process, err := t.store.GetProcess(processID)
	if err != nil {
		return nil, fmt.Errorf("progress for process %s: %w", processID, err)
	}

	enrolled, err := t.store.CountActiveEnrollments(processID)
	if err != nil {
		return nil, err
	}

	registered, err := t.store.CountGrades(processID)
	if err != nil {
		return nil, err
	}

	perMonth, err := t.store.CountGradesPerMonth(processID)
	if err != nil {
		return nil, err
	}

	expected := enrolled * process.DurationMonths

	p := &ProcessProgress{
		ProcessID:         processID,
		ActiveEnrollments: enrolled,
		DurationMonths:    process.DurationMonths,
		TotalExpected:     expected,
		Registered:        registered,
		Pending:           expected - registered,
		CompletionPct:     pct(registered, expected),
		Months:            make([]MonthProgress, 0, process.DurationMonths),
	}

	for m := 1; m <= process.DurationMonths; m++ {
		inMonth := perMonth[m]
		p.Months = append(p.Months, MonthProgress{
			Month:         m,
			Registered:    inMonth,
			Pending:       enrolled - inMonth,
			CompletionPct: pct(inMonth, enrolled),
		})
	}

	return p, nil
}

// ResidentSummary lists the months still missing a grade for one resident in
// one process, plus the mean score across the months that do have one.
func (t *Tracker) ResidentSummary(processID, residentID string) (*ResidentSummary, error) {
	process, err := t.store.GetProcess(processID)
	if err != nil {
		return nil, fmt.Errorf("summary for process %s: %w", processID, err)
	}

	grades, err := t.store.ListResidentGrades(processID, residentID)
	if err != nil {
		return nil, err
	}

	graded := make(map[int]bool, len(grades))
	var scoreSum float64
	var scored int
	for _, g := range grades {
		graded[g.Month] = true
		if !g.Absent {
			scoreSum += g.Average
			scored++
		}
	}

	summary := &ResidentSummary{
		ProcessID:     processID,
		ResidentID:    residentID,
		GradeCount:    len(grades),
		PendingMonths: []int{},
	}
	for m := 1; m <= process.DurationMonths; m++ {
		if !graded[m] {
			summary.PendingMonths = append(summary.PendingMonths, m)
		}
	}
	// Average over non-absence grades only; exactly 0 when there are none.
	if scored > 0 {
		summary.AverageScore = scoreSum / float64(scored)
	}

	return summary, nil
}

// FindExistingGrade returns the grade already registered for the triple, or
// nil when the month is still open. Used both to block duplicate submission
// and to warn in the entry form.
func (t *Tracker) FindExistingGrade(processID, residentID string, month int) (*models.Grade, error) {
	return t.store.FindGrade(processID, residentID, month)
}

// pct is registered/expected as a percentage, defined as 0 for an empty
// denominator so an empty campaign reads as 0% rather than dividing by zero.
func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
