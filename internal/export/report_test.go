package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/seguimed/notas/internal/models"
)

func openWorkbook(t *testing.T, doc []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(doc))
	require.NoError(t, err, "exported document must be a readable workbook")
	t.Cleanup(func() { f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, sheet string, col, row int) string {
	t.Helper()
	name, err := excelize.CoordinatesToCellName(col, row)
	require.NoError(t, err)
	v, err := f.GetCellValue(sheet, name)
	require.NoError(t, err)
	return v
}

func testProcess(duration int) *models.Process {
	return &models.Process{
		ID:             "p1",
		Name:           "Internal Rotation",
		AcademicYear:   "2025",
		StartDate:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Unix(),
		EndDate:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, duration, 0).Unix(),
		DurationMonths: duration,
	}
}

func TestProcessReport(t *testing.T) {
	exporter := NewExporter("")
	exportedAt := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	data := ProcessReportData{
		Process: testProcess(3),
		Residents: []models.Resident{
			{ID: "r1", FullName: "Ana Pérez", SpecialtyID: "s1", SiteID: "h1"},
			{ID: "r2", FullName: "Luis Gómez", SpecialtyID: "s1", SiteID: "h1"},
			{ID: "r3", FullName: "Marta Díaz"},
		},
		Grades: []models.Grade{
			{ID: "g1", ProcessID: "p1", ResidentID: "r1", Month: 1, Knowledge: 12, Skills: 12, Aptitude: 12, Average: 12},
			{ID: "g2", ProcessID: "p1", ResidentID: "r1", Month: 2, Absent: true, AbsenceReason: models.AbsenceVacation},
		},
		Sites:       []models.Site{{ID: "h1", Name: "Hospital Central"}},
		Specialties: []models.Specialty{{ID: "s1", Name: "Cardiology"}},
	}

	doc, filename, err := exporter.ProcessReport(data, exportedAt)
	require.NoError(t, err)

	assert.Equal(t, "2025_Internal_Rotation_15-06-2025.xlsx", filename)

	f := openWorkbook(t, doc)
	const sheet = "Evaluations"

	// First specialty section: title, header, two residents.
	assert.Equal(t, "Cardiology", cell(t, f, sheet, 1, 1))
	assert.Equal(t, "#", cell(t, f, sheet, 1, 2))
	assert.Equal(t, "Full Name", cell(t, f, sheet, 2, 2))
	assert.Equal(t, "Site", cell(t, f, sheet, 3, 2))
	assert.Equal(t, "January", cell(t, f, sheet, 4, 2))
	assert.Equal(t, "February", cell(t, f, sheet, 5, 2))
	assert.Equal(t, "March", cell(t, f, sheet, 6, 2))
	assert.Equal(t, "Final Average", cell(t, f, sheet, 7, 2))
	assert.Equal(t, "Final Score", cell(t, f, sheet, 8, 2))

	assert.Equal(t, "Ana Pérez", cell(t, f, sheet, 2, 3))
	assert.Equal(t, "Hospital Central", cell(t, f, sheet, 3, 3))
	assert.Equal(t, "12", cell(t, f, sheet, 4, 3))
	assert.Equal(t, "Vacation", cell(t, f, sheet, 5, 3))
	assert.Equal(t, "Pending", cell(t, f, sheet, 6, 3))
	// The divisor stays 12 no matter the duration: 12/12 == 1.
	assert.Equal(t, "1", cell(t, f, sheet, 7, 3))
	assert.Equal(t, "0.8", cell(t, f, sheet, 8, 3))

	// Ungraded resident in the same group.
	assert.Equal(t, "Luis Gómez", cell(t, f, sheet, 2, 4))
	assert.Equal(t, "Pending", cell(t, f, sheet, 4, 4))
	assert.Equal(t, "0", cell(t, f, sheet, 7, 4))
	assert.Equal(t, "0", cell(t, f, sheet, 8, 4))

	// Residents without a specialty land in the trailing synthetic group.
	assert.Equal(t, "Unspecified", cell(t, f, sheet, 1, 6))
	assert.Equal(t, "Marta Díaz", cell(t, f, sheet, 2, 8))

	// Summary sheet carries process metadata and per-group stats.
	assert.Equal(t, "Process", cell(t, f, "Summary", 1, 1))
	assert.Equal(t, "Internal Rotation", cell(t, f, "Summary", 2, 1))
	assert.Equal(t, "Specialty", cell(t, f, "Summary", 1, 8))
	assert.Equal(t, "Cardiology", cell(t, f, "Summary", 1, 9))
	assert.Equal(t, "2", cell(t, f, "Summary", 2, 9))
	assert.Equal(t, "12", cell(t, f, "Summary", 3, 9), "group mean counts non-absence grades only")
}

func TestProcessReport_AllAbsencesIsZero(t *testing.T) {
	exporter := NewExporter("")

	grades := make([]models.Grade, 12)
	for m := 1; m <= 12; m++ {
		grades[m-1] = models.Grade{
			ID: "g", ProcessID: "p1", ResidentID: "r1", Month: m,
			Absent: true, AbsenceReason: models.AbsenceMaternity,
		}
	}

	data := ProcessReportData{
		Process:   testProcess(12),
		Residents: []models.Resident{{ID: "r1", FullName: "Ana Pérez"}},
		Grades:    grades,
	}

	doc, _, err := exporter.ProcessReport(data, time.Now())
	require.NoError(t, err)

	f := openWorkbook(t, doc)
	// 12 absence months contribute nothing: final average and score both 0.
	assert.Equal(t, "0", cell(t, f, "Evaluations", 16, 3))
	assert.Equal(t, "0", cell(t, f, "Evaluations", 17, 3))
	for m := 1; m <= 12; m++ {
		assert.Equal(t, "Maternity leave", cell(t, f, "Evaluations", 3+m, 3))
	}
}

func TestProcessReport_GroupOrderIsFirstSeen(t *testing.T) {
	exporter := NewExporter("")

	data := ProcessReportData{
		Process: testProcess(1),
		Residents: []models.Resident{
			{ID: "r1", FullName: "Zoe", SpecialtyID: "s2"},
			{ID: "r2", FullName: "Abe", SpecialtyID: "s1"},
		},
		Specialties: []models.Specialty{
			{ID: "s1", Name: "Anesthesiology"},
			{ID: "s2", Name: "Surgery"},
		},
	}

	doc, _, err := exporter.ProcessReport(data, time.Now())
	require.NoError(t, err)

	f := openWorkbook(t, doc)
	// Surgery appears first because its resident is listed first, even
	// though Anesthesiology sorts before it alphabetically.
	assert.Equal(t, "Surgery", cell(t, f, "Evaluations", 1, 1))
	assert.Equal(t, "Anesthesiology", cell(t, f, "Evaluations", 1, 5))
}

func TestProcessReport_DanglingSpecialtyRefsShareOneGroup(t *testing.T) {
	exporter := NewExporter("")

	// Two residents whose specialty refs resolve to nothing, plus one with no
	// ref at all. All three belong in a single "Unspecified" section.
	data := ProcessReportData{
		Process: testProcess(1),
		Residents: []models.Resident{
			{ID: "r1", FullName: "Ana Pérez", SpecialtyID: "deleted-spec-1"},
			{ID: "r2", FullName: "Luis Gómez", SpecialtyID: "deleted-spec-2"},
			{ID: "r3", FullName: "Marta Díaz"},
		},
	}

	doc, _, err := exporter.ProcessReport(data, time.Now())
	require.NoError(t, err)

	f := openWorkbook(t, doc)
	const sheet = "Evaluations"

	assert.Equal(t, "Unspecified", cell(t, f, sheet, 1, 1))
	assert.Equal(t, "Ana Pérez", cell(t, f, sheet, 2, 3))
	assert.Equal(t, "Luis Gómez", cell(t, f, sheet, 2, 4))
	assert.Equal(t, "Marta Díaz", cell(t, f, sheet, 2, 5))
	// No second section follows the blank spacer row.
	assert.Equal(t, "", cell(t, f, sheet, 1, 7))
}

func TestResidentReport(t *testing.T) {
	exporter := NewExporter("2006-01-02 15:04")
	registered := time.Date(2025, 2, 3, 9, 30, 0, 0, time.UTC)

	resident := &models.Resident{ID: "r1", FullName: "Ana Pérez"}
	process := testProcess(3)
	grades := []models.Grade{
		{
			ID: "g1", ProcessID: "p1", ResidentID: "r1", Month: 1,
			Knowledge: 14, Skills: 16, Aptitude: 18, Average: 16,
			Evaluator: "Dr. Ruiz", Hospital: "Hospital Central", Rotation: "Pediatrics",
			Observation: "solid month", CreatedAt: registered.Unix(),
		},
		{
			ID: "g2", ProcessID: "p1", ResidentID: "r1", Month: 2,
			Absent: true, AbsenceReason: models.AbsenceOther, AbsenceDetail: "Congress attendance",
			CreatedAt: registered.Unix(),
		},
	}

	doc, filename, err := exporter.ResidentReport(resident, process, grades, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "2025_Ana_Pérez_15-06-2025.xlsx", filename)

	f := openWorkbook(t, doc)
	const sheet = "Evaluations"

	assert.Equal(t, "Ana Pérez", cell(t, f, sheet, 1, 1))
	assert.Equal(t, "Month", cell(t, f, sheet, 1, 2))

	// Month 1: a regular evaluation.
	assert.Equal(t, "January", cell(t, f, sheet, 1, 3))
	assert.Equal(t, "2025-02-03 09:30", cell(t, f, sheet, 2, 3))
	assert.Equal(t, "Dr. Ruiz", cell(t, f, sheet, 3, 3))
	assert.Equal(t, "Active", cell(t, f, sheet, 6, 3))
	assert.Equal(t, "14", cell(t, f, sheet, 7, 3))
	assert.Equal(t, "16", cell(t, f, sheet, 10, 3))
	assert.Equal(t, "solid month", cell(t, f, sheet, 11, 3))

	// Month 2: an absence; scores and date are dashed/blank.
	assert.Equal(t, "February", cell(t, f, sheet, 1, 4))
	assert.Equal(t, "", cell(t, f, sheet, 2, 4))
	assert.Equal(t, "Congress attendance", cell(t, f, sheet, 6, 4))
	assert.Equal(t, "-", cell(t, f, sheet, 7, 4))
	assert.Equal(t, "-", cell(t, f, sheet, 10, 4))

	// Month 3: no grade at all, the row still exists.
	assert.Equal(t, "March", cell(t, f, sheet, 1, 5))
	assert.Equal(t, "Pending", cell(t, f, sheet, 6, 5))
	assert.Equal(t, "-", cell(t, f, sheet, 7, 5))
}
