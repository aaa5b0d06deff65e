package export

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/seguimed/notas/internal/models"
)

const (
	// finalScoreWeight is the fixed 80% weighting applied to the final
	// average; it is not configurable.
	finalScoreWeight = 0.8

	// finalAverageDivisor: grand totals divide by 12 regardless of the
	// process duration. The historical reports this replaces did exactly
	// that, and changing it would change every exported number, so it stays.
	finalAverageDivisor = 12.0

	pendingMarker = "Pending"
	activeStatus  = "Active"

	unspecifiedGroup = "Unspecified"

	filenameDateFormat = "02-01-2006"
)

// Exporter renders already-fetched evaluation data into xlsx workbooks. It
// never touches the store; both report builders are pure data-to-bytes.
type Exporter struct {
	// TimestampFormat formats grade registration datetimes in the
	// single-resident report.
	TimestampFormat string
}

func NewExporter(timestampFormat string) *Exporter {
	if timestampFormat == "" {
		timestampFormat = "2006-01-02 15:04"
	}
	return &Exporter{TimestampFormat: timestampFormat}
}

// ProcessReportData is everything the process-level report reads. The caller
// fetches it up front; no store round-trips happen during rendering.
type ProcessReportData struct {
	Process     *models.Process
	Residents   []models.Resident
	Grades      []models.Grade
	Sites       []models.Site
	Specialties []models.Specialty
}

type specialtyGroup struct {
	name      string
	residents []models.Resident
}

// ProcessReport builds the per-process workbook: one "Evaluations" sheet with
// residents grouped by specialty, one "Summary" sheet with per-group stats.
// Returns the document bytes and the file name to offer it under.
func (e *Exporter) ProcessReport(data ProcessReportData, exportedAt time.Time) ([]byte, string, error) {
	if data.Process == nil {
		return nil, "", fmt.Errorf("process report: no process given")
	}
	process := data.Process

	siteNames := make(map[string]string, len(data.Sites))
	for _, s := range data.Sites {
		siteNames[s.ID] = s.Name
	}
	specNames := make(map[string]string, len(data.Specialties))
	for _, s := range data.Specialties {
		specNames[s.ID] = s.Name
	}

	// grade per (resident, month); FindGrade semantics are per-triple unique,
	// so last writer wins here is fine.
	gradeFor := make(map[string]map[int]*models.Grade)
	for i := range data.Grades {
		g := &data.Grades[i]
		if gradeFor[g.ResidentID] == nil {
			gradeFor[g.ResidentID] = make(map[int]*models.Grade)
		}
		gradeFor[g.ResidentID][g.Month] = g
	}

	groups := groupBySpecialty(data.Residents, specNames)

	f := excelize.NewFile()
	sheet := "Evaluations"
	index, err := f.NewSheet(sheet)
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to create header style: %w", err)
	}
	groupStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
	})
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to create group style: %w", err)
	}

	header := []interface{}{"#", "Full Name", "Site"}
	for m := 1; m <= process.DurationMonths; m++ {
		header = append(header, process.MonthLabel(m))
	}
	header = append(header, "Final Average", "Final Score")

	row := 1
	for _, group := range groups {
		if err := setRow(f, sheet, row, []interface{}{group.name}); err != nil {
			f.Close()
			return nil, "", err
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		f.SetCellStyle(sheet, cell, cell, groupStyle)
		row++

		if err := setRow(f, sheet, row, header); err != nil {
			f.Close()
			return nil, "", err
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(header), row)
		f.SetCellStyle(sheet, first, last, headerStyle)
		row++

		for i, resident := range group.residents {
			values := []interface{}{i + 1, resident.FullName, siteNames[resident.SiteID]}

			var contributions float64
			for m := 1; m <= process.DurationMonths; m++ {
				grade := gradeFor[resident.ID][m]
				switch {
				case grade == nil:
					values = append(values, pendingMarker)
				case grade.Absent:
					values = append(values, grade.AbsenceText())
				default:
					avg := round2(grade.Average)
					values = append(values, avg)
					contributions += avg
				}
			}

			finalAverage := round2(contributions / finalAverageDivisor)
			finalScore := round2(finalAverage * finalScoreWeight)
			values = append(values, finalAverage, finalScore)

			if err := setRow(f, sheet, row, values); err != nil {
				f.Close()
				return nil, "", err
			}
			row++
		}

		row++ // blank row between specialty sections
	}

	f.SetColWidth(sheet, "B", "B", 32)
	f.SetColWidth(sheet, "C", "C", 24)

	if err := e.writeSummarySheet(f, data, groups, gradeFor, exportedAt); err != nil {
		f.Close()
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to serialize workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close workbook: %w", err)
	}

	return buf.Bytes(), reportFilename(process.AcademicYear, process.Name, exportedAt), nil
}

func (e *Exporter) writeSummarySheet(
	f *excelize.File,
	data ProcessReportData,
	groups []specialtyGroup,
	gradeFor map[string]map[int]*models.Grade,
	exportedAt time.Time,
) error {
	sheet := "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	process := data.Process
	meta := [][]interface{}{
		{"Process", process.Name},
		{"Academic Year", process.AcademicYear},
		{"Duration (months)", process.DurationMonths},
		{"Start", time.Unix(process.StartDate, 0).UTC().Format("2006-01-02")},
		{"End", time.Unix(process.EndDate, 0).UTC().Format("2006-01-02")},
		{"Exported", exportedAt.Format(e.TimestampFormat)},
	}

	row := 1
	for _, m := range meta {
		if err := setRow(f, sheet, row, m); err != nil {
			return err
		}
		row++
	}
	row++

	if err := setRow(f, sheet, row, []interface{}{"Specialty", "Residents", "Mean Score"}); err != nil {
		return err
	}
	row++

	for _, group := range groups {
		var sum float64
		var count int
		for _, resident := range group.residents {
			for _, grade := range gradeFor[resident.ID] {
				if !grade.Absent {
					sum += grade.Average
					count++
				}
			}
		}
		mean := 0.0
		if count > 0 {
			mean = round2(sum / float64(count))
		}

		if err := setRow(f, sheet, row, []interface{}{group.name, len(group.residents), mean}); err != nil {
			return err
		}
		row++
	}

	f.SetColWidth(sheet, "A", "A", 24)
	return nil
}

// ResidentReport builds the single-resident workbook: one row per campaign
// month, always all months, graded or not.
func (e *Exporter) ResidentReport(
	resident *models.Resident,
	process *models.Process,
	grades []models.Grade,
	exportedAt time.Time,
) ([]byte, string, error) {
	if resident == nil || process == nil {
		return nil, "", fmt.Errorf("resident report: missing resident or process")
	}

	gradeFor := make(map[int]*models.Grade, len(grades))
	for i := range grades {
		gradeFor[grades[i].Month] = &grades[i]
	}

	f := excelize.NewFile()
	sheet := "Evaluations"
	index, err := f.NewSheet(sheet)
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to create header style: %w", err)
	}

	if err := setRow(f, sheet, 1, []interface{}{resident.FullName}); err != nil {
		f.Close()
		return nil, "", err
	}

	header := []interface{}{
		"Month", "Date", "Evaluator", "Hospital", "Rotation", "Status",
		"Knowledge", "Skills", "Aptitude", "Average", "Observation",
	}
	if err := setRow(f, sheet, 2, header); err != nil {
		f.Close()
		return nil, "", err
	}
	first, _ := excelize.CoordinatesToCellName(1, 2)
	last, _ := excelize.CoordinatesToCellName(len(header), 2)
	f.SetCellStyle(sheet, first, last, headerStyle)

	for m := 1; m <= process.DurationMonths; m++ {
		grade := gradeFor[m]

		date := ""
		evaluator, hospital, rotation, observation := "", "", "", ""
		status := pendingMarker
		var knowledge, skills, aptitude, average interface{} = "-", "-", "-", "-"

		if grade != nil {
			evaluator = grade.Evaluator
			hospital = grade.Hospital
			rotation = grade.Rotation
			observation = grade.Observation
			if grade.Absent {
				status = grade.AbsenceText()
			} else {
				status = activeStatus
				date = time.Unix(grade.CreatedAt, 0).UTC().Format(e.TimestampFormat)
				knowledge = grade.Knowledge
				skills = grade.Skills
				aptitude = grade.Aptitude
				average = round2(grade.Average)
			}
		}

		values := []interface{}{
			process.MonthLabel(m), date, evaluator, hospital, rotation, status,
			knowledge, skills, aptitude, average, observation,
		}
		if err := setRow(f, sheet, m+2, values); err != nil {
			f.Close()
			return nil, "", err
		}
	}

	f.SetColWidth(sheet, "A", "F", 18)
	f.SetColWidth(sheet, "K", "K", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to serialize workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close workbook: %w", err)
	}

	return buf.Bytes(), reportFilename(process.AcademicYear, resident.FullName, exportedAt), nil
}

// groupBySpecialty buckets residents by specialty in first-seen order.
// First-seen rather than alphabetical is a deliberate, stable choice: groups
// come out in the order the resident roster lists them. Buckets are keyed by
// the resolved display name so every unresolvable specialty ref, whatever its
// value, lands in the one "Unspecified" section.
func groupBySpecialty(residents []models.Resident, specNames map[string]string) []specialtyGroup {
	var order []string
	byName := make(map[string]*specialtyGroup)

	for _, r := range residents {
		name := specNames[r.SpecialtyID]
		if r.SpecialtyID == "" || name == "" {
			name = unspecifiedGroup
		}
		if byName[name] == nil {
			byName[name] = &specialtyGroup{name: name}
			order = append(order, name)
		}
		byName[name].residents = append(byName[name].residents, r)
	}

	groups := make([]specialtyGroup, 0, len(order))
	for _, name := range order {
		groups = append(groups, *byName[name])
	}
	return groups
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to locate row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

// reportFilename embeds the academic year, the name with whitespace collapsed
// to underscores, and the export date.
func reportFilename(academicYear, name string, exportedAt time.Time) string {
	sanitized := strings.Join(strings.Fields(name), "_")
	return fmt.Sprintf("%s_%s_%s.xlsx", academicYear, sanitized, exportedAt.Format(filenameDateFormat))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
