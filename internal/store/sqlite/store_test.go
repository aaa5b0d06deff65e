// internal/store/sqlite/store_test.go
package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seguimed/notas/internal/models"
	"github.com/seguimed/notas/internal/store"
)

// setupTestDB creates an in-memory SQLite database with the real migrations
// applied, dialect-translated.
func setupTestDB(t *testing.T) *SQLiteStore {
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err, "Failed to create store")

	err = s.ApplyMigrations("../../../migrations")
	require.NoError(t, err, "Failed to apply migrations")

	t.Cleanup(func() {
		require.NoError(t, s.Close(), "Failed to close database")
	})

	return s
}

func newResident(email, cui, dni string) *models.Resident {
	return &models.Resident{
		FullName:      "Ana Pérez",
		Email:         email,
		CUI:           cui,
		DNI:           dni,
		AdmissionYear: 2023,
		AcademicYear:  2,
	}
}

func TestResidentCRUD(t *testing.T) {
	s := setupTestDB(t)

	resident := newResident("ana@hospital.test", "cui-1", "dni-1")

	t.Run("create assigns id and timestamp", func(t *testing.T) {
		require.NoError(t, s.CreateResident(resident))
		assert.NotEmpty(t, resident.ID)
		assert.NotZero(t, resident.CreatedAt)
	})

	t.Run("get", func(t *testing.T) {
		got, err := s.GetResident(resident.ID)
		require.NoError(t, err)
		assert.Equal(t, resident.Email, got.Email)
		assert.Equal(t, resident.CUI, got.CUI)
	})

	t.Run("get missing is NotFound", func(t *testing.T) {
		_, err := s.GetResident("nope")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("update", func(t *testing.T) {
		resident.AcademicYear = 3
		require.NoError(t, s.UpdateResident(resident))

		got, err := s.GetResident(resident.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.AcademicYear)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		err := s.CreateResident(newResident("ana@hospital.test", "cui-2", "dni-2"))
		assert.ErrorIs(t, err, store.ErrConflict)
	})

	t.Run("find by credential column skips the excluded id", func(t *testing.T) {
		found, err := s.FindResidentByEmail("ana@hospital.test", "")
		require.NoError(t, err)
		require.NotNil(t, found)

		found, err = s.FindResidentByEmail("ana@hospital.test", resident.ID)
		require.NoError(t, err)
		assert.Nil(t, found, "the record being edited does not conflict with itself")
	})

	t.Run("find by credentials needs all three to match", func(t *testing.T) {
		found, err := s.FindResidentByCredentials("ana@hospital.test", "cui-1", "dni-1")
		require.NoError(t, err)
		require.NotNil(t, found)

		found, err = s.FindResidentByCredentials("ana@hospital.test", "cui-1", "wrong")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeleteResident(resident.ID))
		_, err := s.GetResident(resident.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func testProcess() *models.Process {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return &models.Process{
		Name:           "Internal Rotation",
		AcademicYear:   "2025",
		StartDate:      start.Unix(),
		EndDate:        start.AddDate(0, 3, 0).Unix(),
		DurationMonths: 3,
		Active:         true,
	}
}

func TestEnrollmentLifecycle(t *testing.T) {
	s := setupTestDB(t)

	process := testProcess()
	require.NoError(t, s.CreateProcess(process))
	resident := newResident("ana@hospital.test", "cui-1", "dni-1")
	require.NoError(t, s.CreateResident(resident))

	first := &models.Enrollment{ProcessID: process.ID, ResidentID: resident.ID, Active: true}
	require.NoError(t, s.CreateEnrollment(first))

	t.Run("second active enrollment violates the partial index", func(t *testing.T) {
		dup := &models.Enrollment{ProcessID: process.ID, ResidentID: resident.ID, Active: true}
		assert.ErrorIs(t, s.CreateEnrollment(dup), store.ErrConflict)
	})

	t.Run("deactivate keeps the row", func(t *testing.T) {
		require.NoError(t, s.DeactivateEnrollment(first.ID))

		active, err := s.GetActiveEnrollment(process.ID, resident.ID)
		require.NoError(t, err)
		assert.Nil(t, active)

		count, err := s.CountActiveEnrollments(process.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("re-enroll creates a fresh record", func(t *testing.T) {
		second := &models.Enrollment{ProcessID: process.ID, ResidentID: resident.ID, Active: true}
		require.NoError(t, s.CreateEnrollment(second))
		assert.NotEqual(t, first.ID, second.ID)

		active, err := s.GetActiveEnrollment(process.ID, resident.ID)
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, second.ID, active.ID)
	})

	t.Run("processes listed for resident via active enrollments", func(t *testing.T) {
		processes, err := s.ListProcessesForResident(resident.ID)
		require.NoError(t, err)
		require.Len(t, processes, 1)
		assert.Equal(t, process.ID, processes[0].ID)
	})
}

func TestGradeUniqueness(t *testing.T) {
	s := setupTestDB(t)

	process := testProcess()
	require.NoError(t, s.CreateProcess(process))

	grade := &models.Grade{
		ProcessID:  process.ID,
		ResidentID: "r1",
		Month:      1,
		Knowledge:  14, Skills: 15, Aptitude: 16,
		Average: 15,
	}
	require.NoError(t, s.CreateGrade(grade))

	t.Run("second grade for the triple is a conflict", func(t *testing.T) {
		dup := &models.Grade{ProcessID: process.ID, ResidentID: "r1", Month: 1, Average: 10}
		assert.ErrorIs(t, s.CreateGrade(dup), store.ErrConflict)
	})

	t.Run("find returns the stored grade", func(t *testing.T) {
		got, err := s.FindGrade(process.ID, "r1", 1)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, grade.ID, got.ID)
		assert.Equal(t, 15.0, got.Average)
	})

	t.Run("find returns nil for an open month", func(t *testing.T) {
		got, err := s.FindGrade(process.ID, "r1", 2)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("counts", func(t *testing.T) {
		other := &models.Grade{ProcessID: process.ID, ResidentID: "r2", Month: 1, Absent: true}
		require.NoError(t, s.CreateGrade(other))

		count, err := s.CountGrades(process.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		perMonth, err := s.CountGradesPerMonth(process.ID)
		require.NoError(t, err)
		assert.Equal(t, map[int]int{1: 2}, perMonth)

		hasGrades, err := s.ProcessHasGrades(process.ID)
		require.NoError(t, err)
		assert.True(t, hasGrades)
	})
}

func TestCatalogTables(t *testing.T) {
	s := setupTestDB(t)

	specialty := &models.Specialty{Name: "Cardiology"}
	require.NoError(t, s.CreateSpecialty(specialty))
	assert.NotEmpty(t, specialty.ID)

	t.Run("duplicate name is a conflict", func(t *testing.T) {
		assert.ErrorIs(t, s.CreateSpecialty(&models.Specialty{Name: "Cardiology"}), store.ErrConflict)
	})

	t.Run("rename and list", func(t *testing.T) {
		specialty.Name = "Cardiología"
		require.NoError(t, s.UpdateSpecialty(specialty))

		rows, err := s.ListSpecialties()
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Cardiología", rows[0].Name)
	})

	t.Run("sites and teachers share the same shape", func(t *testing.T) {
		require.NoError(t, s.CreateSite(&models.Site{Name: "Hospital Central"}))
		require.NoError(t, s.CreateTeacher(&models.Teacher{Name: "Dr. Ruiz"}))

		sites, err := s.ListSites()
		require.NoError(t, err)
		assert.Len(t, sites, 1)

		teachers, err := s.ListTeachers()
		require.NoError(t, err)
		assert.Len(t, teachers, 1)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeleteSpecialty(specialty.ID))
		assert.ErrorIs(t, s.DeleteSpecialty(specialty.ID), store.ErrNotFound)
	})
}

func TestGrantActivation(t *testing.T) {
	s := setupTestDB(t)

	pending := &models.AdminGrant{
		Email:     "chief@hospital.test",
		Status:    models.GrantPending,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Unix(),
	}
	require.NoError(t, s.CreateAdminGrant(pending))

	t.Run("pending grant found by email", func(t *testing.T) {
		got, err := s.GetPendingGrantByEmail("chief@hospital.test")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, pending.ID, got.ID)
	})

	t.Run("activation swaps the record, keeping created_at", func(t *testing.T) {
		active, err := s.ActivateGrant(pending, "acct-42")
		require.NoError(t, err)

		assert.NotEqual(t, pending.ID, active.ID)
		assert.Equal(t, models.GrantActive, active.Status)
		assert.Equal(t, pending.CreatedAt, active.CreatedAt)

		stillPending, err := s.GetPendingGrantByEmail("chief@hospital.test")
		require.NoError(t, err)
		assert.Nil(t, stillPending)

		byAccount, err := s.GetActiveGrantByAccount("acct-42")
		require.NoError(t, err)
		require.NotNil(t, byAccount)
		assert.Equal(t, active.ID, byAccount.ID)
	})

	t.Run("unknown account has no grant", func(t *testing.T) {
		got, err := s.GetActiveGrantByAccount("acct-999")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
