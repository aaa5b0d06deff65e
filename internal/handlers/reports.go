package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/seguimed/notas/internal/app"
	"github.com/seguimed/notas/internal/export"
	"github.com/seguimed/notas/internal/metrics"
	"github.com/seguimed/notas/internal/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	service  *app.Service
	exporter *export.Exporter
}

func NewReportHandler(service *app.Service) *ReportHandler {
	return &ReportHandler{
		service:  service,
		exporter: export.NewExporter(service.Config.Display.TimestampFormat),
	}
}

// HandleProcessReport streams the process workbook as a download. All data
// is fetched up front; rendering itself never touches the store.
func (h *ReportHandler) HandleProcessReport(w http.ResponseWriter, r *http.Request) {
	if !requireHeaders(h.service, w, r) {
		return
	}

	processID := r.PathValue("id")
	process, err := h.service.Store.GetProcess(processID)
	if err != nil {
		writeError(w, err)
		return
	}

	enrollments, err := h.service.Store.ListActiveEnrollments(processID)
	if err != nil {
		writeError(w, err)
		return
	}

	enrolled := make(map[string]bool, len(enrollments))
	for _, e := range enrollments {
		enrolled[e.ResidentID] = true
	}

	allResidents, err := h.service.Store.ListResidents()
	if err != nil {
		writeError(w, err)
		return
	}
	var residents []models.Resident
	for _, resident := range allResidents {
		if enrolled[resident.ID] {
			residents = append(residents, resident)
		}
	}

	grades, err := h.service.Store.ListGradesByProcess(processID)
	if err != nil {
		writeError(w, err)
		return
	}
	sites, err := h.service.Store.ListSites()
	if err != nil {
		writeError(w, err)
		return
	}
	specialties, err := h.service.Store.ListSpecialties()
	if err != nil {
		writeError(w, err)
		return
	}

	doc, filename, err := h.exporter.ProcessReport(export.ProcessReportData{
		Process:     process,
		Residents:   residents,
		Grades:      grades,
		Sites:       sites,
		Specialties: specialties,
	}, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.ExportsTotal.WithLabelValues("process").Inc()
	serveWorkbook(w, doc, filename)
}

func (h *ReportHandler) HandleResidentReport(w http.ResponseWriter, r *http.Request) {
	if !requireHeaders(h.service, w, r) {
		return
	}

	process, err := h.service.Store.GetProcess(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	resident, err := h.service.Store.GetResident(r.PathValue("rid"))
	if err != nil {
		writeError(w, err)
		return
	}

	grades, err := h.service.Store.ListResidentGrades(process.ID, resident.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	doc, filename, err := h.exporter.ResidentReport(resident, process, grades, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.ExportsTotal.WithLabelValues("resident").Inc()
	serveWorkbook(w, doc, filename)
}

func serveWorkbook(w http.ResponseWriter, doc []byte, filename string) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(doc)))
	w.Write(doc)
}
