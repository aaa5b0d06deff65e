package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/seguimed/notas/internal/app"
	"github.com/seguimed/notas/internal/handlers"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	if err := service.Store.ApplyMigrations(service.Config.Database.MigrationsDir); err != nil {
		logger.Error.Fatalf("Failed to apply migrations: %v", err)
	}

	residentHandler := handlers.NewResidentHandler(service)
	processHandler := handlers.NewProcessHandler(service)
	enrollmentHandler := handlers.NewEnrollmentHandler(service)
	gradeHandler := handlers.NewGradeHandler(service)
	catalogHandler := handlers.NewCatalogHandler(service)
	reportHandler := handlers.NewReportHandler(service)
	authHandler := handlers.NewAuthHandler(service)

	http.HandleFunc("GET /api/v1/residents", residentHandler.HandleList)
	http.HandleFunc("POST /api/v1/residents", residentHandler.HandleCreate)
	http.HandleFunc("GET /api/v1/residents/{id}", residentHandler.HandleGet)
	http.HandleFunc("PUT /api/v1/residents/{id}", residentHandler.HandleUpdate)
	http.HandleFunc("DELETE /api/v1/residents/{id}", residentHandler.HandleDelete)
	http.HandleFunc("GET /api/v1/lookup", residentHandler.HandleLookup)

	http.HandleFunc("GET /api/v1/processes", processHandler.HandleList)
	http.HandleFunc("POST /api/v1/processes", processHandler.HandleCreate)
	http.HandleFunc("GET /api/v1/processes/{id}", processHandler.HandleGet)
	http.HandleFunc("PUT /api/v1/processes/{id}", processHandler.HandleUpdate)
	http.HandleFunc("DELETE /api/v1/processes/{id}", processHandler.HandleDelete)
	http.HandleFunc("GET /api/v1/processes/{id}/progress", processHandler.HandleProgress)
	http.HandleFunc("GET /api/v1/processes/{id}/residents/{rid}/summary", processHandler.HandleResidentSummary)

	http.HandleFunc("GET /api/v1/processes/{id}/enrollments", enrollmentHandler.HandleList)
	http.HandleFunc("POST /api/v1/processes/{id}/enrollments", enrollmentHandler.HandleEnroll)
	http.HandleFunc("DELETE /api/v1/processes/{id}/enrollments/{rid}", enrollmentHandler.HandleUnenroll)

	http.HandleFunc("GET /api/v1/processes/{id}/grades", gradeHandler.HandleListByProcess)
	http.HandleFunc("POST /api/v1/processes/{id}/grades", gradeHandler.HandleRegister)
	http.HandleFunc("GET /api/v1/processes/{id}/residents/{rid}/grades/{month}", gradeHandler.HandleFind)
	http.HandleFunc("DELETE /api/v1/processes/{id}/grades/{gid}", gradeHandler.HandleDelete)

	http.HandleFunc("GET /api/v1/processes/{id}/report", reportHandler.HandleProcessReport)
	http.HandleFunc("GET /api/v1/processes/{id}/residents/{rid}/report", reportHandler.HandleResidentReport)

	http.HandleFunc("GET /api/v1/catalogs/{catalog}", catalogHandler.HandleList)
	http.HandleFunc("POST /api/v1/catalogs/{catalog}", catalogHandler.HandleCreate)
	http.HandleFunc("PUT /api/v1/catalogs/{catalog}/{cid}", catalogHandler.HandleUpdate)
	http.HandleFunc("DELETE /api/v1/catalogs/{catalog}/{cid}", catalogHandler.HandleDelete)

	http.HandleFunc("POST /api/v1/auth/login", authHandler.HandleLogin)
	http.HandleFunc("POST /api/v1/auth/logout", authHandler.HandleLogout)
	http.HandleFunc("GET /api/v1/admins", authHandler.HandleListGrants)
	http.HandleFunc("POST /api/v1/admins", authHandler.HandleCreateGrant)
	http.HandleFunc("DELETE /api/v1/admins/{gid}", authHandler.HandleDeleteGrant)

	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting notas server on %s", service.Config.Server.Port)
	logger.Debug.Println("Requiring headers:")
	for _, h := range service.Config.API.RequiredHeaders {
		logger.Debug.Printf("  %s: %s", h.Name, h.Value)
	}
	if err := http.ListenAndServe(service.Config.Server.Port, handlers.WithMetrics(http.DefaultServeMux)); err != nil {
		logger.Error.Fatalf("Notas server failed: %v", err)
	}
}
