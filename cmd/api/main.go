package main

import (
	"fmt"
	"net/http"

	"github.com/hcmclinic/triage-shift-backend-go/internal/config"
	appHTTP "github.com/hcmclinic/triage-shift-backend-go/internal/handler/http"
	"github.com/hcmclinic/triage-shift-backend-go/internal/pkg/cron"
	"github.com/hcmclinic/triage-shift-backend-go/internal/pkg/database"
	"github.com/hcmclinic/triage-shift-backend-go/internal/pkg/jwt"
	"github.com/hcmclinic/triage-shift-backend-go/internal/pkg/sse"
	"github.com/hcmclinic/triage-shift-backend-go/internal/repository/postgresql"
	shiftService "github.com/hcmclinic/triage-shift-backend-go/internal/service/shift"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	if err := database.RunMigrations(dsn); err != nil {
		fmt.Println("Error running migrations:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	assignmentRepo := postgresql.NewShiftAssignmentRepository(db)
	sessionRepo := postgresql.NewShiftSessionRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.SSETokenTTL)
	hub := sse.NewHub()

	shiftSvc := shiftService.NewShiftService(assignmentRepo, sessionRepo, hub, cfg.Seed)

	shiftHandler := appHTTP.NewShiftHandler(shiftSvc, JWTService, hub)

	scheduler := cron.NewScheduler()
	shiftJobs := cron.NewShiftJobs(sessionRepo, db)
	shiftJobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		JWTService,
		shiftHandler,
		cfg.App.Env,
		cfg.App.AllowedOrigins,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
