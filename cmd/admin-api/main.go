package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appointmenthandler "github.com/clinika/clinika-backend/internal/appointments/handler"
	appointmentrepo "github.com/clinika/clinika-backend/internal/appointments/repository"
	appointmentservice "github.com/clinika/clinika-backend/internal/appointments/service"
	"github.com/clinika/clinika-backend/internal/audit"
	authhandler "github.com/clinika/clinika-backend/internal/auth/handler"
	"github.com/clinika/clinika-backend/internal/auth/jwt"
	authrepo "github.com/clinika/clinika-backend/internal/auth/repository"
	authservice "github.com/clinika/clinika-backend/internal/auth/service"
	cataloghandler "github.com/clinika/clinika-backend/internal/catalog/handler"
	catalogrepo "github.com/clinika/clinika-backend/internal/catalog/repository"
	catalogservice "github.com/clinika/clinika-backend/internal/catalog/service"
	expensehandler "github.com/clinika/clinika-backend/internal/expenses/handler"
	expenserepo "github.com/clinika/clinika-backend/internal/expenses/repository"
	expenseservice "github.com/clinika/clinika-backend/internal/expenses/service"
	"github.com/clinika/clinika-backend/internal/lookup"
	patienthandler "github.com/clinika/clinika-backend/internal/patients/handler"
	patientrepo "github.com/clinika/clinika-backend/internal/patients/repository"
	patientservice "github.com/clinika/clinika-backend/internal/patients/service"
	staffhandler "github.com/clinika/clinika-backend/internal/staff/handler"
	staffrepo "github.com/clinika/clinika-backend/internal/staff/repository"
	staffservice "github.com/clinika/clinika-backend/internal/staff/service"
	"github.com/clinika/clinika-backend/internal/storage"
	"github.com/clinika/clinika-backend/pkg/config"
	"github.com/clinika/clinika-backend/pkg/database"
	"github.com/clinika/clinika-backend/pkg/httputil"
	"github.com/clinika/clinika-backend/pkg/logger"
	"github.com/clinika/clinika-backend/pkg/messaging"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation("admin-api")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("admin-api", cfg.Server.Environment)
	log.Info().Msg("starting Clinika admin API")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ when configured; without a broker audit events are
	// dropped rather than blocking startup.
	var recorder audit.Recorder = audit.Nop{}
	if cfg.RabbitMQ.URL != "" {
		rmq, err := messaging.New(&cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		recorder, err = audit.NewPublisher(rmq, "admin-api", log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create audit publisher")
		}
	} else {
		log.Warn().Msg("rabbitmq url not set, audit events disabled")
	}

	// Photo storage
	files, err := storage.NewFileStore(cfg.Storage.Dir, cfg.Storage.BaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize file storage")
	}

	// Query orchestrator over the candidate CRM relations
	orch := lookup.New(db, log)

	// Auth
	jwtManager := jwt.NewManager(&cfg.JWT)
	authSvc := authservice.NewAuthService(
		authrepo.NewUserRepository(db),
		authrepo.NewSessionRepository(db),
		jwtManager,
		recorder,
		log,
	)
	authHandler := authhandler.NewAuthHandler(authSvc, log)

	// Staff
	staffSvc := staffservice.NewStaffService(
		staffrepo.NewStaffRepository(db, orch, cfg.Relations.Employees, cfg.Relations.EmployeeSearch),
		cfg.Cache.DirectoryTTL,
		recorder,
		log,
	)
	defer staffSvc.Close()
	staffHandler := staffhandler.NewStaffHandler(staffSvc, log)

	// Appointments and visit histories
	appointmentSvc := appointmentservice.NewAppointmentService(
		appointmentrepo.NewAppointmentRepository(orch, cfg.Relations.Appointments),
		appointmentrepo.NewHistoryCacheRepository(db),
		cfg.Cache.DashboardTTL,
		cfg.Cache.HistoryMaxAge,
		log,
	)
	defer appointmentSvc.Close()
	appointmentHandler := appointmenthandler.NewAppointmentHandler(appointmentSvc, log)

	// Patients
	patientSvc := patientservice.NewPatientService(
		patientrepo.NewPatientRepository(db, orch, cfg.Relations.Patients, cfg.Relations.PatientSearch),
		appointmentSvc,
		recorder,
		log,
	)
	patientHandler := patienthandler.NewPatientHandler(patientSvc, log)

	// Expenses
	expenseSvc := expenseservice.NewExpenseService(
		expenserepo.NewExpenseRepository(db),
		files,
		recorder,
		log,
	)
	expenseHandler := expensehandler.NewExpenseHandler(expenseSvc, log)

	// Service catalog
	catalogSvc := catalogservice.NewCatalogService(
		catalogrepo.NewCatalogRepository(db, orch, cfg.Relations.Services),
		files,
		cfg.Cache.DashboardTTL,
		recorder,
		log,
	)
	defer catalogSvc.Close()
	catalogHandler := cataloghandler.NewCatalogHandler(catalogSvc, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(httputil.QueryTimeout(cfg.Server.QueryTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "admin-api",
			"database": db.Health(r.Context()),
		})
	})

	// Public auth routes
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Post("/refresh", authHandler.Refresh)
	})

	// Authenticated API. Accounts are created by admins, never by anonymous
	// callers; the first admin is seeded directly in the database.
	adminOnly := authhandler.RequireRole("admin")
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authhandler.RequireAuth(jwtManager, cfg.Server.LoginPath))

		r.Get("/auth/me", authHandler.Me)
		r.With(adminOnly).Post("/auth/register", authHandler.Register)
		r.Route("/employees", staffHandler.Routes(adminOnly))
		r.Route("/patients", patientHandler.Routes(adminOnly))
		r.Route("/appointments", appointmentHandler.Routes)
		r.Route("/expenses", expenseHandler.Routes(adminOnly))
		r.Route("/services", catalogHandler.Routes(adminOnly))
	})

	// Uploaded photos
	r.Handle(cfg.Storage.BaseURL+"/*", http.StripPrefix(cfg.Storage.BaseURL+"/",
		http.FileServer(http.Dir(cfg.Storage.Dir))))

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
