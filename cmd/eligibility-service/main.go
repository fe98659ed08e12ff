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
	"github.com/talentflow/talentflow-backend/internal/auth"
	authjwt "github.com/talentflow/talentflow-backend/internal/auth/jwt"
	"github.com/talentflow/talentflow-backend/internal/eligibility/ai"
	"github.com/talentflow/talentflow-backend/internal/eligibility/consumers"
	"github.com/talentflow/talentflow-backend/internal/eligibility/events"
	"github.com/talentflow/talentflow-backend/internal/eligibility/handler"
	"github.com/talentflow/talentflow-backend/internal/eligibility/ocr"
	"github.com/talentflow/talentflow-backend/internal/eligibility/policy"
	"github.com/talentflow/talentflow-backend/internal/eligibility/repository"
	"github.com/talentflow/talentflow-backend/internal/eligibility/service"
	"github.com/talentflow/talentflow-backend/internal/eligibility/uploadlink"
	"github.com/talentflow/talentflow-backend/pkg/config"
	"github.com/talentflow/talentflow-backend/pkg/database"
	"github.com/talentflow/talentflow-backend/pkg/httputil"
	"github.com/talentflow/talentflow-backend/pkg/i18n"
	"github.com/talentflow/talentflow-backend/pkg/logger"
	"github.com/talentflow/talentflow-backend/pkg/messaging"
	"github.com/talentflow/talentflow-backend/pkg/permissions"
)

func main() {
	// Load configuration (fails fast on missing production config)
	cfg, err := config.LoadWithValidation("eligibility-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("eligibility-service", cfg.Server.Environment)
	log.Info().Msg("starting Eligibility Service")

	if cfg.UploadLink.Secret == config.DevUploadLinkSecret {
		log.Warn().Msg("RUNNING WITH THE DEVELOPMENT UPLOAD-LINK SECRET - anyone can mint upload links; never deploy this configuration")
	}

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publisher
	publisher, err := events.NewEligibilityEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	// Initialize repository
	checkRepo := repository.NewCheckRepository(db)

	// Initialize decision pipeline
	evaluator := policy.NewEvaluator()
	signer := uploadlink.NewSigner([]byte(cfg.UploadLink.Secret), cfg.UploadLink.TTL)
	extractor := ocr.NewClient(&cfg.OCR)

	var assessor service.Assessor
	if a := ai.NewAssessor(&cfg.AI, log); a != nil {
		assessor = a
	} else {
		log.Info().Msg("AI assessor not configured, running rules-only")
	}

	eligibilityService := service.NewService(evaluator, signer, extractor, assessor, checkRepo, publisher, log)

	// Initialize handlers
	eligibilityHandler := handler.NewEligibilityHandler(eligibilityService, log)
	submissionHandler := handler.NewSubmissionHandler(eligibilityService, log)

	// Initialize auth middleware
	jwtManager := authjwt.NewManager(&cfg.JWT)

	// Start staff event consumer (data retention: purge checks for deleted employees)
	staffConsumer, err := consumers.NewStaffEventConsumer(rmq, checkRepo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create staff event consumer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := staffConsumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start staff event consumer")
	}

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(i18n.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "eligibility-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// Authenticated HR routes
	r.Route("/api/v1/eligibility", func(r chi.Router) {
		r.Use(auth.Middleware(jwtManager))

		r.Group(func(r chi.Router) {
			r.Use(auth.RequirePermission(permissions.PermissionCheck))
			r.Post("/checks", eligibilityHandler.CreateCheck)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequirePermission(permissions.PermissionView))
			r.Get("/checks/{id}", eligibilityHandler.GetCheck)
			r.Get("/employees/{employeeID}/checks", eligibilityHandler.ListChecks)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequirePermission(permissions.PermissionIssueUpload))
			r.Post("/upload-links", eligibilityHandler.IssueUploadLink)
		})
	})

	// Anonymous candidate routes: the signed token in the URL is the only
	// credential.
	r.Route("/api/v1/submissions/{token}", func(r chi.Router) {
		r.Get("/", submissionHandler.GetInfo)
		r.Post("/documents", submissionHandler.SubmitDocuments)
	})

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

	// Cancel context to stop consumers
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
