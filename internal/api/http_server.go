package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shutterdesk/internal/config"
	"shutterdesk/internal/domain"
	"shutterdesk/internal/export"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Services bundles the ledger services the HTTP layer dispatches to.
type Services struct {
	Clients   domain.ClientService
	Packages  domain.PackageService
	Projects  domain.ProjectService
	Payments  domain.PaymentService
	Team      domain.TeamService
	Dashboard domain.DashboardService
}

// Server is the REST/JSON face of the ledger. It owns no business rules:
// handlers decode, dispatch to a service and map errors to statuses.
type Server struct {
	cfg      config.ServerConfig
	svc      Services
	repo     domain.Repository
	cache    domain.SummaryCache
	exporter *export.Exporter
	limiter  *rateLimiter
	logger   *zerolog.Logger
	server   *http.Server
}

func NewServer(cfg config.ServerConfig, rateCfg config.RateLimitConfig, svc Services, repo domain.Repository, cache domain.SummaryCache, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	serverLogger := logger.With().Str("component", "http").Logger()

	s := &Server{
		cfg:      cfg,
		svc:      svc,
		repo:     repo,
		cache:    cache,
		exporter: export.NewExporter(repo, logger),
		limiter:  newRateLimiter(rateCfg),
		logger:   &serverLogger,
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(corsMiddleware)
	r.Use(metricsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.rateLimitMiddleware)

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", s.handleListClients)
			r.Post("/", s.handleCreateClient)
			r.Get("/{id}", s.handleGetClient)
			r.Put("/{id}", s.handleUpdateClient)
			r.Delete("/{id}", s.handleDeleteClient)
		})

		r.Route("/packages", func(r chi.Router) {
			r.Get("/", s.handleListPackages)
			r.Post("/", s.handleCreatePackage)
			r.Get("/{id}", s.handleGetPackage)
			r.Put("/{id}", s.handleUpdatePackage)
			r.Delete("/{id}", s.handleDeletePackage)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", s.handleListProjects)
			r.Post("/", s.handleCreateProject)
			r.Get("/{id}", s.handleGetProject)
			r.Put("/{id}", s.handleUpdateProject)
			r.Delete("/{id}", s.handleDeleteProject)
			r.Patch("/{id}/status", s.handleChangeStatus)
			r.Post("/{id}/revision", s.handleRecordRevision)
			r.Post("/{id}/reset-revisions", s.handleResetRevisions)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", s.handleListPayments)
			r.Post("/", s.handlePostPayment)
			r.Get("/{id}", s.handleGetPayment)
			r.Delete("/{id}", s.handleReversePayment)
		})

		r.Route("/team", func(r chi.Router) {
			r.Get("/", s.handleListTeam)
			r.Post("/", s.handleCreateTeamMember)
			r.Get("/{id}", s.handleGetTeamMember)
			r.Put("/{id}", s.handleUpdateTeamMember)
			r.Delete("/{id}", s.handleDeleteTeamMember)
		})

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/export/projects.xlsx", s.handleExportProjects)
	})

	return r
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed handler for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// handleHealth reports liveness. The store ping is the only hard dependency;
// cache and mirror-queue trouble is reported in the body but keeps the 200.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		s.logger.Error().Err(err).Msg("health check: store ping failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
			"store":  "down",
		})
		return
	}

	body := map[string]any{
		"status": "ok",
		"store":  "ok",
	}

	if failed, err := s.repo.GetFailedSyncTasks(r.Context()); err == nil && len(failed) > 0 {
		body["failed_sync_tasks"] = len(failed)
	}

	if degradable, ok := s.cache.(interface{ Degraded() bool }); ok && degradable.Degraded() {
		body["cache"] = "degraded"
	}

	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleExportProjects(w http.ResponseWriter, r *http.Request) {
	// Собираем книгу в буфер, чтобы ошибка не попала в уже начатый ответ
	var buf bytes.Buffer
	if err := s.exporter.WriteProjects(r.Context(), &buf); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="projects.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Error().Err(err).Msg("export response write failed")
	}
}
