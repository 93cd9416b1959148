package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/darmiel/vertrag/internal/api/middleware"
	"github.com/darmiel/vertrag/internal/service"
	"github.com/darmiel/vertrag/internal/tasks"
)

type Server struct {
	service     *service.Service
	gatherer    prometheus.Gatherer
	taskManager *tasks.Manager
}

type Option func(*Server)

// WithTasks exposes the background tasks of m under the admin routes.
func WithTasks(m *tasks.Manager) Option {
	return func(s *Server) {
		s.taskManager = m
	}
}

// NewServer exposes svc over HTTP. A nil gatherer disables the metrics endpoint.
func NewServer(svc *service.Service, gatherer prometheus.Gatherer, opts ...Option) *Server {
	s := &Server{
		service:  svc,
		gatherer: gatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RecoverMiddleware)
	r.Use(middleware.CorrelationIDMiddleware)
	r.Use(middleware.LoggingMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeBadRoute(w, r, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeBadRoute(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	// public routes
	r.Get(HealthCheckRoute, s.handleHealth)
	r.Get(AboutRoute, s.handleAbout)
	if s.gatherer != nil {
		r.Handle(MetricsRoute, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	// catalog
	r.Get(CatalogRoute, s.handleListAssets)
	r.Get(AssetRoute, s.handleGetAsset)
	r.Get(AssetPreviewRoute, s.handlePreviewAsset)

	// contract negotiation
	r.Route(NegotiationsRoute, func(r chi.Router) {
		r.Get("/", s.handleListNegotiations)
		r.Post("/", s.handleCreateNegotiation)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetNegotiation)
			r.Post("/{action}", s.handleAdvanceNegotiation)
		})
	})
	r.Get(AgreementsRoute, s.handleListAgreements)
	r.Get(AgreementRoute, s.handleGetAgreement)

	// data transfer
	r.Route(TransfersRoute, func(r chi.Router) {
		r.Get("/", s.handleListTransfers)
		r.Post("/", s.handleCreateTransfer)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetTransfer)
			r.Get("/data", s.handleFetchData)
			r.Post("/{action}", s.handleAdvanceTransfer)
		})
	})

	r.Post(ExplainRoute, s.handleExplain)
	r.Get(AuditRoute, s.handleAudit)

	// admin routes
	r.Post(ResetRoute, s.handleReset)
	r.Post(ReloadCatalogRoute, s.handleReloadCatalog)
	if s.taskManager != nil {
		r.Get(TasksRoute, s.handleListTasks)
		r.Post(TaskTriggerRoute, s.handleTriggerTask)
		r.Get(TaskLogsRoute, s.handleLogsForTask)
	}

	return r
}
