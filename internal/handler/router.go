package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/infra/observability"
	"github.com/lexflow/lexflow-api-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/unrolled/secure"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles everything the routes call into.
type Services struct {
	Access    *service.AccessService
	Dashboard *service.DashboardService
	Reports   *service.ReportsService
	Audit     *service.AuditService
	Users     *service.UsersService
	Backup    *service.BackupService
	Seed      *service.SeedService
	Records   *service.RecordsService
	Settings  *service.SettingsService

	// Store is probed by /healthz. Nil skips the check.
	Store Pinger
}

// Options tunes the middleware chain.
type Options struct {
	// HeavyRateLimit is requests per minute allowed on seed, backup and export.
	HeavyRateLimit int
	Production     bool
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc Services, opts Options, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        opts.Production,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
	})

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger, metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(secureMiddleware.Handler)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc.Store, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	heavy := heavyLimiter(opts.HeavyRateLimit)
	gestor := RequireGestor(logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(svc.Access, logger))

		// Account & firm
		r.Get("/me", meHandler(svc.Access, logger))
		r.Patch("/me", updateMeHandler(svc.Access, logger))
		r.Get("/settings/firm", getFirmHandler(svc.Settings, logger))
		r.With(gestor).Put("/settings/firm", updateFirmHandler(svc.Settings, logger))

		// Dashboard & reports
		r.Get("/dashboard", dashboardHandler(svc.Access, svc.Dashboard, logger))
		r.Get("/reports/{kind}", reportPreviewHandler(svc.Access, svc.Reports, logger))
		r.With(heavy).Get("/reports/{kind}/export", reportExportHandler(svc.Access, svc.Reports, logger))

		// Cadastros
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", listClientsHandler(svc.Access, svc.Records, logger))
			r.Post("/", createClientHandler(svc.Access, svc.Records, logger))
			r.Patch("/{id}", updateClientHandler(svc.Access, svc.Records, logger))
			r.Delete("/{id}", deleteClientHandler(svc.Access, svc.Records, logger))
		})
		r.Route("/classifications/{kind}", func(r chi.Router) {
			r.Get("/", listClassificationsHandler(svc.Access, svc.Records, logger))
			r.Post("/", createClassificationHandler(svc.Access, svc.Records, logger))
			r.Patch("/{id}", updateClassificationHandler(svc.Access, svc.Records, logger))
			r.Delete("/{id}", deleteClassificationHandler(svc.Access, svc.Records, logger))
		})
		for path, kind := range map[string]domain.EntryKind{"/revenues": domain.KindRevenue, "/expenses": domain.KindExpense} {
			r.Route(path, func(r chi.Router) {
				r.Get("/", listEntriesHandler(kind, svc.Access, svc.Records, logger))
				r.Post("/", createEntryHandler(kind, svc.Access, svc.Records, logger))
				r.Patch("/{id}", updateEntryHandler(kind, svc.Access, svc.Records, logger))
				r.Delete("/{id}", deleteEntryHandler(kind, svc.Access, svc.Records, logger))
			})
		}

		// Gestor-only administration
		r.Group(func(r chi.Router) {
			r.Use(gestor)

			r.Get("/audit-logs", auditListHandler(svc.Access, svc.Audit, logger))
			r.Post("/audit-logs/cleanup", auditCleanupHandler(svc.Access, svc.Audit, logger))

			r.Get("/users", listUsersHandler(svc.Users, logger))
			r.Post("/users", createUserHandler(svc.Users, logger))
			r.Patch("/users/{userId}", updateUserHandler(svc.Users, logger))
			r.Delete("/users/{userId}", deleteUserHandler(svc.Users, logger))

			r.Get("/seed", seedUsageHandler(svc.Seed))
			r.With(heavy).Post("/seed", seedRunHandler(svc.Seed, logger))

			r.With(heavy).Get("/backup/export", backupExportHandler(svc.Backup, logger))
			r.With(heavy).Post("/backup/restore", backupRestoreHandler(svc.Backup, logger))

			r.Get("/admin/metrics", adminMetricsHandler(metrics))
		})
	})

	return r
}

// heavyLimiter throttles expensive endpoints per user, falling back to IP.
func heavyLimiter(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTooManyRequests, "Muitas requisições. Tente novamente em instantes.")
		}),
	)
}

func rateLimitKey(r *http.Request) (string, error) {
	if p := domain.PrincipalFrom(r.Context()); p != nil && strings.TrimSpace(p.UserID) != "" {
		return "user:" + p.UserID, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}

// ============================================================
// Operational
// ============================================================

func healthzHandler(store Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "lexflow-api", Status: "healthy", LastChecked: now},
		}

		if store != nil {
			start := time.Now()
			err := store.Ping(ctx)
			status := "healthy"
			if err != nil {
				logger.Warn("health: supabase unreachable", zap.Error(err))
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "supabase", Status: status,
				LatencyMs: time.Since(start).Milliseconds(), LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func adminMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetSnapshot())
	}
}
