package handler

import (
	"net/http"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Dashboard & reports
// ============================================================

func dashboardHandler(access *service.AccessService, svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/dashboard")
		defer span.End()

		scope, err := access.Scope(ctx, selectedWorkspace(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		year, err := parseYear(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		periodicity, err := domain.ParsePeriodicity(r.URL.Query().Get("periodicity"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("scope", scope.Label()), attribute.String("periodicity", string(periodicity)))

		overview, err := svc.Overview(ctx, scope, year, periodicity)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, overview)
	}
}

func reportPreviewHandler(access *service.AccessService, svc *service.ReportsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/reports/{kind}")
		defer span.End()

		kind, scope, filter, err := reportRequest(r, access)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("report.kind", string(kind)))

		var report any
		switch kind {
		case domain.ReportInadimplencia:
			report, err = svc.Overdue(ctx, scope, filter)
		case domain.ReportBalanco:
			report, err = svc.Balance(ctx, scope, filter)
		default:
			report, err = svc.Entries(ctx, kind, scope, filter)
		}
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func reportExportHandler(access *service.AccessService, svc *service.ReportsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/reports/{kind}/export")
		defer span.End()

		kind, scope, filter, err := reportRequest(r, access)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		format := r.URL.Query().Get("format")
		span.SetAttributes(attribute.String("report.kind", string(kind)), attribute.String("report.format", format))

		file, err := svc.Export(ctx, kind, format, scope, filter)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeFile(w, file)
	}
}

// reportRequest parses what preview and export have in common.
func reportRequest(r *http.Request, access *service.AccessService) (domain.ReportKind, domain.Scope, domain.ReportFilter, error) {
	kind, err := domain.ParseReportKind(chi.URLParam(r, "kind"))
	if err != nil {
		return "", domain.Scope{}, domain.ReportFilter{}, err
	}
	scope, err := access.Scope(r.Context(), selectedWorkspace(r))
	if err != nil {
		return "", domain.Scope{}, domain.ReportFilter{}, err
	}
	filter, err := parseReportFilter(r)
	if err != nil {
		return "", domain.Scope{}, domain.ReportFilter{}, err
	}
	return kind, scope, filter, nil
}
