package handler

import (
	"net/http"
	"strings"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/service"

	"go.uber.org/zap"
)

func auditListHandler(access *service.AccessService, svc *service.AuditService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/audit-logs")
		defer span.End()

		scope, err := access.Scope(ctx, selectedWorkspace(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		q := r.URL.Query()
		filter := domain.AuditFilter{
			TableName: strings.TrimSpace(q.Get("table")),
			Page:      parsePage(r),
		}
		if filter.TableName == "all" {
			filter.TableName = ""
		}
		if a := strings.ToUpper(strings.TrimSpace(q.Get("action"))); a != "" && a != "ALL" {
			filter.Action = domain.AuditAction(a)
		}

		page, err := svc.List(ctx, scope, filter)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func auditCleanupHandler(access *service.AccessService, svc *service.AuditService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/audit-logs/cleanup")
		defer span.End()

		scope, err := access.Scope(ctx, selectedWorkspace(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		res, err := svc.Cleanup(ctx, scope)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
