package handler

import (
	"net/http"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Account & firm settings
// ============================================================

func meHandler(access *service.AccessService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/me")
		defer span.End()

		me, err := access.Me(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, me)
	}
}

func updateMeHandler(access *service.AccessService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /api/me")
		defer span.End()

		var req domain.UpdateAccountRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := access.UpdateAccount(ctx, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{OK: true})
	}
}

func getFirmHandler(svc *service.SettingsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/settings/firm")
		defer span.End()

		firm, err := svc.GetFirm(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, firm)
	}
}

func updateFirmHandler(svc *service.SettingsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /api/settings/firm")
		defer span.End()

		var in domain.FirmSettingsInput
		if !decodeJSON(w, r, &in) {
			return
		}
		saved, err := svc.UpdateFirm(ctx, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}
