package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/lexflow/lexflow-api-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Backup & seed (gestor only)
// ============================================================

func backupExportHandler(svc *service.BackupService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/backup/export")
		defer span.End()

		file, err := svc.Export(ctx, strings.TrimSpace(r.URL.Query().Get("workspaceId")))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeFile(w, file)
	}
}

// backupRestoreHandler accepts either {"payload": <backup>} or a multipart
// upload in the "file" field.
func backupRestoreHandler(svc *service.BackupService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/backup/restore")
		defer span.End()

		payload, ok := readRestorePayload(w, r, logger)
		if !ok {
			return
		}
		res, err := svc.Restore(ctx, payload)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusAccepted, res)
	}
}

func readRestorePayload(w http.ResponseWriter, r *http.Request, logger *zap.Logger) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			logger.Debug("restore: invalid multipart body", zap.Error(err))
			writeError(w, http.StatusBadRequest, "Envie o arquivo de backup no campo file.")
			return nil, false
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "Envie o arquivo de backup no campo file.")
			return nil, false
		}
		defer f.Close()
		body, err := io.ReadAll(f)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Arquivo de backup inválido.")
			return nil, false
		}
		return body, true
	}

	var req struct {
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Payload) == 0 || string(req.Payload) == "null" {
		writeError(w, http.StatusBadRequest, "Arquivo de backup inválido.")
		return nil, false
	}
	return req.Payload, true
}

func seedUsageHandler(svc *service.SeedService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Usage())
	}
}

func seedRunHandler(svc *service.SeedService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/seed")
		defer span.End()

		res, err := svc.Run(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}
