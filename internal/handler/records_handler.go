package handler

import (
	"net/http"

	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Cadastros: clients, classifications, revenues, expenses
// ============================================================

// scoped resolves the caller's workspace selection or writes the error.
func scoped(w http.ResponseWriter, r *http.Request, access *service.AccessService, logger *zap.Logger) (domain.Scope, bool) {
	scope, err := access.Scope(r.Context(), selectedWorkspace(r))
	if err != nil {
		handleServiceError(w, err, logger)
		return domain.Scope{}, false
	}
	return scope, true
}

func listClientsHandler(access *service.AccessService, svc *service.RecordsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/clients")
		defer span.End()

		scope, ok := scoped(w, r, access, logger)
		if !ok {
			return
		}
		clients, err := svc.ListClients(ctx, scope)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, clients)
	}
}

func createClientHandler(access *service.AccessService, svc *service.RecordsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/clients")
		defer span.End()

		scope, ok := scoped(w, r, access, logger)
		if !ok {
			return
		}
		var in domain.ClientInput
		if !decodeJSON(w, r, &in) {
			return
		}
		created, err := svc.CreateClient(ctx, scope, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateClientHandler(access *service.AccessService, svc *service.RecordsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /api/clients/{id}")
		defer span.End()

		scope, ok := scoped(w, r, access, logger)
		if !ok {
			return
		}
		var in domain.ClientInput
		if !decodeJSON(w, r, &in) {
			return
		}
		updated, err := svc.UpdateClient(ctx, scope, chi.URLParam(r, "id"), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteClientHandler(access *service.AccessService, svc *service.RecordsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /api/clients/{id}")
		defer span.End()

		scope, ok := scoped(w, r, access, logger)
		if !ok {
			return
		}
		if err := svc.DeleteClient(ctx, scope, chi.URLParam(r, "id")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// classificationKind reads {kind} from the path.
func classificationKind(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (domain.EntryKind, bool) {
	kind, err := domain.ParseEntryKind(chi.URLParam(r, "kind"))
	if err != nil {
		handleServiceError(w, err, logger)
		return "", false
	}
	return kind, true
}

func listClassificationsHandler(access *service.AccessService, svc *service.RecordsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/classifications/{kind}")
		defer span.End()

		kind, ok := classificationKind(w, r, logger)
		if !ok {
			return
		}
		scope, ok := scoped(w, r, access, logger)
		if !ok {
			return
		}
		list, err := svc.ListClassifications(ctx, kind, scope)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func createClassificationHandler(access *service.AccessService, svc *service.RecordsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/classifications/{kind}")
		defer span.End()

		kind, ok := classificationKind(w, r, logger)
		if !ok {
			return
		}
		scope, ok := scoped(w, r, access, logger)
		if !ok {
			return
		}
		var in domain.ClassificationInput
		if !decodeJSON(w, r, &in) {
			return
		}
		created, err := svc.CreateClassification(ctx, kind, scope, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateClassificationHandler(access *service.AccessService, svc *service.RecordsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /api/classifications/{kind}/{id}")
		defer span.End()

		kind, ok := classificationKind(w, r, logger)
		if !ok {
			return
		}
		scope, ok := scoped(w, r, access, logger)
		if !ok {
			return
		}
		var in domain.ClassificationInput
		if !decodeJSON(w, r, &in) {
			return
		}
		updated, err := svc.UpdateClassification(ctx, kind, scope, chi.URLParam(r, "id"), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteClassificationHandler(access *service.AccessService, svc *service.RecordsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /api/classifications/{kind}/{id}")
		defer span.End()

		kind, ok := classificationKind(w, r, logger)
		if !ok {
			return
		}
		scope, ok := scoped(w, r, access, logger)
		if !ok {
			return
		}
		if err := svc.DeleteClassification(ctx, kind, scope, chi.URLParam(r, "id")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listEntriesHandler(kind domain.EntryKind, access *service.AccessService, svc *service.RecordsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/"+kind.Table())
		defer span.End()

		scope, ok := scoped(w, r, access, logger)
		if !ok {
			return
		}
		filter, err := parseReportFilter(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		entries, err := svc.ListEntries(ctx, kind, scope, filter)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func createEntryHandler(kind domain.EntryKind, access *service.AccessService, svc *service.RecordsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/"+kind.Table())
		defer span.End()

		scope, ok := scoped(w, r, access, logger)
		if !ok {
			return
		}
		var in domain.EntryInput
		if !decodeJSON(w, r, &in) {
			return
		}
		created, err := svc.CreateEntry(ctx, kind, scope, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateEntryHandler(kind domain.EntryKind, access *service.AccessService, svc *service.RecordsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /api/"+kind.Table()+"/{id}")
		defer span.End()

		scope, ok := scoped(w, r, access, logger)
		if !ok {
			return
		}
		var in domain.EntryInput
		if !decodeJSON(w, r, &in) {
			return
		}
		updated, err := svc.UpdateEntry(ctx, kind, scope, chi.URLParam(r, "id"), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteEntryHandler(kind domain.EntryKind, access *service.AccessService, svc *service.RecordsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /api/"+kind.Table()+"/{id}")
		defer span.End()

		scope, ok := scoped(w, r, access, logger)
		if !ok {
			return
		}
		if err := svc.DeleteEntry(ctx, kind, scope, chi.URLParam(r, "id")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
