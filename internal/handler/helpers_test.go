package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lexflow/lexflow-api-go/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", &domain.ErrValidation{Field: "name", Message: "Campo obrigatório: name."}, http.StatusBadRequest, "Campo obrigatório: name."},
		{"unauthorized", &domain.ErrUnauthorized{}, http.StatusUnauthorized, "Unauthorized"},
		{"forbidden", &domain.ErrForbidden{}, http.StatusForbidden, "Forbidden"},
		{"not found", &domain.ErrNotFound{Resource: "cliente", ID: "c1"}, http.StatusNotFound, "cliente não encontrado: c1"},
		{"conflict", &domain.ErrConflict{Message: "E-mail já cadastrado."}, http.StatusConflict, "E-mail já cadastrado."},
		{"wrapped upstream 4xx", fmt.Errorf("list clients: %w", &domain.ErrExternalService{Status: 422, Message: "violates check constraint"}), http.StatusBadRequest, "violates check constraint"},
		{"upstream 5xx", &domain.ErrExternalService{Status: 503, Message: "upstream unavailable"}, http.StatusInternalServerError, "upstream unavailable"},
		{"circuit open", &domain.ErrCircuitOpen{Service: "supabase"}, http.StatusServiceUnavailable, "circuit breaker open for service: supabase"},
		{"timeout", &domain.ErrTimeout{Operation: "pdf"}, http.StatusGatewayTimeout, "operation timed out: pdf"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleServiceError(rec, tt.err, zap.NewNop())
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"message":%q}`, tt.msg), rec.Body.String())
		})
	}
}

func TestParseReportFilter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?start=2024-01-01&end=2024-01-31&client_id=c1&status=all", nil)
	f, err := parseReportFilter(req)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", f.Start.String())
	assert.Equal(t, "2024-01-31", f.End.String())
	assert.Equal(t, "c1", f.ClientID)
	assert.Empty(t, f.Status)

	req = httptest.NewRequest(http.MethodGet, "/?status=estornado", nil)
	_, err = parseReportFilter(req)
	var verr *domain.ErrValidation
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)

	req = httptest.NewRequest(http.MethodGet, "/?end=31-01-2024", nil)
	_, err = parseReportFilter(req)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "end", verr.Field)

	req = httptest.NewRequest(http.MethodGet, "/?start=2024-03-01garbage", nil)
	_, err = parseReportFilter(req)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "start", verr.Field)
}

func TestSelectedWorkspace(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?workspace=ws-a", nil)
	req.Header.Set("X-Workspace-Id", "ws-b")
	assert.Equal(t, "ws-a", selectedWorkspace(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Workspace-Id", "ws-b")
	assert.Equal(t, "ws-b", selectedWorkspace(req))
}

func TestParseYear(t *testing.T) {
	y, err := parseYear(httptest.NewRequest(http.MethodGet, "/?year=2024", nil))
	require.NoError(t, err)
	assert.Equal(t, 2024, y)

	y, err = parseYear(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Zero(t, y)

	_, err = parseYear(httptest.NewRequest(http.MethodGet, "/?year=abc", nil))
	require.Error(t, err)
}
