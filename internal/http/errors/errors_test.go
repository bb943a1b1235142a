package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Hylozoic/entitlements-service/internal/service"
	"github.com/Hylozoic/entitlements-service/internal/storage"
)

func TestToHTTP_Mapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"nil_is_internal", nil, http.StatusInternalServerError, "internal"},
		{"bad_request", ErrBadRequest, http.StatusBadRequest, "invalid_argument"},
		{"invalid_target", service.ErrInvalidTarget, http.StatusBadRequest, "invalid_argument"},
		{"missing_user", service.ErrMissingUser, http.StatusBadRequest, "invalid_argument"},
		{"missing_group", service.ErrMissingGroup, http.StatusBadRequest, "invalid_argument"},
		{"missing_session", service.ErrMissingSession, http.StatusBadRequest, "invalid_argument"},
		{"missing_subscription", service.ErrMissingSubscription, http.StatusBadRequest, "invalid_argument"},
		{"grant_not_found", service.ErrGrantNotFound, http.StatusNotFound, "not_found"},
		{"storage_not_found", storage.ErrNotFound, http.StatusNotFound, "not_found"},
		{"already_exists", storage.ErrAlreadyExists, http.StatusConflict, "already_exists"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "deadline_exceeded"},
		{"canceled", context.Canceled, StatusClientClosedRequest, "canceled"},
		{"unknown", errors.New("db down"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			status, resp := ToHTTP(tc.err)
			require.Equal(t, tc.wantStatus, status)
			require.Equal(t, tc.wantCode, resp.Error.Code)
			require.NotEmpty(t, resp.Error.Message)
		})
	}
}

// Обёрнутая доменная ошибка (op-префиксы сервиса) распознаётся через errors.Is.
func TestToHTTP_WrappedError(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("service.grants.Revoke: %w", service.ErrGrantNotFound)
	status, resp := ToHTTP(wrapped)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "not_found", resp.Error.Code)
}

func TestWriteError_BodyAndRequestID(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "rid-42")
	rr := httptest.NewRecorder()

	WriteError(rr, req, service.ErrGrantNotFound)

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var env ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, "not_found", env.Error.Code)
	require.Equal(t, "rid-42", env.Error.RequestID)
}

func TestWriteError_NoRequestID(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rr := httptest.NewRecorder()

	WriteError(rr, req, ErrBadRequest)

	var env ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Empty(t, env.Error.RequestID)
}
