package handlers

import (
	"net/http"

	apierrors "github.com/Hylozoic/entitlements-service/internal/http/errors"
)

type userScopesResponse struct {
	UserID int64    `json:"userId"`
	Scopes []string `json:"scopes"`
}

// UserScopes — GET /users/{id}/scopes: действующие scope-токены пользователя.
func (h *Handlers) UserScopes(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	scopes, err := h.Service.UserScopes(r.Context(), userID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userScopesResponse{
		UserID: userID,
		Scopes: scopes,
	})
}

type hasScopeResponse struct {
	UserID int64  `json:"userId"`
	Scope  string `json:"scope"`
	Has    bool   `json:"has"`
}

// HasScope — GET /users/{id}/scopes/check?scope=group:42.
// Некорректный токен — не ошибка: разбор тотален, ответ has=false.
func (h *Handlers) HasScope(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	scope := r.URL.Query().Get("scope")
	if scope == "" {
		apierrors.WriteError(w, r, apierrors.ErrBadRequest)
		return
	}

	has, err := h.Service.HasScope(r.Context(), userID, scope)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, hasScopeResponse{
		UserID: userID,
		Scope:  scope,
		Has:    has,
	})
}
