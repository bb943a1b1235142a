package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/Hylozoic/entitlements-service/internal/http/errors"
	"github.com/Hylozoic/entitlements-service/internal/models"
)

// UserSubscriptions — GET /users/{id}/subscriptions: active-гранты
// пользователя, привязанные к stripe-подпискам.
func (h *Handlers) UserSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	grants, err := h.Service.ActiveSubscriptions(r.Context(), userID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, grantsFromModels(grants))
}

// SubscriptionGrants — GET /subscriptions/{id}/grants: все гранты подписки.
func (h *Handlers) SubscriptionGrants(w http.ResponseWriter, r *http.Request) {
	subscriptionID := chi.URLParam(r, "id")
	if subscriptionID == "" {
		apierrors.WriteError(w, r, apierrors.ErrBadRequest)
		return
	}

	grants, err := h.Service.FindBySubscriptionID(r.Context(), subscriptionID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, grantsFromModels(grants))
}

type renewSubscriptionRequest struct {
	ExpiresAt string          `json:"expiresAt"`
	Metadata  models.Metadata `json:"metadata"`
}

type subscriptionFanoutResponse struct {
	SubscriptionID string `json:"subscriptionId"`
	Grants         int    `json:"grants"`
}

// RenewSubscription — POST /subscriptions/{id}/renew
// (обработка billing-события invoice.paid).
func (h *Handlers) RenewSubscription(w http.ResponseWriter, r *http.Request) {
	subscriptionID := chi.URLParam(r, "id")
	if subscriptionID == "" {
		apierrors.WriteError(w, r, apierrors.ErrBadRequest)
		return
	}

	var req renewSubscriptionRequest
	if err := decodeStrict(r, &req); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrBadRequest)
		return
	}

	expiresAt, err := parseExpiresAt(&req.ExpiresAt)
	if err != nil || expiresAt == nil {
		apierrors.WriteError(w, r, apierrors.ErrBadRequest)
		return
	}

	renewed, err := h.Service.RenewSubscription(r.Context(), subscriptionID, *expiresAt, req.Metadata)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, subscriptionFanoutResponse{
		SubscriptionID: subscriptionID,
		Grants:         renewed,
	})
}

type cancelSubscriptionRequest struct {
	Reason string `json:"reason"`
}

// CancelSubscription — POST /subscriptions/{id}/cancel
// (обработка billing-события customer.subscription.deleted).
func (h *Handlers) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	subscriptionID := chi.URLParam(r, "id")
	if subscriptionID == "" {
		apierrors.WriteError(w, r, apierrors.ErrBadRequest)
		return
	}

	var req cancelSubscriptionRequest
	if err := decodeStrict(r, &req); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrBadRequest)
		return
	}

	canceled, err := h.Service.CancelSubscription(r.Context(), subscriptionID, req.Reason)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, subscriptionFanoutResponse{
		SubscriptionID: subscriptionID,
		Grants:         canceled,
	})
}
