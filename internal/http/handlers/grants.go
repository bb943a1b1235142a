package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/Hylozoic/entitlements-service/internal/http/errors"
	"github.com/Hylozoic/entitlements-service/internal/models"
	"github.com/Hylozoic/entitlements-service/internal/service"
)

type grantAccessRequest struct {
	UserID           int64   `json:"userId"`
	GrantedByGroupID int64   `json:"grantedByGroupId"`
	TrackID          *int64  `json:"trackId"`
	RoleID           *int64  `json:"roleId"`
	GroupID          *int64  `json:"groupId"`
	ProductID        *int64  `json:"productId"`
	GrantedByID      *int64  `json:"grantedById"`
	ExpiresAt        *string `json:"expiresAt"`
	Reason           string  `json:"reason"`
}

// GrantAccess — POST /grants: административная выдача доступа.
func (h *Handlers) GrantAccess(w http.ResponseWriter, r *http.Request) {
	var req grantAccessRequest
	if err := decodeStrict(r, &req); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrBadRequest)
		return
	}

	expiresAt, err := parseExpiresAt(req.ExpiresAt)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	grant, err := h.Service.GrantAccess(r.Context(), service.GrantAccessParams{
		UserID:           req.UserID,
		GrantedByGroupID: req.GrantedByGroupID,
		Target:           targetFromIDs(req.TrackID, req.RoleID, req.GroupID),
		GrantedByID:      req.GrantedByID,
		ProductID:        req.ProductID,
		ExpiresAt:        expiresAt,
		Reason:           req.Reason,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, grantFromModel(grant))
}

type recordPurchaseRequest struct {
	UserID               int64           `json:"userId"`
	GrantedByGroupID     int64           `json:"grantedByGroupId"`
	TrackID              *int64          `json:"trackId"`
	RoleID               *int64          `json:"roleId"`
	GroupID              *int64          `json:"groupId"`
	ProductID            *int64          `json:"productId"`
	StripeSessionID      string          `json:"stripeSessionId"`
	StripeSubscriptionID *string         `json:"stripeSubscriptionId"`
	ExpiresAt            *string         `json:"expiresAt"`
	Metadata             models.Metadata `json:"metadata"`
}

// RecordPurchase — POST /purchases: фиксация оплаченной покупки.
func (h *Handlers) RecordPurchase(w http.ResponseWriter, r *http.Request) {
	var req recordPurchaseRequest
	if err := decodeStrict(r, &req); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrBadRequest)
		return
	}

	expiresAt, err := parseExpiresAt(req.ExpiresAt)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	grant, err := h.Service.RecordPurchase(r.Context(), service.RecordPurchaseParams{
		UserID:               req.UserID,
		GrantedByGroupID:     req.GrantedByGroupID,
		Target:               targetFromIDs(req.TrackID, req.RoleID, req.GroupID),
		ProductID:            req.ProductID,
		StripeSessionID:      req.StripeSessionID,
		StripeSubscriptionID: req.StripeSubscriptionID,
		ExpiresAt:            expiresAt,
		Metadata:             req.Metadata,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, grantFromModel(grant))
}

type revokeGrantRequest struct {
	RevokedByID int64  `json:"revokedById"`
	Reason      string `json:"reason"`
}

// RevokeGrant — POST /grants/{id}/revoke.
func (h *Handlers) RevokeGrant(w http.ResponseWriter, r *http.Request) {
	grantID, err := pathID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var req revokeGrantRequest
	if err := decodeStrict(r, &req); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrBadRequest)
		return
	}

	grant, err := h.Service.Revoke(r.Context(), grantID, req.RevokedByID, req.Reason)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, grantFromModel(grant))
}

type extendGrantRequest struct {
	ExpiresAt string          `json:"expiresAt"`
	Metadata  models.Metadata `json:"metadata"`
}

// ExtendGrant — POST /grants/{id}/extend: продление срока действия.
func (h *Handlers) ExtendGrant(w http.ResponseWriter, r *http.Request) {
	grantID, err := pathID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var req extendGrantRequest
	if err := decodeStrict(r, &req); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrBadRequest)
		return
	}

	expiresAt, err := parseExpiresAt(&req.ExpiresAt)
	if err != nil || expiresAt == nil {
		apierrors.WriteError(w, r, apierrors.ErrBadRequest)
		return
	}

	grant, err := h.Service.ExtendAccess(r.Context(), grantID, *expiresAt, req.Metadata)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, grantFromModel(grant))
}

type checkAccessResponse struct {
	Granted bool           `json:"granted"`
	Grant   *grantResponse `json:"grant,omitempty"`
}

// CheckAccess — GET /access: проверка действующего доступа по
// конъюнктивному фильтру. Отсутствие доступа — не ошибка, а granted=false.
func (h *Handlers) CheckAccess(w http.ResponseWriter, r *http.Request) {
	userID, err := queryID(r, "user_id")
	if err != nil || userID == nil {
		apierrors.WriteError(w, r, apierrors.ErrBadRequest)
		return
	}

	groupScope, err := queryID(r, "granted_by_group_id")
	if err != nil || groupScope == nil {
		apierrors.WriteError(w, r, apierrors.ErrBadRequest)
		return
	}

	query := service.AccessQuery{
		UserID:           *userID,
		GrantedByGroupID: *groupScope,
	}

	for name, dst := range map[string]**int64{
		"group_id":   &query.GroupID,
		"product_id": &query.ProductID,
		"track_id":   &query.TrackID,
		"role_id":    &query.RoleID,
	} {
		v, err := queryID(r, name)
		if err != nil {
			apierrors.WriteError(w, r, err)
			return
		}
		*dst = v
	}

	grant, err := h.Service.CheckAccess(r.Context(), query)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	resp := checkAccessResponse{Granted: grant != nil}
	if grant != nil {
		g := grantFromModel(grant)
		resp.Grant = &g
	}

	writeJSON(w, http.StatusOK, resp)
}

// UserGrants — GET /users/{id}/grants?granted_by_group_id=.
func (h *Handlers) UserGrants(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	groupID, err := queryID(r, "granted_by_group_id")
	if err != nil || groupID == nil {
		apierrors.WriteError(w, r, apierrors.ErrBadRequest)
		return
	}

	grants, err := h.Service.ForUser(r.Context(), userID, *groupID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, grantsFromModels(grants))
}

// SessionGrants — GET /sessions/{id}/grants: все гранты checkout-сессии.
func (h *Handlers) SessionGrants(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		apierrors.WriteError(w, r, apierrors.ErrBadRequest)
		return
	}

	grants, err := h.Service.ForStripeSession(r.Context(), sessionID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, grantsFromModels(grants))
}
