package handlers

import (
	"time"

	apierrors "github.com/Hylozoic/entitlements-service/internal/http/errors"
	"github.com/Hylozoic/entitlements-service/internal/models"
)

// grantResponse — wire-представление гранта. Цель гранта разворачивается
// обратно в три опциональных поля, как её видит фронт.
type grantResponse struct {
	ID                   int64           `json:"id"`
	UserID               int64           `json:"userId"`
	GrantedByGroupID     int64           `json:"grantedByGroupId"`
	GroupID              *int64          `json:"groupId,omitempty"`
	TrackID              *int64          `json:"trackId,omitempty"`
	RoleID               *int64          `json:"roleId,omitempty"`
	ProductID            *int64          `json:"productId,omitempty"`
	AccessType           string          `json:"accessType"`
	Status               string          `json:"status"`
	ExpiresAt            *time.Time      `json:"expiresAt,omitempty"`
	StripeSessionID      *string         `json:"stripeSessionId,omitempty"`
	StripeSubscriptionID *string         `json:"stripeSubscriptionId,omitempty"`
	GrantedByID          *int64          `json:"grantedById,omitempty"`
	Metadata             models.Metadata `json:"metadata"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

func grantFromModel(g *models.AccessGrant) grantResponse {
	resp := grantResponse{
		ID:                   g.ID,
		UserID:               g.UserID,
		GrantedByGroupID:     g.GrantedByGroupID,
		ProductID:            g.ProductID,
		AccessType:           string(g.AccessType),
		Status:               string(g.Status),
		ExpiresAt:            g.ExpiresAt,
		StripeSessionID:      g.StripeSessionID,
		StripeSubscriptionID: g.StripeSubscriptionID,
		GrantedByID:          g.GrantedByID,
		Metadata:             g.Metadata,
		CreatedAt:            g.CreatedAt,
		UpdatedAt:            g.UpdatedAt,
	}

	id := g.Target.ID()
	switch g.Target.Kind() {
	case models.TargetTrack:
		resp.TrackID = &id
	case models.TargetRole:
		resp.RoleID = &id
	case models.TargetGroup:
		resp.GroupID = &id
	}

	return resp
}

func grantsFromModels(grants []models.AccessGrant) []grantResponse {
	out := make([]grantResponse, 0, len(grants))
	for i := range grants {
		out = append(out, grantFromModel(&grants[i]))
	}

	return out
}

// targetFromIDs собирает цель гранта из трёх опциональных полей запроса.
// Задано не ровно одно — возвращается нулевая цель; валидацию "ровно одна"
// выполняет сервис.
func targetFromIDs(trackID, roleID, groupID *int64) models.Target {
	var (
		target models.Target
		set    int
	)

	if trackID != nil {
		target = models.TrackTarget(*trackID)
		set++
	}
	if roleID != nil {
		target = models.RoleTarget(*roleID)
		set++
	}
	if groupID != nil {
		target = models.GroupTarget(*groupID)
		set++
	}

	if set != 1 {
		return models.Target{}
	}

	return target
}

// parseExpiresAt разбирает опциональную метку срока в RFC3339.
func parseExpiresAt(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, apierrors.ErrBadRequest
	}

	return &t, nil
}
