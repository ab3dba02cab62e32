package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/carenotify/pkg/broadcast"
	"github.com/dmitrymomot/carenotify/pkg/jwt"
	"github.com/dmitrymomot/carenotify/pkg/logger"
	"github.com/dmitrymomot/carenotify/pkg/notifications"
	"github.com/dmitrymomot/carenotify/pkg/tenant"
)

// DispatchAudience must be in the token audience to call the /v1 API.
const DispatchAudience = "carenotify:dispatch"

const maxDispatchBody = 1 << 20

var (
	ErrForbidden        = errors.New("token is not allowed to dispatch notifications")
	ErrNoRecipients     = errors.New("either user_ids or all_users is required")
	ErrAmbiguousTargets = errors.New("user_ids and all_users are mutually exclusive")
)

type dispatchRequest struct {
	UserIDs  []string               `json:"user_ids,omitempty"`
	AllUsers bool                   `json:"all_users,omitempty"`
	Type     string                 `json:"type"`
	Priority notifications.Priority `json:"priority,omitempty"`
	Title    string                 `json:"title"`
	Message  string                 `json:"message"`
	Data     map[string]any         `json:"data,omitempty"`
}

func (req dispatchRequest) validate() error {
	switch {
	case req.AllUsers && len(req.UserIDs) > 0:
		return ErrAmbiguousTargets
	case !req.AllUsers && len(req.UserIDs) == 0:
		return ErrNoRecipients
	case slices.Contains(req.UserIDs, ""):
		return notifications.ErrMissingUser
	case req.Type == "":
		return notifications.ErrMissingType
	case req.Priority != "" && !req.Priority.Valid():
		return fmt.Errorf("%w: %q", notifications.ErrInvalidPriority, req.Priority)
	}
	return nil
}

type dispatchResponse struct {
	Reports []notifications.DeliveryReport `json:"reports"`
	// Skipped lists requested users that got no notification, such as users
	// of another tenant.
	Skipped []string `json:"skipped,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// dispatch creates one notification per target user and delivers it on
// every channel. The response carries one report per created notification.
func (a *App) dispatch(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := tenant.IDFromContext(r.Context())

	var req dispatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	params := notifications.CreateParams{
		Type:     req.Type,
		Priority: req.Priority,
		Title:    req.Title,
		Message:  req.Message,
		Data:     req.Data,
	}

	// Delivery outlives the request.
	ctx := context.WithoutCancel(r.Context())

	var (
		reports []notifications.DeliveryReport
		err     error
	)
	if req.AllUsers {
		reports, err = a.orchestrator.DeliverToTenant(ctx, tenantID, params)
	} else {
		reports, err = a.orchestrator.DeliverToUsers(ctx, tenantID, req.UserIDs, params)
	}
	if err != nil {
		a.logger.ErrorContext(r.Context(), "dispatch failed", logger.TenantID(tenantID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if reports == nil {
		reports = []notifications.DeliveryReport{}
	}
	writeJSON(w, http.StatusOK, dispatchResponse{Reports: reports, Skipped: skipped(req.UserIDs, reports)})
}

func skipped(requested []string, reports []notifications.DeliveryReport) []string {
	var out []string
	for _, id := range requested {
		if !slices.ContainsFunc(reports, func(r notifications.DeliveryReport) bool { return r.UserID == id }) {
			out = append(out, id)
		}
	}
	return out
}

type announceRequest struct {
	Type     string                 `json:"type"`
	Priority notifications.Priority `json:"priority,omitempty"`
	Title    string                 `json:"title"`
	Message  string                 `json:"message"`
	Data     map[string]any         `json:"data,omitempty"`
}

type announceResponse struct {
	Notification notifications.Notification `json:"notification"`
	Delivered    broadcast.TenantResult     `json:"delivered"`
}

// announce pushes a tenant-wide in-app notification to every live
// connection of the tenant. Nothing is stored and no other channel is used.
func (a *App) announce(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := tenant.IDFromContext(r.Context())

	var req announceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	switch {
	case req.Type == "":
		writeError(w, http.StatusUnprocessableEntity, notifications.ErrMissingType)
		return
	case req.Priority == "":
		req.Priority = notifications.PriorityMedium
	case !req.Priority.Valid():
		writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("%w: %q", notifications.ErrInvalidPriority, req.Priority))
		return
	}

	n := notifications.Notification{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Type:      req.Type,
		Priority:  req.Priority,
		Title:     req.Title,
		Message:   req.Message,
		Data:      req.Data,
		CreatedAt: time.Now().UTC(),
	}
	res := a.broadcaster.BroadcastToTenant(r.Context(), tenantID, n)
	a.logger.InfoContext(r.Context(), "tenant announcement sent",
		logger.TenantID(tenantID),
		logger.NotificationID(n.ID),
		slog.Int("connections", res.Total()),
	)
	writeJSON(w, http.StatusOK, announceResponse{Notification: n, Delivered: res})
}

// pushStats sends the user's current badge counters to their live
// connections.
func (a *App) pushStats(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := tenant.IDFromContext(r.Context())
	userID := chi.URLParam(r, "userID")

	stats, err := a.backend.store.Stats(r.Context(), tenantID, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	res := a.broadcaster.SendStatsUpdate(r.Context(), tenantID, userID, stats)
	writeJSON(w, http.StatusOK, struct {
		Stats     notifications.Stats `json:"stats"`
		Delivered bool                `json:"delivered"`
	}{stats, res.Delivered()})
}

// requireAudience rejects tokens that were not issued for aud or that
// belong to another tenant than the request.
func requireAudience(aud string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := jwt.GetClaims(r.Context())
			tenantID, _ := tenant.IDFromContext(r.Context())
			if !ok || claims.TenantID != tenantID || !slices.Contains(claims.Audience, aud) {
				writeError(w, http.StatusForbidden, ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDispatchBody))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, errorResponse{Error: err.Error()})
}
