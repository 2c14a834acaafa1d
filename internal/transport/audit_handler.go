package transport

import (
	"net/http"
	"strconv"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditHandler serves the admin audit trail
type AuditHandler struct {
	audit  service.AuditService
	logger *zap.Logger
}

func NewAuditHandler(audit service.AuditService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{audit: audit, logger: logger}
}

func (h *AuditHandler) RegisterRoutes(r chi.Router, auth, admin func(http.Handler) http.Handler) {
	r.With(auth, admin).Get("/api/audit-logs", h.ListAuditLogs)
}

// ListAuditLogs accepts actorId, resourceType, resourceId and limit query parameters
func (h *AuditHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	var filter repository.AuditLogFilter
	if filter.ActorID, ok = queryUUID(w, r, "actorId"); !ok {
		return
	}
	if filter.ResourceID, ok = queryUUID(w, r, "resourceId"); !ok {
		return
	}
	if raw := q.Get("resourceType"); raw != "" {
		resource := domain.AuditResource(raw)
		filter.ResourceType = &resource
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		filter.Limit = limit
	}

	entries, err := h.audit.List(r.Context(), p, filter)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, entries)
}

// queryUUID parses an optional uuid query parameter; absent yields nil
func queryUUID(w http.ResponseWriter, r *http.Request, name string) (*uuid.UUID, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid "+name+" parameter")
		return nil, false
	}
	return &id, true
}
