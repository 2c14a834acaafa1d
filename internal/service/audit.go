package service

import (
	"context"
	"encoding/json"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// recordAudit writes an audit row through the repositories of the current
// transaction so it commits or rolls back with the change it describes.
func recordAudit(
	ctx context.Context,
	repos repository.TxRepos,
	actor domain.Principal,
	action domain.AuditAction,
	resource domain.AuditResource,
	resourceID uuid.UUID,
	before, after any,
) error {
	entry := &domain.AuditLog{
		ID:           uuid.New(),
		ActorID:      actor.UserID,
		Action:       action,
		ResourceType: resource,
		ResourceID:   resourceID,
		Before:       snapshot(before),
		After:        snapshot(after),
		CreatedAt:    time.Now().UTC(),
	}
	return repos.AuditLogs().Create(ctx, entry)
}

func snapshot(v any) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func requireAdmin(p domain.Principal) error {
	if !p.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}
