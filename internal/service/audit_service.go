package service

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// AuditService exposes the admin audit trail
type AuditService interface {
	List(ctx context.Context, p domain.Principal, filter repository.AuditLogFilter) ([]*domain.AuditLog, error)
}

type auditService struct {
	logs repository.AuditLogRepository
}

func NewAuditService(logs repository.AuditLogRepository) AuditService {
	return &auditService{logs: logs}
}

// List returns the newest entries first, narrowed by filter
func (s *auditService) List(ctx context.Context, p domain.Principal, filter repository.AuditLogFilter) ([]*domain.AuditLog, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if filter.ResourceType != nil {
		switch *filter.ResourceType {
		case domain.AuditResourceCategory, domain.AuditResourceProduct, domain.AuditResourceOrder:
		default:
			return nil, domain.Invalidf("unknown resource type %q", *filter.ResourceType)
		}
	}
	return s.logs.List(ctx, filter)
}
