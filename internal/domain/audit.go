package domain

import (
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditActionCreate            AuditAction = "CREATE"
	AuditActionUpdate            AuditAction = "UPDATE"
	AuditActionDelete            AuditAction = "DELETE"
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
)

type AuditResource string

const (
	AuditResourceCategory AuditResource = "category"
	AuditResourceProduct  AuditResource = "product"
	AuditResourceOrder    AuditResource = "order"
)

// AuditLog records who changed what through an admin operation.
// Before and After hold JSON snapshots; either may be empty.
type AuditLog struct {
	ID           uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	ActorID      uuid.UUID     `json:"actor_id" gorm:"type:uuid;not null;index"`
	Action       AuditAction   `json:"action" gorm:"size:50;not null;index"`
	ResourceType AuditResource `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   uuid.UUID     `json:"resource_id" gorm:"type:uuid;not null;index"`
	Before       string        `json:"before,omitempty" gorm:"column:before_json;type:text"`
	After        string        `json:"after,omitempty" gorm:"column:after_json;type:text"`
	CreatedAt    time.Time     `json:"created_at" gorm:"not null;index"`
}
