package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ActionInsert = "INSERT"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// AuditLog is an append-only record of one observed mutation. It points
// at its entity by (entity_type, entity_id) only, so historical entries
// stay valid after the entity itself is deleted.
type AuditLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	EntityType string         `gorm:"size:50;not null;index:idx_audit_logs_entity" json:"entity_type"`
	EntityID   uint           `gorm:"not null;index:idx_audit_logs_entity" json:"entity_id"`
	Action     string         `gorm:"size:20;not null;index" json:"action"`
	Changes    datatypes.JSON `gorm:"type:jsonb" json:"changes,omitempty"`
	UserID     *uint          `gorm:"index" json:"user_id,omitempty"` // nil for system-initiated changes
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	IPAddress  string         `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent  string         `gorm:"size:500" json:"user_agent,omitempty"`
	Reason     string         `gorm:"size:255" json:"reason,omitempty"`
}

func (AuditLog) TableName() string { return "audit_logs" }

// FieldChange is one entry of AuditLog.Changes. Values are recorded in
// their textual form; nil marks an absent (NULL) value.
type FieldChange struct {
	Old *string `json:"old"`
	New *string `json:"new"`
}
