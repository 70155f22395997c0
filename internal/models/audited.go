package models

import "time"

// Audited carries the soft-delete tombstone and actor attribution shared
// by every entity that participates in the audit trail. A nil DeletedAt
// means the row is active; CreatedBy/UpdatedBy are user ids, nil when a
// change was system-initiated. They are not enforced as foreign keys.
type Audited struct {
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
	CreatedBy *uint      `json:"created_by,omitempty"`
	UpdatedBy *uint      `json:"updated_by,omitempty"`
}

func (a *Audited) IsDeleted() bool {
	return a.DeletedAt != nil
}

func (a *Audited) MarkDeleted(at time.Time, actor *uint) {
	a.DeletedAt = &at
	a.UpdatedBy = actor
}

func (a *Audited) ClearDeleted(actor *uint) {
	a.DeletedAt = nil
	a.UpdatedBy = actor
}

func (a *Audited) AuditActors() (createdBy, updatedBy *uint) {
	return a.CreatedBy, a.UpdatedBy
}

// Auditable is implemented by every entity the mutation observer and the
// audit service operate on.
type Auditable interface {
	EntityType() string
	PrimaryID() uint
	AuditActors() (createdBy, updatedBy *uint)
	IsDeleted() bool
	MarkDeleted(at time.Time, actor *uint)
	ClearDeleted(actor *uint)
}

type entityDef struct {
	newEntity func() Auditable
	newSlice  func() interface{}
}

var auditedEntities = map[string]entityDef{
	"User": {
		newEntity: func() Auditable { return &User{} },
		newSlice:  func() interface{} { return &[]User{} },
	},
	"Payment": {
		newEntity: func() Auditable { return &Payment{} },
		newSlice:  func() interface{} { return &[]Payment{} },
	},
}

// NewAuditedEntity returns an empty instance for a registered entity type.
func NewAuditedEntity(entityType string) (Auditable, bool) {
	def, ok := auditedEntities[entityType]
	if !ok {
		return nil, false
	}
	return def.newEntity(), true
}

// NewAuditedSlice returns a pointer to an empty slice of the concrete
// entity type, suitable as a Find destination.
func NewAuditedSlice(entityType string) (interface{}, bool) {
	def, ok := auditedEntities[entityType]
	if !ok {
		return nil, false
	}
	return def.newSlice(), true
}
