// Package audit observes insert/update mutations on audited entities and
// appends AuditLog rows for them. Audit writes are best-effort: they run
// in their own session so they can never fail or roll back the business
// mutation that triggered them.
package audit

import (
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"

	"github.com/bookscope/bookscope/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const preImageKey = "audit:pre_image"

// SessionFactory opens an independent database session for one audit
// write. It must not share a transaction with the observed mutation.
type SessionFactory func() *gorm.DB

// Recorder is a gorm plugin. Registering it with db.Use hooks the
// create/update lifecycle of every audited entity saved through that db.
type Recorder struct {
	sessions SessionFactory
	log      *slog.Logger
}

func NewRecorder(sessions SessionFactory) *Recorder {
	return &Recorder{sessions: sessions, log: slog.Default()}
}

func (r *Recorder) Name() string { return "audit" }

// Initialize wires the recorder's callbacks. A missing session factory is
// a configuration error and fails registration outright rather than
// silently skipping audit writes later.
func (r *Recorder) Initialize(db *gorm.DB) error {
	if r.sessions == nil {
		return errors.New("audit: session factory not configured")
	}
	if err := db.Callback().Create().After("gorm:create").Register("audit:after_create", r.afterCreate); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("audit:before_update", r.beforeUpdate); err != nil {
		return err
	}
	return db.Callback().Update().After("gorm:update").Register("audit:after_update", r.afterUpdate)
}

// afterCreate logs INSERT for a freshly persisted audited entity.
func (r *Recorder) afterCreate(tx *gorm.DB) {
	if tx.Error != nil || tx.Statement.Schema == nil {
		return
	}
	entity, ok := auditedTarget(tx)
	if !ok {
		return
	}
	id := entity.PrimaryID()
	if id == 0 {
		return
	}
	createdBy, _ := entity.AuditActors()
	r.record(tx, models.AuditLog{
		EntityType: entity.EntityType(),
		EntityID:   id,
		Action:     models.ActionInsert,
		UserID:     createdBy,
	})
}

// beforeUpdate captures the row's pre-image so afterUpdate can diff
// against it. The read goes through the statement's own connection and
// therefore sees the state the pending write is about to replace.
func (r *Recorder) beforeUpdate(tx *gorm.DB) {
	if tx.Statement.Schema == nil {
		return
	}
	entity, ok := auditedTarget(tx)
	if !ok {
		return
	}
	id := entity.PrimaryID()
	if id == 0 {
		return
	}
	pre := reflect.New(tx.Statement.Schema.ModelType).Interface()
	err := tx.Session(&gorm.Session{NewDB: true, SkipHooks: true}).
		Table(tx.Statement.Table).
		Where("id = ?", id).
		Take(pre).Error
	if err != nil {
		r.log.Warn("audit pre-image read failed",
			"entity_type", entity.EntityType(), "entity_id", id, "error", err)
		return
	}
	tx.InstanceSet(preImageKey, pre)
}

// afterUpdate diffs the pre-image against the row as written and logs
// UPDATE when at least one monitored column changed.
func (r *Recorder) afterUpdate(tx *gorm.DB) {
	if tx.Error != nil || tx.RowsAffected == 0 || tx.Statement.Schema == nil {
		return
	}
	entity, ok := auditedTarget(tx)
	if !ok {
		return
	}
	raw, ok := tx.InstanceGet(preImageKey)
	if !ok {
		return
	}
	id := entity.PrimaryID()
	post := reflect.New(tx.Statement.Schema.ModelType).Interface()
	err := tx.Session(&gorm.Session{NewDB: true, SkipHooks: true}).
		Table(tx.Statement.Table).
		Where("id = ?", id).
		Take(post).Error
	if err != nil {
		r.log.Warn("audit post-image read failed",
			"entity_type", entity.EntityType(), "entity_id", id, "error", err)
		return
	}

	changes := diffImages(tx, raw, post)
	if len(changes) == 0 {
		return
	}
	payload, err := json.Marshal(changes)
	if err != nil {
		r.log.Error("audit change serialization failed",
			"entity_type", entity.EntityType(), "entity_id", id, "error", err)
		return
	}

	var updatedBy *uint
	if written, ok := post.(models.Auditable); ok {
		_, updatedBy = written.AuditActors()
	}
	r.record(tx, models.AuditLog{
		EntityType: entity.EntityType(),
		EntityID:   id,
		Action:     models.ActionUpdate,
		Changes:    datatypes.JSON(payload),
		UserID:     updatedBy,
	})
}

// record writes one audit entry in its own transaction. Failures are
// rolled back, logged and swallowed; the business mutation stands.
func (r *Recorder) record(tx *gorm.DB, entry models.AuditLog) {
	session := r.sessions()
	if session == nil {
		r.log.Error("audit session factory returned nil session",
			"entity_type", entry.EntityType, "entity_id", entry.EntityID, "action", entry.Action)
		return
	}
	ctx := tx.Statement.Context
	if info, ok := RequestInfoFrom(ctx); ok {
		entry.IPAddress = info.IP
		entry.UserAgent = info.UserAgent
		entry.Reason = info.Reason
	}
	err := session.WithContext(ctx).Transaction(func(audit *gorm.DB) error {
		return audit.Create(&entry).Error
	})
	if err != nil {
		r.log.Error("audit write failed",
			"entity_type", entry.EntityType, "entity_id", entry.EntityID,
			"action", entry.Action, "error", err)
	}
}

// auditedTarget extracts the audited entity a statement operates on.
// Only single-row writes are observed; the application never batch-writes
// audited entities.
func auditedTarget(tx *gorm.DB) (models.Auditable, bool) {
	v := tx.Statement.ReflectValue
	if v.Kind() != reflect.Struct || !v.CanAddr() {
		return nil, false
	}
	entity, ok := v.Addr().Interface().(models.Auditable)
	return entity, ok
}
