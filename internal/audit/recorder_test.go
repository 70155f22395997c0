package audit_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/bookscope/bookscope/internal/audit"
	"github.com/bookscope/bookscope/internal/models"
	"github.com/bookscope/bookscope/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openAuditedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.OpenDB(t)
	recorder := audit.NewRecorder(func() *gorm.DB {
		return db.Session(&gorm.Session{NewDB: true})
	})
	require.NoError(t, db.Use(recorder))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, FullName: "Test User", IsActive: true}
	require.NoError(t, db.Create(user).Error)
	return user
}

func entityLogs(t *testing.T, db *gorm.DB, entityType string, entityID uint) []models.AuditLog {
	t.Helper()
	var logs []models.AuditLog
	require.NoError(t, db.
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("id").
		Find(&logs).Error)
	return logs
}

func decodeChanges(t *testing.T, log models.AuditLog) map[string]models.FieldChange {
	t.Helper()
	changes := map[string]models.FieldChange{}
	require.NoError(t, json.Unmarshal(log.Changes, &changes))
	return changes
}

func TestRecorderRequiresSessionFactory(t *testing.T) {
	db := testutil.OpenDB(t)
	err := db.Use(audit.NewRecorder(nil))
	require.Error(t, err)
}

func TestRecorderLogsInsert(t *testing.T) {
	db := openAuditedDB(t)

	user := createUser(t, db, "insert@example.com")
	payment := &models.Payment{
		UserID:          user.ID,
		StripePaymentID: "pi_insert",
		Amount:          1499,
		Currency:        "usd",
		Status:          models.PaymentPending,
		PlanType:        models.PlanDetailed,
		BookTitle:       "Dune",
		BookAuthor:      "Frank Herbert",
		Audited:         models.Audited{CreatedBy: &user.ID},
	}
	require.NoError(t, db.Create(payment).Error)

	logs := entityLogs(t, db, "Payment", payment.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActionInsert, logs[0].Action)
	assert.Equal(t, "Payment", logs[0].EntityType)
	assert.Equal(t, payment.ID, logs[0].EntityID)
	require.NotNil(t, logs[0].UserID)
	assert.Equal(t, user.ID, *logs[0].UserID)
	assert.Empty(t, logs[0].Changes)

	// The user insert was observed too, attributed to nobody.
	userLogs := entityLogs(t, db, "User", user.ID)
	require.Len(t, userLogs, 1)
	assert.Equal(t, models.ActionInsert, userLogs[0].Action)
	assert.Nil(t, userLogs[0].UserID)
}

func TestRecorderLogsUpdateDiff(t *testing.T) {
	db := openAuditedDB(t)

	user := createUser(t, db, "diff@example.com")
	payment := &models.Payment{
		UserID:          user.ID,
		StripePaymentID: "pi_diff",
		Amount:          499,
		Currency:        "usd",
		Status:          models.PaymentPending,
		PlanType:        models.PlanBasic,
		BookTitle:       "Neuromancer",
		BookAuthor:      "William Gibson",
	}
	require.NoError(t, db.Create(payment).Error)

	payment.Status = models.PaymentCompleted
	require.NoError(t, db.Save(payment).Error)

	logs := entityLogs(t, db, "Payment", payment.ID)
	require.Len(t, logs, 2)
	update := logs[1]
	assert.Equal(t, models.ActionUpdate, update.Action)

	changes := decodeChanges(t, update)
	status, ok := changes["status"]
	require.True(t, ok, "status change must be recorded")
	require.NotNil(t, status.Old)
	require.NotNil(t, status.New)
	assert.Equal(t, "pending", *status.Old)
	assert.Equal(t, "completed", *status.New)

	// Identity and timestamp bookkeeping never show up in a change-set.
	assert.NotContains(t, changes, "id")
	assert.NotContains(t, changes, "created_at")
	assert.NotContains(t, changes, "updated_at")
}

func TestRecorderLogsMapUpdates(t *testing.T) {
	db := openAuditedDB(t)

	user := createUser(t, db, "map@example.com")
	require.NoError(t, db.Model(user).Updates(map[string]interface{}{
		"full_name":   "Renamed User",
		"is_verified": true,
	}).Error)

	logs := entityLogs(t, db, "User", user.ID)
	require.Len(t, logs, 2)
	changes := decodeChanges(t, logs[1])
	require.Contains(t, changes, "full_name")
	assert.Equal(t, "Test User", *changes["full_name"].Old)
	assert.Equal(t, "Renamed User", *changes["full_name"].New)
	require.Contains(t, changes, "is_verified")
	assert.Equal(t, "false", *changes["is_verified"].Old)
	assert.Equal(t, "true", *changes["is_verified"].New)
}

func TestRecorderSkipsNoOpSave(t *testing.T) {
	db := openAuditedDB(t)

	user := createUser(t, db, "noop@example.com")
	require.NoError(t, db.Save(user).Error)

	logs := entityLogs(t, db, "User", user.ID)
	require.Len(t, logs, 1, "a save that changes nothing must not be logged")
	assert.Equal(t, models.ActionInsert, logs[0].Action)
}

func TestRecorderStampsRequestInfo(t *testing.T) {
	db := openAuditedDB(t)

	ctx := audit.WithRequestInfo(context.Background(), audit.RequestInfo{
		IP:        "203.0.113.7",
		UserAgent: "curl/8.5.0",
		Reason:    "manual correction",
	})
	user := &models.User{Email: "stamped@example.com", IsActive: true}
	require.NoError(t, db.WithContext(ctx).Create(user).Error)

	logs := entityLogs(t, db, "User", user.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, "203.0.113.7", logs[0].IPAddress)
	assert.Equal(t, "curl/8.5.0", logs[0].UserAgent)
	assert.Equal(t, "manual correction", logs[0].Reason)
}

func TestRecorderFailureNeverBreaksMutation(t *testing.T) {
	db := openAuditedDB(t)

	user := createUser(t, db, "resilient@example.com")
	require.NoError(t, db.Exec("DROP TABLE audit_logs").Error)

	user.FullName = "Still Updated"
	require.NoError(t, db.Save(user).Error, "a failing audit write must not surface")

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, "Still Updated", reloaded.FullName)
}

func TestRecorderIgnoresUnauditedModels(t *testing.T) {
	db := openAuditedDB(t)

	// AuditLog itself is not an audited entity; writing one directly must
	// not recurse into the observer.
	entry := &models.AuditLog{EntityType: "User", EntityID: 42, Action: models.ActionDelete}
	require.NoError(t, db.Create(entry).Error)

	var n int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
