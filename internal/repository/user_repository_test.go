package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/bookscope/bookscope/internal/models"
	"github.com/bookscope/bookscope/internal/repository"
	"github.com/bookscope/bookscope/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, email string, deleted bool) *models.User {
	t.Helper()
	user := &models.User{Email: email, FullName: "Repo User", IsActive: true}
	if deleted {
		now := time.Now().UTC()
		user.DeletedAt = &now
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedPayment(t *testing.T, db *gorm.DB, userID uint, stripeID string, status models.PaymentStatus, deleted bool) *models.Payment {
	t.Helper()
	payment := &models.Payment{
		UserID:          userID,
		StripePaymentID: stripeID,
		Amount:          499,
		Currency:        "usd",
		Status:          status,
		PlanType:        models.PlanBasic,
		BookTitle:       "The Left Hand of Darkness",
		BookAuthor:      "Ursula K. Le Guin",
	}
	if deleted {
		now := time.Now().UTC()
		payment.DeletedAt = &now
	}
	require.NoError(t, db.Create(payment).Error)
	return payment
}

func TestUserRepositoryFiltersDeleted(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	active := seedUser(t, db, "active@example.com", false)
	gone := seedUser(t, db, "gone@example.com", true)

	found, err := repo.FindActiveByID(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.Email, found.Email)

	_, err = repo.FindActiveByID(ctx, gone.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindActiveByEmail(ctx, "gone@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	users, err := repo.ListActive(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, active.ID, users[0].ID)
}

func TestUserRepositoryPreloadsActivePaymentsOnly(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "payer@example.com", false)
	kept := seedPayment(t, db, user.ID, "pi_kept", models.PaymentCompleted, false)
	seedPayment(t, db, user.ID, "pi_tombstoned", models.PaymentCompleted, true)

	loaded, err := repo.FindWithPayments(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Payments, 1)
	assert.Equal(t, kept.ID, loaded.Payments[0].ID)
}
