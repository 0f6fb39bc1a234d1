package database

import (
	"context"
	"testing"
	"time"

	"kladovka/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthTokenLifecycle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	customer := createTestCustomer(t, db, "Вход", "+79991112233")

	token := &models.AuthToken{
		Token:     "test-token-1",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	require.NoError(t, db.CreateAuthToken(ctx, token))

	// Неподтвержденный код использовать нельзя
	_, err := db.UseAuthToken(ctx, token.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	require.NoError(t, db.ConfirmAuthToken(ctx, token.Token, customer.ID))

	customerID, err := db.UseAuthToken(ctx, token.Token)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, customerID)

	// Повторное использование не проходит
	_, err = db.UseAuthToken(ctx, token.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAuthToken_Expired(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	customer := createTestCustomer(t, db, "Опоздавший", "+79991112244")

	token := &models.AuthToken{
		Token:     "stale-token",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, db.CreateAuthToken(ctx, token))

	// Просроченный код нельзя ни подтвердить, ни использовать
	err := db.ConfirmAuthToken(ctx, token.Token, customer.ID)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = db.UseAuthToken(ctx, token.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCleanupAuthTokens(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.CreateAuthToken(ctx, &models.AuthToken{
		Token: "fresh", ExpiresAt: time.Now().Add(10 * time.Minute),
	}))
	require.NoError(t, db.CreateAuthToken(ctx, &models.AuthToken{
		Token: "stale", ExpiresAt: time.Now().Add(-time.Minute),
	}))

	removed, err := db.CleanupAuthTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = db.GetAuthToken(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.GetAuthToken(ctx, "fresh")
	assert.NoError(t, err)
}
