package service

import (
	"context"
	"testing"
	"time"

	"kladovka/internal/database"
	"kladovka/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthSessionFlow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, 10*time.Minute, testLogger())
	ctx := context.Background()

	customer := &models.Customer{Name: "Вход", Phone: "+79991112233"}
	require.NoError(t, db.CreateCustomer(ctx, customer))

	token, err := svc.StartSession(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.False(t, token.Confirmed)

	// Без подтверждения код не принимается
	_, err = svc.VerifyToken(ctx, token.Token)
	assert.ErrorIs(t, err, database.ErrTokenInvalid)

	require.NoError(t, svc.ConfirmSession(ctx, token.Token, customer.ID))

	got, err := svc.VerifyToken(ctx, token.Token)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, got.ID)

	// Код одноразовый
	_, err = svc.VerifyToken(ctx, token.Token)
	assert.ErrorIs(t, err, database.ErrTokenInvalid)
}

func TestAuthSession_UnknownToken(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, 10*time.Minute, testLogger())

	err := svc.ConfirmSession(context.Background(), "no-such-token", 1)
	assert.ErrorIs(t, err, database.ErrTokenInvalid)
}
