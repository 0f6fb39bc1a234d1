package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kladovka/internal/models"
)

func (db *DB) CreateAuthToken(ctx context.Context, token *models.AuthToken) error {
	query := `INSERT INTO auth_tokens (token, customer_id, confirmed, expires_at, created_at)
              VALUES (?, ?, ?, ?, ?)`
	now := time.Now()
	_, err := db.ExecContext(ctx, query,
		token.Token,
		token.CustomerID,
		token.Confirmed,
		token.ExpiresAt,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create auth token: %w", err)
	}
	token.CreatedAt = now
	return nil
}

func (db *DB) GetAuthToken(ctx context.Context, token string) (*models.AuthToken, error) {
	query := `SELECT token, customer_id, confirmed, expires_at, used_at, created_at
              FROM auth_tokens WHERE token = ?`
	var t models.AuthToken
	err := db.QueryRowContext(ctx, query, token).Scan(
		&t.Token, &t.CustomerID, &t.Confirmed, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get auth token: %w", err)
	}
	return &t, nil
}

// ConfirmAuthToken привязывает код к клиенту после подтверждения в боте.
func (db *DB) ConfirmAuthToken(ctx context.Context, token string, customerID int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE auth_tokens SET confirmed = 1, customer_id = ?
         WHERE token = ? AND used_at IS NULL AND expires_at > ?`,
		customerID, token, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to confirm auth token: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrTokenInvalid
	}
	return nil
}

// UseAuthToken атомарно гасит подтвержденный код и возвращает id клиента.
// Повторное использование, просроченный или неподтвержденный код — ErrTokenInvalid.
func (db *DB) UseAuthToken(ctx context.Context, token string) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var customerID sql.NullInt64
	var confirmed bool
	var expiresAt time.Time
	var usedAt sql.NullTime
	err = tx.QueryRowContext(ctx,
		`SELECT customer_id, confirmed, expires_at, used_at FROM auth_tokens WHERE token = ?`, token,
	).Scan(&customerID, &confirmed, &expiresAt, &usedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrTokenInvalid
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get auth token in tx: %w", err)
	}
	if !confirmed || !customerID.Valid || usedAt.Valid || time.Now().After(expiresAt) {
		return 0, ErrTokenInvalid
	}

	_, err = tx.ExecContext(ctx, `UPDATE auth_tokens SET used_at = ? WHERE token = ?`, time.Now(), token)
	if err != nil {
		return 0, fmt.Errorf("failed to mark auth token used: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return customerID.Int64, nil
}

// CleanupAuthTokens удаляет просроченные и погашенные коды, возвращает число удаленных.
func (db *DB) CleanupAuthTokens(ctx context.Context) (int64, error) {
	result, err := db.ExecContext(ctx,
		`DELETE FROM auth_tokens WHERE expires_at <= ? OR used_at IS NOT NULL`, time.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup auth tokens: %w", err)
	}
	return result.RowsAffected()
}
