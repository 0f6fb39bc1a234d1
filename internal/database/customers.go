package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kladovka/internal/models"
)

const customerColumns = `id, name, phone, email, telegram_id, type, company_name, company_inn, created_at, updated_at`

func (db *DB) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	query := `INSERT INTO customers (name, phone, email, telegram_id, type, company_name, company_inn, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	if customer.Type == "" {
		customer.Type = models.CustomerTypeIndividual
	}
	result, err := db.ExecContext(ctx, query,
		customer.Name,
		customer.Phone,
		customer.Email,
		customer.TelegramID,
		customer.Type,
		customer.CompanyName,
		customer.CompanyINN,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	customer.ID = id
	customer.CreatedAt = now
	customer.UpdatedAt = now

	return nil
}

func (db *DB) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = ?`
	return db.queryCustomer(ctx, query, id)
}

func (db *DB) GetCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE phone = ? ORDER BY id LIMIT 1`
	return db.queryCustomer(ctx, query, phone)
}

func (db *DB) GetCustomerByTelegramID(ctx context.Context, telegramID int64) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE telegram_id = ?`
	return db.queryCustomer(ctx, query, telegramID)
}

func (db *DB) queryCustomer(ctx context.Context, query string, args ...interface{}) (*models.Customer, error) {
	var c models.Customer
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&c.ID, &c.Name, &c.Phone, &c.Email, &c.TelegramID, &c.Type, &c.CompanyName, &c.CompanyINN, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

// CustomerFilter задает условия поиска клиентов.
type CustomerFilter struct {
	Query string // подстрока в имени, телефоне или email
	Type  string
}

func (db *DB) GetCustomers(ctx context.Context, filter CustomerFilter) ([]models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE 1=1`
	var args []interface{}

	if filter.Query != "" {
		query += ` AND (name LIKE ? OR phone LIKE ? OR email LIKE ?)`
		pattern := "%" + filter.Query + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, filter.Type)
	}
	query += ` ORDER BY name ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get customers: %w", err)
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		err := rows.Scan(
			&c.ID, &c.Name, &c.Phone, &c.Email, &c.TelegramID, &c.Type, &c.CompanyName, &c.CompanyINN, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// CustomerUpdate содержит частичное обновление: nil-поля не изменяются.
type CustomerUpdate struct {
	Name        *string `json:"name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
	Type        *string `json:"type,omitempty"`
	CompanyName *string `json:"company_name,omitempty"`
	CompanyINN  *string `json:"company_inn,omitempty"`
}

func (db *DB) UpdateCustomer(ctx context.Context, id int64, upd CustomerUpdate) error {
	query := `UPDATE customers SET
                  name = COALESCE(?, name),
                  phone = COALESCE(?, phone),
                  email = COALESCE(?, email),
                  type = COALESCE(?, type),
                  company_name = COALESCE(?, company_name),
                  company_inn = COALESCE(?, company_inn),
                  updated_at = ?
              WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		upd.Name,
		upd.Phone,
		upd.Email,
		upd.Type,
		upd.CompanyName,
		upd.CompanyINN,
		time.Now(),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return checkAffected(result)
}

// LinkTelegram привязывает telegram-аккаунт к карточке клиента.
func (db *DB) LinkTelegram(ctx context.Context, customerID, telegramID int64) error {
	query := `UPDATE customers SET telegram_id = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, telegramID, time.Now(), customerID)
	if err != nil {
		return fmt.Errorf("failed to link telegram: %w", err)
	}
	return checkAffected(result)
}

// DeleteCustomer удаляет клиента. Клиент с активными арендами не удаляется.
func (db *DB) DeleteCustomer(ctx context.Context, id int64) error {
	var active int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rentals WHERE customer_id = ? AND status = 'active'`, id,
	).Scan(&active)
	if err != nil {
		return fmt.Errorf("failed to count customer rentals: %w", err)
	}
	if active > 0 {
		return ErrCustomerHasRentals
	}

	result, err := db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return checkAffected(result)
}
