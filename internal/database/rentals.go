package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kladovka/internal/models"
)

const rentalColumns = `id, cell_id, cell_number, customer_id, customer_name, start_date, end_date, months,
              monthly_price, discount_percent, total_amount, auto_renew, status, notes, expiry_notified_at,
              created_at, updated_at`

// CreateRentalWithLock атомарно создает аренду: проверка статуса ячейки,
// вставка аренды и перевод ячейки в occupied выполняются в одной транзакции.
func (db *DB) CreateRentalWithLock(ctx context.Context, rental *models.Rental) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 1. Проверяем ячейку внутри транзакции
	var cellNumber, cellStatus string
	err = tx.QueryRowContext(ctx, `SELECT number, status FROM cells WHERE id = ?`, rental.CellID).
		Scan(&cellNumber, &cellStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check cell in tx: %w", err)
	}
	if cellStatus == models.CellStatusOccupied {
		return ErrCellOccupied
	}

	// 2. Создаем аренду
	queryInsert := `INSERT INTO rentals (
                cell_id, cell_number, customer_id, customer_name,
                start_date, end_date, months, monthly_price, discount_percent, total_amount,
                auto_renew, status, notes, created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	rental.CellNumber = cellNumber
	rental.EndDate = rental.StartDate.AddDate(0, int(rental.Months), 0)
	rental.Status = models.RentalStatusActive
	result, err := tx.ExecContext(ctx, queryInsert,
		rental.CellID,
		rental.CellNumber,
		rental.CustomerID,
		rental.CustomerName,
		rental.StartDate,
		rental.EndDate,
		rental.Months,
		rental.MonthlyPrice,
		rental.DiscountPercent,
		rental.TotalAmount,
		rental.AutoRenew,
		rental.Status,
		rental.Notes,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert rental in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	rental.ID = id
	rental.CreatedAt = now
	rental.UpdatedAt = now

	// 3. Помечаем ячейку занятой
	_, err = tx.ExecContext(ctx,
		`UPDATE cells SET status = ?, reserved_until = NULL, updated_at = ? WHERE id = ?`,
		models.CellStatusOccupied, now, rental.CellID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark cell occupied in tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (db *DB) GetRentalByID(ctx context.Context, id int64) (*models.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = ?`
	var r models.Rental
	err := db.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.CellID, &r.CellNumber, &r.CustomerID, &r.CustomerName, &r.StartDate, &r.EndDate, &r.Months,
		&r.MonthlyPrice, &r.DiscountPercent, &r.TotalAmount, &r.AutoRenew, &r.Status, &r.Notes, &r.ExpiryNotifiedAt,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rental: %w", err)
	}
	return &r, nil
}

// RentalFilter задает условия выборки аренд.
type RentalFilter struct {
	Status     string
	CustomerID int64
	CellID     int64
}

func (db *DB) GetRentals(ctx context.Context, filter RentalFilter) ([]models.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE 1=1`
	var args []interface{}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.CustomerID != 0 {
		query += ` AND customer_id = ?`
		args = append(args, filter.CustomerID)
	}
	if filter.CellID != 0 {
		query += ` AND cell_id = ?`
		args = append(args, filter.CellID)
	}
	query += ` ORDER BY created_at DESC`

	return db.queryRentals(ctx, query, args...)
}

func (db *DB) queryRentals(ctx context.Context, query string, args ...interface{}) ([]models.Rental, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get rentals: %w", err)
	}
	defer rows.Close()

	var rentals []models.Rental
	for rows.Next() {
		var r models.Rental
		err := rows.Scan(
			&r.ID, &r.CellID, &r.CellNumber, &r.CustomerID, &r.CustomerName, &r.StartDate, &r.EndDate, &r.Months,
			&r.MonthlyPrice, &r.DiscountPercent, &r.TotalAmount, &r.AutoRenew, &r.Status, &r.Notes, &r.ExpiryNotifiedAt,
			&r.CreatedAt, &r.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rental: %w", err)
		}
		rentals = append(rentals, r)
	}
	return rentals, rows.Err()
}

// ExtendRental продлевает активную аренду на months месяцев и сбрасывает
// отметку об отправленном напоминании, чтобы оно ушло заново ближе к новому сроку.
func (db *DB) ExtendRental(ctx context.Context, id int64, months int, additionalAmount int64) (*models.Rental, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var endDate time.Time
	var status string
	err = tx.QueryRowContext(ctx, `SELECT end_date, status FROM rentals WHERE id = ?`, id).
		Scan(&endDate, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rental in tx: %w", err)
	}
	if status != models.RentalStatusActive {
		return nil, ErrRentalNotActive
	}

	newEnd := endDate.AddDate(0, months, 0)
	_, err = tx.ExecContext(ctx,
		`UPDATE rentals SET end_date = ?, months = months + ?, total_amount = total_amount + ?,
             expiry_notified_at = NULL, updated_at = ? WHERE id = ?`,
		newEnd, months, additionalAmount, time.Now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to extend rental in tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return db.GetRentalByID(ctx, id)
}

// ReleaseRental завершает активную аренду и освобождает ячейку.
func (db *DB) ReleaseRental(ctx context.Context, id int64) (*models.Rental, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var cellID int64
	var status string
	err = tx.QueryRowContext(ctx, `SELECT cell_id, status FROM rentals WHERE id = ?`, id).
		Scan(&cellID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rental in tx: %w", err)
	}
	if status != models.RentalStatusActive {
		return nil, ErrRentalNotActive
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`UPDATE rentals SET status = ?, end_date = ?, updated_at = ? WHERE id = ?`,
		models.RentalStatusExpired, now, now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to release rental in tx: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE cells SET status = ?, reserved_until = NULL, updated_at = ? WHERE id = ?`,
		models.CellStatusAvailable, now, cellID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to free cell in tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return db.GetRentalByID(ctx, id)
}

// DeleteRental удаляет запись об аренде. Если аренда была активной,
// ячейка возвращается в available в той же транзакции.
func (db *DB) DeleteRental(ctx context.Context, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var cellID int64
	var status string
	err = tx.QueryRowContext(ctx, `SELECT cell_id, status FROM rentals WHERE id = ?`, id).
		Scan(&cellID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get rental in tx: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rentals WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete rental in tx: %w", err)
	}

	if status == models.RentalStatusActive {
		_, err = tx.ExecContext(ctx,
			`UPDATE cells SET status = ?, reserved_until = NULL, updated_at = ? WHERE id = ?`,
			models.CellStatusAvailable, time.Now(), cellID,
		)
		if err != nil {
			return fmt.Errorf("failed to free cell in tx: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpiringRentals возвращает активные аренды, срок которых истекает в
// ближайшие days дней и по которым напоминание еще не отправлялось.
func (db *DB) GetExpiringRentals(ctx context.Context, days int) ([]models.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals
              WHERE status = 'active'
                AND end_date <= ?
                AND expiry_notified_at IS NULL
              ORDER BY end_date ASC`
	deadline := time.Now().AddDate(0, 0, days)
	return db.queryRentals(ctx, query, deadline)
}

func (db *DB) MarkExpiryNotified(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE rentals SET expiry_notified_at = ?, updated_at = ? WHERE id = ?`,
		time.Now(), time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark rental notified: %w", err)
	}
	return checkAffected(result)
}

// GetRentalStats агрегирует количество аренд по статусам и суммарную выручку
// по активным (для сводки менеджера).
func (db *DB) GetRentalStats(ctx context.Context) (map[string]int, int64, error) {
	rows, err := db.QueryContext(ctx, `SELECT status, COUNT(*) FROM rentals GROUP BY status`)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get rental stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, 0, fmt.Errorf("failed to scan rental stats: %w", err)
		}
		stats[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var revenue sql.NullInt64
	err = db.QueryRowContext(ctx,
		`SELECT SUM(total_amount) FROM rentals WHERE status = 'active'`,
	).Scan(&revenue)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get active revenue: %w", err)
	}
	return stats, revenue.Int64, nil
}
