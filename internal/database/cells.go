package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kladovka/internal/models"
)

const cellColumns = `id, number, width, height, depth, floor, tier, monthly_price, status, reserved_until,
              has_heating, has_electricity, has_alarm, created_at, updated_at`

func (db *DB) CreateCell(ctx context.Context, cell *models.Cell) error {
	query := `INSERT INTO cells (number, width, height, depth, floor, tier, monthly_price, status, has_heating, has_electricity, has_alarm, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	if cell.Status == "" {
		cell.Status = models.CellStatusAvailable
	}
	result, err := db.ExecContext(ctx, query,
		cell.Number,
		cell.Width,
		cell.Height,
		cell.Depth,
		cell.Floor,
		cell.Tier,
		cell.MonthlyPrice,
		cell.Status,
		cell.HasHeating,
		cell.HasElectricity,
		cell.HasAlarm,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create cell: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	cell.ID = id
	cell.CreatedAt = now
	cell.UpdatedAt = now

	return nil
}

func (db *DB) GetCellByID(ctx context.Context, id int64) (*models.Cell, error) {
	query := `SELECT ` + cellColumns + ` FROM cells WHERE id = ?`
	cell, err := db.queryCell(ctx, query, id)
	if err != nil {
		return nil, err
	}

	photos, err := db.GetCellPhotos(ctx, cell.ID)
	if err != nil {
		return nil, err
	}
	cell.Photos = photos
	return cell, nil
}

func (db *DB) GetCellByNumber(ctx context.Context, number string) (*models.Cell, error) {
	query := `SELECT ` + cellColumns + ` FROM cells WHERE number = ?`
	return db.queryCell(ctx, query, number)
}

func (db *DB) queryCell(ctx context.Context, query string, args ...interface{}) (*models.Cell, error) {
	var cell models.Cell
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&cell.ID, &cell.Number, &cell.Width, &cell.Height, &cell.Depth, &cell.Floor, &cell.Tier,
		&cell.MonthlyPrice, &cell.Status, &cell.ReservedUntil,
		&cell.HasHeating, &cell.HasElectricity, &cell.HasAlarm, &cell.CreatedAt, &cell.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cell: %w", err)
	}
	return &cell, nil
}

// CellFilter задает условия выборки для списка ячеек.
type CellFilter struct {
	Status    string
	Floor     *int
	MinVolume float64
	MaxPrice  int64
}

// GetCells возвращает ячейки по фильтру, отсортированные по номеру.
// Фотографии подгружаются одним запросом для всего списка.
func (db *DB) GetCells(ctx context.Context, filter CellFilter) ([]models.Cell, error) {
	query := `SELECT ` + cellColumns + ` FROM cells WHERE 1=1`
	var args []interface{}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Floor != nil {
		query += ` AND floor = ?`
		args = append(args, *filter.Floor)
	}
	if filter.MinVolume > 0 {
		query += ` AND width * height * depth >= ?`
		args = append(args, filter.MinVolume)
	}
	if filter.MaxPrice > 0 {
		query += ` AND monthly_price <= ?`
		args = append(args, filter.MaxPrice)
	}
	query += ` ORDER BY number ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get cells: %w", err)
	}
	defer rows.Close()

	var cells []models.Cell
	for rows.Next() {
		var cell models.Cell
		err := rows.Scan(
			&cell.ID, &cell.Number, &cell.Width, &cell.Height, &cell.Depth, &cell.Floor, &cell.Tier,
			&cell.MonthlyPrice, &cell.Status, &cell.ReservedUntil,
			&cell.HasHeating, &cell.HasElectricity, &cell.HasAlarm, &cell.CreatedAt, &cell.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cell: %w", err)
		}
		cells = append(cells, cell)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := db.attachPhotos(ctx, cells); err != nil {
		return nil, err
	}
	return cells, nil
}

func (db *DB) UpdateCell(ctx context.Context, cell *models.Cell) error {
	query := `UPDATE cells SET number = ?, width = ?, height = ?, depth = ?, floor = ?, tier = ?,
              monthly_price = ?, has_heating = ?, has_electricity = ?, has_alarm = ?, updated_at = ?
              WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		cell.Number,
		cell.Width,
		cell.Height,
		cell.Depth,
		cell.Floor,
		cell.Tier,
		cell.MonthlyPrice,
		cell.HasHeating,
		cell.HasElectricity,
		cell.HasAlarm,
		time.Now(),
		cell.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update cell: %w", err)
	}
	return checkAffected(result)
}

func (db *DB) UpdateCellStatus(ctx context.Context, id int64, status string, reservedUntil *time.Time) error {
	query := `UPDATE cells SET status = ?, reserved_until = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, status, reservedUntil, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update cell status: %w", err)
	}
	return checkAffected(result)
}

// DeleteCell удаляет ячейку. Ячейка с арендами (в любом статусе) не удаляется:
// история аренд должна оставаться целостной.
func (db *DB) DeleteCell(ctx context.Context, id int64) error {
	var rentals int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rentals WHERE cell_id = ?`, id).Scan(&rentals)
	if err != nil {
		return fmt.Errorf("failed to count cell rentals: %w", err)
	}
	if rentals > 0 {
		return ErrCellHasRentals
	}

	result, err := db.ExecContext(ctx, `DELETE FROM cells WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cell: %w", err)
	}
	return checkAffected(result)
}

// SyncCells создает отсутствующие ячейки из конфигурации и обновляет
// параметры существующих. Статус занятых ячеек при этом не трогаем.
func (db *DB) SyncCells(ctx context.Context, cells []models.Cell) error {
	query := `INSERT INTO cells (number, width, height, depth, floor, tier, monthly_price, status, has_heating, has_electricity, has_alarm, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, 'available', ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
              ON CONFLICT(number) DO UPDATE SET
                  width = excluded.width,
                  height = excluded.height,
                  depth = excluded.depth,
                  floor = excluded.floor,
                  tier = excluded.tier,
                  monthly_price = excluded.monthly_price,
                  has_heating = excluded.has_heating,
                  has_electricity = excluded.has_electricity,
                  has_alarm = excluded.has_alarm,
                  updated_at = CURRENT_TIMESTAMP`

	for _, cell := range cells {
		_, err := db.ExecContext(ctx, query,
			cell.Number,
			cell.Width,
			cell.Height,
			cell.Depth,
			cell.Floor,
			cell.Tier,
			cell.MonthlyPrice,
			cell.HasHeating,
			cell.HasElectricity,
			cell.HasAlarm,
		)
		if err != nil {
			return fmt.Errorf("failed to sync cell %s: %w", cell.Number, err)
		}
	}
	return nil
}

func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
