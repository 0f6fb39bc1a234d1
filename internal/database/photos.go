package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"kladovka/internal/models"
)

func (db *DB) AddCellPhoto(ctx context.Context, photo *models.CellPhoto) error {
	query := `INSERT INTO cell_photos (cell_id, file_name, content_type, size_bytes, sort_order, created_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		photo.CellID,
		photo.FileName,
		photo.ContentType,
		photo.SizeBytes,
		photo.SortOrder,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to add cell photo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	photo.ID = id
	photo.CreatedAt = now

	return nil
}

func (db *DB) GetCellPhotos(ctx context.Context, cellID int64) ([]models.CellPhoto, error) {
	query := `SELECT id, cell_id, file_name, content_type, size_bytes, sort_order, created_at
              FROM cell_photos WHERE cell_id = ? ORDER BY sort_order ASC, id ASC`
	rows, err := db.QueryContext(ctx, query, cellID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cell photos: %w", err)
	}
	defer rows.Close()

	var photos []models.CellPhoto
	for rows.Next() {
		var p models.CellPhoto
		err := rows.Scan(&p.ID, &p.CellID, &p.FileName, &p.ContentType, &p.SizeBytes, &p.SortOrder, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cell photo: %w", err)
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (db *DB) GetPhotoByID(ctx context.Context, id int64) (*models.CellPhoto, error) {
	query := `SELECT id, cell_id, file_name, content_type, size_bytes, sort_order, created_at
              FROM cell_photos WHERE id = ?`
	var p models.CellPhoto
	err := db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.CellID, &p.FileName, &p.ContentType, &p.SizeBytes, &p.SortOrder, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return &p, nil
}

func (db *DB) DeleteCellPhoto(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM cell_photos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cell photo: %w", err)
	}
	return checkAffected(result)
}

// attachPhotos подгружает фотографии для списка ячеек одним запросом.
func (db *DB) attachPhotos(ctx context.Context, cells []models.Cell) error {
	if len(cells) == 0 {
		return nil
	}

	ids := make([]interface{}, len(cells))
	placeholders := make([]string, len(cells))
	index := make(map[int64]int, len(cells))
	for i := range cells {
		ids[i] = cells[i].ID
		placeholders[i] = "?"
		index[cells[i].ID] = i
	}

	query := `SELECT id, cell_id, file_name, content_type, size_bytes, sort_order, created_at
              FROM cell_photos WHERE cell_id IN (` + strings.Join(placeholders, ",") + `)
              ORDER BY sort_order ASC, id ASC`
	rows, err := db.QueryContext(ctx, query, ids...)
	if err != nil {
		return fmt.Errorf("failed to get photos for cells: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.CellPhoto
		err := rows.Scan(&p.ID, &p.CellID, &p.FileName, &p.ContentType, &p.SizeBytes, &p.SortOrder, &p.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to scan cell photo: %w", err)
		}
		if i, ok := index[p.CellID]; ok {
			cells[i].Photos = append(cells[i].Photos, p)
		}
	}
	return rows.Err()
}
