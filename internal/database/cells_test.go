package database

import (
	"context"
	"testing"
	"time"

	"kladovka/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCells_Filter(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	cells := []models.Cell{
		{Number: "A-01", Width: 1, Height: 1, Depth: 1, Floor: 1, MonthlyPrice: 1000},
		{Number: "A-02", Width: 2, Height: 2, Depth: 2, Floor: 1, MonthlyPrice: 3000},
		{Number: "B-01", Width: 1, Height: 2, Depth: 1, Floor: 2, MonthlyPrice: 1500},
	}
	for i := range cells {
		require.NoError(t, db.CreateCell(ctx, &cells[i]))
	}

	all, err := db.GetCells(ctx, CellFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Сортировка по номеру
	assert.Equal(t, "A-01", all[0].Number)
	assert.Equal(t, "B-01", all[2].Number)

	floor := 2
	second, err := db.GetCells(ctx, CellFilter{Floor: &floor})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "B-01", second[0].Number)

	big, err := db.GetCells(ctx, CellFilter{MinVolume: 5})
	require.NoError(t, err)
	require.Len(t, big, 1)
	assert.Equal(t, "A-02", big[0].Number)

	cheap, err := db.GetCells(ctx, CellFilter{MaxPrice: 1500})
	require.NoError(t, err)
	assert.Len(t, cheap, 2)
}

func TestSyncCells_Upsert(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.SyncCells(ctx, []models.Cell{
		{Number: "A-01", Width: 1, Height: 1, Depth: 1, Floor: 1, MonthlyPrice: 1000},
	}))

	cell, err := db.GetCellByNumber(ctx, "A-01")
	require.NoError(t, err)
	assert.Equal(t, models.CellStatusAvailable, cell.Status)

	// Занимаем ячейку и синхронизируем с новой ценой
	customer := createTestCustomer(t, db, "Жилец", "+79990000001")
	rental := &models.Rental{
		CellID: cell.ID, CustomerID: customer.ID, CustomerName: customer.Name,
		StartDate: time.Now(), Months: 1, MonthlyPrice: 1000, TotalAmount: 1000,
	}
	require.NoError(t, db.CreateRentalWithLock(ctx, rental))

	require.NoError(t, db.SyncCells(ctx, []models.Cell{
		{Number: "A-01", Width: 1, Height: 1, Depth: 1, Floor: 1, MonthlyPrice: 1200},
	}))

	cell, err = db.GetCellByNumber(ctx, "A-01")
	require.NoError(t, err)
	assert.Equal(t, int64(1200), cell.MonthlyPrice)
	// Статус занятой ячейки синхронизация не трогает
	assert.Equal(t, models.CellStatusOccupied, cell.Status)
}

func TestDeleteCell_WithRentalHistory(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	cell := createTestCell(t, db, "G-01")
	customer := createTestCustomer(t, db, "История", "+79990000002")
	rental := &models.Rental{
		CellID: cell.ID, CustomerID: customer.ID, CustomerName: customer.Name,
		StartDate: time.Now(), Months: 1, MonthlyPrice: 1090, TotalAmount: 1090,
	}
	require.NoError(t, db.CreateRentalWithLock(ctx, rental))
	_, err := db.ReleaseRental(ctx, rental.ID)
	require.NoError(t, err)

	// Завершенная аренда тоже блокирует удаление: история должна остаться
	err = db.DeleteCell(ctx, cell.ID)
	assert.ErrorIs(t, err, ErrCellHasRentals)

	empty := createTestCell(t, db, "G-02")
	require.NoError(t, db.DeleteCell(ctx, empty.ID))
}

func TestCellPhotos(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	cell := createTestCell(t, db, "H-01")

	first := &models.CellPhoto{CellID: cell.ID, FileName: "h01_1.jpg", ContentType: "image/jpeg", SizeBytes: 1024, SortOrder: 1}
	second := &models.CellPhoto{CellID: cell.ID, FileName: "h01_0.jpg", ContentType: "image/jpeg", SizeBytes: 2048, SortOrder: 0}
	require.NoError(t, db.AddCellPhoto(ctx, first))
	require.NoError(t, db.AddCellPhoto(ctx, second))

	photos, err := db.GetCellPhotos(ctx, cell.ID)
	require.NoError(t, err)
	require.Len(t, photos, 2)
	// Порядок по sort_order
	assert.Equal(t, "h01_0.jpg", photos[0].FileName)

	// Фото подтягиваются в карточку ячейки
	got, err := db.GetCellByID(ctx, cell.ID)
	require.NoError(t, err)
	assert.Len(t, got.Photos, 2)

	require.NoError(t, db.DeleteCellPhoto(ctx, first.ID))
	photos, err = db.GetCellPhotos(ctx, cell.ID)
	require.NoError(t, err)
	assert.Len(t, photos, 1)

	err = db.DeleteCellPhoto(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}
