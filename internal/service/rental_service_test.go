package service

import (
	"context"
	"io"
	"testing"
	"time"

	"kladovka/internal/database"
	"kladovka/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *database.DB {
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func newTestRentalService(t *testing.T) (*RentalService, *database.DB) {
	db := setupTestDB(t)
	return NewRentalService(db, nil, nil, 1500, testLogger()), db
}

func seedCellAndCustomer(t *testing.T, db *database.DB) (*models.Cell, *models.Customer) {
	ctx := context.Background()
	cell := &models.Cell{Number: "A-01", Width: 1.1, Height: 2.2, Depth: 0.3, Floor: 1, MonthlyPrice: 1090}
	require.NoError(t, db.CreateCell(ctx, cell))
	customer := &models.Customer{Name: "Иван Петров", Phone: "+79001234567"}
	require.NoError(t, db.CreateCustomer(ctx, customer))
	return cell, customer
}

func TestQuote(t *testing.T) {
	svc, db := newTestRentalService(t)
	ctx := context.Background()
	cell, _ := seedCellAndCustomer(t, db)

	quote, err := svc.Quote(ctx, cell.ID, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(1090), quote.MonthlyPrice)
	assert.Equal(t, int64(10), quote.DiscountPercent)
	assert.Equal(t, int64(5890), quote.TotalAmount)

	_, err = svc.Quote(ctx, cell.ID, 0)
	assert.ErrorIs(t, err, database.ErrInvalidMonths)

	_, err = svc.Quote(ctx, 9999, 6)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestQuote_FromVolume(t *testing.T) {
	svc, db := newTestRentalService(t)
	ctx := context.Background()

	// Без явной цены ставка считается от объема: 1.1*2.2*0.3*1500 = 1089 -> 1090
	cell := &models.Cell{Number: "V-01", Width: 1.1, Height: 2.2, Depth: 0.3, Floor: 1}
	require.NoError(t, db.CreateCell(ctx, cell))

	quote, err := svc.Quote(ctx, cell.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1090), quote.MonthlyPrice)
	assert.Equal(t, int64(0), quote.DiscountPercent)
}

func TestCreateRental(t *testing.T) {
	svc, db := newTestRentalService(t)
	ctx := context.Background()
	cell, customer := seedCellAndCustomer(t, db)

	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	rental, err := svc.CreateRental(ctx, cell.ID, customer.ID, start, 6, false, "")
	require.NoError(t, err)
	assert.Equal(t, models.RentalStatusActive, rental.Status)
	assert.Equal(t, "Иван Петров", rental.CustomerName)
	assert.Equal(t, int64(5890), rental.TotalAmount)
	assert.Equal(t, int64(10), rental.DiscountPercent)

	// Повторная аренда той же ячейки
	_, err = svc.CreateRental(ctx, cell.ID, customer.ID, start, 1, false, "")
	assert.ErrorIs(t, err, database.ErrCellOccupied)

	// Несуществующий клиент
	_, err = svc.CreateRental(ctx, cell.ID, 9999, start, 1, false, "")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestExtendRental(t *testing.T) {
	svc, db := newTestRentalService(t)
	ctx := context.Background()
	cell, customer := seedCellAndCustomer(t, db)

	rental, err := svc.CreateRental(ctx, cell.ID, customer.ID, time.Now(), 2, false, "")
	require.NoError(t, err)

	// Доплата за 1 месяц без скидки: 1090
	extended, err := svc.ExtendRental(ctx, rental.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), extended.Months)
	assert.Equal(t, rental.TotalAmount+1090, extended.TotalAmount)

	_, err = svc.ExtendRental(ctx, rental.ID, 0)
	assert.ErrorIs(t, err, database.ErrInvalidMonths)
}

func TestReleaseAndDeleteRental(t *testing.T) {
	svc, db := newTestRentalService(t)
	ctx := context.Background()
	cell, customer := seedCellAndCustomer(t, db)

	rental, err := svc.CreateRental(ctx, cell.ID, customer.ID, time.Now(), 1, false, "")
	require.NoError(t, err)

	released, err := svc.ReleaseRental(ctx, rental.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RentalStatusExpired, released.Status)

	got, err := db.GetCellByID(ctx, cell.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CellStatusAvailable, got.Status)

	require.NoError(t, svc.DeleteRental(ctx, rental.ID))
	_, err = svc.GetRental(ctx, rental.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}
