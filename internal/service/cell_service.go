package service

import (
	"context"
	"fmt"
	"time"

	"kladovka/internal/database"
	"kladovka/internal/domain"
	"kladovka/internal/models"

	"github.com/rs/zerolog"
)

type CellService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewCellService(repo domain.Repository, logger *zerolog.Logger) *CellService {
	return &CellService{
		repo:   repo,
		logger: logger,
	}
}

func (s *CellService) GetCells(ctx context.Context, filter database.CellFilter) ([]models.Cell, error) {
	return s.repo.GetCells(ctx, filter)
}

func (s *CellService) GetCell(ctx context.Context, id int64) (*models.Cell, error) {
	return s.repo.GetCellByID(ctx, id)
}

func (s *CellService) CreateCell(ctx context.Context, cell *models.Cell) error {
	if err := validateCell(cell); err != nil {
		return err
	}
	return s.repo.CreateCell(ctx, cell)
}

func (s *CellService) UpdateCell(ctx context.Context, cell *models.Cell) error {
	if err := validateCell(cell); err != nil {
		return err
	}
	return s.repo.UpdateCell(ctx, cell)
}

func (s *CellService) DeleteCell(ctx context.Context, id int64) error {
	return s.repo.DeleteCell(ctx, id)
}

// SetCellStatus переводит ячейку между available и reserved вручную
// (бронь по телефону до оформления аренды). Статус occupied ставит
// только транзакция аренды, ячейку с активной арендой трогать нельзя.
func (s *CellService) SetCellStatus(ctx context.Context, id int64, status string, reservedUntil *time.Time) error {
	if status != models.CellStatusAvailable && status != models.CellStatusReserved {
		return fmt.Errorf("%w: status must be available or reserved", database.ErrInvalidInput)
	}

	cell, err := s.repo.GetCellByID(ctx, id)
	if err != nil {
		return err
	}
	if cell.Status == models.CellStatusOccupied {
		return database.ErrCellOccupied
	}

	if status != models.CellStatusReserved {
		reservedUntil = nil
	}
	return s.repo.UpdateCellStatus(ctx, id, status, reservedUntil)
}

func validateCell(cell *models.Cell) error {
	if cell.Number == "" {
		return fmt.Errorf("%w: cell number is required", database.ErrInvalidInput)
	}
	if cell.Width <= 0 || cell.Height <= 0 || cell.Depth <= 0 {
		return fmt.Errorf("%w: cell dimensions must be positive", database.ErrInvalidInput)
	}
	return nil
}
