package service

import (
	"context"
	"fmt"
	"time"

	"kladovka/internal/database"
	"kladovka/internal/domain"
	"kladovka/internal/events"
	"kladovka/internal/metrics"
	"kladovka/internal/models"
	"kladovka/internal/pricing"

	"github.com/rs/zerolog"
)

type RentalService struct {
	repo         domain.Repository
	eventBus     domain.EventPublisher
	sheetsWorker domain.SyncWorker
	ratePerM3    float64
	logger       *zerolog.Logger
}

func NewRentalService(repo domain.Repository, eventBus domain.EventPublisher, sheetsWorker domain.SyncWorker, ratePerM3 float64, logger *zerolog.Logger) *RentalService {
	return &RentalService{
		repo:         repo,
		eventBus:     eventBus,
		sheetsWorker: sheetsWorker,
		ratePerM3:    ratePerM3,
		logger:       logger,
	}
}

// Quote считает стоимость аренды ячейки на months месяцев без создания записи.
func (s *RentalService) Quote(ctx context.Context, cellID int64, months int) (*pricing.Quote, error) {
	if months < 1 {
		return nil, database.ErrInvalidMonths
	}

	cell, err := s.repo.GetCellByID(ctx, cellID)
	if err != nil {
		return nil, err
	}

	// Ставка из карточки ячейки имеет приоритет, расчет от объема — запасной путь
	var quote pricing.Quote
	if cell.MonthlyPrice > 0 {
		quote = pricing.QuoteForMonthly(cell.MonthlyPrice, int64(months))
	} else {
		quote = pricing.NewQuote(cell.Volume(), s.ratePerM3, int64(months))
	}
	return &quote, nil
}

func (s *RentalService) CreateRental(ctx context.Context, cellID, customerID int64, startDate time.Time, months int, autoRenew bool, notes string) (*models.Rental, error) {
	if months < 1 {
		return nil, database.ErrInvalidMonths
	}

	customer, err := s.repo.GetCustomerByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("customer lookup: %w", err)
	}

	quote, err := s.Quote(ctx, cellID, months)
	if err != nil {
		return nil, err
	}

	if startDate.IsZero() {
		startDate = time.Now().Truncate(24 * time.Hour)
	}

	rental := &models.Rental{
		CellID:          cellID,
		CustomerID:      customer.ID,
		CustomerName:    customer.Name,
		StartDate:       startDate,
		Months:          int64(months),
		MonthlyPrice:    quote.MonthlyPrice,
		DiscountPercent: quote.DiscountPercent,
		TotalAmount:     quote.TotalAmount,
		AutoRenew:       autoRenew,
		Notes:           notes,
	}

	if err := s.repo.CreateRentalWithLock(ctx, rental); err != nil {
		return nil, err
	}

	metrics.IncRentalCreated()
	s.publishEvent(events.EventRentalCreated, rental)
	s.enqueueSync(ctx, rental, "upsert")

	return rental, nil
}

// ExtendRental продлевает аренду; скидка на доплату считается по сроку продления.
func (s *RentalService) ExtendRental(ctx context.Context, rentalID int64, months int) (*models.Rental, error) {
	if months < 1 {
		return nil, database.ErrInvalidMonths
	}

	current, err := s.repo.GetRentalByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	additional := pricing.QuoteForMonthly(current.MonthlyPrice, int64(months))
	rental, err := s.repo.ExtendRental(ctx, rentalID, months, additional.TotalAmount)
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.EventRentalExtended, rental)
	s.enqueueSync(ctx, rental, "upsert")

	return rental, nil
}

func (s *RentalService) ReleaseRental(ctx context.Context, rentalID int64) (*models.Rental, error) {
	rental, err := s.repo.ReleaseRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.EventRentalReleased, rental)
	s.enqueueSync(ctx, rental, "update_status")

	return rental, nil
}

func (s *RentalService) DeleteRental(ctx context.Context, rentalID int64) error {
	rental, err := s.repo.GetRentalByID(ctx, rentalID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteRental(ctx, rentalID); err != nil {
		return err
	}

	s.publishEvent(events.EventRentalDeleted, rental)
	s.enqueueSync(ctx, rental, "delete")

	return nil
}

func (s *RentalService) GetRental(ctx context.Context, id int64) (*models.Rental, error) {
	return s.repo.GetRentalByID(ctx, id)
}

func (s *RentalService) GetRentals(ctx context.Context, filter database.RentalFilter) ([]models.Rental, error) {
	return s.repo.GetRentals(ctx, filter)
}

func (s *RentalService) GetCustomerRentals(ctx context.Context, customerID int64) ([]models.Rental, error) {
	return s.repo.GetRentals(ctx, database.RentalFilter{CustomerID: customerID})
}

// GetStats возвращает количество аренд по статусам и выручку по активным.
func (s *RentalService) GetStats(ctx context.Context) (map[string]int, int64, error) {
	return s.repo.GetRentalStats(ctx)
}

// GetExpiringRentals возвращает активные аренды, истекающие в ближайшие days
// дней, по которым напоминание еще не отправлялось.
func (s *RentalService) GetExpiringRentals(ctx context.Context, days int) ([]models.Rental, error) {
	return s.repo.GetExpiringRentals(ctx, days)
}

func (s *RentalService) MarkExpiryNotified(ctx context.Context, id int64) error {
	return s.repo.MarkExpiryNotified(ctx, id)
}

func (s *RentalService) publishEvent(eventType string, rental *models.Rental) {
	if s.eventBus == nil {
		return
	}

	payload := events.RentalEventPayload{
		RentalID:     rental.ID,
		CellID:       rental.CellID,
		CellNumber:   rental.CellNumber,
		CustomerID:   rental.CustomerID,
		CustomerName: rental.CustomerName,
		Status:       rental.Status,
		StartDate:    rental.StartDate,
		EndDate:      rental.EndDate,
		Months:       rental.Months,
		TotalAmount:  rental.TotalAmount,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("rental_id", rental.ID).Msg("publish event error")
	}
}

func (s *RentalService) enqueueSync(ctx context.Context, rental *models.Rental, taskType string) {
	if s.sheetsWorker == nil {
		return
	}

	var status string
	if taskType == "update_status" {
		status = rental.Status
	}

	if err := s.sheetsWorker.EnqueueTask(ctx, taskType, rental.ID, rental, status); err != nil {
		s.logger.Error().Err(err).Int64("rental_id", rental.ID).Str("task", taskType).Msg("sheets enqueue error")
	}
}
