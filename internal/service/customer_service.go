package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kladovka/internal/database"
	"kladovka/internal/domain"
	"kladovka/internal/events"
	"kladovka/internal/models"

	"github.com/rs/zerolog"
)

type CustomerService struct {
	repo         domain.Repository
	eventBus     domain.EventPublisher
	sheetsWorker domain.SyncWorker
	logger       *zerolog.Logger
}

func NewCustomerService(repo domain.Repository, eventBus domain.EventPublisher, sheetsWorker domain.SyncWorker, logger *zerolog.Logger) *CustomerService {
	return &CustomerService{
		repo:         repo,
		eventBus:     eventBus,
		sheetsWorker: sheetsWorker,
		logger:       logger,
	}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Phone = strings.TrimSpace(customer.Phone)
	if customer.Name == "" || customer.Phone == "" {
		return fmt.Errorf("%w: name and phone are required", database.ErrInvalidInput)
	}
	if customer.Type == models.CustomerTypeCompany && customer.CompanyINN == "" {
		return fmt.Errorf("%w: company requires inn", database.ErrInvalidInput)
	}

	if err := s.repo.CreateCustomer(ctx, customer); err != nil {
		return err
	}

	s.publishEvent(events.EventCustomerCreated, customer)
	s.enqueueCustomersSync(ctx)
	return nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	return s.repo.GetCustomerByID(ctx, id)
}

func (s *CustomerService) GetCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	return s.repo.GetCustomerByPhone(ctx, normalizePhone(phone))
}

func (s *CustomerService) GetCustomerByTelegramID(ctx context.Context, telegramID int64) (*models.Customer, error) {
	return s.repo.GetCustomerByTelegramID(ctx, telegramID)
}

func (s *CustomerService) SearchCustomers(ctx context.Context, filter database.CustomerFilter) ([]models.Customer, error) {
	return s.repo.GetCustomers(ctx, filter)
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, id int64, upd database.CustomerUpdate) error {
	if err := s.repo.UpdateCustomer(ctx, id, upd); err != nil {
		return err
	}

	if customer, err := s.repo.GetCustomerByID(ctx, id); err == nil {
		s.publishEvent(events.EventCustomerModified, customer)
	}
	s.enqueueCustomersSync(ctx)
	return nil
}

func (s *CustomerService) DeleteCustomer(ctx context.Context, id int64) error {
	if err := s.repo.DeleteCustomer(ctx, id); err != nil {
		return err
	}
	s.enqueueCustomersSync(ctx)
	return nil
}

func (s *CustomerService) LinkTelegram(ctx context.Context, customerID, telegramID int64) error {
	if err := s.repo.LinkTelegram(ctx, customerID, telegramID); err != nil {
		return err
	}

	if customer, err := s.repo.GetCustomerByID(ctx, customerID); err == nil {
		s.publishEvent(events.EventCustomerLinked, customer)
	}
	s.enqueueCustomersSync(ctx)
	return nil
}

// RegisterFromTelegram привязывает аккаунт к существующему клиенту по номеру
// телефона либо регистрирует нового.
func (s *CustomerService) RegisterFromTelegram(ctx context.Context, telegramID int64, name, phone string) (*models.Customer, error) {
	phone = normalizePhone(phone)

	existing, err := s.repo.GetCustomerByPhone(ctx, phone)
	if err == nil {
		if err := s.LinkTelegram(ctx, existing.ID, telegramID); err != nil {
			return nil, err
		}
		return s.repo.GetCustomerByID(ctx, existing.ID)
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	customer := &models.Customer{
		Name:       name,
		Phone:      phone,
		TelegramID: telegramID,
	}
	if err := s.CreateCustomer(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) publishEvent(eventType string, customer *models.Customer) {
	if s.eventBus == nil {
		return
	}

	payload := events.CustomerEventPayload{
		CustomerID: customer.ID,
		Name:       customer.Name,
		Phone:      customer.Phone,
		TelegramID: customer.TelegramID,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("customer_id", customer.ID).Msg("publish event error")
	}
}

func (s *CustomerService) enqueueCustomersSync(ctx context.Context) {
	if s.sheetsWorker == nil {
		return
	}
	if err := s.sheetsWorker.EnqueueSyncCustomers(ctx); err != nil {
		s.logger.Error().Err(err).Msg("customers sync enqueue error")
	}
}

// normalizePhone приводит номер к виду +7XXXXXXXXXX.
func normalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	d := digits.String()
	if len(d) == 11 && d[0] == '8' {
		d = "7" + d[1:]
	}
	if d == "" {
		return phone
	}
	return "+" + d
}
