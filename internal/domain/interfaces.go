package domain

import (
	"context"
	"time"

	"kladovka/internal/database"
	"kladovka/internal/models"
	"kladovka/internal/pricing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Repository interface {
	CreateCell(ctx context.Context, cell *models.Cell) error
	GetCellByID(ctx context.Context, id int64) (*models.Cell, error)
	GetCellByNumber(ctx context.Context, number string) (*models.Cell, error)
	GetCells(ctx context.Context, filter database.CellFilter) ([]models.Cell, error)
	UpdateCell(ctx context.Context, cell *models.Cell) error
	UpdateCellStatus(ctx context.Context, id int64, status string, reservedUntil *time.Time) error
	DeleteCell(ctx context.Context, id int64) error
	SyncCells(ctx context.Context, cells []models.Cell) error

	CreateCustomer(ctx context.Context, customer *models.Customer) error
	GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error)
	GetCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error)
	GetCustomerByTelegramID(ctx context.Context, telegramID int64) (*models.Customer, error)
	GetCustomers(ctx context.Context, filter database.CustomerFilter) ([]models.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, upd database.CustomerUpdate) error
	LinkTelegram(ctx context.Context, customerID, telegramID int64) error
	DeleteCustomer(ctx context.Context, id int64) error

	CreateRentalWithLock(ctx context.Context, rental *models.Rental) error
	GetRentalByID(ctx context.Context, id int64) (*models.Rental, error)
	GetRentals(ctx context.Context, filter database.RentalFilter) ([]models.Rental, error)
	ExtendRental(ctx context.Context, id int64, months int, additionalAmount int64) (*models.Rental, error)
	ReleaseRental(ctx context.Context, id int64) (*models.Rental, error)
	DeleteRental(ctx context.Context, id int64) error
	GetExpiringRentals(ctx context.Context, days int) ([]models.Rental, error)
	MarkExpiryNotified(ctx context.Context, id int64) error
	GetRentalStats(ctx context.Context) (map[string]int, int64, error)

	AddCellPhoto(ctx context.Context, photo *models.CellPhoto) error
	GetCellPhotos(ctx context.Context, cellID int64) ([]models.CellPhoto, error)
	GetPhotoByID(ctx context.Context, id int64) (*models.CellPhoto, error)
	DeleteCellPhoto(ctx context.Context, id int64) error

	CreateAuthToken(ctx context.Context, token *models.AuthToken) error
	GetAuthToken(ctx context.Context, token string) (*models.AuthToken, error)
	ConfirmAuthToken(ctx context.Context, token string, customerID int64) error
	UseAuthToken(ctx context.Context, token string) (int64, error)
	CleanupAuthTokens(ctx context.Context) (int64, error)
}

type StateRepository interface {
	GetState(ctx context.Context, userID int64) (*models.UserState, error)
	SetState(ctx context.Context, state *models.UserState) error
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type StateManager interface {
	GetUserState(ctx context.Context, userID int64) (*models.UserState, error)
	SetUserState(ctx context.Context, userID int64, step string, data map[string]interface{}) error
	ClearUserState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendMarkdown(chatID int64, text string) (tgbotapi.Message, error)
	SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	AnswerCallback(callbackID string, text string) error
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type SheetsWriter interface {
	UpdateCustomersSheet(ctx context.Context, customers []models.Customer) error
	ReplaceRentalsSheet(ctx context.Context, rentals []models.Rental) error
	UpsertRental(ctx context.Context, rental *models.Rental) error
	DeleteRentalRow(ctx context.Context, rentalID int64) error
	UpdateRentalStatus(ctx context.Context, rentalID int64, status string) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, rentalID int64, rental *models.Rental, status string) error
	EnqueueSyncCustomers(ctx context.Context) error
}

type RentalService interface {
	Quote(ctx context.Context, cellID int64, months int) (*pricing.Quote, error)
	CreateRental(ctx context.Context, cellID, customerID int64, startDate time.Time, months int, autoRenew bool, notes string) (*models.Rental, error)
	ExtendRental(ctx context.Context, rentalID int64, months int) (*models.Rental, error)
	ReleaseRental(ctx context.Context, rentalID int64) (*models.Rental, error)
	DeleteRental(ctx context.Context, rentalID int64) error
	GetRental(ctx context.Context, id int64) (*models.Rental, error)
	GetRentals(ctx context.Context, filter database.RentalFilter) ([]models.Rental, error)
	GetCustomerRentals(ctx context.Context, customerID int64) ([]models.Rental, error)
	GetStats(ctx context.Context) (map[string]int, int64, error)
	GetExpiringRentals(ctx context.Context, days int) ([]models.Rental, error)
	MarkExpiryNotified(ctx context.Context, id int64) error
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	GetCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error)
	GetCustomerByTelegramID(ctx context.Context, telegramID int64) (*models.Customer, error)
	SearchCustomers(ctx context.Context, filter database.CustomerFilter) ([]models.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, upd database.CustomerUpdate) error
	DeleteCustomer(ctx context.Context, id int64) error
	LinkTelegram(ctx context.Context, customerID, telegramID int64) error
	RegisterFromTelegram(ctx context.Context, telegramID int64, name, phone string) (*models.Customer, error)
}

type CellService interface {
	GetCells(ctx context.Context, filter database.CellFilter) ([]models.Cell, error)
	GetCell(ctx context.Context, id int64) (*models.Cell, error)
	CreateCell(ctx context.Context, cell *models.Cell) error
	UpdateCell(ctx context.Context, cell *models.Cell) error
	DeleteCell(ctx context.Context, id int64) error
	SetCellStatus(ctx context.Context, id int64, status string, reservedUntil *time.Time) error
}

type AuthService interface {
	StartSession(ctx context.Context) (*models.AuthToken, error)
	ConfirmSession(ctx context.Context, token string, customerID int64) error
	VerifyToken(ctx context.Context, token string) (*models.Customer, error)
}
