package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"kladovka/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsService зеркалит реестры клиентов и аренд в Google Sheets.
// Таблицы ведутся для бухгалтерии, приложение их только пишет.
type SheetsService struct {
	service          *sheets.Service
	customersSheetID string
	rentalsSheetID   string
	rowCache         map[int64]int
	cacheMu          sync.RWMutex
}

var errRowNotFound = errors.New("rental row not found")

func NewSheetsService(credentialsFile, customersSheetID, rentalsSheetID string) (*SheetsService, error) {
	ctx := context.Background()

	// Читаем файл учетных данных сервисного аккаунта
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	service := &SheetsService{
		service:          srv,
		customersSheetID: customersSheetID,
		rentalsSheetID:   rentalsSheetID,
		rowCache:         make(map[int64]int),
	}

	// Прогреваем кэш строк в фоне
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		service.WarmUpCache(ctx)
	}()

	// И обновляем его раз в час
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			service.WarmUpCache(ctx)
			cancel()
		}
	}()

	return service, nil
}

// TestConnection проверяет доступ к таблице аренд.
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.rentalsSheetID, "Rentals!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// GetServiceAccountEmail возвращает email сервисного аккаунта
func (s *SheetsService) GetServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}

	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}

	return creds.ClientEmail, nil
}

// UpdateCustomersSheet полностью перезаписывает лист клиентов.
func (s *SheetsService) UpdateCustomersSheet(ctx context.Context, customers []models.Customer) error {
	var values [][]interface{}

	headers := []interface{}{"ID", "Имя", "Телефон", "Email", "Telegram ID", "Тип", "Компания", "ИНН", "Создан"}
	values = append(values, headers)

	for _, c := range customers {
		row := []interface{}{
			c.ID,
			c.Name,
			c.Phone,
			c.Email,
			c.TelegramID,
			c.Type,
			c.CompanyName,
			c.CompanyINN,
			c.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		values = append(values, row)
	}

	rangeData := fmt.Sprintf("Customers!A1:I%d", len(values))
	_, err := s.service.Spreadsheets.Values.Update(s.customersSheetID, rangeData, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

// ReplaceRentalsSheet полностью перезаписывает лист аренд.
func (s *SheetsService) ReplaceRentalsSheet(ctx context.Context, rentals []models.Rental) error {
	var values [][]interface{}

	headers := []interface{}{"ID", "Ячейка", "Клиент", "Начало", "Окончание", "Месяцев", "Цена/мес", "Скидка %", "Сумма", "Статус", "Создана", "Обновлена"}
	values = append(values, headers)

	for i := range rentals {
		values = append(values, rentalRowValues(&rentals[i]))
	}

	rangeData := fmt.Sprintf("Rentals!A1:L%d", len(values))
	_, err := s.service.Spreadsheets.Values.Update(s.rentalsSheetID, rangeData, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err == nil {
		s.ClearCache()
	}
	return err
}

// WarmUpCache заполняет кэш индексов строк по колонке ID.
func (s *SheetsService) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.rentalsSheetID, "Rentals!A:A").Context(ctx).Do()
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		var id int64
		switch v := row[0].(type) {
		case float64:
			id = int64(v)
		case string:
			fmt.Sscanf(v, "%d", &id)
		}
		if id > 0 {
			s.rowCache[id] = i + 1
		}
	}
	return nil
}

// AppendRental добавляет строку аренды в конец листа.
func (s *SheetsService) AppendRental(ctx context.Context, rental *models.Rental) error {
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{rentalRowValues(rental)},
	}

	_, err := s.service.Spreadsheets.Values.Append(s.rentalsSheetID, "Rentals!A:A", valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// UpsertRental обновляет строку аренды или добавляет новую, если не нашлась.
func (s *SheetsService) UpsertRental(ctx context.Context, rental *models.Rental) error {
	if rental == nil {
		return fmt.Errorf("rental is nil")
	}

	rowIdx, err := s.FindRentalRow(ctx, rental.ID)
	if err != nil {
		if errors.Is(err, errRowNotFound) {
			return s.AppendRental(ctx, rental)
		}
		return err
	}

	rangeData := fmt.Sprintf("Rentals!A%d:L%d", rowIdx, rowIdx)
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{rentalRowValues(rental)},
	}

	_, err = s.service.Spreadsheets.Values.Update(s.rentalsSheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

// DeleteRentalRow очищает строку удаленной аренды.
func (s *SheetsService) DeleteRentalRow(ctx context.Context, rentalID int64) error {
	rowIdx, err := s.FindRentalRow(ctx, rentalID)
	if err != nil {
		if errors.Is(err, errRowNotFound) {
			return nil
		}
		return err
	}

	rangeData := fmt.Sprintf("Rentals!A%d:L%d", rowIdx, rowIdx)
	_, err = s.service.Spreadsheets.Values.Clear(s.rentalsSheetID, rangeData, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err == nil {
		s.deleteCacheRow(rentalID)
	}
	return err
}

// UpdateRentalStatus обновляет статус и отметку времени в строке аренды.
func (s *SheetsService) UpdateRentalStatus(ctx context.Context, rentalID int64, status string) error {
	rowIdx, err := s.FindRentalRow(ctx, rentalID)
	if err != nil {
		return err
	}

	statusRange := fmt.Sprintf("Rentals!J%d:J%d", rowIdx, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.rentalsSheetID, statusRange, &sheets.ValueRange{
		Values: [][]interface{}{{status}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return err
	}

	now := time.Now().Format("2006-01-02 15:04:05")
	updatedRange := fmt.Sprintf("Rentals!L%d:L%d", rowIdx, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.rentalsSheetID, updatedRange, &sheets.ValueRange{
		Values: [][]interface{}{{now}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// FindRentalRow ищет номер строки (1-based) по ID аренды в колонке A, с кэшем.
func (s *SheetsService) FindRentalRow(ctx context.Context, rentalID int64) (int, error) {
	if rentalID == 0 {
		return 0, fmt.Errorf("rental id is required")
	}

	if row, ok := s.getCachedRow(rentalID); ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.rentalsSheetID, "Rentals!A:A").Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		switch v := row[0].(type) {
		case float64:
			if int64(v) == rentalID {
				rowIdx := i + 1 // строки листа нумеруются с единицы
				s.setCachedRow(rentalID, rowIdx)
				return rowIdx, nil
			}
		case string:
			if v == fmt.Sprintf("%d", rentalID) {
				rowIdx := i + 1
				s.setCachedRow(rentalID, rowIdx)
				return rowIdx, nil
			}
		}
	}

	return 0, errRowNotFound
}

func (s *SheetsService) getCachedRow(id int64) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *SheetsService) setCachedRow(id int64, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[id] = row
}

func (s *SheetsService) deleteCacheRow(id int64) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	delete(s.rowCache, id)
}

// ClearCache сбрасывает кэш индексов строк.
func (s *SheetsService) ClearCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)
}

func rentalRowValues(rental *models.Rental) []interface{} {
	return []interface{}{
		rental.ID,
		rental.CellNumber,
		rental.CustomerName,
		rental.StartDate.Format("2006-01-02"),
		rental.EndDate.Format("2006-01-02"),
		rental.Months,
		rental.MonthlyPrice,
		rental.DiscountPercent,
		rental.TotalAmount,
		rental.Status,
		rental.CreatedAt.Format("2006-01-02 15:04:05"),
		rental.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
