package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kladovka/internal/database"

	"github.com/xuri/excelize/v2"
)

// exportRentalsToExcel создает Excel файл с реестром аренд
func (b *Bot) exportRentalsToExcel(ctx context.Context) (string, error) {
	// Создаем папку для экспорта, если не существует
	if err := os.MkdirAll(b.config.Exports.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	rentals, err := b.rentalService.GetRentals(ctx, database.RentalFilter{})
	if err != nil {
		return "", fmt.Errorf("error getting rentals: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Аренды"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Реестр аренд на %s", time.Now().Format("02.01.2006")))

	headers := []string{"ID", "Бокс", "Клиент", "Начало", "Окончание", "Месяцев", "Цена/мес", "Скидка %", "Сумма", "Статус"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	firstHeader, _ := excelize.CoordinatesToCellName(1, 2)
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 2)
	_ = f.SetCellStyle(sheetName, firstHeader, lastHeader, headerStyle)

	for i := range rentals {
		rental := &rentals[i]
		row := i + 3
		values := []interface{}{
			rental.ID,
			rental.CellNumber,
			rental.CustomerName,
			rental.StartDate.Format("02.01.2006"),
			rental.EndDate.Format("02.01.2006"),
			rental.Months,
			rental.MonthlyPrice,
			rental.DiscountPercent,
			rental.TotalAmount,
			rental.Status,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, value)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "C", 25)
	_ = f.SetColWidth(sheetName, "D", "J", 14)

	lastCol, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.MergeCell(sheetName, "A1", lastCol)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("rentals_%s.xlsx", time.Now().Format("2006-01-02"))
	filePath := filepath.Join(b.config.Exports.Path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	b.logger.Info().Str("file_path", filePath).Int("rentals", len(rentals)).Msg("Excel file created")
	return filePath, nil
}
