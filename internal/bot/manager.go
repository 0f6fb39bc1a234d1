package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kladovka/internal/database"
	"kladovka/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleManagerCommand обрабатывает команды менеджера.
// Возвращает true, если команда распознана и обработана.
func (b *Bot) handleManagerCommand(ctx context.Context, update *tgbotapi.Update) bool {
	text := update.Message.Text

	switch text {
	case btnStats:
		b.showRentalStats(ctx, update)
		return true

	case btnAllRentals:
		b.showAllActiveRentals(ctx, update)
		return true

	case btnExport:
		b.handleExportRentals(ctx, update)
		return true

	case btnSyncSheets:
		b.handleForceSync(ctx, update)
		return true
	}

	return false
}

func (b *Bot) showRentalStats(ctx context.Context, update *tgbotapi.Update) {
	stats, activeRevenue, err := b.rentalService.GetStats(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to load rental stats")
		b.sendMessage(update.Message.Chat.ID, "Ошибка при получении статистики")
		return
	}

	cells, err := b.cellService.GetCells(ctx, database.CellFilter{})
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to load cells for stats")
		b.sendMessage(update.Message.Chat.ID, "Ошибка при получении статистики")
		return
	}

	occupied := 0
	for _, cell := range cells {
		if cell.Status == models.CellStatusOccupied {
			occupied++
		}
	}

	var message strings.Builder
	message.WriteString("📊 *Статистика*\n\n")

	message.WriteString("🏢 *Боксы*\n")
	message.WriteString(fmt.Sprintf("Всего: *%d*\n", len(cells)))
	message.WriteString(fmt.Sprintf("Занято: *%d*\n", occupied))
	message.WriteString(fmt.Sprintf("Свободно: *%d*\n\n", len(cells)-occupied))

	message.WriteString("📑 *Аренды*\n")
	message.WriteString(fmt.Sprintf("Активных: *%d*\n", stats[models.RentalStatusActive]))
	message.WriteString(fmt.Sprintf("Завершенных: *%d*\n", stats[models.RentalStatusExpired]))
	message.WriteString(fmt.Sprintf("Выручка по активным: *%d ₽*\n", activeRevenue))

	if _, err := b.tgService.SendMarkdown(update.Message.Chat.ID, message.String()); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send stats")
	}
}

func (b *Bot) showAllActiveRentals(ctx context.Context, update *tgbotapi.Update) {
	rentals, err := b.rentalService.GetRentals(ctx, database.RentalFilter{Status: models.RentalStatusActive})
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to load active rentals")
		b.sendMessage(update.Message.Chat.ID, "Ошибка при получении списка аренд")
		return
	}
	if len(rentals) == 0 {
		b.sendMessage(update.Message.Chat.ID, "Активных аренд нет.")
		return
	}

	var message strings.Builder
	message.WriteString("👨‍💼 *Активные аренды*\n\n")
	for i := range rentals {
		rental := &rentals[i]
		message.WriteString(fmt.Sprintf("*Бокс %s* — %s\n   📅 до %s, 💰 %d ₽\n\n",
			rental.CellNumber,
			rental.CustomerName,
			rental.EndDate.Format("02.01.2006"),
			rental.TotalAmount))
	}

	if _, err := b.tgService.SendMarkdown(update.Message.Chat.ID, message.String()); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send active rentals")
	}
}

func (b *Bot) handleExportRentals(ctx context.Context, update *tgbotapi.Update) {
	b.sendMessage(update.Message.Chat.ID, "Готовлю файл экспорта...")

	filePath, err := b.exportRentalsToExcel(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to export rentals")
		b.sendMessage(update.Message.Chat.ID, "Ошибка при создании файла экспорта")
		return
	}

	doc := tgbotapi.NewDocument(update.Message.Chat.ID, tgbotapi.FilePath(filePath))
	doc.Caption = fmt.Sprintf("Выгрузка аренд на %s", time.Now().Format("02.01.2006"))
	if _, err := b.tgService.Send(doc); err != nil {
		b.logger.Error().Err(err).Str("file", filePath).Msg("Failed to send export file")
		b.sendMessage(update.Message.Chat.ID, "Не удалось отправить файл экспорта")
	}
}

// handleForceSync вручную перегоняет клиентов и реестр аренд в Google Sheets.
func (b *Bot) handleForceSync(ctx context.Context, update *tgbotapi.Update) {
	if b.sheetsService == nil {
		b.sendMessage(update.Message.Chat.ID, "Google Sheets не настроен.")
		return
	}

	if b.sheetsWorker != nil {
		if err := b.sheetsWorker.EnqueueSyncCustomers(ctx); err != nil {
			b.logger.Error().Err(err).Msg("Failed to enqueue customers sync")
		}
	}

	rentals, err := b.rentalService.GetRentals(ctx, database.RentalFilter{})
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to load rentals for sync")
		b.sendMessage(update.Message.Chat.ID, "Ошибка при чтении реестра аренд")
		return
	}

	if err := b.sheetsService.ReplaceRentalsSheet(ctx, rentals); err != nil {
		b.logger.Error().Err(err).Msg("Failed to sync rentals sheet")
		b.sendMessage(update.Message.Chat.ID, "Ошибка при синхронизации с Google Sheets")
		return
	}

	b.sendMessage(update.Message.Chat.ID,
		fmt.Sprintf("✅ Синхронизация запущена: %d аренд выгружено, клиенты поставлены в очередь.", len(rentals)))
}
