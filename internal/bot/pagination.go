package bot

import (
	"context"
	"fmt"
	"strings"

	"kladovka/internal/database"
	"kladovka/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type PaginationParams struct {
	Ctx          context.Context
	ChatID       int64
	MessageID    int // 0, если нужно новое сообщение
	Page         int
	Title        string
	ItemPrefix   string
	PagePrefix   string
	BackCallback string
}

// renderPaginatedList - универсальная функция для отрисовки пагинированного списка
func (b *Bot) renderPaginatedList(params PaginationParams, totalCount int, itemsPerPage int, renderer func(startIdx, endIdx int) (string, [][]tgbotapi.InlineKeyboardButton)) {
	if itemsPerPage <= 0 {
		itemsPerPage = b.config.Bot.PaginationSize
	}
	if itemsPerPage <= 0 {
		itemsPerPage = models.DefaultPaginationSize
	}

	startIdx := params.Page * itemsPerPage
	endIdx := startIdx + itemsPerPage
	if endIdx > totalCount {
		endIdx = totalCount
	}

	totalPages := (totalCount + itemsPerPage - 1) / itemsPerPage
	if params.Page >= totalPages && totalPages > 0 {
		params.Page = totalPages - 1
		startIdx = params.Page * itemsPerPage
		endIdx = totalCount
	}

	content, keyboard := renderer(startIdx, endIdx)

	var message strings.Builder
	message.WriteString(fmt.Sprintf("%s\n\n", params.Title))
	if totalPages > 1 {
		message.WriteString(fmt.Sprintf("Страница %d из %d\n\n", params.Page+1, totalPages))
	}
	message.WriteString(content)

	// Добавляем навигационные кнопки
	var navButtons []tgbotapi.InlineKeyboardButton
	if params.Page > 0 {
		navButtons = append(navButtons, tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", fmt.Sprintf("%s%d", params.PagePrefix, params.Page-1)))
	}
	if endIdx < totalCount {
		navButtons = append(navButtons, tgbotapi.NewInlineKeyboardButtonData("Вперед ➡️", fmt.Sprintf("%s%d", params.PagePrefix, params.Page+1)))
	}
	if len(navButtons) > 0 {
		keyboard = append(keyboard, navButtons)
	}

	if params.BackCallback != "" {
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад в меню", params.BackCallback),
		})
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(keyboard...)

	if params.MessageID != 0 {
		editMsg := tgbotapi.NewEditMessageTextAndMarkup(
			params.ChatID,
			params.MessageID,
			message.String(),
			markup,
		)
		editMsg.ParseMode = models.ParseModeMarkdown
		b.tgService.Send(editMsg)
	} else {
		msg := tgbotapi.NewMessage(params.ChatID, message.String())
		msg.ReplyMarkup = markup
		msg.ParseMode = models.ParseModeMarkdown
		b.tgService.Send(msg)
	}
}

// renderPaginatedCells - обертка для списка свободных боксов
func (b *Bot) renderPaginatedCells(params PaginationParams) {
	cells, err := b.cellService.GetCells(params.Ctx, database.CellFilter{Status: models.CellStatusAvailable})
	if err != nil {
		b.logger.Error().Err(err).Msg("Error getting available cells for pagination")
		b.sendMessage(params.ChatID, "Ошибка при получении списка боксов")
		return
	}

	if len(cells) == 0 {
		b.sendMessage(params.ChatID, "Сейчас свободных боксов нет. Загляните позже или свяжитесь с менеджером.")
		return
	}

	b.renderPaginatedList(params, len(cells), b.config.Bot.PaginationSize, func(startIdx, endIdx int) (string, [][]tgbotapi.InlineKeyboardButton) {
		var content strings.Builder
		var keyboard [][]tgbotapi.InlineKeyboardButton

		currentCells := cells[startIdx:endIdx]
		for i := range currentCells {
			cell := &currentCells[i]
			content.WriteString(fmt.Sprintf("%d. %s\n\n", startIdx+i+1, formatCellLine(cell)))

			btn := tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%d. Бокс %s", startIdx+i+1, cell.Number),
				fmt.Sprintf("%s%d", params.ItemPrefix, cell.ID),
			)
			keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{btn})
		}

		return content.String(), keyboard
	})
}

// renderPaginatedRentals - обертка для списка аренд
func (b *Bot) renderPaginatedRentals(params PaginationParams, rentals []models.Rental) {
	b.renderPaginatedList(params, len(rentals), models.DefaultRentalsPaginationSize, func(startIdx, endIdx int) (string, [][]tgbotapi.InlineKeyboardButton) {
		var content strings.Builder
		var keyboard [][]tgbotapi.InlineKeyboardButton

		currentRentals := rentals[startIdx:endIdx]
		for i := range currentRentals {
			rental := &currentRentals[i]
			content.WriteString(formatRentalLine(rental))
			content.WriteString("\n\n")

			if rental.Status == models.RentalStatusActive {
				btn := tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("Продлить бокс %s", rental.CellNumber),
					fmt.Sprintf("extend_%d", rental.ID),
				)
				keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{btn})
			}
		}

		return content.String(), keyboard
	})
}
