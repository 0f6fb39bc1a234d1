package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// handleCallbackQuery обработка callback запросов от inline кнопок
func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	l := zerolog.Ctx(ctx)
	l.Debug().
		Int64("user_id", callback.From.ID).
		Str("data", callback.Data).
		Msg("Handling callback query")

	data := callback.Data

	switch {
	case strings.HasPrefix(data, "cells_page_"):
		page := parsePage(data, "cells_page_")
		b.renderPaginatedCells(PaginationParams{
			Ctx:        ctx,
			ChatID:     callback.Message.Chat.ID,
			MessageID:  callback.Message.MessageID,
			Page:       page,
			Title:      "📦 *Свободные боксы*",
			ItemPrefix: "cell_",
			PagePrefix: "cells_page_",
		})

	case strings.HasPrefix(data, "rentals_page_"):
		b.handleRentalsPage(ctx, callback, parsePage(data, "rentals_page_"))

	case strings.HasPrefix(data, "cell_"):
		b.showCellDetails(ctx, callback, strings.TrimPrefix(data, "cell_"))

	case strings.HasPrefix(data, "quote_"):
		b.handleQuoteCallback(ctx, callback, strings.TrimPrefix(data, "quote_"))

	case strings.HasPrefix(data, "extendm_"):
		b.handleExtendMonths(ctx, callback, strings.TrimPrefix(data, "extendm_"))

	case strings.HasPrefix(data, "extend_"):
		b.showExtendOptions(ctx, callback, strings.TrimPrefix(data, "extend_"))
	}

	if err := b.tgService.AnswerCallback(callback.ID, ""); err != nil {
		b.logger.Error().Err(err).Str("callback_id", callback.ID).Msg("Failed to answer callback")
	}
}

func parsePage(data, prefix string) int {
	page, err := strconv.Atoi(strings.TrimPrefix(data, prefix))
	if err != nil || page < 0 {
		return 0
	}
	return page
}

func (b *Bot) handleRentalsPage(ctx context.Context, callback *tgbotapi.CallbackQuery, page int) {
	customer := b.currentCustomer(ctx, callback.From.ID)
	if customer == nil {
		return
	}

	rentals, err := b.rentalService.GetCustomerRentals(ctx, customer.ID)
	if err != nil {
		b.logger.Error().Err(err).Int64("customer_id", customer.ID).Msg("Failed to load rentals for pagination")
		return
	}

	b.renderPaginatedRentals(PaginationParams{
		Ctx:        ctx,
		ChatID:     callback.Message.Chat.ID,
		MessageID:  callback.Message.MessageID,
		Page:       page,
		Title:      "📑 *Мои аренды*",
		PagePrefix: "rentals_page_",
	}, rentals)
}

func (b *Bot) showCellDetails(ctx context.Context, callback *tgbotapi.CallbackQuery, rawID string) {
	cellID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return
	}

	cell, err := b.cellService.GetCell(ctx, cellID)
	if err != nil {
		b.sendMessage(callback.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	var text strings.Builder
	text.WriteString(formatCellLine(cell))
	text.WriteString("\n\nВыберите срок, чтобы посчитать стоимость:")

	var row []tgbotapi.InlineKeyboardButton
	for _, months := range []int{1, 3, 6, 12} {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d мес", months),
			fmt.Sprintf("quote_%d_%d", cell.ID, months),
		))
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(row)

	if _, err := b.tgService.SendWithInlineKeyboard(callback.Message.Chat.ID, text.String(), keyboard); err != nil {
		b.logger.Error().Err(err).Int64("cell_id", cellID).Msg("Failed to send cell details")
	}
}

func (b *Bot) handleQuoteCallback(ctx context.Context, callback *tgbotapi.CallbackQuery, raw string) {
	parts := strings.Split(raw, "_")
	if len(parts) != 2 {
		return
	}
	cellID, err1 := strconv.ParseInt(parts[0], 10, 64)
	months, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return
	}

	quote, err := b.rentalService.Quote(ctx, cellID, months)
	if err != nil {
		b.sendMessage(callback.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	text := fmt.Sprintf("💰 Аренда на %d мес: %d ₽/мес", quote.Months, quote.MonthlyPrice)
	if quote.DiscountPercent > 0 {
		text += fmt.Sprintf(", скидка %d%%", quote.DiscountPercent)
	}
	text += fmt.Sprintf("\nИтого: *%d ₽*\n\nДля оформления свяжитесь с менеджером (кнопка \"%s\").", quote.TotalAmount, btnManagerContacts)

	if _, err := b.tgService.SendMarkdown(callback.Message.Chat.ID, text); err != nil {
		b.logger.Error().Err(err).Int64("cell_id", cellID).Msg("Failed to send quote")
	}
}

func (b *Bot) showExtendOptions(ctx context.Context, callback *tgbotapi.CallbackQuery, rawID string) {
	rentalID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return
	}

	rental, err := b.rentalService.GetRental(ctx, rentalID)
	if err != nil {
		b.sendMessage(callback.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	var row []tgbotapi.InlineKeyboardButton
	for _, months := range []int{1, 3, 6} {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("+%d мес", months),
			fmt.Sprintf("extendm_%d_%d", rentalID, months),
		))
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(row)

	text := fmt.Sprintf("На сколько продлить аренду бокса %s?", rental.CellNumber)
	if _, err := b.tgService.SendWithInlineKeyboard(callback.Message.Chat.ID, text, keyboard); err != nil {
		b.logger.Error().Err(err).Int64("rental_id", rentalID).Msg("Failed to send extend options")
	}
}

func (b *Bot) handleExtendMonths(ctx context.Context, callback *tgbotapi.CallbackQuery, raw string) {
	parts := strings.Split(raw, "_")
	if len(parts) != 2 {
		return
	}
	rentalID, err1 := strconv.ParseInt(parts[0], 10, 64)
	months, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return
	}

	// Продлить можно только собственную аренду; менеджерам можно любую
	rental, err := b.rentalService.GetRental(ctx, rentalID)
	if err != nil {
		b.sendMessage(callback.Message.Chat.ID, b.getErrorMessage(err))
		return
	}
	if !b.isManager(callback.From.ID) {
		customer := b.currentCustomer(ctx, callback.From.ID)
		if customer == nil || customer.ID != rental.CustomerID {
			b.sendMessage(callback.Message.Chat.ID, "Эта аренда оформлена на другого клиента.")
			return
		}
	}

	extended, err := b.rentalService.ExtendRental(ctx, rentalID, months)
	if err != nil {
		b.sendMessage(callback.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	if b.metrics != nil {
		b.metrics.RentalsExtended.Inc()
	}

	b.sendMessage(callback.Message.Chat.ID,
		fmt.Sprintf("✅ Аренда бокса %s продлена до %s. Итоговая сумма: %d ₽.",
			extended.CellNumber, extended.EndDate.Format("02.01.2006"), extended.TotalAmount))
}
