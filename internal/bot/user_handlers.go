package bot

import (
	"context"
	"strings"

	"kladovka/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleMessage(ctx context.Context, update *tgbotapi.Update) {
	userID := update.Message.From.ID
	text := update.Message.Text
	l := zerolog.Ctx(ctx)

	if b.metrics != nil {
		b.metrics.MessagesProcessed.Inc()
		if strings.HasPrefix(text, "/") {
			b.metrics.CommandsProcessed.Inc()
		}
	}

	l.Debug().
		Int64("user_id", userID).
		Str("username", update.Message.From.UserName).
		Str("text", text).
		Msg("Handling message")

	if b.isManager(userID) && b.handleManagerCommand(ctx, update) {
		return
	}

	if update.Message.Contact != nil {
		b.handleContactReceived(ctx, update)
		return
	}

	state := b.getUserState(ctx, userID)

	switch {
	case text == "/start" || strings.EqualFold(text, "сброс") || strings.EqualFold(text, "reset"):
		b.clearUserState(ctx, userID)
		b.handleMainMenu(ctx, update)

	case text == btnCancel || text == btnBackToMenu:
		b.clearUserState(ctx, userID)
		b.handleMainMenu(ctx, update)

	case text == btnManagerContacts:
		b.showManagerContacts(ctx, update)

	case text == btnFreeCells:
		b.showFreeCells(ctx, update)

	case text == btnMyRentals:
		b.showMyRentals(ctx, update)

	case text == btnLoginCode:
		b.promptLoginCode(ctx, update)

	case state != nil && state.CurrentStep == models.StateEnterCode:
		b.handleLoginCodeInput(ctx, update, text)

	default:
		b.sendMessage(update.Message.Chat.ID, "Я не понял команду. Нажмите /start, чтобы открыть меню.")
	}
}

// handleContactReceived привязывает телефон: существующий клиент получает
// telegram_id, незнакомый номер заводит новую карточку с именем из профиля.
func (b *Bot) handleContactReceived(ctx context.Context, update *tgbotapi.Update) {
	contact := update.Message.Contact
	userID := update.Message.From.ID

	// Принимаем только собственный контакт пользователя
	if contact.UserID != 0 && contact.UserID != userID {
		b.sendMessage(update.Message.Chat.ID, "Пожалуйста, отправьте свой собственный контакт.")
		return
	}

	name := strings.TrimSpace(update.Message.From.FirstName + " " + update.Message.From.LastName)
	customer, err := b.customerService.RegisterFromTelegram(ctx, userID, name, contact.PhoneNumber)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to register customer from telegram")
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	b.logger.Info().Int64("user_id", userID).Int64("customer_id", customer.ID).Msg("Customer linked to telegram")
	b.sendMessage(update.Message.Chat.ID,
		"✅ Телефон привязан, "+customer.Name+"! Теперь вам доступны ваши аренды и код для входа на сайт.")
	b.handleMainMenu(ctx, update)
}

func (b *Bot) showFreeCells(ctx context.Context, update *tgbotapi.Update) {
	b.setUserState(ctx, update.Message.From.ID, models.StateBrowseCells, nil)
	b.renderPaginatedCells(PaginationParams{
		Ctx:        ctx,
		ChatID:     update.Message.Chat.ID,
		Page:       0,
		Title:      "📦 *Свободные боксы*",
		ItemPrefix: "cell_",
		PagePrefix: "cells_page_",
	})
}

func (b *Bot) showMyRentals(ctx context.Context, update *tgbotapi.Update) {
	userID := update.Message.From.ID
	customer := b.currentCustomer(ctx, userID)
	if customer == nil {
		b.sendMessage(update.Message.Chat.ID, "Сначала привяжите телефон: нажмите кнопку \""+btnSharePhone+"\" в меню.")
		return
	}

	rentals, err := b.rentalService.GetCustomerRentals(ctx, customer.ID)
	if err != nil {
		b.logger.Error().Err(err).Int64("customer_id", customer.ID).Msg("Failed to load customer rentals")
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}
	if len(rentals) == 0 {
		b.sendMessage(update.Message.Chat.ID, "У вас пока нет аренд. Посмотрите свободные боксы в меню.")
		return
	}

	b.setUserState(ctx, userID, models.StateMyRentals, nil)
	b.renderPaginatedRentals(PaginationParams{
		Ctx:        ctx,
		ChatID:     update.Message.Chat.ID,
		Page:       0,
		Title:      "📑 *Мои аренды*",
		PagePrefix: "rentals_page_",
	}, rentals)
}

func (b *Bot) promptLoginCode(ctx context.Context, update *tgbotapi.Update) {
	userID := update.Message.From.ID
	if b.currentCustomer(ctx, userID) == nil {
		b.sendMessage(update.Message.Chat.ID, "Сначала привяжите телефон: нажмите кнопку \""+btnSharePhone+"\" в меню.")
		return
	}

	b.setUserState(ctx, userID, models.StateEnterCode, nil)

	msg := tgbotapi.NewMessage(update.Message.Chat.ID,
		"Отправьте код входа, который показан на сайте. Код действует "+
			"10 минут и работает только один раз.")
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	msg.ReplyMarkup = keyboard
	b.tgService.Send(msg)
}

func (b *Bot) handleLoginCodeInput(ctx context.Context, update *tgbotapi.Update, text string) {
	userID := update.Message.From.ID
	customer := b.currentCustomer(ctx, userID)
	if customer == nil {
		b.clearUserState(ctx, userID)
		b.sendMessage(update.Message.Chat.ID, "Сначала привяжите телефон: нажмите кнопку \""+btnSharePhone+"\" в меню.")
		return
	}

	token := strings.TrimSpace(text)
	if err := b.authService.ConfirmSession(ctx, token, customer.ID); err != nil {
		b.sendMessage(update.Message.Chat.ID, b.getErrorMessage(err))
		return
	}

	b.clearUserState(ctx, userID)
	b.sendMessage(update.Message.Chat.ID, "✅ Код подтвержден! Вернитесь на сайт — вход выполнится автоматически.")
	b.handleMainMenu(ctx, update)
}
