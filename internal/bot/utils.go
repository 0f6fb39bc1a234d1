package bot

import (
	"context"
	"fmt"
	"strings"

	"kladovka/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Кнопки главного меню
const (
	btnFreeCells       = "📦 Свободные боксы"
	btnMyRentals       = "📑 Мои аренды"
	btnLoginCode       = "🔑 Код для входа"
	btnManagerContacts = "📞 Контакты менеджеров"
	btnSharePhone      = "📱 Отправить телефон"
	btnCancel          = "❌ Отмена"
	btnBackToMenu      = "⬅️ Назад в меню"

	btnStats      = "📊 Статистика"
	btnAllRentals = "👨‍💼 Все аренды"
	btnExport     = "💾 Экспорт аренд"
	btnSyncSheets = "🔄 Синхронизация (Google Sheets)"
)

// Вспомогательные методы для работы с состояниями пользователей

func (b *Bot) setUserState(ctx context.Context, userID int64, step string, tempData map[string]interface{}) {
	if err := b.stateService.SetUserState(ctx, userID, step, tempData); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Str("step", step).Msg("Failed to set user state")
	}
}

func (b *Bot) getUserState(ctx context.Context, userID int64) *models.UserState {
	state, err := b.stateService.GetUserState(ctx, userID)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to get user state")
		return nil
	}
	return state
}

func (b *Bot) clearUserState(ctx context.Context, userID int64) {
	if err := b.stateService.ClearUserState(ctx, userID); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to clear user state")
	}
}

func (b *Bot) isBlacklisted(userID int64) bool {
	for _, blacklistedID := range b.config.Blacklist {
		if userID == blacklistedID {
			return true
		}
	}
	return false
}

func (b *Bot) isManager(userID int64) bool {
	for _, managerID := range b.config.Managers {
		if userID == managerID {
			return true
		}
	}
	return false
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if _, err := b.tgService.SendMessage(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

// currentCustomer возвращает карточку клиента, привязанную к telegram_id,
// либо nil, если пользователь еще не делился телефоном.
func (b *Bot) currentCustomer(ctx context.Context, telegramID int64) *models.Customer {
	customer, err := b.customerService.GetCustomerByTelegramID(ctx, telegramID)
	if err != nil {
		return nil
	}
	return customer
}

// handleMainMenu - главное меню
func (b *Bot) handleMainMenu(ctx context.Context, update *tgbotapi.Update) {
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	var rows [][]tgbotapi.KeyboardButton

	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnFreeCells),
		tgbotapi.NewKeyboardButton(btnMyRentals),
	))
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnLoginCode),
		tgbotapi.NewKeyboardButton(btnManagerContacts),
	))

	// Если телефон еще не привязан, предлагаем поделиться контактом
	if b.currentCustomer(ctx, userID) == nil {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact(btnSharePhone),
		))
	}

	// Кнопки только для менеджеров
	if b.isManager(userID) {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnStats),
			tgbotapi.NewKeyboardButton(btnAllRentals),
		))
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnExport),
			tgbotapi.NewKeyboardButton(btnSyncSheets),
		))
	}

	msg := tgbotapi.NewMessage(chatID, "Добро пожаловать в Кладовку! Выберите действие:")
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(rows...)

	b.setUserState(ctx, userID, models.StateMainMenu, nil)
	if _, err := b.tgService.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send main menu")
	}
}

// showManagerContacts показывает контакты менеджеров
func (b *Bot) showManagerContacts(ctx context.Context, update *tgbotapi.Update) {
	contacts := b.config.ManagersContacts
	var message strings.Builder
	message.WriteString("📞 Контакты менеджеров:\n\n")
	for _, contact := range contacts {
		message.WriteString(fmt.Sprintf("🔹 %s\n", contact))
	}
	message.WriteString("\nВы можете связаться с ними для уточнения деталей.")

	b.sendMessage(update.Message.Chat.ID, message.String())
}

func formatCellLine(cell *models.Cell) string {
	line := fmt.Sprintf("*%s* — %.2f м³ (%.1f×%.1f×%.1f), %d этаж",
		cell.Number, cell.Volume(), cell.Width, cell.Height, cell.Depth, cell.Floor)
	if cell.MonthlyPrice > 0 {
		line += fmt.Sprintf(", %d ₽/мес", cell.MonthlyPrice)
	}
	var extras []string
	if cell.HasHeating {
		extras = append(extras, "отопление")
	}
	if cell.HasElectricity {
		extras = append(extras, "электричество")
	}
	if cell.HasAlarm {
		extras = append(extras, "сигнализация")
	}
	if len(extras) > 0 {
		line += "\n   " + strings.Join(extras, ", ")
	}
	return line
}

func formatRentalLine(rental *models.Rental) string {
	statusEmoji := "✅"
	switch rental.Status {
	case models.RentalStatusExpired:
		statusEmoji = "🏁"
	case models.RentalStatusCancelled:
		statusEmoji = "❌"
	}

	return fmt.Sprintf("%s *Бокс %s*\n   📅 до %s\n   💰 %d ₽ (%d мес)",
		statusEmoji,
		rental.CellNumber,
		rental.EndDate.Format("02.01.2006"),
		rental.TotalAmount,
		rental.Months)
}
