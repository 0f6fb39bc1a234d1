package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kladovka/internal/domain"
)

// BotWrapper прячет tgbotapi.BotAPI за domain.TelegramSender: сервисы и
// обработчики склада не зависят от конкретного клиента, а тесты подставляют
// заглушку вместо живого Telegram API.
type BotWrapper struct {
	*tgbotapi.BotAPI
}

var _ domain.TelegramSender = (*BotWrapper)(nil)

func NewBotWrapper(api *tgbotapi.BotAPI) *BotWrapper {
	return &BotWrapper{BotAPI: api}
}

// GetSelf отдаёт аккаунт, под которым авторизован бот.
func (w *BotWrapper) GetSelf() tgbotapi.User {
	return w.Self
}

func (w *BotWrapper) StopReceivingUpdates() {
	w.BotAPI.StopReceivingUpdates()
}
