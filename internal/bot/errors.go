package bot

import (
	"errors"

	"kladovka/internal/database"
)

func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, database.ErrCellOccupied) {
		return "⚠️ Этот бокс уже занят. Пожалуйста, выберите другой."
	}

	if errors.Is(err, database.ErrRentalNotActive) {
		return "⚠️ Эта аренда уже завершена, продлить ее нельзя."
	}

	if errors.Is(err, database.ErrTokenInvalid) {
		return "⚠️ Код не найден или истек. Запросите новый код на сайте и отправьте его еще раз."
	}

	if errors.Is(err, database.ErrNotFound) {
		return "⚠️ Ничего не найдено. Попробуйте еще раз."
	}

	// Default error message
	return "❌ Произошла ошибка при обработке вашего запроса. Пожалуйста, попробуйте позже или обратитесь к менеджеру."
}
