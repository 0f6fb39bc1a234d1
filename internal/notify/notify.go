package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kladovka/internal/domain"
	"kladovka/internal/events"

	"github.com/rs/zerolog"
)

// Notifier рассылает клиентам уведомления об изменениях их аренд.
// Доставка best-effort: ошибка отправки логируется и не влияет на операцию,
// которая породила событие.
type Notifier struct {
	repo     domain.Repository
	telegram domain.TelegramService
	logger   *zerolog.Logger
}

func NewNotifier(repo domain.Repository, telegram domain.TelegramService, logger *zerolog.Logger) *Notifier {
	return &Notifier{
		repo:     repo,
		telegram: telegram,
		logger:   logger,
	}
}

// SubscribeAll вешает обработчики на все события аренды.
func (n *Notifier) SubscribeAll(bus *events.EventBus) {
	bus.Subscribe(events.EventRentalCreated, n.handleRentalEvent)
	bus.Subscribe(events.EventRentalExtended, n.handleRentalEvent)
	bus.Subscribe(events.EventRentalReleased, n.handleRentalEvent)
}

func (n *Notifier) handleRentalEvent(event *events.Event) error {
	var payload events.RentalEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Str("event_type", event.Type).Msg("decode rental event")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	customer, err := n.repo.GetCustomerByID(ctx, payload.CustomerID)
	if err != nil {
		n.logger.Warn().Err(err).Int64("customer_id", payload.CustomerID).Msg("notify: customer lookup failed")
		return nil
	}
	if customer.TelegramID == 0 {
		// Клиент не привязал телеграм, уведомлять некуда
		return nil
	}

	text := n.renderText(event.Type, payload)
	if text == "" {
		return nil
	}

	if _, err := n.telegram.SendMessage(customer.TelegramID, text); err != nil {
		n.logger.Warn().Err(err).Int64("telegram_id", customer.TelegramID).Str("event_type", event.Type).Msg("notify: send failed")
	}
	return nil
}

func (n *Notifier) renderText(eventType string, p events.RentalEventPayload) string {
	switch eventType {
	case events.EventRentalCreated:
		return fmt.Sprintf(
			"✅ Аренда оформлена!\n\nЯчейка: %s\nСрок: %d мес. (до %s)\nСумма: %d ₽",
			p.CellNumber, p.Months, p.EndDate.Format("02.01.2006"), p.TotalAmount,
		)
	case events.EventRentalExtended:
		return fmt.Sprintf(
			"🔄 Аренда ячейки %s продлена до %s.",
			p.CellNumber, p.EndDate.Format("02.01.2006"),
		)
	case events.EventRentalReleased:
		return fmt.Sprintf(
			"📦 Аренда ячейки %s завершена. Спасибо, что пользуетесь нашим складом!",
			p.CellNumber,
		)
	default:
		return ""
	}
}

// NotifyExpiry отправляет напоминание об истекающей аренде.
func (n *Notifier) NotifyExpiry(ctx context.Context, telegramID int64, cellNumber string, endDate time.Time, autoRenew bool) error {
	text := fmt.Sprintf(
		"⏳ Срок аренды ячейки %s истекает %s.",
		cellNumber, endDate.Format("02.01.2006"),
	)
	if autoRenew {
		text += "\nАренда будет продлена автоматически."
	} else {
		text += "\nПродлить можно в боте: «Мои аренды» → «Продлить»."
	}

	_, err := n.telegram.SendMessage(telegramID, text)
	return err
}
