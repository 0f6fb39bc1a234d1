package bot

import (
	"context"
	"fmt"
	"time"

	"kladovka/internal/models"
)

// StartReminders запускает ежедневную рассылку напоминаний об истекающих арендах.
func (b *Bot) StartReminders(ctx context.Context) {
	if b == nil || b.tgService == nil {
		return
	}

	go func() {
		hour := models.ReminderHour
		if b.config.Bot.ReminderTime != "" {
			var m int
			_, err := fmt.Sscanf(b.config.Bot.ReminderTime, "%d:%d", &hour, &m)
			if err != nil {
				b.logger.Error().Err(err).Str("reminder_time", b.config.Bot.ReminderTime).Msg("Invalid reminder time format")
				return
			}
		}

		// Сначала ждем до ближайшего часа рассылки, потом тикаем раз в сутки.
		wait := timeUntilNextHour(hour)
		timer := time.NewTimer(wait)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				b.sendExpiryReminders(ctx)
				timer.Reset(24 * time.Hour)
			}
		}
	}()
}

// sendExpiryReminders находит активные аренды, истекающие в ближайшие
// ExpiryNoticeDays дней, и шлет по одному напоминанию на аренду.
// Повторные прогоны отсекаются отметкой expiry_notified_at.
func (b *Bot) sendExpiryReminders(ctx context.Context) {
	rentals, err := b.rentalService.GetExpiringRentals(ctx, models.ExpiryNoticeDays)
	if err != nil {
		b.logger.Error().Err(err).Msg("reminder: get expiring rentals error")
		return
	}

	for i := range rentals {
		rental := &rentals[i]

		customer, err := b.customerService.GetCustomer(ctx, rental.CustomerID)
		if err != nil {
			b.logger.Error().Err(err).Int64("customer_id", rental.CustomerID).Msg("reminder: load customer error")
			continue
		}
		if customer.TelegramID == 0 {
			continue
		}

		if err := b.notifier.NotifyExpiry(ctx, customer.TelegramID, rental.CellNumber, rental.EndDate, rental.AutoRenew); err != nil {
			b.logger.Error().Err(err).Int64("rental_id", rental.ID).Msg("reminder: notify error")
			continue
		}

		if err := b.rentalService.MarkExpiryNotified(ctx, rental.ID); err != nil {
			b.logger.Error().Err(err).Int64("rental_id", rental.ID).Msg("reminder: mark notified error")
			continue
		}

		if b.metrics != nil {
			b.metrics.RemindersSent.Inc()
		}
	}
}

func timeUntilNextHour(hour int) time.Duration {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
