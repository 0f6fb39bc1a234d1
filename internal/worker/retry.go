package worker

import (
	"math"
	"time"
)

// RetryPolicy задаёт экспоненциальный backoff для повторов синхронизации
// с Google Sheets. Sheets API ограничивает квоту запросов, поэтому пауза
// между попытками растёт с каждой ошибкой вплоть до MaxDelay.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// NextDelay возвращает паузу перед попыткой attempt (нумерация с 1).
// Нулевые поля трактуются как секунда и фактор 2, чтобы пустая политика
// из конфига не дала нулевых пауз и busy-loop в воркере.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := r.InitialDelay
	if base <= 0 {
		base = time.Second
	}
	factor := r.BackoffFactor
	if factor <= 0 {
		factor = 2
	}

	d := time.Duration(float64(base) * math.Pow(factor, float64(attempt-1)))
	if r.MaxDelay > 0 && d > r.MaxDelay {
		return r.MaxDelay
	}
	if d <= 0 {
		// переполнение на больших attempt
		return base
	}
	return d
}
