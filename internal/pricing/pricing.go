package pricing

import "math"

// Quote detailed breakdown of a rental price offer.
type Quote struct {
	Months          int64 `json:"months"`
	MonthlyPrice    int64 `json:"monthly_price"`
	DiscountPercent int64 `json:"discount_percent"`
	TotalAmount     int64 `json:"total_amount"`
}

// MonthlyPrice месячная ставка за ячейку: объем * тариф, округление
// вверх до десятков рублей.
func MonthlyPrice(volumeM3, ratePerM3 float64) int64 {
	if volumeM3 <= 0 || ratePerM3 <= 0 {
		return 0
	}
	raw := volumeM3 * ratePerM3
	return roundUp10(raw)
}

// DiscountPercent скидка за срок аренды в месяцах.
// Пороговые значения: 3, 6 и 12 месяцев.
func DiscountPercent(months int64) int64 {
	switch {
	case months >= 12:
		return 15
	case months >= 6:
		return 10
	case months >= 3:
		return 5
	default:
		return 0
	}
}

// Total итоговая сумма за весь срок с учетом скидки, округление вверх
// до десятков рублей.
func Total(monthlyPrice, months int64) int64 {
	if monthlyPrice <= 0 || months <= 0 {
		return 0
	}
	discount := DiscountPercent(months)
	raw := float64(monthlyPrice*months) * (1 - float64(discount)/100)
	return roundUp10(raw)
}

// NewQuote собирает полное предложение для ячейки заданного объема.
func NewQuote(volumeM3, ratePerM3 float64, months int64) Quote {
	monthly := MonthlyPrice(volumeM3, ratePerM3)
	return Quote{
		Months:          months,
		MonthlyPrice:    monthly,
		DiscountPercent: DiscountPercent(months),
		TotalAmount:     Total(monthly, months),
	}
}

// QuoteForMonthly собирает предложение от уже известной месячной ставки.
func QuoteForMonthly(monthlyPrice, months int64) Quote {
	return Quote{
		Months:          months,
		MonthlyPrice:    monthlyPrice,
		DiscountPercent: DiscountPercent(months),
		TotalAmount:     Total(monthlyPrice, months),
	}
}

func roundUp10(v float64) int64 {
	return int64(math.Ceil(v/10) * 10)
}
