package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonthlyPrice(t *testing.T) {
	t.Run("Rounds up to tens", func(t *testing.T) {
		// 1.1 * 1.1 * 0.6 = 0.726 м³ по 1500 ₽/м³ = 1089 ₽ -> 1090 ₽
		price := MonthlyPrice(0.726, 1500)
		assert.Equal(t, int64(1090), price)
	})

	t.Run("Exact multiple of ten is kept", func(t *testing.T) {
		price := MonthlyPrice(2, 1500) // 3000
		assert.Equal(t, int64(3000), price)
	})

	t.Run("Zero volume", func(t *testing.T) {
		assert.Equal(t, int64(0), MonthlyPrice(0, 1500))
	})

	t.Run("Always divisible by ten and never below raw price", func(t *testing.T) {
		const rate = 1500.0
		for _, v := range []float64{0.01, 0.3, 0.726, 1, 1.5, 2.33, 7.25, 10} {
			price := MonthlyPrice(v, rate)
			assert.Zero(t, price%10, "volume %v", v)
			assert.GreaterOrEqual(t, float64(price), v*rate, "volume %v", v)
		}
	})
}

func TestDiscountPercent(t *testing.T) {
	cases := []struct {
		months int64
		want   int64
	}{
		{1, 0},
		{2, 0},
		{3, 5},
		{5, 5},
		{6, 10},
		{11, 10},
		{12, 15},
		{24, 15},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DiscountPercent(c.months), "months=%d", c.months)
	}
}

func TestDiscountMonotonicity(t *testing.T) {
	prev := int64(0)
	for m := int64(1); m <= 36; m++ {
		d := DiscountPercent(m)
		assert.GreaterOrEqual(t, d, prev, "discount dropped at %d months", m)
		prev = d
	}
}

func TestTotal(t *testing.T) {
	t.Run("Six months with 10 percent discount", func(t *testing.T) {
		// 1090 * 6 * 0.9 = 5886 -> 5890
		assert.Equal(t, int64(5890), Total(1090, 6))
	})

	t.Run("No discount under three months", func(t *testing.T) {
		assert.Equal(t, int64(2180), Total(1090, 2))
	})

	t.Run("Year discount", func(t *testing.T) {
		// 1000 * 12 * 0.85 = 10200
		assert.Equal(t, int64(10200), Total(1000, 12))
	})

	t.Run("Invalid input", func(t *testing.T) {
		assert.Equal(t, int64(0), Total(0, 6))
		assert.Equal(t, int64(0), Total(1000, 0))
	})
}

func TestNewQuote(t *testing.T) {
	q := NewQuote(0.726, 1500, 6)
	assert.Equal(t, int64(6), q.Months)
	assert.Equal(t, int64(1090), q.MonthlyPrice)
	assert.Equal(t, int64(10), q.DiscountPercent)
	assert.Equal(t, int64(5890), q.TotalAmount)
}
