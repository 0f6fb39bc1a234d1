package models

import (
	"math"
	"testing"
	"time"

	"kladovka/internal/pricing"
)

func TestCellVolumeIsExact(t *testing.T) {
	cell := Cell{Width: 1.1, Height: 1.1, Depth: 0.6}

	// Объем не округляется: 1.1*1.1*0.6 = 0.726, а не 0.73.
	// Округленный объем завышал бы месячную ставку.
	if diff := math.Abs(cell.Volume() - 0.726); diff > 1e-9 {
		t.Errorf("expected volume 0.726, got %v", cell.Volume())
	}

	if price := pricing.MonthlyPrice(cell.Volume(), 1500); price != 1090 {
		t.Errorf("expected monthly price 1090, got %d", price)
	}

	if diff := math.Abs(cell.Area() - 0.66); diff > 1e-9 {
		t.Errorf("expected area 0.66, got %v", cell.Area())
	}
}

func TestExpiresWithin(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		rental Rental
		want   bool
	}{
		{
			name:   "expires in 3 days",
			rental: Rental{Status: RentalStatusActive, EndDate: now.AddDate(0, 0, 3)},
			want:   true,
		},
		{
			name:   "expires in 10 days",
			rental: Rental{Status: RentalStatusActive, EndDate: now.AddDate(0, 0, 10)},
			want:   false,
		},
		{
			name:   "already ended",
			rental: Rental{Status: RentalStatusActive, EndDate: now.AddDate(0, 0, -1)},
			want:   false,
		},
		{
			name:   "not active",
			rental: Rental{Status: RentalStatusExpired, EndDate: now.AddDate(0, 0, 3)},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rental.ExpiresWithin(now, ExpiryNoticeDays); got != tt.want {
				t.Errorf("ExpiresWithin() = %v, want %v", got, tt.want)
			}
		})
	}
}
