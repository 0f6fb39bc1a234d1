package models

import "time"

type Rental struct {
	ID              int64      `json:"id"`
	CellID          int64      `json:"cell_id"`
	CellNumber      string     `json:"cell_number"`
	CustomerID      int64      `json:"customer_id"`
	CustomerName    string     `json:"customer_name"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         time.Time  `json:"end_date"`
	Months          int64      `json:"months"`
	MonthlyPrice    int64      `json:"monthly_price"`
	DiscountPercent int64      `json:"discount_percent"`
	TotalAmount     int64      `json:"total_amount"`
	AutoRenew       bool       `json:"auto_renew"`
	Status          string     `json:"status"` // active, expired, cancelled
	Notes           string     `json:"notes,omitempty"`
	ExpiryNotifiedAt *time.Time `json:"expiry_notified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ExpiresWithin сообщает, истекает ли активная аренда в ближайшие days дней.
func (r *Rental) ExpiresWithin(now time.Time, days int) bool {
	if r.Status != RentalStatusActive {
		return false
	}
	deadline := now.AddDate(0, 0, days)
	return !r.EndDate.Before(now) && !r.EndDate.After(deadline)
}
