package models

import "time"

type Customer struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email,omitempty"`
	TelegramID  int64     `json:"telegram_id,omitempty"`
	Type        string    `json:"type"` // individual, company
	CompanyName string    `json:"company_name,omitempty"`
	CompanyINN  string    `json:"company_inn,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
