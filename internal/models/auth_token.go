package models

import "time"

// AuthToken одноразовый код привязки/входа, выдаваемый ботом.
type AuthToken struct {
	Token      string     `json:"token"`
	CustomerID int64      `json:"customer_id,omitempty"`
	Confirmed  bool       `json:"confirmed"`
	ExpiresAt  time.Time  `json:"expires_at"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (t *AuthToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

func (t *AuthToken) Used() bool {
	return t.UsedAt != nil
}
