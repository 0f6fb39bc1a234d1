package models

import "time"

type Cell struct {
	ID             int64      `yaml:"id" json:"id"`
	Number         string     `yaml:"number" json:"number"`
	Width          float64    `yaml:"width" json:"width"`
	Height         float64    `yaml:"height" json:"height"`
	Depth          float64    `yaml:"depth" json:"depth"`
	Floor          int64      `yaml:"floor" json:"floor"`
	Tier           string     `yaml:"tier" json:"tier"`
	MonthlyPrice   int64      `yaml:"monthly_price" json:"monthly_price"`
	Status         string     `yaml:"status" json:"status"`
	ReservedUntil  *time.Time `yaml:"-" json:"reserved_until,omitempty"`
	HasHeating     bool       `yaml:"has_heating" json:"has_heating"`
	HasElectricity bool       `yaml:"has_electricity" json:"has_electricity"`
	HasAlarm       bool       `yaml:"has_alarm" json:"has_alarm"`
	Photos         []CellPhoto `yaml:"-" json:"photos,omitempty"`
	CreatedAt      time.Time  `yaml:"-" json:"created_at"`
	UpdatedAt      time.Time  `yaml:"-" json:"updated_at"`
}

// Area площадь пола ячейки в квадратных метрах.
func (c *Cell) Area() float64 {
	return c.Width * c.Depth
}

// Volume объем ячейки в кубических метрах. Значение не округляется:
// от него считается цена, округление только при выводе.
func (c *Cell) Volume() float64 {
	return c.Width * c.Height * c.Depth
}

type CellPhoto struct {
	ID          int64     `json:"id"`
	CellID      int64     `json:"cell_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	SortOrder   int64     `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
}
