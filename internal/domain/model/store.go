package model

import "strings"

// 受け取り可能なブティック（1注文につき1店舗）
type Store struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name   string `gorm:"type:varchar(255);not null" json:"name"`
	City   string `gorm:"type:varchar(255)" json:"city"`
	Street string `gorm:"type:varchar(255)" json:"street"`
}

// 「名前 — 市, 通り」形式の表示ラベル
func (s Store) Label() string {
	parts := make([]string, 0, 2)
	if strings.TrimSpace(s.City) != "" {
		parts = append(parts, strings.TrimSpace(s.City))
	}
	if strings.TrimSpace(s.Street) != "" {
		parts = append(parts, strings.TrimSpace(s.Street))
	}
	if len(parts) == 0 {
		return s.Name
	}
	return s.Name + " — " + strings.Join(parts, ", ")
}
