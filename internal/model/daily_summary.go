package model

import (
	"time"
)

// DailySummary 每用户每自然日一行，按 (user_id, date) 幂等 Upsert
type DailySummary struct {
	ID                  uint64    `gorm:"primaryKey"`
	UserID              uint64    `gorm:"not null;index:idx_user_date,unique" json:"userId"`
	Date                string    `gorm:"type:varchar(10);not null;index:idx_user_date,unique" json:"date"`
	DefectivePercentage float64   `gorm:"not null;default:0" json:"defective_percentage"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func (DailySummary) TableName() string {
	return "daily_summaries"
}
