package models

import (
	"time"

	"gorm.io/datatypes"
)

// Criterion is one weighted evaluation criterion of a Job. Weight is 0..100.
type Criterion struct {
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description,omitempty"`
}

type Job struct {
	ID             string                         `gorm:"type:varchar(36);primaryKey" json:"id"`
	TenantID       string                         `gorm:"type:varchar(36);not null;index" json:"tenant_id"`
	Title          string                         `gorm:"type:varchar(255);not null" json:"title"`
	Description    string                         `gorm:"type:text" json:"description"`
	MainActivities string                         `gorm:"type:text" json:"main_activities"`
	Prerequisites  string                         `gorm:"type:text" json:"prerequisites"`
	Differentials  string                         `gorm:"type:text" json:"differentials"`
	Criteria       datatypes.JSONSlice[Criterion] `json:"criteria"`
	CreatedAt      time.Time                      `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Job) TableName() string {
	return "jobs"
}
