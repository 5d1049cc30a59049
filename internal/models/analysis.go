package models

import (
	"time"

	"gorm.io/datatypes"
)

// Analysis is the append-only result row written when a Resume reaches done.
type Analysis struct {
	ID            string                      `gorm:"type:varchar(36);primaryKey" json:"id"`
	TenantID      string                      `gorm:"type:varchar(36);not null;index:idx_analyses_tenant_job" json:"tenant_id"`
	JobID         string                      `gorm:"type:varchar(36);not null;index:idx_analyses_tenant_job" json:"job_id"`
	ResumeID      string                      `gorm:"type:varchar(36);not null;uniqueIndex" json:"resume_id"`
	CandidateName string                      `gorm:"type:varchar(255)" json:"candidate_name"`
	Skills        datatypes.JSONSlice[string] `json:"skills"`
	Education     datatypes.JSONSlice[string] `json:"education"`
	Languages     datatypes.JSONSlice[string] `json:"languages"`
	Score         float64                     `gorm:"not null" json:"score"`
	CreatedAt     time.Time                   `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Analysis) TableName() string {
	return "analyses"
}
