package models

import "time"

type ResumeStatus string

const (
	StatusQueued ResumeStatus = "queued"
	StatusParsed ResumeStatus = "parsed"
	StatusDone   ResumeStatus = "done"
	StatusFailed ResumeStatus = "failed"
)

func (s ResumeStatus) Valid() bool {
	switch s {
	case StatusQueued, StatusParsed, StatusDone, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further pipeline transition can leave s.
func (s ResumeStatus) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

type Resume struct {
	ID            string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	TenantID      string       `gorm:"type:varchar(36);not null;index:idx_resumes_tenant_job" json:"tenant_id"`
	JobID         string       `gorm:"type:varchar(36);not null;index:idx_resumes_tenant_job" json:"job_id"`
	CandidateName *string      `gorm:"type:varchar(255)" json:"candidate_name"`
	FileURL       string       `gorm:"type:text" json:"file_url"`
	RawText       string       `gorm:"type:text" json:"-"`
	Summary       *string      `gorm:"type:text" json:"summary"`
	Opinion       *string      `gorm:"type:text" json:"opinion"`
	Score         *float64     `json:"score"`
	Status        ResumeStatus `gorm:"type:varchar(16);not null;default:queued;index" json:"status"`
	ErrorMessage  *string      `gorm:"type:text" json:"error_message,omitempty"`
	Version       int          `gorm:"not null;default:0" json:"version"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"autoUpdateTime;index" json:"updated_at"`
}

func (Resume) TableName() string {
	return "resumes"
}
