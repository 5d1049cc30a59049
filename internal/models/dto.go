package models

type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

type RegisterRequest struct {
	CompanyName string `json:"company_name"`
	FullName    string `json:"full_name"`
}

type RegisterResponse struct {
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	Created  bool   `json:"created"`
}

type TenantMembership struct {
	TenantID string `json:"tenant_id"`
	Role     Role   `json:"role"`
}

type MeResponse struct {
	UserID  string             `json:"user_id"`
	Email   string             `json:"email,omitempty"`
	Tenants []TenantMembership `json:"tenants"`
}

type CreateJobRequest struct {
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	MainActivities string      `json:"main_activities"`
	Prerequisites  string      `json:"prerequisites"`
	Differentials  string      `json:"differentials"`
	Criteria       []Criterion `json:"criteria"`
}

type UploadResponse struct {
	Status   ResumeStatus `json:"status"`
	ResumeID string       `json:"resume_id"`
	TenantID string       `json:"tenant_id"`
}

type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

type SearchHit struct {
	ResumeID string  `json:"resume_id"`
	JobID    string  `json:"job_id"`
	Score    float32 `json:"score"`
	Chunk    string  `json:"chunk"`
}
