package models

import "time"

type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

type Tenant struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Tenant) TableName() string {
	return "tenants"
}

// Membership links an identity-provider user to a tenant. The pair is the key.
type Membership struct {
	TenantID  string    `gorm:"type:varchar(36);primaryKey" json:"tenant_id"`
	UserID    string    `gorm:"type:varchar(64);primaryKey;index" json:"user_id"`
	Role      Role      `gorm:"type:varchar(32);not null;default:member" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Tenant Tenant `gorm:"foreignKey:TenantID" json:"-"`
}

func (Membership) TableName() string {
	return "memberships"
}
