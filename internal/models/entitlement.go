package models

import (
	"time"
)

// Membership statuses
const (
	MembershipStatusActive   = "ACTIVE"
	MembershipStatusExpired  = "EXPIRED"
	MembershipStatusInactive = "INACTIVE"
)

// UserMembership holds at most one row per (user, membership); renewals
// extend EndDate rather than inserting a second row.
type UserMembership struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserId       uint      `gorm:"column:user_id;not null;uniqueIndex:idx_user_membership" json:"user_id"`
	MembershipId uint      `gorm:"column:membership_id;not null;uniqueIndex:idx_user_membership" json:"membership_id"`
	Status       string    `gorm:"column:status;size:20;default:ACTIVE" json:"status"`
	StartDate    time.Time `gorm:"column:start_date;not null" json:"start_date"`
	EndDate      time.Time `gorm:"column:end_date;not null" json:"end_date"`
	IsActive     bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (UserMembership) TableName() string {
	return "user_memberships"
}

type CourseEnrollment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserId    uint      `gorm:"column:user_id;not null;uniqueIndex:idx_user_course" json:"user_id"`
	CourseId  uint      `gorm:"column:course_id;not null;uniqueIndex:idx_user_course" json:"course_id"`
	Source    string    `gorm:"column:source;size:50" json:"source"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (CourseEnrollment) TableName() string {
	return "course_enrollments"
}

type UserProduct struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserId    uint      `gorm:"column:user_id;not null;uniqueIndex:idx_user_product" json:"user_id"`
	ProductId uint      `gorm:"column:product_id;not null;uniqueIndex:idx_user_product" json:"product_id"`
	Source    string    `gorm:"column:source;size:50" json:"source"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (UserProduct) TableName() string {
	return "user_products"
}

type GroupMember struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserId    uint      `gorm:"column:user_id;not null;uniqueIndex:idx_user_group" json:"user_id"`
	GroupId   uint      `gorm:"column:group_id;not null;uniqueIndex:idx_user_group" json:"group_id"`
	Role      string    `gorm:"column:role;size:50;default:member" json:"role"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (GroupMember) TableName() string {
	return "group_members"
}
