package models

import "time"

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	HashedPassword string    `gorm:"size:512" json:"-"` // empty for OAuth-only accounts
	FullName       string    `gorm:"size:255" json:"full_name"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
	IsVerified     bool      `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Audited

	Payments []Payment `gorm:"foreignKey:UserID" json:"payments,omitempty"`
}

func (User) TableName() string { return "users" }

func (User) EntityType() string { return "User" }

func (u *User) PrimaryID() uint { return u.ID }
