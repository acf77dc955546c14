package model

import "time"

// UserRole is the role a user acts in.
type UserRole string

const (
	RolePilot        UserRole = "PILOT"
	RoleFleetManager UserRole = "FLEET_MANAGER"
	RoleAdmin        UserRole = "ADMIN"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RolePilot, RoleFleetManager, RoleAdmin:
		return true
	}
	return false
}

// User is a pilot, fleet manager or administrator.
type User struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	Name              string    `gorm:"size:128;not null" json:"name"`
	Email             string    `gorm:"uniqueIndex;size:256;not null" json:"email"`
	Role              UserRole  `gorm:"size:32;not null" json:"role"`
	CertificateNumber string    `gorm:"size:32" json:"certificateNumber,omitempty"`
	MedicalClass      string    `gorm:"size:16" json:"medicalClass,omitempty"`
	MedicalExpiry     *Date     `json:"medicalExpiry,omitempty"`
	AvatarInitials    string    `gorm:"size:4" json:"avatarInitials"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
