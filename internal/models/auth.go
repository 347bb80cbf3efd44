package models

type User struct {
	Base
	Email           string `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	Password        string `gorm:"not null" json:"-"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	RoleID          string `gorm:"type:uuid;default:NULL" json:"roleId"`
	Role            *Role  `json:"role,omitempty"`
	UserType        string `gorm:"default:'INTERNAL'" json:"userType"`
	PartnerCategory string `json:"partnerCategory,omitempty"`
}
