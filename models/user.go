package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Username string `gorm:"size:60;uniqueIndex;not null"`
	Password string `gorm:"not null" json:"-"` // Don't expose password hash
	Email    string `gorm:"size:100;index"`
	RealName string `gorm:"size:100"`
	RoleID   *uint  // One security role per user
	Role     *Role  `gorm:"foreignKey:RoleID"`
	Inactive bool   `gorm:"not null;default:false"`
}
