package models

import "gorm.io/gorm"

// Role is a named bundle of selected sections and areas. Sections and
// Areas hold semicolon-joined permission IDs and are NULL when empty.
type Role struct {
	gorm.Model
	Name        string  `gorm:"size:100;uniqueIndex;not null"`
	Description string  `gorm:"size:255"`
	Sections    *string `gorm:"type:text"`
	Areas       *string `gorm:"type:text"`
	Inactive    bool    `gorm:"not null;default:false"`
}

func (Role) TableName() string { return "security_roles" }

// StoredSections returns Sections with NULL read as "".
func (r *Role) StoredSections() string {
	if r.Sections == nil {
		return ""
	}
	return *r.Sections
}

// StoredAreas returns Areas with NULL read as "".
func (r *Role) StoredAreas() string {
	if r.Areas == nil {
		return ""
	}
	return *r.Areas
}
