package model

import (
	"gorm.io/gorm"
)

// Age bounds accepted at sign-up and profile update.
const (
	AgeMin = 15
	AgeMax = 100
)

// User is the basic entity of the system
type User struct {
	gorm.Model
	Username string  `gorm:"uniqueIndex;type:varchar(32);not null"`
	Password string  `gorm:"type:varchar(128);not null" json:"-"`
	Email    *string `gorm:"type:varchar(128)"`
	Age      int     `gorm:"type:smallint;not null"`
	// Privacy consent flags collected at sign-up.
	CanBeContacted  bool `gorm:"not null;default:false"`
	CanDataBeShared bool `gorm:"not null;default:false"`
	IsAdmin         bool `gorm:"not null;default:false"`
}
