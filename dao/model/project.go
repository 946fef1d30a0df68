package model

import "gorm.io/gorm"

type Project struct {
	gorm.Model
	AuthorID    uint        `gorm:"index;not null"`
	Author      User        `gorm:"foreignKey:AuthorID"`
	Name        string      `gorm:"type:varchar(128);not null"`
	Description string      `gorm:"type:varchar(2048)"`
	Type        ProjectType `gorm:"type:varchar(30);not null"`
	// The author is not implicitly a contributor; membership is always
	// an explicit row here.
	Contributors []ProjectContributor
}

// ProjectContributor is the membership join table. The composite
// primary key makes contributor adds idempotent under ON CONFLICT.
type ProjectContributor struct {
	ProjectID uint `gorm:"primaryKey;autoIncrement:false"`
	UserID    uint `gorm:"primaryKey;autoIncrement:false"`
}
