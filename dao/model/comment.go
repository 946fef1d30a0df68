package model

import "gorm.io/gorm"

type Comment struct {
	gorm.Model
	IssueID uint `gorm:"index;not null"`
	// ProjectID is denormalized from the parent issue so project-level
	// sweeps and membership checks need no join. It is always stamped
	// from the issue, never taken from a request.
	ProjectID   uint   `gorm:"index;not null"`
	AuthorID    uint   `gorm:"index;not null"`
	Description string `gorm:"type:varchar(2048);not null"`
}
