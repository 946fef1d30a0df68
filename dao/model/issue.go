package model

import "gorm.io/gorm"

type Issue struct {
	gorm.Model
	// ProjectID and AuthorID are set at creation and never patched.
	ProjectID uint `gorm:"index;not null"`
	AuthorID  uint `gorm:"index;not null"`
	// ContributorID is the assignee. Defaults to the author at creation
	// and must always reference a contributor of the parent project.
	ContributorID *uint         `gorm:"index"`
	Name          string        `gorm:"type:varchar(128);not null"`
	Description   string        `gorm:"type:varchar(2048)"`
	Status        IssueStatus   `gorm:"type:varchar(30);not null;default:'TO_DO'"`
	Priority      IssuePriority `gorm:"type:varchar(30);not null"`
	Tag           IssueTag      `gorm:"type:varchar(30);not null"`
}
