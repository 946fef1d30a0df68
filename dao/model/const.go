// 定义与数据库表字段对应的常量
// Enum values are stored as the canonical upper-snake strings so rows
// stay readable in psql and stable across renames of the Go identifiers.
package model

// ProjectType is the kind of deliverable a project tracks.
type ProjectType string

const (
	ProjectBackEnd  ProjectType = "BACK_END"
	ProjectFrontEnd ProjectType = "FRONT_END"
	ProjectIOS      ProjectType = "IOS"
	ProjectAndroid  ProjectType = "ANDROID"
)

func (t ProjectType) Valid() bool {
	switch t {
	case ProjectBackEnd, ProjectFrontEnd, ProjectIOS, ProjectAndroid:
		return true
	}
	return false
}

// IssueStatus is the lifecycle state of an issue.
type IssueStatus string

const (
	StatusToDo       IssueStatus = "TO_DO"
	StatusInProgress IssueStatus = "IN_PROGRESS"
	StatusFinished   IssueStatus = "FINISHED"
)

func (s IssueStatus) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusFinished:
		return true
	}
	return false
}

// IssuePriority orders the backlog.
type IssuePriority string

const (
	PriorityLow    IssuePriority = "LOW"
	PriorityMedium IssuePriority = "MEDIUM"
	PriorityHigh   IssuePriority = "HIGH"
)

func (p IssuePriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// IssueTag classifies the nature of an issue.
type IssueTag string

const (
	TagBug     IssueTag = "BUG"
	TagFeature IssueTag = "FEATURE"
	TagTask    IssueTag = "TASK"
)

func (t IssueTag) Valid() bool {
	switch t {
	case TagBug, TagFeature, TagTask:
		return true
	}
	return false
}
