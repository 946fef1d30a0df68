package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/softdesk-lab/softdesk/dao/model"
	"github.com/softdesk-lab/softdesk/internal/authz"
)

// Manager is one resource's handler set. Each manager registers its
// own routes on the public, protected and admin groups.
type Manager interface {
	GetName() string
	RegisterPublic(group *gin.RouterGroup)
	RegisterProtected(group *gin.RouterGroup)
	RegisterAdmin(group *gin.RouterGroup)
}

type RegisterFunc func(conf *RegisterConfig) Manager

// Registers collects the manager constructors; each handler file
// appends its own in init().
var Registers []RegisterFunc

// RegisterConfig carries the shared dependencies handed to every
// manager constructor.
type RegisterConfig struct {
	Store     Store
	Evaluator *authz.Evaluator
}

// Store is everything the handlers need from the persistence layer.
// *dao.Store satisfies it; tests substitute an in-memory fake.
type Store interface {
	authz.Directory

	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id uint) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, id uint, patch map[string]any) (*model.User, error)
	DeleteUser(ctx context.Context, id uint) error

	CreateProject(ctx context.Context, project *model.Project, contributorIDs []uint) error
	ListProjects(ctx context.Context) ([]model.Project, error)
	ListProjectsForUser(ctx context.Context, userID uint) ([]model.Project, error)
	UpdateProject(ctx context.Context, id uint, patch map[string]any) (*model.Project, error)
	DeleteProject(ctx context.Context, id uint) error
	AddContributor(ctx context.Context, projectID, userID uint) error
	RemoveContributor(ctx context.Context, projectID, userID uint) error
	ListContributorIDs(ctx context.Context, projectID uint) ([]uint, error)

	CreateIssue(ctx context.Context, issue *model.Issue) error
	ListIssuesByProject(ctx context.Context, projectID uint) ([]model.Issue, error)
	UpdateIssue(ctx context.Context, id uint, patch map[string]any) (*model.Issue, error)
	AssignIssue(ctx context.Context, id, contributorID uint) (*model.Issue, error)
	DeleteIssue(ctx context.Context, id uint) error
	ListAssignedIssues(ctx context.Context, userID, projectID uint) ([]model.Issue, error)
	CountIssuesByStatus(ctx context.Context) (map[model.IssueStatus]int64, error)

	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, id uint) (*model.Comment, error)
	ListCommentsByIssue(ctx context.Context, issueID uint) ([]model.Comment, error)
	UpdateComment(ctx context.Context, id uint, patch map[string]any) (*model.Comment, error)
	DeleteComment(ctx context.Context, id uint) error
}
