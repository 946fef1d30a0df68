package authz

import (
	"context"

	"github.com/softdesk-lab/softdesk/dao/model"
)

// Directory is the read-only slice of the store the engine needs.
// *dao.Store satisfies it; tests provide in-memory fakes.
type Directory interface {
	GetProject(ctx context.Context, id uint) (*model.Project, error)
	GetIssue(ctx context.Context, id uint) (*model.Issue, error)
	IsContributor(ctx context.Context, userID, projectID uint) (bool, error)
}

// Resolver answers membership and authorship questions, resolving
// transitively for issues (via the project) and comments (via
// issue then project). Pure lookups, no side effects.
type Resolver struct {
	dir Directory
}

func NewResolver(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

func (r *Resolver) IsContributor(ctx context.Context, userID, projectID uint) (bool, error) {
	return r.dir.IsContributor(ctx, userID, projectID)
}

func (r *Resolver) IsProjectAuthor(ctx context.Context, userID, projectID uint) (bool, error) {
	project, err := r.dir.GetProject(ctx, projectID)
	if err != nil {
		return false, err
	}
	return project.AuthorID == userID, nil
}

// ProjectOfIssue returns the owning project id of an issue. A
// dangling link surfaces as the store's not-found error, never as a
// deny.
func (r *Resolver) ProjectOfIssue(ctx context.Context, issue *model.Issue) (uint, error) {
	if _, err := r.dir.GetProject(ctx, issue.ProjectID); err != nil {
		return 0, err
	}
	return issue.ProjectID, nil
}

// ProjectOfComment resolves comment -> issue -> project. The
// denormalized comment.ProjectID is deliberately not trusted here.
func (r *Resolver) ProjectOfComment(ctx context.Context, comment *model.Comment) (uint, error) {
	issue, err := r.dir.GetIssue(ctx, comment.IssueID)
	if err != nil {
		return 0, err
	}
	return r.ProjectOfIssue(ctx, issue)
}

// isMemberOrAuthor reports whether the user authored the project or
// belongs to its contributor set.
func (r *Resolver) isMemberOrAuthor(ctx context.Context, userID, projectID uint) (bool, error) {
	isAuthor, err := r.IsProjectAuthor(ctx, userID, projectID)
	if err != nil {
		return false, err
	}
	if isAuthor {
		return true, nil
	}
	return r.IsContributor(ctx, userID, projectID)
}
