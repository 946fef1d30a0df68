package authz

import (
	"context"

	"github.com/softdesk-lab/softdesk/dao/model"
)

// Target carries the entity under decision, or the parent scope for
// create and list actions. Exactly the fields an action needs are
// set; Evaluate reads nothing else.
type Target struct {
	// Project is the target of project actions and the parent scope
	// of CreateIssue and ListAssignedIssues.
	Project *model.Project
	// Issue is the target of issue actions and the parent scope of
	// CreateComment.
	Issue *model.Issue
	// Comment is the target of comment actions.
	Comment *model.Comment
	// QueriedUserID is the user whose assigned issues are listed.
	QueriedUserID uint
}

// Evaluator applies the ordered permission rules. It is a pure
// function of the principal and a snapshot of the referenced
// entities; it never writes to the store. A returned error means a
// lookup failed (typically a dangling relationship) and must surface
// as not-found, not as a deny.
type Evaluator struct {
	resolver *Resolver
}

func NewEvaluator(dir Directory) *Evaluator {
	return &Evaluator{resolver: NewResolver(dir)}
}

// Resolver exposes the membership resolver backing this evaluator.
func (e *Evaluator) Resolver() *Resolver {
	return e.resolver
}

// Evaluate runs the rules in precedence order; the first match wins.
//
//  1. admins may do everything
//  2. reads require resource authorship or project membership
//  3. project mutation and membership edits are project-author-only
//  4. posting issues/comments requires project membership
//  5. issue mutation is issue-author-only, membership is not enough
//  6. comment mutation is comment-author-only
//  7. assigned-issue listings are self-only
func (e *Evaluator) Evaluate(ctx context.Context, principal Principal, action Action, target Target) (Decision, error) {
	if principal.IsAdmin {
		return Allow(), nil
	}

	switch action {
	case ActionReadProject:
		if target.Project.AuthorID == principal.UserID {
			return Allow(), nil
		}
		return e.memberDecision(ctx, principal.UserID, target.Project.ID, ReasonNotProjectMember)

	case ActionReadIssue:
		if target.Issue.AuthorID == principal.UserID {
			return Allow(), nil
		}
		projectID, err := e.resolver.ProjectOfIssue(ctx, target.Issue)
		if err != nil {
			return Decision{}, err
		}
		return e.memberDecision(ctx, principal.UserID, projectID, ReasonNotProjectMember)

	case ActionReadComment:
		if target.Comment.AuthorID == principal.UserID {
			return Allow(), nil
		}
		projectID, err := e.resolver.ProjectOfComment(ctx, target.Comment)
		if err != nil {
			return Decision{}, err
		}
		return e.memberDecision(ctx, principal.UserID, projectID, ReasonNotProjectMember)

	case ActionWriteProject, ActionAddContributor, ActionRemoveContributor:
		if target.Project.AuthorID == principal.UserID {
			return Allow(), nil
		}
		return Deny(ReasonAuthorOnly), nil

	case ActionCreateIssue:
		return e.memberOrAuthorDecision(ctx, principal.UserID, target.Project.ID)

	case ActionCreateComment:
		projectID, err := e.resolver.ProjectOfIssue(ctx, target.Issue)
		if err != nil {
			return Decision{}, err
		}
		return e.memberOrAuthorDecision(ctx, principal.UserID, projectID)

	case ActionWriteIssue, ActionChangeIssueStatus, ActionAssignIssueContributor:
		// Being the assignee or a project contributor is not enough.
		if target.Issue.AuthorID == principal.UserID {
			return Allow(), nil
		}
		return Deny(ReasonIssueAuthorOnly), nil

	case ActionWriteComment:
		if target.Comment.AuthorID == principal.UserID {
			return Allow(), nil
		}
		return Deny(ReasonCommentAuthorOnly), nil

	case ActionListAssignedIssues:
		if target.QueriedUserID == principal.UserID {
			return Allow(), nil
		}
		return Deny(ReasonOwnIssuesOnly), nil

	default:
		return Deny(ReasonUnrecognizedAction), nil
	}
}

// memberDecision allows project contributors and denies everyone
// else with the given reason. Resource authorship has already been
// checked by the caller.
func (e *Evaluator) memberDecision(ctx context.Context, userID, projectID uint, reason string) (Decision, error) {
	ok, err := e.resolver.IsContributor(ctx, userID, projectID)
	if err != nil {
		return Decision{}, err
	}
	if ok {
		return Allow(), nil
	}
	return Deny(reason), nil
}

// memberOrAuthorDecision gates create actions: the project author and
// its contributors may post, nobody else.
func (e *Evaluator) memberOrAuthorDecision(ctx context.Context, userID, projectID uint) (Decision, error) {
	ok, err := e.resolver.isMemberOrAuthor(ctx, userID, projectID)
	if err != nil {
		return Decision{}, err
	}
	if ok {
		return Allow(), nil
	}
	return Deny(ReasonMustBeMember), nil
}
