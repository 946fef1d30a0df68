// Package authz decides, per operation and per resource instance,
// whether an acting principal may read, create, modify or delete it.
// The decision logic is an ordered rule list evaluated by a single
// pure function; the handlers call it before touching the store.
package authz

// Action names one gated operation. Write actions cover both patch
// and delete of their resource.
type Action uint8

const (
	ActionReadProject Action = iota + 1
	ActionWriteProject
	ActionReadIssue
	ActionCreateIssue
	ActionWriteIssue
	ActionReadComment
	ActionCreateComment
	ActionWriteComment
	ActionAddContributor
	ActionRemoveContributor
	ActionChangeIssueStatus
	ActionAssignIssueContributor
	ActionListAssignedIssues
)

// Deny reasons. These strings are part of the API contract: clients
// and tests match on them, so they must never be reworded casually.
const (
	ReasonNotProjectMember   = "not a project member"
	ReasonAuthorOnly         = "author-only action"
	ReasonMustBeMember       = "must be a project member to post"
	ReasonIssueAuthorOnly    = "issue-author-only action"
	ReasonCommentAuthorOnly  = "comment-author-only action"
	ReasonOwnIssuesOnly      = "may only list own issues"
	ReasonUnrecognizedAction = "unrecognized action"
)

// Principal is the authenticated actor: a user id plus the superuser
// flag. It is threaded explicitly through every call; there is no
// ambient current-user state.
type Principal struct {
	UserID  uint
	IsAdmin bool
}

// Decision is the two-valued evaluator outcome. A deny always
// carries its reason.
type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}
