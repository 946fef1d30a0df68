package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/softdesk-lab/softdesk/dao/model"
	"github.com/softdesk-lab/softdesk/internal/authz"
	"github.com/softdesk-lab/softdesk/internal/resputil"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewTicketMgr)
}

// TicketMgr serves the per-user assigned-issue listing.
type TicketMgr struct {
	name      string
	store     Store
	evaluator *authz.Evaluator
}

func NewTicketMgr(conf *RegisterConfig) Manager {
	return &TicketMgr{
		name:      "tickets",
		store:     conf.Store,
		evaluator: conf.Evaluator,
	}
}

func (mgr *TicketMgr) GetName() string { return mgr.name }

func (mgr *TicketMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *TicketMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/users/:id/projects/:pid/tickets", mgr.ListAssignedIssues)
}

func (mgr *TicketMgr) RegisterAdmin(_ *gin.RouterGroup) {}

// ListAssignedIssues godoc
//
//	@Summary		List a user's assigned issues in a project
//	@Description	Self-only (admins excepted); no matches is an empty list, not an error
//	@Tags			Ticket
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path	int	true	"user id"
//	@Param			pid	path	int	true	"project id"
//	@Success		200	{object}	resputil.Response[[]IssueResp]	"assigned issues"
//	@Failure		403	{object}	resputil.Response[any]	"may only list own issues"
//	@Router			/users/{id}/projects/{pid}/tickets [get]
func (mgr *TicketMgr) ListAssignedIssues(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}
	projectID, ok := parseID(c, "pid")
	if !ok {
		return
	}

	if _, err := mgr.store.GetUser(c, userID); err != nil {
		storeError(c, err)
		return
	}
	if _, err := mgr.store.GetProject(c, projectID); err != nil {
		storeError(c, err)
		return
	}

	decision, err := mgr.evaluator.Evaluate(c, principal(c), authz.ActionListAssignedIssues,
		authz.Target{QueriedUserID: userID})
	if err != nil {
		storeError(c, err)
		return
	}
	if !decision.Allowed {
		denied(c, decision)
		return
	}

	issues, err := mgr.store.ListAssignedIssues(c, userID, projectID)
	if err != nil {
		storeError(c, err)
		return
	}
	resputil.Success(c, lo.Map(issues, func(i model.Issue, _ int) IssueResp {
		return toIssueResp(&i)
	}))
}
