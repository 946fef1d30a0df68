package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/softdesk-lab/softdesk/dao"
	"github.com/softdesk-lab/softdesk/dao/model"
	"github.com/softdesk-lab/softdesk/internal/authz"
	"github.com/softdesk-lab/softdesk/internal/resputil"
	"github.com/softdesk-lab/softdesk/internal/util"
	"github.com/softdesk-lab/softdesk/pkg/logutils"
	"github.com/softdesk-lab/softdesk/pkg/smtp"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewIssueMgr)
}

type IssueMgr struct {
	name      string
	store     Store
	evaluator *authz.Evaluator
}

func NewIssueMgr(conf *RegisterConfig) Manager {
	return &IssueMgr{
		name:      "issues",
		store:     conf.Store,
		evaluator: conf.Evaluator,
	}
}

func (mgr *IssueMgr) GetName() string { return mgr.name }

func (mgr *IssueMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *IssueMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/projects/:id/issues", mgr.ListIssues)
	g.POST("/projects/:id/issues", mgr.CreateIssue)
	g.GET("/projects/:id/issues/:iid", mgr.GetIssue)
	g.PATCH("/projects/:id/issues/:iid", mgr.UpdateIssue)
	g.DELETE("/projects/:id/issues/:iid", mgr.DeleteIssue)
	g.PUT("/projects/:id/issues/:iid/status", mgr.ChangeStatus)
	g.PUT("/projects/:id/issues/:iid/assignee", mgr.AssignContributor)
}

func (mgr *IssueMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	IssueCreateReq struct {
		Name        string              `json:"name" binding:"required,max=128"`
		Description string              `json:"description" binding:"max=2048"`
		Priority    model.IssuePriority `json:"priority" binding:"required"`
		Tag         model.IssueTag      `json:"tag" binding:"required"`
		Status      *model.IssueStatus  `json:"status"`
		// Assignee username; defaults to the caller when omitted.
		Contributor *string `json:"contributor"`
	}

	IssuePatchReq struct {
		Name        *string              `json:"name" binding:"omitempty,max=128"`
		Description *string              `json:"description" binding:"omitempty,max=2048"`
		Priority    *model.IssuePriority `json:"priority"`
		Tag         *model.IssueTag      `json:"tag"`
		Status      *model.IssueStatus   `json:"status"`
	}

	IssueResp struct {
		ID            uint                `json:"id"`
		ProjectID     uint                `json:"projectId"`
		AuthorID      uint                `json:"authorId"`
		ContributorID *uint               `json:"contributorId"`
		Name          string              `json:"name"`
		Description   string              `json:"description"`
		Status        model.IssueStatus   `json:"status"`
		Priority      model.IssuePriority `json:"priority"`
		Tag           model.IssueTag      `json:"tag"`
		CreatedAt     time.Time           `json:"createdAt"`
	}
)

func toIssueResp(issue *model.Issue) IssueResp {
	return IssueResp{
		ID:            issue.ID,
		ProjectID:     issue.ProjectID,
		AuthorID:      issue.AuthorID,
		ContributorID: issue.ContributorID,
		Name:          issue.Name,
		Description:   issue.Description,
		Status:        issue.Status,
		Priority:      issue.Priority,
		Tag:           issue.Tag,
		CreatedAt:     issue.CreatedAt,
	}
}

// fetchIssue loads the issue at /projects/:id/issues/:iid and checks
// it actually belongs to the project in the path. A mismatch is a
// not-found, the same as a dangling id.
func (mgr *IssueMgr) fetchIssue(c *gin.Context) (*model.Issue, bool) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	issueID, ok := parseID(c, "iid")
	if !ok {
		return nil, false
	}
	issue, err := mgr.store.GetIssue(c, issueID)
	if err != nil {
		storeError(c, err)
		return nil, false
	}
	if issue.ProjectID != projectID {
		resputil.NotFoundError(c, "resource not found")
		return nil, false
	}
	return issue, true
}

// ListIssues godoc
//
//	@Summary		List a project's issues
//	@Description	Visible to the project author and contributors
//	@Tags			Issue
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path	int	true	"project id"
//	@Success		200	{object}	resputil.Response[[]IssueResp]	"issues"
//	@Failure		403	{object}	resputil.Response[any]	"not a project member"
//	@Router			/projects/{id}/issues [get]
func (mgr *IssueMgr) ListIssues(c *gin.Context) {
	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	project, err := mgr.store.GetProject(c, projectID)
	if err != nil {
		storeError(c, err)
		return
	}

	decision, err := mgr.evaluator.Evaluate(c, principal(c), authz.ActionReadProject, authz.Target{Project: project})
	if err != nil {
		storeError(c, err)
		return
	}
	if !decision.Allowed {
		denied(c, decision)
		return
	}

	issues, err := mgr.store.ListIssuesByProject(c, projectID)
	if err != nil {
		storeError(c, err)
		return
	}
	resputil.Success(c, lo.Map(issues, func(i model.Issue, _ int) IssueResp {
		return toIssueResp(&i)
	}))
}

// CreateIssue godoc
//
//	@Summary		Create an issue
//	@Description	Caller must be a member of the project; assignee defaults to the caller
//	@Tags			Issue
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			id		path	int				true	"project id"
//	@Param			data	body	IssueCreateReq	true	"issue fields"
//	@Success		200	{object}	resputil.Response[IssueResp]	"created issue"
//	@Failure		403	{object}	resputil.Response[any]	"must be a project member to post"
//	@Router			/projects/{id}/issues [post]
func (mgr *IssueMgr) CreateIssue(c *gin.Context) {
	token := util.GetToken(c)

	projectID, ok := parseID(c, "id")
	if !ok {
		return
	}
	project, err := mgr.store.GetProject(c, projectID)
	if err != nil {
		storeError(c, err)
		return
	}

	decision, err := mgr.evaluator.Evaluate(c, principal(c), authz.ActionCreateIssue, authz.Target{Project: project})
	if err != nil {
		storeError(c, err)
		return
	}
	if !decision.Allowed {
		denied(c, decision)
		return
	}

	var req IssueCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if !req.Priority.Valid() {
		resputil.ValidationError(c, "invalid priority")
		return
	}
	if !req.Tag.Valid() {
		resputil.ValidationError(c, "invalid tag")
		return
	}
	status := model.StatusToDo
	if req.Status != nil {
		if !req.Status.Valid() {
			resputil.ValidationError(c, "invalid status")
			return
		}
		status = *req.Status
	}

	// The assignee defaults to the creating principal. A supplied
	// assignee must resolve to a contributor of the project.
	contributorID := token.UserID
	var assignee *model.User
	if req.Contributor != nil {
		assignee, err = mgr.store.GetUserByUsername(c, *req.Contributor)
		if err != nil {
			if errors.Is(err, dao.ErrNotFound) {
				resputil.ValidationError(c, "contributor not a project member")
				return
			}
			storeError(c, err)
			return
		}
		isMember, err := mgr.store.IsContributor(c, assignee.ID, projectID)
		if err != nil {
			storeError(c, err)
			return
		}
		if !isMember {
			resputil.ValidationError(c, "contributor not a project member")
			return
		}
		contributorID = assignee.ID
	}

	issue := model.Issue{
		ProjectID:     projectID,
		AuthorID:      token.UserID,
		ContributorID: &contributorID,
		Name:          req.Name,
		Description:   req.Description,
		Status:        status,
		Priority:      req.Priority,
		Tag:           req.Tag,
	}
	if err := mgr.store.CreateIssue(c, &issue); err != nil {
		storeError(c, err)
		return
	}

	if assignee != nil && assignee.ID != token.UserID {
		mgr.notifyAssignment(assignee, &issue)
	}
	logutils.Log.WithFields(logutils.Fields{
		"issue":   issue.ID,
		"project": projectID,
		"author":  token.UserID,
	}).Info("issue created")
	resputil.Success(c, toIssueResp(&issue))
}

// GetIssue godoc
//
//	@Summary		Get one issue
//	@Tags			Issue
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path	int	true	"project id"
//	@Param			iid	path	int	true	"issue id"
//	@Success		200	{object}	resputil.Response[IssueResp]	"issue"
//	@Failure		403	{object}	resputil.Response[any]	"not a project member"
//	@Router			/projects/{id}/issues/{iid} [get]
func (mgr *IssueMgr) GetIssue(c *gin.Context) {
	issue, ok := mgr.fetchIssue(c)
	if !ok {
		return
	}

	decision, err := mgr.evaluator.Evaluate(c, principal(c), authz.ActionReadIssue, authz.Target{Issue: issue})
	if err != nil {
		storeError(c, err)
		return
	}
	if !decision.Allowed {
		denied(c, decision)
		return
	}
	resputil.Success(c, toIssueResp(issue))
}

// UpdateIssue godoc
//
//	@Summary		Patch an issue
//	@Description	Issue-author-only; project_id, author_id and the assignee are not patchable here
//	@Tags			Issue
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			id		path	int				true	"project id"
//	@Param			iid		path	int				true	"issue id"
//	@Param			data	body	IssuePatchReq	true	"fields to change"
//	@Success		200	{object}	resputil.Response[IssueResp]	"updated issue"
//	@Failure		403	{object}	resputil.Response[any]	"issue-author-only action"
//	@Router			/projects/{id}/issues/{iid} [patch]
func (mgr *IssueMgr) UpdateIssue(c *gin.Context) {
	issue, ok := mgr.fetchIssue(c)
	if !ok {
		return
	}

	decision, err := mgr.evaluator.Evaluate(c, principal(c), authz.ActionWriteIssue, authz.Target{Issue: issue})
	if err != nil {
		storeError(c, err)
		return
	}
	if !decision.Allowed {
		denied(c, decision)
		return
	}

	var req IssuePatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	patch := map[string]any{}
	if req.Name != nil {
		patch["name"] = *req.Name
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.Priority != nil {
		if !req.Priority.Valid() {
			resputil.ValidationError(c, "invalid priority")
			return
		}
		patch["priority"] = *req.Priority
	}
	if req.Tag != nil {
		if !req.Tag.Valid() {
			resputil.ValidationError(c, "invalid tag")
			return
		}
		patch["tag"] = *req.Tag
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			resputil.ValidationError(c, "invalid status")
			return
		}
		patch["status"] = *req.Status
	}
	if len(patch) == 0 {
		resputil.BadRequestError(c, "empty patch")
		return
	}

	updated, err := mgr.store.UpdateIssue(c, issue.ID, patch)
	if err != nil {
		storeError(c, err)
		return
	}
	resputil.Success(c, toIssueResp(updated))
}

// DeleteIssue godoc
//
//	@Summary		Delete an issue
//	@Description	Issue-author-only; cascades to the issue's comments
//	@Tags			Issue
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path	int	true	"project id"
//	@Param			iid	path	int	true	"issue id"
//	@Success		200	{object}	resputil.Response[string]	"deleted"
//	@Failure		403	{object}	resputil.Response[any]	"issue-author-only action"
//	@Router			/projects/{id}/issues/{iid} [delete]
func (mgr *IssueMgr) DeleteIssue(c *gin.Context) {
	issue, ok := mgr.fetchIssue(c)
	if !ok {
		return
	}

	decision, err := mgr.evaluator.Evaluate(c, principal(c), authz.ActionWriteIssue, authz.Target{Issue: issue})
	if err != nil {
		storeError(c, err)
		return
	}
	if !decision.Allowed {
		denied(c, decision)
		return
	}

	if err := mgr.store.DeleteIssue(c, issue.ID); err != nil {
		storeError(c, err)
		return
	}
	logutils.Log.Infof("delete issue success, id: %d", issue.ID)
	resputil.Success(c, "")
}

type ChangeStatusReq struct {
	Status string `json:"status" binding:"required"`
}

// NormalizeStatus folds the external display form ("in progress",
// "To Do") into the canonical enum value.
func NormalizeStatus(input string) (model.IssueStatus, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(input))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	status := model.IssueStatus(normalized)
	return status, status.Valid()
}

// ChangeStatus godoc
//
//	@Summary		Change an issue's status
//	@Description	Issue-author-only; accepts the display form, e.g. "in progress"
//	@Tags			Issue
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			id		path	int				true	"project id"
//	@Param			iid		path	int				true	"issue id"
//	@Param			data	body	ChangeStatusReq	true	"new status"
//	@Success		200	{object}	resputil.Response[IssueResp]	"updated issue"
//	@Failure		422	{object}	resputil.Response[any]	"unknown status"
//	@Router			/projects/{id}/issues/{iid}/status [put]
func (mgr *IssueMgr) ChangeStatus(c *gin.Context) {
	issue, ok := mgr.fetchIssue(c)
	if !ok {
		return
	}

	decision, err := mgr.evaluator.Evaluate(c, principal(c), authz.ActionChangeIssueStatus, authz.Target{Issue: issue})
	if err != nil {
		storeError(c, err)
		return
	}
	if !decision.Allowed {
		denied(c, decision)
		return
	}

	var req ChangeStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	status, valid := NormalizeStatus(req.Status)
	if !valid {
		resputil.ValidationError(c, "unknown status: "+req.Status)
		return
	}

	updated, err := mgr.store.UpdateIssue(c, issue.ID, map[string]any{"status": status})
	if err != nil {
		storeError(c, err)
		return
	}
	resputil.Success(c, toIssueResp(updated))
}

type AssignContributorReq struct {
	Username string `json:"username" binding:"required"`
}

// AssignContributor godoc
//
//	@Summary		Assign an issue
//	@Description	Issue-author-only; the assignee must belong to the project's contributor set
//	@Tags			Issue
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			id		path	int						true	"project id"
//	@Param			iid		path	int						true	"issue id"
//	@Param			data	body	AssignContributorReq	true	"assignee username"
//	@Success		200	{object}	resputil.Response[IssueResp]	"updated issue"
//	@Failure		422	{object}	resputil.Response[any]	"user is not part of the project"
//	@Router			/projects/{id}/issues/{iid}/assignee [put]
func (mgr *IssueMgr) AssignContributor(c *gin.Context) {
	token := util.GetToken(c)

	issue, ok := mgr.fetchIssue(c)
	if !ok {
		return
	}

	decision, err := mgr.evaluator.Evaluate(c, principal(c), authz.ActionAssignIssueContributor, authz.Target{Issue: issue})
	if err != nil {
		storeError(c, err)
		return
	}
	if !decision.Allowed {
		denied(c, decision)
		return
	}

	var req AssignContributorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	// This is the enforcement point for the assignee invariant: the
	// named user must be in the project's contributor set, no matter
	// who asks.
	assignee, err := mgr.store.GetUserByUsername(c, req.Username)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			resputil.ValidationError(c, "user is not part of the project")
			return
		}
		storeError(c, err)
		return
	}
	isMember, err := mgr.store.IsContributor(c, assignee.ID, issue.ProjectID)
	if err != nil {
		storeError(c, err)
		return
	}
	if !isMember {
		resputil.ValidationError(c, "user is not part of the project")
		return
	}

	updated, err := mgr.store.AssignIssue(c, issue.ID, assignee.ID)
	if err != nil {
		storeError(c, err)
		return
	}

	if assignee.ID != token.UserID {
		mgr.notifyAssignment(assignee, updated)
	}
	resputil.Success(c, toIssueResp(updated))
}

// notifyAssignment mails the new assignee if a relay is configured
// and the user consented to being contacted. Failures are logged,
// never surfaced to the caller.
func (mgr *IssueMgr) notifyAssignment(assignee *model.User, issue *model.Issue) {
	if !smtp.Enabled() || !assignee.CanBeContacted || assignee.Email == nil {
		return
	}
	email := *assignee.Email
	subject := "You have been assigned an issue"
	body := "Issue \"" + issue.Name + "\" is now assigned to you."
	go func() {
		if err := smtp.SendEmail(email, subject, body); err != nil {
			logutils.Log.WithFields(logutils.Fields{
				"issue":    issue.ID,
				"assignee": assignee.ID,
			}).Warn("assignment notification failed: ", err)
		}
	}()
}
