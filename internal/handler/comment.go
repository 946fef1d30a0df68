package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/softdesk-lab/softdesk/dao/model"
	"github.com/softdesk-lab/softdesk/internal/authz"
	"github.com/softdesk-lab/softdesk/internal/resputil"
	"github.com/softdesk-lab/softdesk/internal/util"
	"github.com/softdesk-lab/softdesk/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewCommentMgr)
}

type CommentMgr struct {
	name      string
	store     Store
	evaluator *authz.Evaluator
}

func NewCommentMgr(conf *RegisterConfig) Manager {
	return &CommentMgr{
		name:      "comments",
		store:     conf.Store,
		evaluator: conf.Evaluator,
	}
}

func (mgr *CommentMgr) GetName() string { return mgr.name }

func (mgr *CommentMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *CommentMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/issues/:id/comments", mgr.ListComments)
	g.POST("/issues/:id/comments", mgr.CreateComment)
	g.GET("/issues/:id/comments/:cid", mgr.GetComment)
	g.PATCH("/issues/:id/comments/:cid", mgr.UpdateComment)
	g.DELETE("/issues/:id/comments/:cid", mgr.DeleteComment)
}

func (mgr *CommentMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	CommentCreateReq struct {
		Description string `json:"description" binding:"required,max=2048"`
	}

	CommentPatchReq struct {
		Description string `json:"description" binding:"required,max=2048"`
	}

	CommentResp struct {
		ID          uint      `json:"id"`
		IssueID     uint      `json:"issueId"`
		ProjectID   uint      `json:"projectId"`
		AuthorID    uint      `json:"authorId"`
		Description string    `json:"description"`
		CreatedAt   time.Time `json:"createdAt"`
	}
)

func toCommentResp(comment *model.Comment) CommentResp {
	return CommentResp{
		ID:          comment.ID,
		IssueID:     comment.IssueID,
		ProjectID:   comment.ProjectID,
		AuthorID:    comment.AuthorID,
		Description: comment.Description,
		CreatedAt:   comment.CreatedAt,
	}
}

// fetchComment loads the comment at /issues/:id/comments/:cid and
// checks it belongs to the issue in the path.
func (mgr *CommentMgr) fetchComment(c *gin.Context) (*model.Comment, bool) {
	issueID, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	commentID, ok := parseID(c, "cid")
	if !ok {
		return nil, false
	}
	comment, err := mgr.store.GetComment(c, commentID)
	if err != nil {
		storeError(c, err)
		return nil, false
	}
	if comment.IssueID != issueID {
		resputil.NotFoundError(c, "resource not found")
		return nil, false
	}
	return comment, true
}

// ListComments godoc
//
//	@Summary		List an issue's comments
//	@Tags			Comment
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path	int	true	"issue id"
//	@Success		200	{object}	resputil.Response[[]CommentResp]	"comments"
//	@Failure		403	{object}	resputil.Response[any]	"not a project member"
//	@Router			/issues/{id}/comments [get]
func (mgr *CommentMgr) ListComments(c *gin.Context) {
	issueID, ok := parseID(c, "id")
	if !ok {
		return
	}
	issue, err := mgr.store.GetIssue(c, issueID)
	if err != nil {
		storeError(c, err)
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

	comments, err := mgr.store.ListCommentsByIssue(c, issueID)
	if err != nil {
		storeError(c, err)
		return
	}
	resputil.Success(c, lo.Map(comments, func(cm model.Comment, _ int) CommentResp {
		return toCommentResp(&cm)
	}))
}

// CreateComment godoc
//
//	@Summary		Comment on an issue
//	@Description	Caller must be a member of the owning project; project_id is stamped from the issue
//	@Tags			Comment
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			id		path	int					true	"issue id"
//	@Param			data	body	CommentCreateReq	true	"comment body"
//	@Success		200	{object}	resputil.Response[CommentResp]	"created comment"
//	@Failure		403	{object}	resputil.Response[any]	"must be a project member to post"
//	@Router			/issues/{id}/comments [post]
func (mgr *CommentMgr) CreateComment(c *gin.Context) {
	token := util.GetToken(c)

	issueID, ok := parseID(c, "id")
	if !ok {
		return
	}
	issue, err := mgr.store.GetIssue(c, issueID)
	if err != nil {
		storeError(c, err)
		return
	}

	decision, err := mgr.evaluator.Evaluate(c, principal(c), authz.ActionCreateComment, authz.Target{Issue: issue})
	if err != nil {
		storeError(c, err)
		return
	}
	if !decision.Allowed {
		denied(c, decision)
		return
	}

	var req CommentCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	// ProjectID always mirrors the issue's project; client input
	// never reaches it.
	comment := model.Comment{
		IssueID:     issue.ID,
		ProjectID:   issue.ProjectID,
		AuthorID:    token.UserID,
		Description: req.Description,
	}
	if err := mgr.store.CreateComment(c, &comment); err != nil {
		storeError(c, err)
		return
	}

	logutils.Log.WithFields(logutils.Fields{
		"comment": comment.ID,
		"issue":   issue.ID,
		"author":  token.UserID,
	}).Info("comment created")
	resputil.Success(c, toCommentResp(&comment))
}

// GetComment godoc
//
//	@Summary		Get one comment
//	@Tags			Comment
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path	int	true	"issue id"
//	@Param			cid	path	int	true	"comment id"
//	@Success		200	{object}	resputil.Response[CommentResp]	"comment"
//	@Failure		403	{object}	resputil.Response[any]	"not a project member"
//	@Router			/issues/{id}/comments/{cid} [get]
func (mgr *CommentMgr) GetComment(c *gin.Context) {
	comment, ok := mgr.fetchComment(c)
	if !ok {
		return
	}

	decision, err := mgr.evaluator.Evaluate(c, principal(c), authz.ActionReadComment, authz.Target{Comment: comment})
	if err != nil {
		storeError(c, err)
		return
	}
	if !decision.Allowed {
		denied(c, decision)
		return
	}
	resputil.Success(c, toCommentResp(comment))
}

// UpdateComment godoc
//
//	@Summary		Patch a comment
//	@Description	Comment-author-only
//	@Tags			Comment
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			id		path	int				true	"issue id"
//	@Param			cid		path	int				true	"comment id"
//	@Param			data	body	CommentPatchReq	true	"new body"
//	@Success		200	{object}	resputil.Response[CommentResp]	"updated comment"
//	@Failure		403	{object}	resputil.Response[any]	"comment-author-only action"
//	@Router			/issues/{id}/comments/{cid} [patch]
func (mgr *CommentMgr) UpdateComment(c *gin.Context) {
	comment, ok := mgr.fetchComment(c)
	if !ok {
		return
	}

	decision, err := mgr.evaluator.Evaluate(c, principal(c), authz.ActionWriteComment, authz.Target{Comment: comment})
	if err != nil {
		storeError(c, err)
		return
	}
	if !decision.Allowed {
		denied(c, decision)
		return
	}

	var req CommentPatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	updated, err := mgr.store.UpdateComment(c, comment.ID, map[string]any{"description": req.Description})
	if err != nil {
		storeError(c, err)
		return
	}
	resputil.Success(c, toCommentResp(updated))
}

// DeleteComment godoc
//
//	@Summary		Delete a comment
//	@Description	Comment-author-only
//	@Tags			Comment
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path	int	true	"issue id"
//	@Param			cid	path	int	true	"comment id"
//	@Success		200	{object}	resputil.Response[string]	"deleted"
//	@Failure		403	{object}	resputil.Response[any]	"comment-author-only action"
//	@Router			/issues/{id}/comments/{cid} [delete]
func (mgr *CommentMgr) DeleteComment(c *gin.Context) {
	comment, ok := mgr.fetchComment(c)
	if !ok {
		return
	}

	decision, err := mgr.evaluator.Evaluate(c, principal(c), authz.ActionWriteComment, authz.Target{Comment: comment})
	if err != nil {
		storeError(c, err)
		return
	}
	if !decision.Allowed {
		denied(c, decision)
		return
	}

	if err := mgr.store.DeleteComment(c, comment.ID); err != nil {
		storeError(c, err)
		return
	}
	resputil.Success(c, "")
}
