package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/softdesk-lab/softdesk/dao"
	"github.com/softdesk-lab/softdesk/dao/model"
	"github.com/softdesk-lab/softdesk/internal/authz"
	"github.com/softdesk-lab/softdesk/internal/resputil"
	"github.com/softdesk-lab/softdesk/internal/util"
	"github.com/softdesk-lab/softdesk/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewProjectMgr)
}

type ProjectMgr struct {
	name      string
	store     Store
	evaluator *authz.Evaluator
}

func NewProjectMgr(conf *RegisterConfig) Manager {
	return &ProjectMgr{
		name:      "projects",
		store:     conf.Store,
		evaluator: conf.Evaluator,
	}
}

func (mgr *ProjectMgr) GetName() string { return mgr.name }

func (mgr *ProjectMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ProjectMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/projects", mgr.ListProjects)
	g.POST("/projects", mgr.CreateProject)
	g.GET("/projects/:id", mgr.GetProject)
	g.PATCH("/projects/:id", mgr.UpdateProject)
	g.DELETE("/projects/:id", mgr.DeleteProject)
	g.POST("/projects/:id/contributors", mgr.AddContributor)
	g.DELETE("/projects/:id/contributors/:username", mgr.RemoveContributor)
}

func (mgr *ProjectMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	ProjectCreateReq struct {
		Name        string            `json:"name" binding:"required,max=128"`
		Description string            `json:"description" binding:"max=2048"`
		Type        model.ProjectType `json:"type" binding:"required"`
		// Initial contributor usernames; the author is not included
		// unless named here.
		Contributors []string `json:"contributors"`
	}

	ProjectPatchReq struct {
		Name        *string            `json:"name" binding:"omitempty,max=128"`
		Description *string            `json:"description" binding:"omitempty,max=2048"`
		Type        *model.ProjectType `json:"type"`
	}

	ProjectResp struct {
		ID           uint              `json:"id"`
		AuthorID     uint              `json:"authorId"`
		Name         string            `json:"name"`
		Description  string            `json:"description"`
		Type         model.ProjectType `json:"type"`
		Contributors []uint            `json:"contributors,omitempty"`
		CreatedAt    time.Time         `json:"createdAt"`
	}
)

func toProjectResp(p *model.Project, contributorIDs []uint) ProjectResp {
	return ProjectResp{
		ID:           p.ID,
		AuthorID:     p.AuthorID,
		Name:         p.Name,
		Description:  p.Description,
		Type:         p.Type,
		Contributors: contributorIDs,
		CreatedAt:    p.CreatedAt,
	}
}

// fetchProject loads the target or replies not-found.
func (mgr *ProjectMgr) fetchProject(c *gin.Context) (*model.Project, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	project, err := mgr.store.GetProject(c, id)
	if err != nil {
		storeError(c, err)
		return nil, false
	}
	return project, true
}

// ListProjects godoc
//
//	@Summary		List visible projects
//	@Description	Projects the caller authored or contributes to; admins see all
//	@Tags			Project
//	@Produce		json
//	@Security		Bearer
//	@Success		200	{object}	resputil.Response[[]ProjectResp]	"projects"
//	@Router			/projects [get]
func (mgr *ProjectMgr) ListProjects(c *gin.Context) {
	token := util.GetToken(c)

	var (
		projects []model.Project
		err      error
	)
	if token.IsAdmin {
		projects, err = mgr.store.ListProjects(c)
	} else {
		projects, err = mgr.store.ListProjectsForUser(c, token.UserID)
	}
	if err != nil {
		storeError(c, err)
		return
	}

	resputil.Success(c, lo.Map(projects, func(p model.Project, _ int) ProjectResp {
		return toProjectResp(&p, nil)
	}))
}

// CreateProject godoc
//
//	@Summary		Create a project
//	@Description	The caller becomes the immutable project author
//	@Tags			Project
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			data	body		ProjectCreateReq	true	"project fields"
//	@Success		200		{object}	resputil.Response[ProjectResp]	"created project"
//	@Router			/projects [post]
func (mgr *ProjectMgr) CreateProject(c *gin.Context) {
	token := util.GetToken(c)

	var req ProjectCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if !req.Type.Valid() {
		resputil.ValidationError(c, "invalid project type")
		return
	}

	contributorIDs := make([]uint, 0, len(req.Contributors))
	for _, username := range req.Contributors {
		user, err := mgr.store.GetUserByUsername(c, username)
		if err != nil {
			if errors.Is(err, dao.ErrNotFound) {
				resputil.ValidationError(c, "unknown contributor: "+username)
				return
			}
			storeError(c, err)
			return
		}
		contributorIDs = append(contributorIDs, user.ID)
	}

	project := model.Project{
		AuthorID:    token.UserID,
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
	}
	if err := mgr.store.CreateProject(c, &project, contributorIDs); err != nil {
		storeError(c, err)
		return
	}

	logutils.Log.WithFields(logutils.Fields{
		"project": project.ID,
		"author":  token.UserID,
	}).Info("project created")
	resputil.Success(c, toProjectResp(&project, contributorIDs))
}

// GetProject godoc
//
//	@Summary		Get one project
//	@Tags			Project
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path	int	true	"project id"
//	@Success		200	{object}	resputil.Response[ProjectResp]	"project with contributor ids"
//	@Failure		403	{object}	resputil.Response[any]	"not a project member"
//	@Router			/projects/{id} [get]
func (mgr *ProjectMgr) GetProject(c *gin.Context) {
	project, ok := mgr.fetchProject(c)
	if !ok {
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

	contributorIDs, err := mgr.store.ListContributorIDs(c, project.ID)
	if err != nil {
		storeError(c, err)
		return
	}
	resputil.Success(c, toProjectResp(project, contributorIDs))
}

// UpdateProject godoc
//
//	@Summary		Patch a project
//	@Description	Author-only; author_id is never reassigned
//	@Tags			Project
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			id		path	int				true	"project id"
//	@Param			data	body	ProjectPatchReq	true	"fields to change"
//	@Success		200	{object}	resputil.Response[ProjectResp]	"updated project"
//	@Router			/projects/{id} [patch]
func (mgr *ProjectMgr) UpdateProject(c *gin.Context) {
	project, ok := mgr.fetchProject(c)
	if !ok {
		return
	}

	decision, err := mgr.evaluator.Evaluate(c, principal(c), authz.ActionWriteProject, authz.Target{Project: project})
	if err != nil {
		storeError(c, err)
		return
	}
	if !decision.Allowed {
		denied(c, decision)
		return
	}

	var req ProjectPatchReq
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
	if req.Type != nil {
		if !req.Type.Valid() {
			resputil.ValidationError(c, "invalid project type")
			return
		}
		patch["type"] = *req.Type
	}
	if len(patch) == 0 {
		resputil.BadRequestError(c, "empty patch")
		return
	}

	updated, err := mgr.store.UpdateProject(c, project.ID, patch)
	if err != nil {
		storeError(c, err)
		return
	}
	resputil.Success(c, toProjectResp(updated, nil))
}

// DeleteProject godoc
//
//	@Summary		Delete a project
//	@Description	Author-only; cascades to the project's issues and their comments
//	@Tags			Project
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path	int	true	"project id"
//	@Success		200	{object}	resputil.Response[string]	"deleted"
//	@Router			/projects/{id} [delete]
func (mgr *ProjectMgr) DeleteProject(c *gin.Context) {
	project, ok := mgr.fetchProject(c)
	if !ok {
		return
	}

	decision, err := mgr.evaluator.Evaluate(c, principal(c), authz.ActionWriteProject, authz.Target{Project: project})
	if err != nil {
		storeError(c, err)
		return
	}
	if !decision.Allowed {
		denied(c, decision)
		return
	}

	if err := mgr.store.DeleteProject(c, project.ID); err != nil {
		storeError(c, err)
		return
	}
	logutils.Log.Infof("delete project success, id: %d", project.ID)
	resputil.Success(c, "")
}

type ContributorReq struct {
	Username string `json:"username" binding:"required"`
}

// AddContributor godoc
//
//	@Summary		Add a contributor
//	@Description	Author-only; adding an existing contributor is a no-op success
//	@Tags			Project
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			id		path	int				true	"project id"
//	@Param			data	body	ContributorReq	true	"contributor username"
//	@Success		200	{object}	resputil.Response[string]	"added"
//	@Router			/projects/{id}/contributors [post]
func (mgr *ProjectMgr) AddContributor(c *gin.Context) {
	project, ok := mgr.fetchProject(c)
	if !ok {
		return
	}

	decision, err := mgr.evaluator.Evaluate(c, principal(c), authz.ActionAddContributor, authz.Target{Project: project})
	if err != nil {
		storeError(c, err)
		return
	}
	if !decision.Allowed {
		denied(c, decision)
		return
	}

	var req ContributorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	user, err := mgr.store.GetUserByUsername(c, req.Username)
	if err != nil {
		storeError(c, err)
		return
	}

	if err := mgr.store.AddContributor(c, project.ID, user.ID); err != nil {
		storeError(c, err)
		return
	}
	resputil.Success(c, "contributor added")
}

// RemoveContributor godoc
//
//	@Summary		Remove a contributor
//	@Description	Author-only; removing an absent contributor is a no-op success
//	@Tags			Project
//	@Produce		json
//	@Security		Bearer
//	@Param			id			path	int		true	"project id"
//	@Param			username	path	string	true	"contributor username"
//	@Success		200	{object}	resputil.Response[string]	"removed"
//	@Router			/projects/{id}/contributors/{username} [delete]
func (mgr *ProjectMgr) RemoveContributor(c *gin.Context) {
	project, ok := mgr.fetchProject(c)
	if !ok {
		return
	}

	decision, err := mgr.evaluator.Evaluate(c, principal(c), authz.ActionRemoveContributor, authz.Target{Project: project})
	if err != nil {
		storeError(c, err)
		return
	}
	if !decision.Allowed {
		denied(c, decision)
		return
	}

	user, err := mgr.store.GetUserByUsername(c, c.Param("username"))
	if err != nil {
		storeError(c, err)
		return
	}

	if err := mgr.store.RemoveContributor(c, project.ID, user.ID); err != nil {
		storeError(c, err)
		return
	}
	resputil.Success(c, "contributor removed")
}
