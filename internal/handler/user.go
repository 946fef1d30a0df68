package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"

	"github.com/softdesk-lab/softdesk/dao/model"
	"github.com/softdesk-lab/softdesk/internal/resputil"
	"github.com/softdesk-lab/softdesk/internal/util"
	"github.com/softdesk-lab/softdesk/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewUserMgr)
}

type UserMgr struct {
	name  string
	store Store
}

func NewUserMgr(conf *RegisterConfig) Manager {
	return &UserMgr{
		name:  "users",
		store: conf.Store,
	}
}

func (mgr *UserMgr) GetName() string { return mgr.name }

func (mgr *UserMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *UserMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/users/:id", mgr.GetUser)
	g.PATCH("/users/:id", mgr.UpdateUser)
	g.DELETE("/users/:id", mgr.DeleteUser)
}

func (mgr *UserMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.GET("/users", mgr.ListUsers)
}

type UserResp struct {
	ID              uint      `json:"id"`
	Username        string    `json:"username"`
	Email           *string   `json:"email,omitempty"`
	Age             int       `json:"age"`
	CanBeContacted  bool      `json:"canBeContacted"`
	CanDataBeShared bool      `json:"canDataBeShared"`
	IsAdmin         bool      `json:"isAdmin"`
	CreatedAt       time.Time `json:"createdAt"`
}

func toUserResp(user *model.User) UserResp {
	return UserResp{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		Age:             user.Age,
		CanBeContacted:  user.CanBeContacted,
		CanDataBeShared: user.CanDataBeShared,
		IsAdmin:         user.IsAdmin,
		CreatedAt:       user.CreatedAt,
	}
}

// selfOrAdmin enforces the profile ownership rule: a user manages
// their own account, admins manage anyone.
func selfOrAdmin(c *gin.Context, id uint) bool {
	token := util.GetToken(c)
	if token.UserID == id || token.IsAdmin {
		return true
	}
	observeDeny()
	resputil.Forbidden(c, "may only manage own profile")
	return false
}

// ListUsers godoc
//
//	@Summary		List all users
//	@Tags			User
//	@Produce		json
//	@Security		Bearer
//	@Success		200	{object}	resputil.Response[[]UserResp]	"all users"
//	@Router			/admin/users [get]
func (mgr *UserMgr) ListUsers(c *gin.Context) {
	users, err := mgr.store.ListUsers(c)
	if err != nil {
		storeError(c, err)
		return
	}
	resputil.Success(c, lo.Map(users, func(u model.User, _ int) UserResp {
		return toUserResp(&u)
	}))
}

// GetUser godoc
//
//	@Summary		Get one user profile
//	@Tags			User
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path	int	true	"user id"
//	@Success		200	{object}	resputil.Response[UserResp]	"profile"
//	@Failure		403	{object}	resputil.Response[any]	"not self nor admin"
//	@Router			/users/{id} [get]
func (mgr *UserMgr) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if !selfOrAdmin(c, id) {
		return
	}
	user, err := mgr.store.GetUser(c, id)
	if err != nil {
		storeError(c, err)
		return
	}
	resputil.Success(c, toUserResp(user))
}

type UserPatchReq struct {
	Password        *string `json:"password" binding:"omitempty,min=8"`
	Email           *string `json:"email" binding:"omitempty,email"`
	Age             *int    `json:"age"`
	CanBeContacted  *bool   `json:"canBeContacted"`
	CanDataBeShared *bool   `json:"canDataBeShared"`
}

// UpdateUser godoc
//
//	@Summary		Patch a user profile
//	@Description	Partial update of the mutable profile fields; id and username are immutable
//	@Tags			User
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			id		path	int				true	"user id"
//	@Param			data	body	UserPatchReq	true	"fields to change"
//	@Success		200	{object}	resputil.Response[UserResp]	"updated profile"
//	@Router			/users/{id} [patch]
func (mgr *UserMgr) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if !selfOrAdmin(c, id) {
		return
	}

	var req UserPatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	patch := map[string]any{}
	if req.Age != nil {
		if *req.Age < model.AgeMin || *req.Age > model.AgeMax {
			resputil.ValidationError(c, fmt.Sprintf("age must be between %d and %d", model.AgeMin, model.AgeMax))
			return
		}
		patch["age"] = *req.Age
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			resputil.Error(c, "hash password failed", resputil.NotSpecified)
			return
		}
		patch["password"] = string(hash)
	}
	if req.Email != nil {
		patch["email"] = *req.Email
	}
	if req.CanBeContacted != nil {
		patch["can_be_contacted"] = *req.CanBeContacted
	}
	if req.CanDataBeShared != nil {
		patch["can_data_be_shared"] = *req.CanDataBeShared
	}
	if len(patch) == 0 {
		resputil.BadRequestError(c, "empty patch")
		return
	}

	user, err := mgr.store.UpdateUser(c, id, patch)
	if err != nil {
		storeError(c, err)
		return
	}
	resputil.Success(c, toUserResp(user))
}

// DeleteUser godoc
//
//	@Summary		Delete a user account
//	@Tags			User
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path	int	true	"user id"
//	@Success		200	{object}	resputil.Response[string]	"deleted"
//	@Router			/users/{id} [delete]
func (mgr *UserMgr) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if !selfOrAdmin(c, id) {
		return
	}
	if err := mgr.store.DeleteUser(c, id); err != nil {
		storeError(c, err)
		return
	}
	logutils.Log.Infof("delete user success, id: %d", id)
	resputil.Success(c, "")
}
