package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/softdesk-lab/softdesk/dao"
	"github.com/softdesk-lab/softdesk/dao/model"
	"github.com/softdesk-lab/softdesk/internal/resputil"
	"github.com/softdesk-lab/softdesk/internal/util"
	"github.com/softdesk-lab/softdesk/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewAuthMgr)
}

type AuthMgr struct {
	name     string
	store    Store
	tokenMgr *util.TokenManager
}

func NewAuthMgr(conf *RegisterConfig) Manager {
	return &AuthMgr{
		name:     "auth",
		store:    conf.Store,
		tokenMgr: util.GetTokenMgr(),
	}
}

func (mgr *AuthMgr) GetName() string { return mgr.name }

func (mgr *AuthMgr) RegisterPublic(g *gin.RouterGroup) {
	g.POST("/sign-up", mgr.SignUp)
	g.POST("/login", mgr.Login)
	g.POST("/token/refresh", mgr.RefreshToken)
}

func (mgr *AuthMgr) RegisterProtected(_ *gin.RouterGroup) {}

func (mgr *AuthMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	SignUpReq struct {
		Username string  `json:"username" binding:"required,max=32"`
		Password string  `json:"password" binding:"required,min=8"`
		Email    *string `json:"email" binding:"omitempty,email"`
		Age      int     `json:"age" binding:"required"`
		// Pointers so an explicit false passes required validation.
		CanBeContacted  *bool `json:"canBeContacted" binding:"required"`
		CanDataBeShared *bool `json:"canDataBeShared" binding:"required"`
	}

	LoginReq struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	LoginResp struct {
		AccessToken  string   `json:"accessToken"`
		RefreshToken string   `json:"refreshToken"`
		Context      UserResp `json:"context"`
	}
)

// SignUp godoc
//
//	@Summary		Register a new account
//	@Description	Create a user; username must be unique, age within 15..100, consent flags mandatory
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			data	body		SignUpReq	true	"account fields"
//	@Success		200		{object}	resputil.Response[UserResp]	"created account"
//	@Failure		409		{object}	resputil.Response[any]	"username already taken"
//	@Router			/sign-up [post]
func (mgr *AuthMgr) SignUp(c *gin.Context) {
	var req SignUpReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if req.Age < model.AgeMin || req.Age > model.AgeMax {
		resputil.ValidationError(c, fmt.Sprintf("age must be between %d and %d", model.AgeMin, model.AgeMax))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		resputil.Error(c, "hash password failed", resputil.NotSpecified)
		return
	}

	user := model.User{
		Username:        req.Username,
		Password:        string(hash),
		Email:           req.Email,
		Age:             req.Age,
		CanBeContacted:  *req.CanBeContacted,
		CanDataBeShared: *req.CanDataBeShared,
	}
	if err := mgr.store.CreateUser(c, &user); err != nil {
		if errors.Is(err, dao.ErrConflict) {
			resputil.ConflictError(c, "username already taken")
			return
		}
		storeError(c, err)
		return
	}

	logutils.Log.WithFields(logutils.Fields{"username": user.Username}).Info("user signed up")
	resputil.Success(c, toUserResp(&user))
}

// Login godoc
//
//	@Summary		Log in
//	@Description	Verify credentials and return an access/refresh token pair
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			data	body		LoginReq	true	"credentials"
//	@Success		200		{object}	resputil.Response[LoginResp]	"token pair"
//	@Failure		401		{object}	resputil.Response[any]	"invalid credentials"
//	@Router			/login [post]
func (mgr *AuthMgr) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	user, err := mgr.store.GetUserByUsername(c, req.Username)
	if err != nil {
		// Same answer for unknown user and bad password.
		resputil.HTTPError(c, http.StatusUnauthorized, "Invalid credentials", resputil.InvalidCredentials)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		logutils.Log.WithFields(logutils.Fields{"username": req.Username}).Warn("failed login")
		resputil.HTTPError(c, http.StatusUnauthorized, "Invalid credentials", resputil.InvalidCredentials)
		return
	}

	msg := util.JWTMessage{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}
	accessToken, refreshToken, err := mgr.tokenMgr.CreateTokens(&msg)
	if err != nil {
		resputil.HTTPError(c, http.StatusInternalServerError, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, LoginResp{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Context:      toUserResp(user),
	})
}

type (
	RefreshReq struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}

	RefreshResp struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
)

// RefreshToken godoc
//
//	@Summary		Refresh the token pair
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			data	body		RefreshReq	true	"refresh token"
//	@Success		200		{object}	resputil.Response[RefreshResp]	"new token pair"
//	@Failure		401		{object}	resputil.Response[any]	"expired or invalid token"
//	@Router			/token/refresh [post]
func (mgr *AuthMgr) RefreshToken(c *gin.Context) {
	var req RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	claims, err := mgr.tokenMgr.CheckToken(req.RefreshToken)
	if err != nil {
		resputil.HTTPError(c, http.StatusUnauthorized, "Invalid token", resputil.TokenExpired)
		return
	}

	accessToken, refreshToken, err := mgr.tokenMgr.CreateTokens(&claims)
	if err != nil {
		resputil.HTTPError(c, http.StatusInternalServerError, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, RefreshResp{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}
