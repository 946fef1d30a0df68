package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/softdesk-lab/softdesk/dao"
	"github.com/softdesk-lab/softdesk/internal/authz"
	"github.com/softdesk-lab/softdesk/internal/resputil"
	"github.com/softdesk-lab/softdesk/internal/util"
)

// principal converts the token on the gin context into the evaluator
// principal.
func principal(c *gin.Context) authz.Principal {
	token := util.GetToken(c)
	return authz.Principal{UserID: token.UserID, IsAdmin: token.IsAdmin}
}

// storeError maps store failures onto the response taxonomy. A
// dangling relationship surfaces as not-found, never as a deny; a
// context timeout is a retryable transient failure.
func storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dao.ErrNotFound):
		resputil.NotFoundError(c, "resource not found")
	case errors.Is(err, dao.ErrConflict):
		resputil.ConflictError(c, "resource already exists")
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		resputil.HTTPError(c, http.StatusServiceUnavailable, "store unavailable, retry later", resputil.Transient)
	default:
		resputil.Error(c, err.Error(), resputil.NotSpecified)
	}
}

// denied rejects the request with the evaluator's reason.
func denied(c *gin.Context, decision authz.Decision) {
	observeDeny()
	resputil.Forbidden(c, decision.Reason)
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		resputil.BadRequestError(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
