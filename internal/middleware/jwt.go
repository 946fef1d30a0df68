package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/softdesk-lab/softdesk/internal/resputil"
	"github.com/softdesk-lab/softdesk/internal/util"
)

// AuthProtected validates the bearer token and places the principal
// on the request context.
func AuthProtected() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.Request.Header.Get("Authorization")
		t := strings.Split(authHeader, " ")
		if len(t) < 2 || t[0] != "Bearer" {
			resputil.HTTPError(c, http.StatusUnauthorized, "Invalid token", resputil.TokenInvalid)
			c.Abort()
			return
		}

		token, err := util.GetTokenMgr().CheckToken(t[1])
		if err != nil {
			resputil.HTTPError(c, http.StatusUnauthorized, err.Error(), resputil.TokenExpired)
			c.Abort()
			return
		}

		util.SetJWTContext(c, token)
		c.Next()
	}
}

// AuthAdmin gates the admin route group. The admin flag is carried in
// the token; demoting an admin therefore takes effect on the next
// login, which is acceptable for this system.
func AuthAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.GetToken(c)
		if !token.IsAdmin {
			resputil.HTTPError(c, http.StatusForbidden, "Not Admin", resputil.UserNotAllowed)
			c.Abort()
			return
		}
		c.Next()
	}
}
