package util

import (
	"github.com/gin-gonic/gin"
)

const (
	UserIDKey   = "x-user-id"
	UsernameKey = "x-user-name"
	IsAdminKey  = "x-user-admin"
)

func SetJWTContext(c *gin.Context, msg JWTMessage) {
	c.Set(UserIDKey, msg.UserID)
	c.Set(UsernameKey, msg.Username)
	c.Set(IsAdminKey, msg.IsAdmin)
}

// GetToken returns the principal placed on the context by the auth
// middleware.
func GetToken(ctx *gin.Context) JWTMessage {
	var msg JWTMessage
	msg.UserID = ctx.GetUint(UserIDKey)
	msg.Username = ctx.GetString(UsernameKey)
	msg.IsAdmin = ctx.GetBool(IsAdminKey)
	return msg
}
