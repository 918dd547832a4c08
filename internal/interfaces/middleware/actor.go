package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/peoplekit/hradmin/pkg/constants"
)

// Actor extracts the caller's bearer token and a best-effort identity for
// audit attribution. The console never validates tokens itself; the HR
// backend rejects bad ones on every proxied call, so this middleware never
// aborts a request.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}
		token := parts[1]
		c.Set(constants.ContextKeyToken, token)

		if actor := actorFromToken(token); actor != "" {
			c.Set(constants.ContextKeyActor, actor)
		}

		c.Next()
	}
}

// actorFromToken reads identity claims without verifying the signature.
// Verification belongs to the HR backend; the claim is only used to label
// audit entries.
func actorFromToken(tokenString string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return ""
	}

	for _, key := range []string{"email", "sub", "name"} {
		if v, ok := claims[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
