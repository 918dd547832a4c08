package rest

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/peoplekit/hradmin/pkg/constants"
	"github.com/peoplekit/hradmin/pkg/errors"
)

// GetToken extracts the caller's bearer token from gin.Context, empty when
// the request carried none. The token passes through to the HR backend
// verbatim.
func GetToken(c *gin.Context) string {
	if v, exists := c.Get(constants.ContextKeyToken); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetActor extracts the audit identity the middleware derived, empty for
// anonymous callers.
func GetActor(c *gin.Context) string {
	if v, exists := c.Get(constants.ContextKeyActor); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// RespondAppError sends a standardised JSON error response using pkg/errors.
// Upstream response bodies ride along in the details field so operators see
// exactly what the HR backend said.
func RespondAppError(c *gin.Context, err error) {
	code := errors.GetHTTPStatus(err)

	if code >= 500 {
		log.Printf("❌ ERROR [%d] %s %s: %s", code, c.Request.Method, c.Request.URL.Path, err.Error())
	}

	c.JSON(code, errors.ToResponse(err))
}

// BindJSON binds JSON and returns true if successful. If failed, it sends a
// bad request error.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondAppError(c, errors.NewValidationError("body", err.Error()))
		return false
	}
	return true
}
