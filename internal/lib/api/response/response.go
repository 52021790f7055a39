package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	msgNotAuthenticated = "Not authenticated"
	msgInvalidToken     = "Could not validate credentials"
	msgInternal         = "Internal server error"
)

// Detail is the error body returned by every endpoint.
type Detail struct {
	Detail string `json:"detail"`
}

type Message struct {
	Message string `json:"message"`
}

func Error(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, Detail{Detail: detail})
}

// Unauthorized aborts with 401 and the bearer challenge header.
func Unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	Error(c, http.StatusUnauthorized, detail)
}

func NotAuthenticated(c *gin.Context) {
	Unauthorized(c, msgNotAuthenticated)
}

func InvalidToken(c *gin.Context) {
	Unauthorized(c, msgInvalidToken)
}

func Internal(c *gin.Context) {
	Error(c, http.StatusInternalServerError, msgInternal)
}
