package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Handle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"message": "LifeCursor API is running",
	})
}
