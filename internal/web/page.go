package web

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed index.html
var indexPage []byte

// Register wires the page and the API routes onto the router.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
	})

	r.POST("/api/analyze", h.Analyze)
	r.POST("/api/leftovers", h.Leftovers)
	r.GET("/api/health", h.Health)
	r.GET("/api/theme", h.GetTheme)
	r.PUT("/api/theme", h.SetTheme)
	r.GET("/api/history", h.GetHistory)
}
