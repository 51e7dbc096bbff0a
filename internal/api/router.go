package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prochap/qrgen/internal/middleware"
)

// NewRouter builds the gin engine: the JSON API under /api, the
// prometheus endpoint, and the embedded frontend for everything else.
// ui may be nil (tests exercise the API only).
func NewRouter(h *Handler, mode string, ui http.FileSystem) *gin.Engine {
	gin.SetMode(mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/records", h.createRecord)
		apiGroup.GET("/records", h.listRecords)
		apiGroup.DELETE("/records", h.deleteRecords)
		apiGroup.GET("/records/:id/qr.png", h.recordQR)

		apiGroup.POST("/import/inspect", h.inspectImport)
		apiGroup.POST("/import", h.startImport)

		apiGroup.POST("/export", h.startExport)
		apiGroup.GET("/export/:id/download", h.downloadExport)

		apiGroup.GET("/jobs/current", h.currentJob)
	}

	r.GET("/healthz", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if ui != nil {
		fileServer := http.FileServer(ui)
		r.NoRoute(func(c *gin.Context) {
			fileServer.ServeHTTP(c.Writer, c.Request)
		})
	}

	return r
}
