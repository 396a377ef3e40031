package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"projecttracker/internal/middleware"
	"projecttracker/internal/modules/live"
	"projecttracker/internal/modules/tracker"
	jwtsvc "projecttracker/internal/pkg/jwt"
)

type Deps struct {
	Controller  *tracker.Controller
	Live        *live.Hub
	JWT         *jwtsvc.Service
	AdminHash   []byte
	CORSOrigins []string
	Log         *logrus.Logger
}

// NewRouter assembles the HTTP surface: /health, the tracker API under /api/v1
// and the live websocket at /api/v1/ws.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(d.Log), middleware.CORS(d.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "tracker": d.Controller.Status()})
	})

	trackerHandler := tracker.NewHandler(d.Controller, d.JWT, d.AdminHash, d.Log)

	v1 := r.Group("/api/v1")
	{
		trackerHandler.RegisterRoutes(v1, middleware.AdminGate(d.JWT)...)
		if d.Live != nil {
			v1.GET("/ws", d.Live.ServeWS)
		}
	}
	return r
}
