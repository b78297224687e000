package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/petmarket/petmarket-backend/internal/app/service"
	apperrors "github.com/petmarket/petmarket-backend/internal/errors"
	"github.com/petmarket/petmarket-backend/internal/middleware"
	"github.com/petmarket/petmarket-backend/internal/websocket"
)

type HealthController struct {
	healthService service.HealthService
	hub           *websocket.Hub
	startedAt     time.Time
	upgrader      gorillaws.Upgrader
}

// NewHealthController builds the monitoring controller. hub may be nil,
// disabling the live feed endpoint.
func NewHealthController(healthService service.HealthService, hub *websocket.Hub) *HealthController {
	return &HealthController{
		healthService: healthService,
		hub:           hub,
		startedAt:     time.Now(),
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins already filtered by the CORS middleware.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Logs returns recorded probe outcomes, newest first
// GET /api/monitoring/logs?service=&limit=
func (ctrl *HealthController) Logs(c *gin.Context) {
	serviceName := c.Query("service")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))

	rows, err := ctrl.healthService.RecentLogs(serviceName, limit)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// Series returns the same window as Logs but oldest first, for charts
// GET /api/monitoring/series?service=&limit=
func (ctrl *HealthController) Series(c *gin.Context) {
	serviceName := c.Query("service")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))

	rows, err := ctrl.healthService.Series(serviceName, limit)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// Health reports monitor liveness and process uptime
// GET /api/monitoring/health
func (ctrl *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"uptime": time.Since(ctrl.startedAt).String(),
	})
}

// LiveFeed upgrades the connection and streams probe outcomes
// GET /api/monitoring/ws
func (ctrl *HealthController) LiveFeed(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if ctrl.hub == nil {
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.InternalServerError, "Live feed is not enabled")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket upgrade failed", err, nil)
		return
	}

	client := &websocket.Client{
		Hub:  ctrl.hub,
		Conn: &websocket.Conn{Conn: conn},
		Send: make(chan []byte, 64),
	}
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
