package api

import (
	"net/http"
	"time"

	"tenant_rewards/internal/middleware"
	"tenant_rewards/internal/service"
	"tenant_rewards/pkg/auth"
	"tenant_rewards/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsRoutes struct {
	notifier *service.Notifier
	a        *auth.JWTAuth
}

// NewWSRoutes exposes the admin event stream: redemption lifecycle messages
// pushed as JSON text frames.
func NewWSRoutes(handler *gin.RouterGroup, notifier *service.Notifier, a *auth.JWTAuth, authz *middleware.Authorization) {
	r := &wsRoutes{notifier: notifier, a: a}
	h := handler.Group("/admin/ws")
	h.Use(a.AuthMiddleware(), authz.AdminOnly())
	{
		h.GET("", r.StreamEvents)
	}
}

func (r *wsRoutes) StreamEvents(c *gin.Context) {
	log := logger.Logger()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("failed to upgrade connection", zap.Error(err))
		return
	}
	defer conn.Close()

	// Drain client frames so close handshakes are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case msg := <-r.notifier.Events():
			payload, err := json.Marshal(msg)
			if err != nil {
				log.Error("failed to marshal event", zap.Error(err))
				continue
			}

			if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Info("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}
