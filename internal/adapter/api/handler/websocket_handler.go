package handler

import (
	"context"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	ws "pairtalk/internal/infrastructure/websocket"
	"pairtalk/internal/usecase"
	"pairtalk/pkg/errors"
)

type WebSocketHandler struct {
	appCtx    context.Context
	wsManager *ws.Manager
	sessions  *usecase.SessionUseCase
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Restrict in production.
	},
}

func NewWebSocketHandler(appCtx context.Context, wsManager *ws.Manager, sessions *usecase.SessionUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		appCtx:    appCtx,
		wsManager: wsManager,
		sessions:  sessions,
	}
}

// HandleWebSocket attaches the interface socket. Connecting begins the
// user's session (presence online, roster subscriptions); disconnecting
// tears it down through the manager's hook.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID, ok := c.Get("uid").(string)
	if !ok || userID == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	h.wsManager.Register <- client
	h.sessions.Begin(h.appCtx, userID)

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	return nil
}
