package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/mehedi90s/socialite/backend/internal/realtime"
)

// WSHandler upgrades authenticated requests onto the realtime hub.
type WSHandler struct {
	hub        *realtime.Hub
	sendBuffer int
	upgrader   websocket.Upgrader
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub *realtime.Hub, sendBuffer int) *WSHandler {
	return &WSHandler{
		hub:        hub,
		sendBuffer: sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect cross-origin in development; auth is
			// enforced by the JWT middleware, not the Origin header.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// RegisterWSRoutes registers the websocket endpoint
func (h *WSHandler) RegisterWSRoutes(g *echo.Group) {
	g.GET("/ws", h.Connect)
}

// Connect upgrades the request and serves the connection until it drops.
func (h *WSHandler) Connect(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := realtime.NewClient(h.hub, conn, currentUserID, h.sendBuffer)
	client.Serve()
	return nil
}
