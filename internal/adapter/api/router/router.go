package router

import (
	"github.com/labstack/echo/v4"

	"pairtalk/internal/adapter/api/handler"
	"pairtalk/internal/adapter/api/middleware"
)

func Setup(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *handler.AuthHandler,
	rosterHandler *handler.RosterHandler,
	chatHandler *handler.ChatHandler,
	attachmentHandler *handler.AttachmentHandler,
	wsHandler *handler.WebSocketHandler,
) {
	e.GET("/health", handler.HealthCheck)

	e.POST("/v1/auth/register", authHandler.Register)
	e.GET("/v1/users/me", authHandler.Me, authMiddleware.Authenticate)
	e.PUT("/v1/users/me", authHandler.UpdateMe, authMiddleware.Authenticate)

	rosterGroup := e.Group("/v1/roster")
	rosterGroup.Use(authMiddleware.Authenticate)
	rosterGroup.GET("/users", rosterHandler.Users)
	rosterGroup.GET("/chatrooms", rosterHandler.ChatRooms)

	chatGroup := e.Group("/v1/chatrooms")
	chatGroup.Use(authMiddleware.Authenticate)
	chatGroup.POST("", chatHandler.CreateChat)
	chatGroup.POST("/:id/select", chatHandler.SelectChat)
	chatGroup.POST("/deselect", chatHandler.DeselectChat)
	chatGroup.POST("/show-roster", chatHandler.ShowRoster)
	chatGroup.POST("/messages", chatHandler.SendMessage)
	chatGroup.GET("/messages", chatHandler.GetMessages)

	attachmentGroup := e.Group("/v1/attachments")
	attachmentGroup.Use(authMiddleware.Authenticate)
	attachmentGroup.POST("/preview", attachmentHandler.Preview)
	attachmentGroup.POST("", attachmentHandler.Upload)

	e.GET("/v1/ws", wsHandler.HandleWebSocket, authMiddleware.Authenticate)
}
