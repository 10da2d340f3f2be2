package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"pairtalk/internal/usecase"
	"pairtalk/pkg/response"
)

type ChatHandler struct {
	appCtx          context.Context
	chatRoomUseCase *usecase.ChatRoomUseCase
	sessions        *usecase.SessionUseCase
}

func NewChatHandler(appCtx context.Context, chatRoomUseCase *usecase.ChatRoomUseCase, sessions *usecase.SessionUseCase) *ChatHandler {
	return &ChatHandler{
		appCtx:          appCtx,
		chatRoomUseCase: chatRoomUseCase,
		sessions:        sessions,
	}
}

func (h *ChatHandler) session(c echo.Context) *usecase.Session {
	uid := c.Get("uid").(string)
	if s := h.sessions.Get(uid); s != nil {
		return s
	}
	return h.sessions.Begin(h.appCtx, uid)
}

type createChatRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
}

func (h *ChatHandler) CreateChat(c echo.Context) error {
	var req createChatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)

	chatRoom, err := h.chatRoomUseCase.CreateChat(c.Request().Context(), uid, req.RecipientID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, chatRoom)
}

// SelectChat makes the room the session's live message view. Membership is
// checked before the subscription is established.
func (h *ChatHandler) SelectChat(c echo.Context) error {
	uid := c.Get("uid").(string)
	chatRoomID := c.Param("id")

	if _, err := h.chatRoomUseCase.GetChatRoom(c.Request().Context(), uid, chatRoomID); err != nil {
		return response.Error(c, err)
	}

	session := h.session(c)
	// The subscription outlives this request; bound it to the app context.
	h.sessions.SelectChat(h.appCtx, session, chatRoomID)

	return response.Success(c, map[string]interface{}{
		"chat_room_id": chatRoomID,
		"view":         session.View(),
	})
}

// ShowRoster brings the roster pane to the front without detaching the
// live message subscription.
func (h *ChatHandler) ShowRoster(c echo.Context) error {
	session := h.session(c)
	h.sessions.ShowRoster(session)

	return response.Success(c, map[string]interface{}{
		"view": session.View(),
	})
}

func (h *ChatHandler) DeselectChat(c echo.Context) error {
	session := h.session(c)
	h.sessions.DeselectChat(session)

	return response.Success(c, map[string]interface{}{
		"view": session.View(),
	})
}

type sendMessageRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url,omitempty" validate:"omitempty,url"`
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	session := h.session(c)

	message, err := session.Chat.Send(c.Request().Context(), req.Content, req.ImageURL)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

type messagesResponse struct {
	Messages interface{} `json:"messages"`
	Grouped  interface{} `json:"grouped"`
	Degraded bool        `json:"degraded"`
}

func (h *ChatHandler) GetMessages(c echo.Context) error {
	session := h.session(c)

	return response.Success(c, messagesResponse{
		Messages: session.Chat.Messages(),
		Grouped:  session.Chat.GroupedByDay(time.Now()),
		Degraded: session.Chat.Degraded(),
	})
}
