package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"pairtalk/internal/usecase"
	"pairtalk/pkg/response"
)

type RosterHandler struct {
	appCtx   context.Context
	sessions *usecase.SessionUseCase
	presence *usecase.PresenceUseCase
}

// NewRosterHandler serves the roster projections. appCtx bounds any session
// begun lazily for a request that arrives before the socket attaches.
func NewRosterHandler(appCtx context.Context, sessions *usecase.SessionUseCase, presence *usecase.PresenceUseCase) *RosterHandler {
	return &RosterHandler{
		appCtx:   appCtx,
		sessions: sessions,
		presence: presence,
	}
}

func (h *RosterHandler) session(c echo.Context) *usecase.Session {
	uid := c.Get("uid").(string)
	if s := h.sessions.Get(uid); s != nil {
		return s
	}
	return h.sessions.Begin(h.appCtx, uid)
}

type rosterUsersResponse struct {
	Users       []interface{}   `json:"users"`
	DisabledIDs map[string]bool `json:"disabled_ids"`
	Degraded    bool            `json:"degraded"`
}

// Users returns the filtered user roster plus the set of users I already
// share a room with.
func (h *RosterHandler) Users(c echo.Context) error {
	session := h.session(c)
	query := c.QueryParam("search")

	// Presence is rendered through the staleness window, never raw.
	now := time.Now()
	users := session.Roster.FilteredUsers(query)
	items := make([]interface{}, 0, len(users))
	for _, u := range users {
		view := *u
		view.IsOnline = h.presence.DisplayOnline(u, now)
		items = append(items, &view)
	}

	return response.Success(c, rosterUsersResponse{
		Users:       items,
		DisabledIDs: session.Roster.DisabledUserIDs(),
		Degraded:    session.Roster.Degraded(),
	})
}

type rosterChatRoomsResponse struct {
	ChatRooms interface{} `json:"chat_rooms"`
	Degraded  bool        `json:"degraded"`
}

// ChatRooms returns my rooms, searched then sorted. The search filter and
// sort order are both recomputed from the latest snapshot on every call.
func (h *RosterHandler) ChatRooms(c echo.Context) error {
	session := h.session(c)
	query := c.QueryParam("search")
	order := c.QueryParam("sort")

	rooms := session.Roster.SortChatRooms(session.Roster.FilteredChatRooms(query), order)

	return response.Success(c, rosterChatRoomsResponse{
		ChatRooms: rooms,
		Degraded:  session.Roster.Degraded(),
	})
}
