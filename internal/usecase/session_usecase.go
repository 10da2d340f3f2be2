package usecase

import (
	"context"
	"sync"

	"pairtalk/pkg/logger"
)

// ViewState is the explicit navigation state of the interface: which pane
// is in front. It replaces imperative visibility toggling.
type ViewState string

const (
	ViewShowRoster ViewState = "show_roster"
	ViewShowChat   ViewState = "show_chat"
	ViewShowEmpty  ViewState = "show_empty"
)

// Session bundles everything owned by one authenticated user while they
// are connected: the roster subscriptions, the message view, and the
// navigation state.
type Session struct {
	UserID string
	Roster *RosterSession
	Chat   *ChatSession

	mu   sync.Mutex
	view ViewState
}

func (s *Session) View() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Session) setView(view ViewState) {
	s.mu.Lock()
	s.view = view
	s.mu.Unlock()
}

// SessionUseCase is the top-level controller: it begins and ends sessions
// and drives chatroom selection plus the view state machine.
type SessionUseCase struct {
	roster    *RosterUseCase
	messages  *MessageUseCase
	presence  *PresenceUseCase
	publisher EventPublisher

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionUseCase(roster *RosterUseCase, messages *MessageUseCase, presence *PresenceUseCase, publisher EventPublisher) *SessionUseCase {
	return &SessionUseCase{
		roster:    roster,
		messages:  messages,
		presence:  presence,
		publisher: publisher,
		sessions:  make(map[string]*Session),
	}
}

// Begin starts (or returns) the user's session: marks them online and
// attaches the roster subscriptions. ctx bounds every subscription the
// session owns.
func (uc *SessionUseCase) Begin(ctx context.Context, userID string) *Session {
	uc.mu.Lock()
	if existing, ok := uc.sessions[userID]; ok {
		uc.mu.Unlock()
		return existing
	}

	session := &Session{
		UserID: userID,
		Roster: uc.roster.StartSession(ctx, userID),
		Chat:   uc.messages.NewSession(userID),
		view:   ViewShowEmpty,
	}
	uc.sessions[userID] = session
	uc.mu.Unlock()

	uc.presence.MarkOnline(ctx, userID)
	uc.publishView(session)

	return session
}

// Get returns the active session, or nil when the user has none.
func (uc *SessionUseCase) Get(userID string) *Session {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.sessions[userID]
}

// End tears the session down: every live subscription is detached and the
// user is marked offline, best-effort.
func (uc *SessionUseCase) End(ctx context.Context, userID string) {
	uc.mu.Lock()
	session, ok := uc.sessions[userID]
	if ok {
		delete(uc.sessions, userID)
	}
	uc.mu.Unlock()

	if !ok {
		return
	}

	session.Chat.Deselect()
	session.Roster.Close()
	uc.presence.MarkOffline(ctx, userID)
	logger.Info("Session ended for %s", userID)
}

// EndAll tears down every active session; used on process shutdown so the
// offline marks at least get attempted.
func (uc *SessionUseCase) EndAll(ctx context.Context) {
	uc.mu.Lock()
	ids := make([]string, 0, len(uc.sessions))
	for id := range uc.sessions {
		ids = append(ids, id)
	}
	uc.mu.Unlock()

	for _, id := range ids {
		uc.End(ctx, id)
	}
}

// SelectChat makes chatRoomID the live message view and brings the chat
// pane to the front.
func (uc *SessionUseCase) SelectChat(ctx context.Context, session *Session, chatRoomID string) {
	session.Chat.Select(ctx, chatRoomID)
	session.setView(ViewShowChat)
	uc.publishView(session)
}

// DeselectChat returns to the empty state and detaches the message
// listener.
func (uc *SessionUseCase) DeselectChat(session *Session) {
	session.Chat.Deselect()
	session.setView(ViewShowEmpty)
	uc.publishView(session)
}

// ShowRoster brings the roster pane to the front (narrow-viewport
// navigation).
func (uc *SessionUseCase) ShowRoster(session *Session) {
	session.setView(ViewShowRoster)
	uc.publishView(session)
}

func (uc *SessionUseCase) publishView(session *Session) {
	uc.publisher.Publish(session.UserID, Event{Type: EventViewState, Payload: session.View()})
}
