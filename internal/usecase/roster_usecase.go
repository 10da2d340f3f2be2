package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"pairtalk/internal/domain/entity"
	"pairtalk/internal/domain/repository"
	"pairtalk/pkg/logger"
)

const (
	SortRecent       = "recent"
	SortUnread       = "unread"
	SortAlphabetical = "alphabetical"
)

type RosterUseCase struct {
	userRepo     repository.UserRepository
	chatRoomRepo repository.ChatRoomRepository
	publisher    EventPublisher
}

func NewRosterUseCase(userRepo repository.UserRepository, chatRoomRepo repository.ChatRoomRepository, publisher EventPublisher) *RosterUseCase {
	return &RosterUseCase{
		userRepo:     userRepo,
		chatRoomRepo: chatRoomRepo,
		publisher:    publisher,
	}
}

// RosterSession holds the two roster subscriptions for one authenticated
// user. Projections are pure recomputations over the latest snapshots; no
// derived state is incrementally patched.
type RosterSession struct {
	uc     *RosterUseCase
	userID string
	cancel context.CancelFunc

	mu        sync.RWMutex
	users     []*entity.User
	chatRooms []*entity.ChatRoom
	degraded  bool
}

// StartSession subscribes to the all-users and my-chatrooms streams for the
// lifetime of ctx.
func (uc *RosterUseCase) StartSession(ctx context.Context, userID string) *RosterSession {
	ctx, cancel := context.WithCancel(ctx)

	s := &RosterSession{
		uc:     uc,
		userID: userID,
		cancel: cancel,
	}

	uc.userRepo.WatchAll(ctx, s.onUsersSnapshot, s.onSyncError)
	uc.chatRoomRepo.WatchByUser(ctx, userID, s.onChatRoomsSnapshot, s.onSyncError)

	return s
}

func (s *RosterSession) Close() {
	s.cancel()
}

func (s *RosterSession) onUsersSnapshot(users []*entity.User) {
	filtered := make([]*entity.User, 0, len(users))
	for _, u := range users {
		if u.ID != s.userID {
			filtered = append(filtered, u)
		}
	}

	s.mu.Lock()
	s.users = filtered
	s.degraded = false
	s.mu.Unlock()

	s.uc.publisher.Publish(s.userID, Event{Type: EventRosterUsers, Payload: s.FilteredUsers("")})
}

func (s *RosterSession) onChatRoomsSnapshot(chatRooms []*entity.ChatRoom) {
	// The store query already scopes to my rooms; keep the guard anyway so
	// a misdelivered document can never leak into the roster, and drop
	// duplicate ids.
	seen := make(map[string]bool, len(chatRooms))
	mine := make([]*entity.ChatRoom, 0, len(chatRooms))
	for _, room := range chatRooms {
		if seen[room.ID] || !containsString(room.Users, s.userID) {
			continue
		}
		seen[room.ID] = true
		mine = append(mine, room)
	}

	s.mu.Lock()
	s.chatRooms = mine
	s.degraded = false
	s.mu.Unlock()

	s.uc.publisher.Publish(s.userID, Event{Type: EventRosterChatRooms, Payload: s.SortedChatRooms(SortRecent)})
}

// onSyncError keeps the last-known-good snapshot and flags the view as
// degraded; stale-but-available beats empty.
func (s *RosterSession) onSyncError(err error) {
	logger.Error("Roster subscription degraded for %s: %v", s.userID, err)

	s.mu.Lock()
	s.degraded = true
	s.mu.Unlock()

	s.uc.publisher.Publish(s.userID, Event{Type: EventSyncDegraded, Payload: err.Error()})
}

func (s *RosterSession) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

// Users returns the latest snapshot, self excluded.
func (s *RosterSession) Users() []*entity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*entity.User(nil), s.users...)
}

// FilteredUsers matches the query case-insensitively against name, email
// and bio.
func (s *RosterSession) FilteredUsers(query string) []*entity.User {
	users := s.Users()
	if strings.TrimSpace(query) == "" {
		return users
	}

	q := strings.ToLower(query)
	matched := make([]*entity.User, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), q) ||
			strings.Contains(strings.ToLower(u.Email), q) ||
			strings.Contains(strings.ToLower(u.Bio), q) {
			matched = append(matched, u)
		}
	}
	return matched
}

// FilteredChatRooms matches against the counterpart's name or email, or the
// last-message text.
func (s *RosterSession) FilteredChatRooms(query string) []*entity.ChatRoom {
	s.mu.RLock()
	rooms := append([]*entity.ChatRoom(nil), s.chatRooms...)
	s.mu.RUnlock()

	if strings.TrimSpace(query) == "" {
		return rooms
	}

	q := strings.ToLower(query)
	matched := make([]*entity.ChatRoom, 0, len(rooms))
	for _, room := range rooms {
		other := room.Counterpart(s.userID)
		if other != nil &&
			(strings.Contains(strings.ToLower(other.Name), q) ||
				strings.Contains(strings.ToLower(other.Email), q)) {
			matched = append(matched, room)
			continue
		}
		if room.LastMessage != nil && strings.Contains(strings.ToLower(room.LastMessage.Text), q) {
			matched = append(matched, room)
		}
	}
	return matched
}

// SortedChatRooms returns the latest rooms in the requested order. Unknown
// orders fall back to recency.
func (s *RosterSession) SortedChatRooms(order string) []*entity.ChatRoom {
	s.mu.RLock()
	rooms := append([]*entity.ChatRoom(nil), s.chatRooms...)
	s.mu.RUnlock()

	return s.SortChatRooms(rooms, order)
}

// SortChatRooms orders an already-projected room list, so search and sort
// compose.
func (s *RosterSession) SortChatRooms(rooms []*entity.ChatRoom, order string) []*entity.ChatRoom {
	switch order {
	case SortUnread:
		sort.SliceStable(rooms, func(i, j int) bool {
			iu := rooms[i].LastMessage != nil && rooms[i].LastMessage.Unread
			ju := rooms[j].LastMessage != nil && rooms[j].LastMessage.Unread
			return iu && !ju
		})

	case SortAlphabetical:
		cl := collate.New(language.Und, collate.IgnoreCase)
		sort.SliceStable(rooms, func(i, j int) bool {
			return cl.CompareString(s.counterpartName(rooms[i]), s.counterpartName(rooms[j])) < 0
		})

	default:
		// Descending by activity; the zero time sorts last.
		sort.SliceStable(rooms, func(i, j int) bool {
			return rooms[i].ActivityTime().After(rooms[j].ActivityTime())
		})
	}

	return rooms
}

func (s *RosterSession) counterpartName(room *entity.ChatRoom) string {
	if other := room.Counterpart(s.userID); other != nil {
		return other.Name
	}
	return ""
}

// DisabledUserIDs is the set of users already sharing a room with me; the
// interface suppresses "start chat" for them.
func (s *RosterSession) DisabledUserIDs() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	disabled := make(map[string]bool)
	for _, room := range s.chatRooms {
		for _, id := range room.Users {
			disabled[id] = true
		}
	}
	return disabled
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
