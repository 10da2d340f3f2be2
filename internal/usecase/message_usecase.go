package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pairtalk/internal/domain/entity"
	"pairtalk/internal/domain/repository"
	"pairtalk/internal/infrastructure/ratelimit"
	"pairtalk/pkg/errors"
	"pairtalk/pkg/logger"
)

type MessageUseCase struct {
	messageRepo  repository.MessageRepository
	chatRoomRepo repository.ChatRoomRepository
	rateLimiter  *ratelimit.RateLimiter
	publisher    EventPublisher
}

func NewMessageUseCase(messageRepo repository.MessageRepository, chatRoomRepo repository.ChatRoomRepository, publisher EventPublisher) *MessageUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &MessageUseCase{
		messageRepo:  messageRepo,
		chatRoomRepo: chatRoomRepo,
		rateLimiter:  rateLimiter,
		publisher:    publisher,
	}
}

type SessionState int

const (
	StateUnselected SessionState = iota
	StateSubscribing
	StateLive
)

// ChatSession is the per-user message view. At most one chatroom is live at
// a time; switching rooms tears the previous subscription down first, and a
// generation counter drops late callbacks from a stale room.
type ChatSession struct {
	uc     *MessageUseCase
	userID string

	mu         sync.Mutex
	state      SessionState
	chatRoomID string
	generation uint64
	cancel     context.CancelFunc
	confirmed  []*entity.Message
	pending    []*entity.Message
	degraded   bool
}

func (uc *MessageUseCase) NewSession(userID string) *ChatSession {
	return &ChatSession{
		uc:     uc,
		userID: userID,
		state:  StateUnselected,
	}
}

// Select switches the live view to chatRoomID. Reselecting the current room
// is a no-op.
func (s *ChatSession) Select(ctx context.Context, chatRoomID string) {
	s.mu.Lock()

	if s.chatRoomID == chatRoomID && s.state != StateUnselected {
		s.mu.Unlock()
		return
	}

	s.teardownLocked()

	s.chatRoomID = chatRoomID
	s.state = StateSubscribing
	gen := s.generation

	watchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.uc.messageRepo.WatchByChatRoom(watchCtx, chatRoomID,
		func(messages []*entity.Message) { s.onSnapshot(gen, chatRoomID, messages) },
		func(err error) { s.onSyncError(gen, err) },
	)
}

// Deselect returns the session to Unselected and detaches the listener.
func (s *ChatSession) Deselect() {
	s.mu.Lock()
	s.teardownLocked()
	s.mu.Unlock()
}

// teardownLocked cancels the active subscription and bumps the generation
// so that any in-flight callback for the old room is discarded.
func (s *ChatSession) teardownLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.state = StateUnselected
	s.chatRoomID = ""
	s.confirmed = nil
	s.pending = nil
	s.degraded = false
}

// onSnapshot replaces the confirmed view with the store's ordering. The
// snapshot is authoritative: it is re-sorted by server time rather than
// trusted by arrival order, and pending echoes it confirms are dropped.
func (s *ChatSession) onSnapshot(gen uint64, chatRoomID string, messages []*entity.Message) {
	s.mu.Lock()

	if gen != s.generation || chatRoomID != s.chatRoomID {
		s.mu.Unlock()
		return
	}

	sorted := append([]*entity.Message(nil), messages...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	confirmedIDs := make(map[string]bool, len(sorted))
	for _, m := range sorted {
		confirmedIDs[m.ID] = true
	}

	remaining := s.pending[:0]
	for _, p := range s.pending {
		if !confirmedIDs[p.ID] {
			remaining = append(remaining, p)
		}
	}

	s.confirmed = sorted
	s.pending = remaining
	s.state = StateLive
	s.degraded = false
	s.mu.Unlock()

	s.uc.publisher.Publish(s.userID, Event{Type: EventMessages, Payload: s.GroupedByDay(time.Now())})
}

func (s *ChatSession) onSyncError(gen uint64, err error) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.degraded = true
	s.mu.Unlock()

	logger.Error("Message subscription degraded for %s: %v", s.userID, err)
	s.uc.publisher.Publish(s.userID, Event{Type: EventSyncDegraded, Payload: err.Error()})
}

func (s *ChatSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *ChatSession) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// Messages returns the ordered view: confirmed messages ascending by server
// time, then unconfirmed local echoes in submission order.
func (s *ChatSession) Messages() []*entity.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make([]*entity.Message, 0, len(s.confirmed)+len(s.pending))
	merged = append(merged, s.confirmed...)
	merged = append(merged, s.pending...)
	return merged
}

// DayGroup is one calendar day of the message view.
type DayGroup struct {
	Date     string            `json:"date"`
	Label    string            `json:"label"`
	Messages []*entity.Message `json:"messages"`
}

// GroupedByDay partitions the ordered view by calendar day. Flattening the
// groups in order yields exactly Messages().
func (s *ChatSession) GroupedByDay(now time.Time) []DayGroup {
	var groups []DayGroup
	index := make(map[string]int)

	for _, msg := range s.Messages() {
		t := msg.Time
		if t.IsZero() {
			// Pending echo whose server time is not resolved yet.
			t = now
		}
		date := t.Format("2006-01-02")

		i, ok := index[date]
		if !ok {
			i = len(groups)
			index[date] = i
			groups = append(groups, DayGroup{Date: date, Label: dayLabel(t, now)})
		}
		groups[i].Messages = append(groups[i].Messages, msg)
	}

	return groups
}

func dayLabel(t, now time.Time) string {
	day := t.Format("2006-01-02")
	switch day {
	case now.Format("2006-01-02"):
		return "Today"
	case now.AddDate(0, 0, -1).Format("2006-01-02"):
		return "Yesterday"
	default:
		return t.Format("January 2, 2006")
	}
}

// Send writes a message to the selected room with an optimistic local echo,
// then updates the room's roster summary. A send with empty trimmed content
// and no image never reaches the store.
func (s *ChatSession) Send(ctx context.Context, content, imageURL string) (*entity.Message, error) {
	if strings.TrimSpace(content) == "" && imageURL == "" {
		return nil, errors.BadRequest("Message is empty", nil)
	}

	s.mu.Lock()
	if s.state == StateUnselected {
		s.mu.Unlock()
		return nil, errors.BadRequest("No chatroom selected", nil)
	}
	chatRoomID := s.chatRoomID
	s.mu.Unlock()

	allowed, waitTime := s.uc.rateLimiter.Allow(s.userID, "send_message")
	if !allowed {
		logger.Warn("Send rate limited: user %s must wait %v", s.userID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please slow down", waitTime)
	}

	messageType := entity.MessageTypeText
	if imageURL != "" {
		messageType = entity.MessageTypeImage
	}

	message := &entity.Message{
		ID:         uuid.New().String(),
		ChatRoomID: chatRoomID,
		SenderID:   s.userID,
		Content:    content,
		Image:      imageURL,
		Read:       false,
		Type:       messageType,
	}

	// Optimistic echo with a local clock until the store assigns the
	// ordering key; replaced, not appended, when the snapshot confirms it.
	echo := *message
	echo.Time = time.Now()
	echo.Pending = true

	s.mu.Lock()
	s.pending = append(s.pending, &echo)
	s.mu.Unlock()

	s.uc.publisher.Publish(s.userID, Event{Type: EventMessages, Payload: s.GroupedByDay(time.Now())})

	if err := s.uc.messageRepo.Create(ctx, message); err != nil {
		s.dropPending(message.ID)
		return nil, err
	}

	summaryText := content
	if summaryText == "" {
		summaryText = "Image"
	}

	// At-least-sent: the message is durable even when the summary write
	// fails, so the roster staleness is a warning, not a rollback.
	summary := &entity.LastMessage{Text: summaryText, Unread: true}
	if err := s.uc.chatRoomRepo.UpdateLastMessage(ctx, chatRoomID, summary, s.userID); err != nil {
		logger.Warn("Chatroom summary update failed after send for %s: %v", chatRoomID, err)
		s.uc.publisher.Publish(s.userID, Event{Type: EventWarning, Payload: "Message sent, but the chat list may be out of date"})
	}

	return message, nil
}

func (s *ChatSession) dropPending(id string) {
	s.mu.Lock()
	remaining := s.pending[:0]
	for _, p := range s.pending {
		if p.ID != id {
			remaining = append(remaining, p)
		}
	}
	s.pending = remaining
	s.mu.Unlock()
}
