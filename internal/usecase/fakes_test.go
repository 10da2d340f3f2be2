package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"pairtalk/internal/domain/entity"
	"pairtalk/pkg/errors"
)

type fakePublisher struct {
	mu     sync.Mutex
	events map[string][]Event
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{events: make(map[string][]Event)}
}

func (p *fakePublisher) Publish(userID string, event interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := event.(Event); ok {
		p.events[userID] = append(p.events[userID], e)
	}
}

func (p *fakePublisher) eventsFor(userID string) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events[userID]...)
}

type presenceWrite struct {
	userID string
	online bool
}

type fakeUserRepo struct {
	mu          sync.Mutex
	users       map[string]*entity.User
	presence    []presenceWrite
	presenceErr error

	onSnapshot func([]*entity.User)
	onError    func(error)
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, errors.NotFound("User", nil)
}

func (f *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) UpdatePresence(ctx context.Context, id string, online bool, lastActive time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.presenceErr != nil {
		return f.presenceErr
	}
	f.presence = append(f.presence, presenceWrite{userID: id, online: online})
	if user, ok := f.users[id]; ok {
		user.IsOnline = online
		user.LastActive = lastActive
	}
	return nil
}

func (f *fakeUserRepo) WatchAll(ctx context.Context, onSnapshot func([]*entity.User), onError func(error)) {
	f.mu.Lock()
	f.onSnapshot = onSnapshot
	f.onError = onError
	f.mu.Unlock()
}

func (f *fakeUserRepo) pushUsers(users []*entity.User) {
	f.mu.Lock()
	push := f.onSnapshot
	f.mu.Unlock()
	if push != nil {
		push(users)
	}
}

func pairKey(users []string) string {
	return strings.Join(users, "|")
}

type summaryWrite struct {
	chatRoomID string
	summary    *entity.LastMessage
	senderID   string
}

type fakeChatRoomRepo struct {
	mu        sync.Mutex
	rooms     map[string]*entity.ChatRoom
	byPair    map[string]*entity.ChatRoom
	createErr error
	updateErr error
	summaries []summaryWrite

	onSnapshot func([]*entity.ChatRoom)
	onError    func(error)
}

func newFakeChatRoomRepo() *fakeChatRoomRepo {
	return &fakeChatRoomRepo{
		rooms:  make(map[string]*entity.ChatRoom),
		byPair: make(map[string]*entity.ChatRoom),
	}
}

func (f *fakeChatRoomRepo) Create(ctx context.Context, chatRoom *entity.ChatRoom) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if chatRoom.ID == "" {
		chatRoom.ID = pairKey(chatRoom.Users)
	}
	chatRoom.Timestamp = time.Now()
	f.rooms[chatRoom.ID] = chatRoom
	f.byPair[pairKey(chatRoom.Users)] = chatRoom
	return nil
}

func (f *fakeChatRoomRepo) GetByID(ctx context.Context, id string) (*entity.ChatRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if room, ok := f.rooms[id]; ok {
		return room, nil
	}
	return nil, errors.NotFound("Chatroom", nil)
}

func (f *fakeChatRoomRepo) GetByUsers(ctx context.Context, users []string) (*entity.ChatRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if room, ok := f.byPair[pairKey(users)]; ok {
		return room, nil
	}
	return nil, errors.NotFound("Chatroom", nil)
}

func (f *fakeChatRoomRepo) UpdateLastMessage(ctx context.Context, id string, summary *entity.LastMessage, senderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.summaries = append(f.summaries, summaryWrite{chatRoomID: id, summary: summary, senderID: senderID})
	if room, ok := f.rooms[id]; ok {
		room.LastMessage = summary
		room.LastMessageTime = time.Now()
		room.LastMessageSenderID = senderID
	}
	return nil
}

func (f *fakeChatRoomRepo) WatchByUser(ctx context.Context, userID string, onSnapshot func([]*entity.ChatRoom), onError func(error)) {
	f.mu.Lock()
	f.onSnapshot = onSnapshot
	f.onError = onError
	f.mu.Unlock()
}

func (f *fakeChatRoomRepo) pushChatRooms(rooms []*entity.ChatRoom) {
	f.mu.Lock()
	push := f.onSnapshot
	f.mu.Unlock()
	if push != nil {
		push(rooms)
	}
}

func (f *fakeChatRoomRepo) pushError(err error) {
	f.mu.Lock()
	push := f.onError
	f.mu.Unlock()
	if push != nil {
		push(err)
	}
}

// messageWatch remembers one WatchByChatRoom registration so tests can
// deliver snapshots late, as a slow listener would.
type messageWatch struct {
	chatRoomID string
	onSnapshot func([]*entity.Message)
	onError    func(error)
}

type fakeMessageRepo struct {
	mu        sync.Mutex
	created   []*entity.Message
	createErr error
	watches   []*messageWatch
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (f *fakeMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, message)
	return nil
}

func (f *fakeMessageRepo) WatchByChatRoom(ctx context.Context, chatRoomID string, onSnapshot func([]*entity.Message), onError func(error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watches = append(f.watches, &messageWatch{
		chatRoomID: chatRoomID,
		onSnapshot: onSnapshot,
		onError:    onError,
	})
}

func (f *fakeMessageRepo) lastWatch() *messageWatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.watches) == 0 {
		return nil
	}
	return f.watches[len(f.watches)-1]
}

func (f *fakeMessageRepo) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}
