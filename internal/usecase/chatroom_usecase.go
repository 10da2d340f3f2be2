package usecase

import (
	"context"

	"pairtalk/internal/domain/entity"
	"pairtalk/internal/domain/repository"
	"pairtalk/internal/infrastructure/ratelimit"
	"pairtalk/pkg/errors"
	"pairtalk/pkg/logger"
)

type ChatRoomUseCase struct {
	chatRoomRepo repository.ChatRoomRepository
	userRepo     repository.UserRepository
	rateLimiter  *ratelimit.RateLimiter
	publisher    EventPublisher
}

func NewChatRoomUseCase(chatRoomRepo repository.ChatRoomRepository, userRepo repository.UserRepository, publisher EventPublisher) *ChatRoomUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &ChatRoomUseCase{
		chatRoomRepo: chatRoomRepo,
		userRepo:     userRepo,
		rateLimiter:  rateLimiter,
		publisher:    publisher,
	}
}

// CreateChat creates the single room for the unordered pair {me, other}.
// The pair is canonicalized before both the existence check and the write,
// so two users racing with swapped argument order still converge on one
// room.
func (uc *ChatRoomUseCase) CreateChat(ctx context.Context, myID, otherID string) (*entity.ChatRoom, error) {
	allowed, waitTime := uc.rateLimiter.Allow(myID, "create_chat")
	if !allowed {
		logger.Warn("CreateChat rate limited: user %s must wait %v", myID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before creating another chat", waitTime)
	}

	if myID == otherID {
		return nil, errors.BadRequest("You cannot create a chat with yourself", nil)
	}

	me, err := uc.userRepo.GetByID(ctx, myID)
	if err != nil {
		return nil, errors.NotFound("User", err)
	}
	other, err := uc.userRepo.GetByID(ctx, otherID)
	if err != nil {
		return nil, errors.NotFound("Recipient", err)
	}

	pair := entity.CanonicalPair(myID, otherID)

	existing, err := uc.chatRoomRepo.GetByUsers(ctx, pair)
	if err != nil && !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}
	if existing != nil {
		return nil, errors.DuplicateChatroom(nil)
	}

	chatRoom := &entity.ChatRoom{
		Users: pair,
		UsersData: map[string]*entity.User{
			me.ID:    me,
			other.ID: other,
		},
		LastMessage: nil,
	}

	if err := uc.chatRoomRepo.Create(ctx, chatRoom); err != nil {
		logger.Error("CreateChat: failed to create chatroom for %v: %v", pair, err)
		return nil, err
	}

	uc.publisher.Publish(other.ID, Event{Type: EventChatRoomCreated, Payload: chatRoom})

	return chatRoom, nil
}

// GetChatRoom loads a room and verifies membership.
func (uc *ChatRoomUseCase) GetChatRoom(ctx context.Context, userID, chatRoomID string) (*entity.ChatRoom, error) {
	chatRoom, err := uc.chatRoomRepo.GetByID(ctx, chatRoomID)
	if err != nil {
		return nil, err
	}

	if !containsString(chatRoom.Users, userID) {
		return nil, errors.Unauthorized("You are not a participant of this chatroom", nil)
	}

	return chatRoom, nil
}
