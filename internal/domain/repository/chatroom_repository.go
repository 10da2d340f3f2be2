package repository

import (
	"context"

	"pairtalk/internal/domain/entity"
)

type ChatRoomRepository interface {
	Create(ctx context.Context, chatRoom *entity.ChatRoom) error
	GetByID(ctx context.Context, id string) (*entity.ChatRoom, error)

	// GetByUsers is the one-shot existence read for the duplicate check.
	// The pair must already be in canonical order.
	GetByUsers(ctx context.Context, users []string) (*entity.ChatRoom, error)

	// UpdateLastMessage bumps the roster summary after a send.
	UpdateLastMessage(ctx context.Context, id string, summary *entity.LastMessage, senderID string) error

	// WatchByUser streams full snapshots of every chatroom whose users
	// array contains userID until ctx is canceled.
	WatchByUser(ctx context.Context, userID string, onSnapshot func([]*entity.ChatRoom), onError func(error))
}
