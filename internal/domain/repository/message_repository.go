package repository

import (
	"context"

	"pairtalk/internal/domain/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error

	// WatchByChatRoom streams full snapshots of a chatroom's messages,
	// ordered ascending by server-assigned time, until ctx is canceled.
	WatchByChatRoom(ctx context.Context, chatRoomID string, onSnapshot func([]*entity.Message), onError func(error))
}
