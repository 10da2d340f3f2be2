package repository

import (
	"context"
	"time"

	"pairtalk/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	UpdatePresence(ctx context.Context, id string, online bool, lastActive time.Time) error

	// WatchAll streams full snapshots of the users collection until ctx is
	// canceled. Errors are delivered to onError and end the stream.
	WatchAll(ctx context.Context, onSnapshot func([]*entity.User), onError func(error))
}
