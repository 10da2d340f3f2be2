package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pairtalk/internal/domain/entity"
	"pairtalk/internal/domain/repository"
	"pairtalk/pkg/errors"
	"pairtalk/pkg/logger"
)

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.User) error {
	user.CreatedAt = time.Now()

	_, err := r.client.Collection("users").Doc(user.ID).Set(ctx, user)
	if err != nil {
		return errors.WriteFailure("Failed to create user", err)
	}

	return nil
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.client.Collection("users").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get user", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	user.ID = doc.Ref.ID

	return &user, nil
}

func (r *firestoreUserRepository) Update(ctx context.Context, user *entity.User) error {
	_, err := r.client.Collection("users").Doc(user.ID).Set(ctx, user)
	if err != nil {
		return errors.WriteFailure("Failed to update user", err)
	}

	return nil
}

func (r *firestoreUserRepository) UpdatePresence(ctx context.Context, id string, online bool, lastActive time.Time) error {
	_, err := r.client.Collection("users").Doc(id).Update(ctx, []firestore.Update{
		{Path: "isOnline", Value: online},
		{Path: "lastActive", Value: lastActive},
	})
	if err != nil {
		return errors.WriteFailure("Failed to update presence", err)
	}

	return nil
}

func (r *firestoreUserRepository) WatchAll(ctx context.Context, onSnapshot func([]*entity.User), onError func(error)) {
	iter := r.client.Collection("users").Snapshots(ctx)

	go func() {
		defer iter.Stop()

		for {
			snap, err := iter.Next()
			if err != nil {
				if ctx.Err() != nil || status.Code(err) == codes.Canceled {
					return
				}
				onError(errors.SyncError("Users subscription failed", err))
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				onError(errors.SyncError("Failed to read users snapshot", err))
				return
			}

			users := make([]*entity.User, 0, len(docs))
			for _, doc := range docs {
				var user entity.User
				if err := doc.DataTo(&user); err != nil {
					logger.Warn("Skipping malformed user document %s: %v", doc.Ref.ID, err)
					continue
				}
				user.ID = doc.Ref.ID
				users = append(users, &user)
			}

			onSnapshot(users)
		}
	}()
}
