package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pairtalk/internal/domain/entity"
	"pairtalk/internal/domain/repository"
	"pairtalk/pkg/errors"
	"pairtalk/pkg/logger"
)

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

func (r *firestoreMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	// Time carries the serverTimestamp tag; writing the zero value makes
	// the store assign the ordering key. Two rapid sends from the same
	// sender keep server order, not submission order.
	stored := *message
	stored.Time = time.Time{}
	stored.Pending = false

	_, err := r.client.Collection("messages").Doc(message.ID).Set(ctx, &stored)
	if err != nil {
		return errors.WriteFailure("Failed to create message", err)
	}

	return nil
}

func (r *firestoreMessageRepository) WatchByChatRoom(ctx context.Context, chatRoomID string, onSnapshot func([]*entity.Message), onError func(error)) {
	query := r.client.Collection("messages").
		Where("chatRoomId", "==", chatRoomID).
		OrderBy("time", firestore.Asc)
	iter := query.Snapshots(ctx)

	go func() {
		defer iter.Stop()

		for {
			snap, err := iter.Next()
			if err != nil {
				if ctx.Err() != nil || status.Code(err) == codes.Canceled {
					return
				}
				onError(errors.SyncError("Messages subscription failed", err))
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				onError(errors.SyncError("Failed to read messages snapshot", err))
				return
			}

			messages := make([]*entity.Message, 0, len(docs))
			for _, doc := range docs {
				var message entity.Message
				if err := doc.DataTo(&message); err != nil {
					logger.Warn("Skipping malformed message document %s: %v", doc.Ref.ID, err)
					continue
				}
				message.ID = doc.Ref.ID
				messages = append(messages, &message)
			}

			onSnapshot(messages)
		}
	}()
}
