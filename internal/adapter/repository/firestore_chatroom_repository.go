package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pairtalk/internal/domain/entity"
	"pairtalk/internal/domain/repository"
	"pairtalk/pkg/errors"
	"pairtalk/pkg/logger"
)

type firestoreChatRoomRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRoomRepository(client *firestore.Client) repository.ChatRoomRepository {
	return &firestoreChatRoomRepository{
		client: client,
	}
}

func (r *firestoreChatRoomRepository) Create(ctx context.Context, chatRoom *entity.ChatRoom) error {
	if chatRoom.ID == "" {
		chatRoom.ID = uuid.New().String()
	}

	// Timestamp carries the serverTimestamp tag; the zero value lets the
	// store assign it.
	_, err := r.client.Collection("chatrooms").Doc(chatRoom.ID).Set(ctx, chatRoom)
	if err != nil {
		return errors.WriteFailure("Failed to create chatroom", err)
	}

	return nil
}

func (r *firestoreChatRoomRepository) GetByID(ctx context.Context, id string) (*entity.ChatRoom, error) {
	doc, err := r.client.Collection("chatrooms").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chatroom", err)
		}
		return nil, errors.Internal("Failed to get chatroom", err)
	}

	var chatRoom entity.ChatRoom
	if err := doc.DataTo(&chatRoom); err != nil {
		return nil, errors.Internal("Failed to parse chatroom data", err)
	}
	chatRoom.ID = doc.Ref.ID

	return &chatRoom, nil
}

func (r *firestoreChatRoomRepository) GetByUsers(ctx context.Context, users []string) (*entity.ChatRoom, error) {
	query := r.client.Collection("chatrooms").Where("users", "==", users).Limit(1)
	iter := query.Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Chatroom", nil)
		}
		return nil, errors.SyncError("Failed to query chatroom by users", err)
	}

	var chatRoom entity.ChatRoom
	if err := doc.DataTo(&chatRoom); err != nil {
		return nil, errors.Internal("Failed to parse chatroom data", err)
	}
	chatRoom.ID = doc.Ref.ID

	return &chatRoom, nil
}

func (r *firestoreChatRoomRepository) UpdateLastMessage(ctx context.Context, id string, summary *entity.LastMessage, senderID string) error {
	_, err := r.client.Collection("chatrooms").Doc(id).Update(ctx, []firestore.Update{
		{Path: "lastMessage", Value: summary},
		{Path: "lastMessageTime", Value: firestore.ServerTimestamp},
		{Path: "lastMessageSenderId", Value: senderID},
	})
	if err != nil {
		return errors.WriteFailure("Failed to update chatroom summary", err)
	}

	return nil
}

func (r *firestoreChatRoomRepository) WatchByUser(ctx context.Context, userID string, onSnapshot func([]*entity.ChatRoom), onError func(error)) {
	query := r.client.Collection("chatrooms").Where("users", "array-contains", userID)
	iter := query.Snapshots(ctx)

	go func() {
		defer iter.Stop()

		for {
			snap, err := iter.Next()
			if err != nil {
				if ctx.Err() != nil || status.Code(err) == codes.Canceled {
					return
				}
				onError(errors.SyncError("Chatrooms subscription failed", err))
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				onError(errors.SyncError("Failed to read chatrooms snapshot", err))
				return
			}

			chatRooms := make([]*entity.ChatRoom, 0, len(docs))
			for _, doc := range docs {
				var chatRoom entity.ChatRoom
				if err := doc.DataTo(&chatRoom); err != nil {
					logger.Warn("Skipping malformed chatroom document %s: %v", doc.Ref.ID, err)
					continue
				}
				chatRoom.ID = doc.Ref.ID
				chatRooms = append(chatRooms, &chatRoom)
			}

			onSnapshot(chatRooms)
		}
	}()
}
