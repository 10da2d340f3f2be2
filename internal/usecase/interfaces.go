package usecase

import (
	"context"
	"io"
)

// AuthClient is the identity provider surface the usecases need.
type AuthClient interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	VerifyToken(ctx context.Context, token string) (string, error)
}

// EventPublisher pushes view-state events to a user's connected session.
// Implemented by the websocket manager.
type EventPublisher interface {
	Publish(userID string, event interface{})
}

// AttachmentStorage streams attachment bytes to object storage and returns
// a durable URL.
type AttachmentStorage interface {
	UploadChatImage(ctx context.Context, originalName, contentType string, size int64, file io.Reader, onProgress func(pct int)) (string, error)
}

// Event is the envelope for everything pushed over the session socket.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

const (
	EventRosterUsers     = "roster_users"
	EventRosterChatRooms = "roster_chatrooms"
	EventMessages        = "messages"
	EventViewState       = "view_state"
	EventChatRoomCreated = "chatroom_created"
	EventSyncDegraded    = "sync_degraded"
	EventUploadProgress  = "upload_progress"
	EventWarning         = "warning"
)
