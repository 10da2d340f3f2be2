package entity

import "time"

type Message struct {
	ID         string    `json:"id" firestore:"id"`
	ChatRoomID string    `json:"chat_room_id" firestore:"chatRoomId"`
	SenderID   string    `json:"sender_id" firestore:"senderId"`
	Content    string    `json:"content" firestore:"content"`
	Image      string    `json:"image,omitempty" firestore:"image,omitempty"`
	Time       time.Time `json:"time" firestore:"time,serverTimestamp"`
	Read       bool      `json:"read" firestore:"read"`
	Type       string    `json:"message_type" firestore:"messageType"` // "text", "image"

	// Pending marks an optimistic local echo that the store has not yet
	// confirmed. Never persisted; cleared when the confirmed document
	// arrives in a snapshot.
	Pending bool `json:"pending,omitempty" firestore:"-"`
}

const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
)
