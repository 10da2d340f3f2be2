package entity

import (
	"sort"
	"time"
)

// LastMessage is the denormalized summary shown in the roster.
type LastMessage struct {
	Text   string `json:"text" firestore:"text"`
	Unread bool   `json:"unread" firestore:"unread"`
}

type ChatRoom struct {
	ID string `json:"id" firestore:"id"`

	// Exactly two user IDs in canonical (sorted) order. The pair is
	// unordered; canonical storage keeps the one-room-per-pair invariant
	// order-independent.
	Users []string `json:"users" firestore:"users"`

	// UsersData is a snapshot taken at creation, not a live join. It does
	// not reflect later profile edits.
	UsersData map[string]*User `json:"users_data" firestore:"usersData"`

	Timestamp time.Time `json:"timestamp" firestore:"timestamp,serverTimestamp"`

	LastMessage         *LastMessage `json:"last_message,omitempty" firestore:"lastMessage"`
	LastMessageTime     time.Time    `json:"last_message_time,omitempty" firestore:"lastMessageTime,omitempty"`
	LastMessageSenderID string       `json:"last_message_sender_id,omitempty" firestore:"lastMessageSenderId,omitempty"`
}

// CanonicalPair sorts two user IDs into the fixed order used for both the
// duplicate check and the write.
func CanonicalPair(a, b string) []string {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair
}

// Counterpart returns the snapshot of the other participant, or nil when
// the room data is malformed.
func (c *ChatRoom) Counterpart(myID string) *User {
	for _, id := range c.Users {
		if id != myID {
			return c.UsersData[id]
		}
	}
	return nil
}

// ActivityTime is the sort key for recency: the last message time when
// present, otherwise the creation time. The zero value sorts last.
func (c *ChatRoom) ActivityTime() time.Time {
	if !c.LastMessageTime.IsZero() {
		return c.LastMessageTime
	}
	return c.Timestamp
}
