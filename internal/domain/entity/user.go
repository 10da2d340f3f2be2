package entity

import "time"

type User struct {
	ID        string `json:"id" firestore:"id"`
	Name      string `json:"name" firestore:"name"`
	Email     string `json:"email" firestore:"email"`
	Bio       string `json:"bio,omitempty" firestore:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty" firestore:"avatarUrl,omitempty"`

	// Presence is advisory. Exit hooks are best-effort, so a stale
	// isOnline=true is possible until lastActive ages out.
	IsOnline   bool      `json:"is_online" firestore:"isOnline"`
	LastActive time.Time `json:"last_active,omitempty" firestore:"lastActive,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
