package models

import "time"

// SubscriberSummary aggregates one user's tokens with their profile.
type SubscriberSummary struct {
	UserID            string    `json:"user_id"`
	Nickname          *string   `json:"nickname"`
	Email             *string   `json:"email"`
	PreferredLanguage *string   `json:"preferred_language"`
	FavoriteTeamIDs   []string  `json:"favorite_team_ids"`
	TokenCount        int       `json:"token_count"`
	TokenCreatedAt    time.Time `json:"token_created_at"`
}

// SubscribersResponse is the admin listing envelope.
type SubscribersResponse struct {
	Success bool                `json:"success"`
	Users   []SubscriberSummary `json:"users"`
	Total   *int                `json:"total,omitempty"`
	Message string              `json:"message,omitempty"`
	Error   string              `json:"error,omitempty"`
}
