package models

// Profile is the read-only user metadata joined for admin reporting.
type Profile struct {
	ID                string   `json:"id" bson:"id"`
	Nickname          *string  `json:"nickname" bson:"nickname"`
	Email             *string  `json:"email" bson:"email"`
	PreferredLanguage *string  `json:"preferred_language" bson:"preferredLanguage"`
	FavoriteTeamIDs   []string `json:"favorite_team_ids" bson:"favoriteTeamIds"`
}
