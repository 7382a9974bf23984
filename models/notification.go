package models

// NotificationPayload is the JSON body carried inside the encrypted push message.
type NotificationPayload struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
	URL   string `json:"url,omitempty"`
}

// BroadcastRequest asks for a fan-out to all subscribers or to the listed users.
type BroadcastRequest struct {
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	URL       string   `json:"url"`
	UserIDs   []string `json:"user_ids,omitempty"`
	PruneGone bool     `json:"prune_gone,omitempty"`
}
