// Package queue defines message payloads exchanged over the message broker.
package queue

import "github.com/iliyamo/gym-membership-api/internal/notify"

// AnnouncementBroadcastEvent is published after an announcement row is
// committed. It carries the resolved recipient list and the channels
// to deliver on, so the consumer can fan out without querying the
// primary database.
type AnnouncementBroadcastEvent struct {
	BroadcastID string             `json:"broadcast_id"`
	Title       string             `json:"title"`
	Body        string             `json:"body"`
	Audience    string             `json:"audience"`
	Channels    []string           `json:"channels"`
	Recipients  []notify.Recipient `json:"recipients"`
	CreatedAt   string             `json:"created_at"`
}
