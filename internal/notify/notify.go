// Package notify implements the best-effort delivery channels used by
// announcement fan-out. Senders are fire-and-forget collaborators: a
// failed delivery is logged by the queue consumer and never propagated
// back into the mutation that triggered it.
package notify

import "context"

// Recipient is one delivery target resolved at publish time.
type Recipient struct {
	UserID   uint64 `json:"user_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// Message is the channel-agnostic payload of one announcement.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Sender delivers a message to a single recipient over one channel.
// Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, to Recipient, msg Message) error
}
