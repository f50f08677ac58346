package model

import "time"

// Announcement audiences and delivery channels. Channels is stored as
// a comma-separated list (e.g. "whatsapp,email,push").
const (
	AudienceAll     = "ALL"
	AudienceMembers = "MEMBERS"
	AudienceAdmins  = "ADMINS"

	ChannelWhatsApp = "whatsapp"
	ChannelEmail    = "email"
	ChannelPush     = "push"
)

// Announcement is a broadcast message posted by an administrator.
// The row is committed before any delivery is attempted; fan-out to
// WhatsApp/email/push happens asynchronously through the broker and
// never rolls back the announcement itself.
//
// Fields:
//  ID          – primary key identifier.
//  BroadcastID – UUID correlating the row with its queue message.
//  Title       – short headline.
//  Body        – message text.
//  Audience    – ALL, MEMBERS or ADMINS.
//  Channels    – comma-separated delivery channels.
//  CreatedBy   – admin user who posted it.
//  CreatedAt   – creation timestamp.
type Announcement struct {
	ID          uint64    // announcements.id
	BroadcastID string    // announcements.broadcast_id (UUID)
	Title       string    // announcements.title
	Body        string    // announcements.body
	Audience    string    // announcements.audience
	Channels    string    // announcements.channels
	CreatedBy   uint64    // announcements.created_by
	CreatedAt   time.Time // announcements.created_at
}
