package entity

import "time"

// LinkType distinguishes how an invite admits the user.
type LinkType string

const (
	// LinkTypeInvite is a single-use link that joins immediately.
	LinkTypeInvite LinkType = "invite"
	// LinkTypeRequest is a link that files a join request for admin approval.
	LinkTypeRequest LinkType = "request"
)

// Link is one issued invite. ExpiresAt is always CreatedAt plus the configured
// TTL. A link may be retired by the revocation scheduler or purged by the
// expiry sweeper; both paths are independent and idempotent.
type Link struct {
	ChannelId  int64     `json:"channel_id" bson:"channel_id"`
	InviteLink string    `json:"invite_link" bson:"invite_link"`
	LinkType   LinkType  `json:"link_type" bson:"link_type"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	ExpiresAt  time.Time `json:"expires_at" bson:"expires_at"`
	Uses       int64     `json:"uses" bson:"uses"`
	IsActive   bool      `json:"is_active" bson:"is_active"`
}

// Valid reports whether the link can still be handed out at the given moment.
func (l *Link) Valid(now time.Time) bool {
	return l.IsActive && now.Before(l.ExpiresAt)
}
