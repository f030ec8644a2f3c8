package entity

import (
	"time"

	"linkvault/lib/validate"
)

// Channel is a registered broadcast channel the bot can issue invite links for.
// ChannelId is the Telegram chat identifier; supergroups and channels carry
// large negative ids (-100...), so it must stay a signed 64-bit value.
type Channel struct {
	ChannelId   int64      `json:"channel_id" bson:"channel_id" validate:"required"`
	ChannelName string     `json:"channel_name" bson:"channel_name" validate:"required"`
	InviteLink  string     `json:"invite_link" bson:"invite_link" validate:"omitempty"`
	AddedAt     time.Time  `json:"added_at" bson:"added_at"`
	UpdatedAt   *time.Time `json:"updated_at" bson:"updated_at"`
	TotalJoins  int64      `json:"total_joins" bson:"total_joins"`
	IsActive    bool       `json:"is_active" bson:"is_active"`
	AutoApprove bool       `json:"auto_approve" bson:"auto_approve"`
}

func (c *Channel) Validate() error {
	return validate.Struct(c)
}
