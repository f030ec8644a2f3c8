// Package invite holds the invite-link lifecycle: issuing single-use or
// join-request links, scheduling their revocation after the configured TTL,
// and sweeping expired link records out of the store.
package invite

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"linkvault/entity"
	"linkvault/lib/clock"
	"linkvault/lib/sl"
)

var (
	ErrChannelNotFound = errors.New("channel not found")
	ErrChannelInactive = errors.New("channel is inactive")
	// ErrIssuanceFailed wraps a platform-side mint failure, usually missing
	// bot rights in the channel.
	ErrIssuanceFailed = errors.New("invite issuance failed")
)

// Telegram defines the chat-platform operations the lifecycle needs.
// Implemented by the bot package on top of gotgbot.
type Telegram interface {
	CreateInvite(channelId int64, linkType entity.LinkType, name string, expireAt time.Time) (string, error)
	RevokeInvite(channelId int64, inviteLink string) error
	DeleteMessage(chatId int64, messageId int64) error
}

// Store defines the persistence operations the lifecycle performs.
// Implemented by internal/database.
type Store interface {
	GetChannel(channelId int64) (*entity.Channel, error)
	SaveLink(link *entity.Link) error
	IncrementChannelJoins(channelId int64) error
	DeleteExpiredLinks(now time.Time) (int64, error)
}

// Issuer mints invite links against the registry. Every call is an
// independent at-most-once attempt; concurrent issues for the same channel
// each get their own link record.
type Issuer struct {
	log   *slog.Logger
	tg    Telegram
	store Store
	clk   clock.Clock
	ttl   time.Duration
}

func NewIssuer(tg Telegram, store Store, clk clock.Clock, ttl time.Duration, log *slog.Logger) *Issuer {
	return &Issuer{
		log:   log.With(sl.Module("invite.issuer")),
		tg:    tg,
		store: store,
		clk:   clk,
		ttl:   ttl,
	}
}

// Issue creates an invite for the channel and persists its record.
// A channel with auto-approve set always gets a direct single-use link,
// even when the join-request flow was asked for: approval is implied.
// No link record is written when the platform refuses to mint.
func (i *Issuer) Issue(channelId int64, requesterId int64, linkType entity.LinkType) (*entity.Link, error) {
	channel, err := i.store.GetChannel(channelId)
	if err != nil {
		return nil, fmt.Errorf("loading channel %d: %w", channelId, err)
	}
	if channel == nil {
		return nil, ErrChannelNotFound
	}
	if !channel.IsActive {
		return nil, ErrChannelInactive
	}

	if channel.AutoApprove {
		linkType = entity.LinkTypeInvite
	}

	now := i.clk.Now()
	expiresAt := now.Add(i.ttl)
	name := "lv-" + uuid.New().String()[:8]

	inviteLink, err := i.tg.CreateInvite(channelId, linkType, name, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("%w for %d: %w", ErrIssuanceFailed, channelId, err)
	}

	link := &entity.Link{
		ChannelId:  channelId,
		InviteLink: inviteLink,
		LinkType:   linkType,
		CreatedAt:  now,
		ExpiresAt:  expiresAt,
		Uses:       0,
		IsActive:   true,
	}
	if err = i.store.SaveLink(link); err != nil {
		return nil, fmt.Errorf("saving link for %d: %w", channelId, err)
	}
	if err = i.store.IncrementChannelJoins(channelId); err != nil {
		return nil, fmt.Errorf("counting issue for %d: %w", channelId, err)
	}

	i.log.Info("link issued",
		slog.Int64("channel_id", channelId),
		slog.Int64("requester_id", requesterId),
		slog.String("type", string(linkType)),
		slog.Time("expires_at", expiresAt),
	)
	return link, nil
}

// TTL exposes the configured link lifetime for user-facing messages.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}
