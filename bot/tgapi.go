package bot

import (
	"time"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"

	"linkvault/entity"
)

// telegramAPI adapts gotgbot to the narrow surface invite.Issuer and
// invite.Scheduler need.
type telegramAPI struct {
	api *tgbotapi.Bot
}

// CreateInvite mints a platform invite link. Direct links are single-use
// (member limit 1); request links file a join request instead, and Telegram
// forbids combining the two.
func (a *telegramAPI) CreateInvite(channelId int64, linkType entity.LinkType, name string, expireAt time.Time) (string, error) {
	opts := &tgbotapi.CreateChatInviteLinkOpts{
		Name:       name,
		ExpireDate: expireAt.Unix(),
	}
	if linkType == entity.LinkTypeRequest {
		opts.CreatesJoinRequest = true
	} else {
		opts.MemberLimit = 1
	}
	link, err := a.api.CreateChatInviteLink(channelId, opts)
	if err != nil {
		return "", err
	}
	return link.InviteLink, nil
}

func (a *telegramAPI) RevokeInvite(channelId int64, inviteLink string) error {
	_, err := a.api.RevokeChatInviteLink(channelId, inviteLink, nil)
	return err
}

func (a *telegramAPI) DeleteMessage(chatId int64, messageId int64) error {
	_, err := a.api.DeleteMessage(chatId, messageId, nil)
	return err
}
