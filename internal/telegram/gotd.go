package telegram

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/tg"

	"github.com/danhigham/telefleet/internal/config"
	"github.com/danhigham/telefleet/internal/domain"
)

// directReactionLayer is the first API layer whose messages.sendReaction
// takes a reaction list.
const directReactionLayer = 145

// directReaction reports whether layer can send a reaction without first
// fetching the message. The fallback only matters when built against a gotd
// release older than directReactionLayer.
func directReaction(layer int) bool {
	return layer >= directReactionLayer
}

// GotdPlatform implements Platform using gotd/td.
type GotdPlatform struct {
	device telegram.DeviceConfig
	logger *zap.Logger
}

func NewGotdPlatform(device config.DeviceConfig, logger *zap.Logger) *GotdPlatform {
	return &GotdPlatform{
		device: telegram.DeviceConfig{
			DeviceModel:    device.DeviceModel,
			SystemVersion:  device.SystemVersion,
			AppVersion:     device.AppVersion,
			LangCode:       device.LangCode,
			SystemLangCode: device.SystemLangCode,
		},
		logger: logger,
	}
}

// Open connects in the background. The connection lives until Close,
// independent of ctx, so a login can span several operator turns. ctx only
// bounds the wait for the connection.
func (p *GotdPlatform) Open(ctx context.Context, creds domain.Credentials) (Client, error) {
	storage := new(session.StorageMemory)
	if creds.Session != "" {
		if err := DecodeSession(ctx, creds.Session, storage); err != nil {
			return nil, err
		}
	}

	client := telegram.NewClient(creds.APIID, creds.APIHash, telegram.Options{
		Logger:         p.logger.Named("mtproto"),
		SessionStorage: storage,
		Device:         p.device,
		NoUpdates:      true,
	})

	stop, err := connect(ctx, client.Run)
	if err != nil {
		return nil, errors.Wrap(mapError(err), "connect")
	}

	api := client.API()
	return &GotdClient{
		client:  client,
		api:     api,
		sender:  message.NewSender(api),
		storage: storage,
		stop:    stop,
		logger:  p.logger,
	}, nil
}

// GotdClient is one open gotd connection.
type GotdClient struct {
	client  *telegram.Client
	api     *tg.Client
	sender  *message.Sender
	storage *session.StorageMemory
	stop    func() error
	logger  *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

// Close stops the background connection. Safe to call more than once.
func (c *GotdClient) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.stop()
	})
	return c.closeErr
}

func (c *GotdClient) Capabilities() domain.Capabilities {
	return domain.Capabilities{DirectReaction: directReaction(tg.Layer)}
}

// Self returns the signed-in user.
func (c *GotdClient) Self(ctx context.Context) (*domain.User, error) {
	self, err := c.client.Self(ctx)
	if err != nil {
		return nil, errors.Wrap(mapError(err), "get self")
	}
	return convertUser(self), nil
}

// Bio returns the "about" text of the signed-in user.
func (c *GotdClient) Bio(ctx context.Context) (string, error) {
	full, err := c.api.UsersGetFullUser(ctx, &tg.InputUserSelf{})
	if err != nil {
		return "", errors.Wrap(mapError(err), "get full user")
	}
	return full.FullUser.About, nil
}

func (c *GotdClient) UpdateProfile(ctx context.Context, p domain.Profile) error {
	req := &tg.AccountUpdateProfileRequest{}
	req.SetFirstName(p.FirstName)
	req.SetLastName(p.LastName)
	req.SetAbout(p.Bio)
	if _, err := c.api.AccountUpdateProfile(ctx, req); err != nil {
		return errors.Wrap(mapError(err), "update profile")
	}
	return nil
}

func (c *GotdClient) UpdateUsername(ctx context.Context, username string) error {
	if _, err := c.api.AccountUpdateUsername(ctx, username); err != nil {
		return errors.Wrap(mapError(err), "update username")
	}
	return nil
}

func (c *GotdClient) HasPassword(ctx context.Context) (bool, error) {
	pw, err := c.api.AccountGetPassword(ctx)
	if err != nil {
		return false, errors.Wrap(mapError(err), "get password")
	}
	return pw.HasPassword, nil
}

func (c *GotdClient) Authorizations(ctx context.Context) ([]domain.Authorization, error) {
	res, err := c.api.AccountGetAuthorizations(ctx)
	if err != nil {
		return nil, errors.Wrap(mapError(err), "get authorizations")
	}
	out := make([]domain.Authorization, 0, len(res.Authorizations))
	for _, a := range res.Authorizations {
		out = append(out, domain.Authorization{
			Hash:            a.Hash,
			DeviceModel:     a.DeviceModel,
			Platform:        a.Platform,
			SystemVersion:   a.SystemVersion,
			APIID:           a.APIID,
			AppName:         a.AppName,
			AppVersion:      a.AppVersion,
			DateCreated:     a.DateCreated,
			DateActive:      a.DateActive,
			IP:              a.IP,
			Country:         a.Country,
			Region:          a.Region,
			Current:         a.Current,
			OfficialApp:     a.OfficialApp,
			PasswordPending: a.PasswordPending,
		})
	}
	return out, nil
}

func (c *GotdClient) ResetAuthorization(ctx context.Context, hash int64) error {
	if _, err := c.api.AccountResetAuthorization(ctx, hash); err != nil {
		return errors.Wrap(mapError(err), "reset authorization")
	}
	return nil
}

func (c *GotdClient) ResetOtherAuthorizations(ctx context.Context) error {
	if _, err := c.api.AuthResetAuthorizations(ctx); err != nil {
		return errors.Wrap(mapError(err), "reset authorizations")
	}
	return nil
}

// SendMessage sends text to a user, bot or chat resolved from username.
func (c *GotdClient) SendMessage(ctx context.Context, username, text string) error {
	if _, err := c.sender.Resolve(username).Text(ctx, text); err != nil {
		return errors.Wrap(mapError(err), "send message")
	}
	return nil
}

// JoinChannel resolves username to a channel and joins it.
func (c *GotdClient) JoinChannel(ctx context.Context, username string) error {
	peer, err := c.sender.Resolve(username).AsInputPeer(ctx)
	if err != nil {
		return errors.Wrap(mapError(err), "resolve channel")
	}
	ch, ok := inputChannel(peer)
	if !ok {
		return errors.Errorf("%s is not a channel or supergroup", username)
	}
	if _, err := c.api.ChannelsJoinChannel(ctx, ch); err != nil {
		return errors.Wrap(mapError(err), "join channel")
	}
	return nil
}

func (c *GotdClient) SendReaction(ctx context.Context, ref domain.MessageRef, emoji string) error {
	peer, err := c.sender.Resolve(ref.Chat).AsInputPeer(ctx)
	if err != nil {
		return errors.Wrap(mapError(err), "resolve chat")
	}
	return c.react(ctx, peer, ref.MessageID, emoji)
}

func (c *GotdClient) ReactViaMessage(ctx context.Context, ref domain.MessageRef, emoji string) error {
	peer, err := c.sender.Resolve(ref.Chat).AsInputPeer(ctx)
	if err != nil {
		return errors.Wrap(mapError(err), "resolve chat")
	}

	ids := []tg.InputMessageClass{&tg.InputMessageID{ID: ref.MessageID}}
	var res tg.MessagesMessagesClass
	if ch, ok := inputChannel(peer); ok {
		res, err = c.api.ChannelsGetMessages(ctx, &tg.ChannelsGetMessagesRequest{Channel: ch, ID: ids})
	} else {
		res, err = c.api.MessagesGetMessages(ctx, ids)
	}
	if err != nil {
		return errors.Wrap(mapError(err), "get message")
	}
	if !containsMessage(res, ref.MessageID) {
		return errors.Errorf("message %d not found in %s", ref.MessageID, ref.Chat)
	}
	return c.react(ctx, peer, ref.MessageID, emoji)
}

func (c *GotdClient) react(ctx context.Context, peer tg.InputPeerClass, msgID int, emoji string) error {
	req := &tg.MessagesSendReactionRequest{
		Peer:  peer,
		MsgID: msgID,
	}
	req.SetReaction([]tg.ReactionClass{&tg.ReactionEmoji{Emoticon: emoji}})
	if _, err := c.api.MessagesSendReaction(ctx, req); err != nil {
		return errors.Wrap(mapError(err), "send reaction")
	}
	return nil
}

// inputChannel converts a channel peer into an InputChannel.
func inputChannel(peer tg.InputPeerClass) (*tg.InputChannel, bool) {
	p, ok := peer.(*tg.InputPeerChannel)
	if !ok {
		return nil, false
	}
	return &tg.InputChannel{ChannelID: p.ChannelID, AccessHash: p.AccessHash}, true
}

// containsMessage reports whether res carries a non-empty message with id.
func containsMessage(res tg.MessagesMessagesClass, id int) bool {
	var messages []tg.MessageClass
	switch r := res.(type) {
	case *tg.MessagesMessages:
		messages = r.Messages
	case *tg.MessagesMessagesSlice:
		messages = r.Messages
	case *tg.MessagesChannelMessages:
		messages = r.Messages
	default:
		return false
	}
	for _, m := range messages {
		if msg, ok := m.(*tg.Message); ok && msg.ID == id {
			return true
		}
	}
	return false
}

// convertUser converts a tg.User to a domain.User.
func convertUser(u *tg.User) *domain.User {
	user := &domain.User{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Username:   u.Username,
		Phone:      u.Phone,
		Premium:    u.Premium,
		Verified:   u.Verified,
		Restricted: u.Restricted,
	}
	if _, ok := u.Photo.(*tg.UserProfilePhoto); ok {
		user.HasPhoto = true
	}
	return user
}
