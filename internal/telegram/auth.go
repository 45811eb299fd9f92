package telegram

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"

	"github.com/danhigham/telefleet/internal/domain"
)

func (c *GotdClient) IsAuthorized(ctx context.Context) (bool, error) {
	status, err := c.client.Auth().Status(ctx)
	if err != nil {
		return false, errors.Wrap(mapError(err), "auth status")
	}
	return status.Authorized, nil
}

// SendCode asks Telegram to deliver a login code to phone.
func (c *GotdClient) SendCode(ctx context.Context, phone string) (string, error) {
	sent, err := c.client.Auth().SendCode(ctx, phone, auth.SendCodeOptions{})
	if err != nil {
		return "", errors.Wrap(mapError(err), "send code")
	}
	switch s := sent.(type) {
	case *tg.AuthSentCode:
		return s.PhoneCodeHash, nil
	default:
		return "", errors.Errorf("unexpected sent code type %T", sent)
	}
}

func (c *GotdClient) SignIn(ctx context.Context, phone, code, codeHash string) (*domain.User, error) {
	a, err := c.client.Auth().SignIn(ctx, phone, code, codeHash)
	if err != nil {
		return nil, mapError(err)
	}
	return authorizedUser(a)
}

func (c *GotdClient) CheckPassword(ctx context.Context, password string) (*domain.User, error) {
	a, err := c.client.Auth().Password(ctx, password)
	if err != nil {
		return nil, mapError(err)
	}
	return authorizedUser(a)
}

// UpdatePassword sets or rotates the 2FA password. current is only asked
// for when a password is already set.
func (c *GotdClient) UpdatePassword(ctx context.Context, current, next string) error {
	err := c.client.Auth().UpdatePassword(ctx, next, auth.UpdatePasswordOptions{
		Password: func(ctx context.Context) (string, error) {
			if current == "" {
				return "", auth.ErrPasswordNotProvided
			}
			return current, nil
		},
	})
	if err != nil {
		return errors.Wrap(mapError(err), "update password")
	}
	return nil
}

func (c *GotdClient) ExportSession(ctx context.Context) (string, error) {
	return EncodeSession(ctx, c.storage)
}

func authorizedUser(a *tg.AuthAuthorization) (*domain.User, error) {
	u, ok := a.User.AsNotEmpty()
	if !ok {
		return nil, errors.New("authorization returned an empty user")
	}
	return convertUser(u), nil
}
