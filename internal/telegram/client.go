package telegram

import (
	"context"

	"github.com/danhigham/telefleet/internal/domain"
)

// Platform opens transient connections to Telegram.
type Platform interface {
	// Open connects with creds. An empty creds.Session yields a fresh,
	// unauthenticated connection. The caller must Close the client.
	Open(ctx context.Context, creds domain.Credentials) (Client, error)
}

// AuthClient drives the phone/code/2FA login of one connection.
type AuthClient interface {
	IsAuthorized(ctx context.Context) (bool, error)
	SendCode(ctx context.Context, phone string) (codeHash string, err error)
	// SignIn returns domain.ErrPasswordNeeded when 2FA is enabled and
	// domain.ErrInvalidCode for a wrong code.
	SignIn(ctx context.Context, phone, code, codeHash string) (*domain.User, error)
	// CheckPassword returns domain.ErrInvalidPassword for a wrong password.
	CheckPassword(ctx context.Context, password string) (*domain.User, error)
	ExportSession(ctx context.Context) (string, error)
}

// ProfileClient reads and edits the signed-in user's profile.
type ProfileClient interface {
	Self(ctx context.Context) (*domain.User, error)
	Bio(ctx context.Context) (string, error)
	UpdateProfile(ctx context.Context, p domain.Profile) error
	UpdateUsername(ctx context.Context, username string) error
	HasPassword(ctx context.Context) (bool, error)
	UpdatePassword(ctx context.Context, current, next string) error
}

// SessionsClient lists and revokes logins of the signed-in user.
type SessionsClient interface {
	Authorizations(ctx context.Context) ([]domain.Authorization, error)
	ResetAuthorization(ctx context.Context, hash int64) error
	ResetOtherAuthorizations(ctx context.Context) error
}

// MessagingClient performs the broadcast actions.
type MessagingClient interface {
	SendMessage(ctx context.Context, username, text string) error
	JoinChannel(ctx context.Context, username string) error
	SendReaction(ctx context.Context, ref domain.MessageRef, emoji string) error
	// ReactViaMessage fetches the message first and reacts to it; used when
	// the direct reaction call is unavailable.
	ReactViaMessage(ctx context.Context, ref domain.MessageRef, emoji string) error
}

// Client is one open connection.
type Client interface {
	AuthClient
	ProfileClient
	SessionsClient
	MessagingClient

	Capabilities() domain.Capabilities
	Close() error
}
