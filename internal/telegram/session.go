package telegram

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/go-faster/errors"
	"github.com/gotd/td/session"
)

// telethonPrefix marks a Telethon StringSession (version byte "1").
const telethonPrefix = "1"

// EncodeSession serializes the session held by s into a token.
func EncodeSession(ctx context.Context, s session.Storage) (string, error) {
	data, err := s.LoadSession(ctx)
	if errors.Is(err, session.ErrNotFound) || (err == nil && len(data) == 0) {
		return "", errors.New("session is empty")
	}
	if err != nil {
		return "", errors.Wrap(err, "load session")
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeSession writes the session described by token into dst. Tokens
// produced by EncodeSession and Telethon string sessions are accepted.
func DecodeSession(ctx context.Context, token string, dst session.Storage) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("empty session token")
	}

	if strings.HasPrefix(token, telethonPrefix) {
		data, err := session.TelethonSession(token)
		if err != nil {
			return errors.Wrap(err, "parse telethon session")
		}
		loader := session.Loader{Storage: dst}
		if err := loader.Save(ctx, data); err != nil {
			return errors.Wrap(err, "store telethon session")
		}
		return nil
	}

	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return errors.Wrap(err, "decode session token")
	}
	if err := dst.StoreSession(ctx, raw); err != nil {
		return errors.Wrap(err, "store session")
	}
	return nil
}
