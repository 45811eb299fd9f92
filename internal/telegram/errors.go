package telegram

import (
	"github.com/go-faster/errors"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tgerr"

	"github.com/danhigham/telefleet/internal/domain"
)

// mapError translates gotd and RPC errors into domain errors. Unknown
// errors are returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if d, ok := tgerr.AsFloodWait(err); ok {
		return &domain.FloodWaitError{Wait: d}
	}
	switch {
	case errors.Is(err, auth.ErrPasswordAuthNeeded):
		return domain.ErrPasswordNeeded
	case errors.Is(err, auth.ErrPasswordInvalid),
		tgerr.Is(err, "PASSWORD_HASH_INVALID"):
		return domain.ErrInvalidPassword
	case tgerr.Is(err, "PHONE_CODE_INVALID", "PHONE_CODE_EMPTY"):
		return domain.ErrInvalidCode
	case tgerr.Is(err, "AUTH_KEY_UNREGISTERED", "SESSION_REVOKED", "USER_DEACTIVATED", "AUTH_KEY_INVALID"):
		return domain.ErrSessionInvalid
	}
	return err
}
