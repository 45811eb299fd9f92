// Package accounts implements the per-account operations: profile
// inspection and editing, 2FA password changes, and login management.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/danhigham/telefleet/internal/domain"
	"github.com/danhigham/telefleet/internal/store"
	"github.com/danhigham/telefleet/internal/telegram"
)

// TimeLayout is the display format of session timestamps.
const TimeLayout = "2006-01-02 15:04:05"

var (
	ErrNothingToUpdate         = errors.New("no profile fields to update")
	ErrCurrentPasswordRequired = errors.New("current password is required to change it")
)

type Service struct {
	store    store.Store
	platform telegram.Platform
	logger   *zap.Logger
}

func NewService(st store.Store, platform telegram.Platform, logger *zap.Logger) *Service {
	return &Service{store: st, platform: platform, logger: logger}
}

// withClient connects as the account stored under key, verifies the
// session is still authorized and runs fn. The connection is closed on
// every path.
func (s *Service) withClient(ctx context.Context, key string, fn func(telegram.Client) error) error {
	acc, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}

	client, err := s.platform.Open(ctx, acc.Credentials())
	if err != nil {
		return fmt.Errorf("connect %s: %w", key, err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			s.logger.Debug("close connection", zap.String("account", key), zap.Error(err))
		}
	}()

	ok, err := client.IsAuthorized(ctx)
	if err != nil {
		return fmt.Errorf("check authorization %s: %w", key, err)
	}
	if !ok {
		s.logger.Warn("session no longer valid", zap.String("account", key))
		return domain.ErrSessionInvalid
	}
	return fn(client)
}

func (s *Service) List(ctx context.Context) (map[string]domain.Account, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, key string) (domain.Account, error) {
	return s.store.Get(ctx, key)
}

// Delete removes the stored account. It reports whether it existed.
func (s *Service) Delete(ctx context.Context, key string) (bool, error) {
	ok, err := s.store.Delete(ctx, key)
	if err != nil {
		return false, err
	}
	if ok {
		s.logger.Info("account deleted", zap.String("account", key))
	}
	return ok, nil
}

// Details aggregates the live profile of an account. A failing 2FA lookup
// reports 2FA as disabled.
func (s *Service) Details(ctx context.Context, key string) (*domain.AccountDetails, error) {
	var details domain.AccountDetails
	err := s.withClient(ctx, key, func(c telegram.Client) error {
		self, err := c.Self(ctx)
		if err != nil {
			return err
		}
		bio, err := c.Bio(ctx)
		if err != nil {
			return err
		}
		auths, err := c.Authorizations(ctx)
		if err != nil {
			return err
		}
		has2FA, err := c.HasPassword(ctx)
		if err != nil {
			s.logger.Debug("2fa lookup failed", zap.String("account", key), zap.Error(err))
			has2FA = false
		}

		details = domain.AccountDetails{
			User:          *self,
			Bio:           bio,
			SessionsCount: len(auths),
			Has2FA:        has2FA,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &details, nil
}

// UpdateProfile applies upd. Unset name and bio fields keep their live
// values; the username is changed by a separate call afterwards. The
// stored display cache is refreshed for the fields that were provided.
func (s *Service) UpdateProfile(ctx context.Context, key string, upd domain.ProfileUpdate) error {
	if upd.Empty() {
		return ErrNothingToUpdate
	}

	err := s.withClient(ctx, key, func(c telegram.Client) error {
		if upd.FirstName != nil || upd.LastName != nil || upd.Bio != nil {
			profile, err := s.resolveProfile(ctx, c, upd)
			if err != nil {
				return err
			}
			if err := c.UpdateProfile(ctx, profile); err != nil {
				return err
			}
		}
		if upd.Username != nil {
			if err := c.UpdateUsername(ctx, *upd.Username); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if upd.FirstName == nil && upd.LastName == nil && upd.Username == nil {
		return nil
	}
	return s.store.Update(ctx, key, func(acc *domain.Account) {
		if upd.FirstName != nil {
			acc.FirstName = *upd.FirstName
		}
		if upd.LastName != nil {
			acc.LastName = *upd.LastName
		}
		if upd.Username != nil {
			acc.Username = *upd.Username
		}
	})
}

// resolveProfile fills the fields upd leaves unset from the live profile.
func (s *Service) resolveProfile(ctx context.Context, c telegram.Client, upd domain.ProfileUpdate) (domain.Profile, error) {
	var p domain.Profile

	if upd.FirstName == nil || upd.LastName == nil {
		self, err := c.Self(ctx)
		if err != nil {
			return p, err
		}
		p.FirstName, p.LastName = self.FirstName, self.LastName
	}
	if upd.Bio == nil {
		bio, err := c.Bio(ctx)
		if err != nil {
			return p, err
		}
		p.Bio = bio
	}

	if upd.FirstName != nil {
		p.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		p.LastName = *upd.LastName
	}
	if upd.Bio != nil {
		p.Bio = *upd.Bio
	}
	return p, nil
}

// UpdatePassword rotates the 2FA password when one is set, otherwise sets
// next directly and ignores current.
func (s *Service) UpdatePassword(ctx context.Context, key, current, next string) error {
	if next == "" {
		return errors.New("new password must not be empty")
	}
	return s.withClient(ctx, key, func(c telegram.Client) error {
		has, err := c.HasPassword(ctx)
		if err != nil {
			return err
		}
		if !has {
			current = ""
		} else if current == "" {
			return ErrCurrentPasswordRequired
		}
		if err := c.UpdatePassword(ctx, current, next); err != nil {
			return err
		}
		s.logger.Info("2fa password updated", zap.String("account", key), zap.Bool("rotated", has))
		return nil
	})
}

// Sessions lists the active logins of an account with display timestamps.
func (s *Service) Sessions(ctx context.Context, key string) ([]domain.Session, error) {
	var out []domain.Session
	err := s.withClient(ctx, key, func(c telegram.Client) error {
		auths, err := c.Authorizations(ctx)
		if err != nil {
			return err
		}
		out = make([]domain.Session, 0, len(auths))
		for _, a := range auths {
			out = append(out, domain.Session{
				Authorization: a,
				Created:       FormatTimestamp(a.DateCreated),
				LastActive:    FormatTimestamp(a.DateActive),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TerminateSessions revokes logins of an account. With all set every
// session but the current one is revoked in one call; otherwise each hash
// is revoked individually. It returns how many sessions were terminated.
func (s *Service) TerminateSessions(ctx context.Context, key string, all bool, hashes []int64) (int, error) {
	if !all && len(hashes) == 0 {
		return 0, domain.ErrNoSessionsSpecified
	}

	terminated := 0
	err := s.withClient(ctx, key, func(c telegram.Client) error {
		auths, err := c.Authorizations(ctx)
		if err != nil {
			return err
		}
		var current int64
		others := 0
		for _, a := range auths {
			if a.Current {
				current = a.Hash
			} else {
				others++
			}
		}

		if all {
			if err := c.ResetOtherAuthorizations(ctx); err != nil {
				return err
			}
			terminated = others
			return nil
		}

		for _, h := range hashes {
			if h == current {
				return domain.ErrCurrentSession
			}
		}
		for _, h := range hashes {
			if err := c.ResetAuthorization(ctx, h); err != nil {
				return fmt.Errorf("terminate session %d: %w", h, err)
			}
			terminated++
		}
		return nil
	})
	if err != nil {
		return terminated, err
	}

	s.logger.Info("sessions terminated",
		zap.String("account", key),
		zap.Bool("all", all),
		zap.Int("count", terminated),
	)
	return terminated, nil
}

// FormatTimestamp renders a unix timestamp in local time. Non-positive
// values are returned as their decimal form.
func FormatTimestamp(unix int) string {
	if unix <= 0 {
		return strconv.Itoa(unix)
	}
	return time.Unix(int64(unix), 0).Local().Format(TimeLayout)
}
