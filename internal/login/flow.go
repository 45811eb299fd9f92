// Package login drives the phone/code/2FA registration of one account.
package login

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/danhigham/telefleet/internal/domain"
	"github.com/danhigham/telefleet/internal/metrics"
	"github.com/danhigham/telefleet/internal/store"
	"github.com/danhigham/telefleet/internal/telegram"
)

// State is the input the flow expects next.
type State int

const (
	StateAwaitingAPIHash State = iota
	StateAwaitingAPIID
	StateAwaitingPhone
	StateAwaitingCode
	StateAwaitingPassword
	StateAuthenticated
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateAwaitingAPIHash:
		return "awaiting_api_hash"
	case StateAwaitingAPIID:
		return "awaiting_api_id"
	case StateAwaitingPhone:
		return "awaiting_phone"
	case StateAwaitingCode:
		return "awaiting_code"
	case StateAwaitingPassword:
		return "awaiting_password"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the flow accepts no further input.
func (s State) Terminal() bool {
	return s == StateAuthenticated || s == StateFailed || s == StateCancelled
}

// Result is the outcome of a successful login.
type Result struct {
	Key  string
	User domain.User
}

// Flow is one pending login. It is safe for concurrent use, but a flow
// belongs to a single conversation.
type Flow struct {
	platform telegram.Platform
	store    store.Store
	logger   *zap.Logger

	mu       sync.Mutex
	state    State
	apiHash  string
	apiID    int
	phone    string
	codeHash string
	client   telegram.Client
	result   *Result
	err      error
}

func New(platform telegram.Platform, st store.Store, logger *zap.Logger) *Flow {
	return &Flow{
		platform: platform,
		store:    st,
		logger:   logger,
		state:    StateAwaitingAPIHash,
	}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Result is set once the flow reaches StateAuthenticated.
func (f *Flow) Result() *Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// Err is the error that moved the flow to StateFailed.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Submit feeds one operator input to the current state and returns the
// state the flow moved to. A non-nil error with a non-terminal state means
// the input was rejected and the same prompt should be shown again.
func (f *Flow) Submit(ctx context.Context, input string) (State, error) {
	input = strings.TrimSpace(input)

	switch f.State() {
	case StateAwaitingAPIHash:
		return f.SetAPIHash(input)
	case StateAwaitingAPIID:
		return f.SetAPIID(input)
	case StateAwaitingPhone:
		return f.SetPhone(ctx, input)
	case StateAwaitingCode:
		return f.SubmitCode(ctx, input)
	case StateAwaitingPassword:
		return f.SubmitPassword(ctx, input)
	case StateAuthenticated, StateFailed, StateCancelled:
		return f.State(), domain.ErrLoginNotActive
	default:
		return f.State(), fmt.Errorf("unknown login state %d", f.State())
	}
}

func (f *Flow) SetAPIHash(hash string) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.expect(StateAwaitingAPIHash); err != nil {
		return f.state, err
	}
	if hash == "" {
		return f.state, errors.New("api hash must not be empty")
	}
	f.apiHash = hash
	f.state = StateAwaitingAPIID
	return f.state, nil
}

func (f *Flow) SetAPIID(raw string) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.expect(StateAwaitingAPIID); err != nil {
		return f.state, err
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return f.state, domain.ErrInvalidAPIID
	}
	f.apiID = id
	f.state = StateAwaitingPhone
	return f.state, nil
}

// SetPhone opens a fresh connection and requests a login code.
func (f *Flow) SetPhone(ctx context.Context, phone string) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.expect(StateAwaitingPhone); err != nil {
		return f.state, err
	}
	if phone == "" {
		return f.state, errors.New("phone number must not be empty")
	}

	client, err := f.platform.Open(ctx, domain.Credentials{APIID: f.apiID, APIHash: f.apiHash})
	if err != nil {
		return f.fail(fmt.Errorf("connect: %w", err))
	}
	f.client = client

	hash, err := client.SendCode(ctx, phone)
	if err != nil {
		return f.fail(fmt.Errorf("send code: %w", err))
	}

	f.phone = phone
	f.codeHash = hash
	f.state = StateAwaitingCode
	f.logger.Info("login code sent", zap.String("phone", phone))
	return f.state, nil
}

// SubmitCode signs in with the received code. Accounts with two-step
// verification move to StateAwaitingPassword.
func (f *Flow) SubmitCode(ctx context.Context, code string) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.expect(StateAwaitingCode); err != nil {
		return f.state, err
	}

	user, err := f.client.SignIn(ctx, f.phone, code, f.codeHash)
	switch {
	case errors.Is(err, domain.ErrPasswordNeeded):
		f.state = StateAwaitingPassword
		return f.state, nil
	case errors.Is(err, domain.ErrInvalidCode):
		return f.state, err
	case err != nil:
		return f.fail(fmt.Errorf("sign in: %w", err))
	}
	return f.complete(ctx, user)
}

func (f *Flow) SubmitPassword(ctx context.Context, password string) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.expect(StateAwaitingPassword); err != nil {
		return f.state, err
	}

	user, err := f.client.CheckPassword(ctx, password)
	switch {
	case errors.Is(err, domain.ErrInvalidPassword):
		return f.state, err
	case err != nil:
		return f.fail(fmt.Errorf("check password: %w", err))
	}
	return f.complete(ctx, user)
}

// Cancel abandons the flow and closes any open connection.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.Terminal() {
		return
	}
	f.closeClient()
	f.state = StateCancelled
	metrics.RecordLogin(StateCancelled.String())
}

func (f *Flow) complete(ctx context.Context, user *domain.User) (State, error) {
	token, err := f.client.ExportSession(ctx)
	if err != nil {
		return f.fail(fmt.Errorf("export session: %w", err))
	}

	key, err := f.store.Add(ctx, domain.NewAccount{
		APIID:     f.apiID,
		APIHash:   f.apiHash,
		Phone:     f.phone,
		Session:   token,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Username:  user.Username,
		AccountID: strconv.FormatInt(user.ID, 10),
	})
	if err != nil {
		return f.fail(fmt.Errorf("save account: %w", err))
	}

	f.closeClient()
	f.result = &Result{Key: key, User: *user}
	f.state = StateAuthenticated
	metrics.RecordLogin(StateAuthenticated.String())
	f.logger.Info("account registered",
		zap.String("account", key),
		zap.Int64("user_id", user.ID),
	)
	return f.state, nil
}

func (f *Flow) fail(err error) (State, error) {
	f.closeClient()
	f.err = err
	f.state = StateFailed
	metrics.RecordLogin(StateFailed.String())
	f.logger.Warn("login failed", zap.Error(err))
	return f.state, err
}

func (f *Flow) closeClient() {
	if f.client == nil {
		return
	}
	if err := f.client.Close(); err != nil {
		f.logger.Debug("close login connection", zap.Error(err))
	}
	f.client = nil
}

func (f *Flow) expect(s State) error {
	if f.state != s {
		if f.state.Terminal() {
			return domain.ErrLoginNotActive
		}
		return fmt.Errorf("login expects %s, not %s", f.state, s)
	}
	return nil
}
