// Package telegramtest provides an in-memory telegram.Platform for tests.
package telegramtest

import (
	"context"
	"sync"

	"github.com/danhigham/telefleet/internal/domain"
	"github.com/danhigham/telefleet/internal/telegram"
)

// Platform hands out fake clients.
type Platform struct {
	// Setup builds the client for creds. Nil yields an authorized client
	// with no data.
	Setup func(creds domain.Credentials) *Client
	// OpenErr fails every Open.
	OpenErr error

	mu     sync.Mutex
	opened []*Client
}

var _ telegram.Platform = (*Platform)(nil)

func (p *Platform) Open(_ context.Context, creds domain.Credentials) (telegram.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.OpenErr != nil {
		return nil, p.OpenErr
	}
	var c *Client
	if p.Setup != nil {
		c = p.Setup(creds)
	}
	if c == nil {
		c = &Client{Authorized: true}
	}
	c.Creds = creds
	p.opened = append(p.opened, c)
	return c, nil
}

// Opened returns every client handed out so far.
func (p *Platform) Opened() []*Client {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Client(nil), p.opened...)
}

// Call is one recorded method invocation.
type Call struct {
	Method string
	Args   []any
}

// Client is a scripted telegram.Client. Exported fields may be set before
// the client is opened; Fail maps a method name to the error it returns.
type Client struct {
	Creds      domain.Credentials
	Authorized bool
	Code       string
	Password   string
	User       domain.User
	About      string
	Auths      []domain.Authorization
	Caps       domain.Capabilities
	Token      string
	Fail       map[string]error

	mu     sync.Mutex
	calls  []Call
	closed bool
}

var _ telegram.Client = (*Client)(nil)

// Calls returns the recorded invocations, Close excluded.
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// Called returns how many times method was invoked.
func (c *Client) Called(method string) int {
	n := 0
	for _, call := range c.Calls() {
		if call.Method == method {
			n++
		}
	}
	return n
}

func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) record(method string, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Method: method, Args: args})
	return c.Fail[method]
}

func (c *Client) IsAuthorized(context.Context) (bool, error) {
	if err := c.record("IsAuthorized"); err != nil {
		return false, err
	}
	return c.Authorized, nil
}

func (c *Client) SendCode(_ context.Context, phone string) (string, error) {
	if err := c.record("SendCode", phone); err != nil {
		return "", err
	}
	return "hash-" + phone, nil
}

func (c *Client) SignIn(_ context.Context, phone, code, codeHash string) (*domain.User, error) {
	if err := c.record("SignIn", phone, code, codeHash); err != nil {
		return nil, err
	}
	if code != c.Code {
		return nil, domain.ErrInvalidCode
	}
	if c.Password != "" {
		return nil, domain.ErrPasswordNeeded
	}
	return c.signedIn(), nil
}

func (c *Client) CheckPassword(_ context.Context, password string) (*domain.User, error) {
	if err := c.record("CheckPassword", password); err != nil {
		return nil, err
	}
	if password != c.Password {
		return nil, domain.ErrInvalidPassword
	}
	return c.signedIn(), nil
}

func (c *Client) signedIn() *domain.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Authorized = true
	u := c.User
	return &u
}

func (c *Client) ExportSession(context.Context) (string, error) {
	if err := c.record("ExportSession"); err != nil {
		return "", err
	}
	return c.Token, nil
}

func (c *Client) Self(context.Context) (*domain.User, error) {
	if err := c.record("Self"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	u := c.User
	return &u, nil
}

func (c *Client) Bio(context.Context) (string, error) {
	if err := c.record("Bio"); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.About, nil
}

func (c *Client) UpdateProfile(_ context.Context, p domain.Profile) error {
	if err := c.record("UpdateProfile", p); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.User.FirstName = p.FirstName
	c.User.LastName = p.LastName
	c.About = p.Bio
	return nil
}

func (c *Client) UpdateUsername(_ context.Context, username string) error {
	if err := c.record("UpdateUsername", username); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.User.Username = username
	return nil
}

func (c *Client) HasPassword(context.Context) (bool, error) {
	if err := c.record("HasPassword"); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Password != "", nil
}

func (c *Client) UpdatePassword(_ context.Context, current, next string) error {
	if err := c.record("UpdatePassword", current, next); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Password != "" && current != c.Password {
		return domain.ErrInvalidPassword
	}
	c.Password = next
	return nil
}

func (c *Client) Authorizations(context.Context) ([]domain.Authorization, error) {
	if err := c.record("Authorizations"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Authorization(nil), c.Auths...), nil
}

func (c *Client) ResetAuthorization(_ context.Context, hash int64) error {
	if err := c.record("ResetAuthorization", hash); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.Auths[:0]
	for _, a := range c.Auths {
		if a.Hash != hash {
			kept = append(kept, a)
		}
	}
	c.Auths = kept
	return nil
}

func (c *Client) ResetOtherAuthorizations(context.Context) error {
	if err := c.record("ResetOtherAuthorizations"); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.Auths[:0]
	for _, a := range c.Auths {
		if a.Current {
			kept = append(kept, a)
		}
	}
	c.Auths = kept
	return nil
}

func (c *Client) SendMessage(_ context.Context, username, text string) error {
	return c.record("SendMessage", username, text)
}

func (c *Client) JoinChannel(_ context.Context, username string) error {
	return c.record("JoinChannel", username)
}

func (c *Client) SendReaction(_ context.Context, ref domain.MessageRef, emoji string) error {
	return c.record("SendReaction", ref, emoji)
}

func (c *Client) ReactViaMessage(_ context.Context, ref domain.MessageRef, emoji string) error {
	return c.record("ReactViaMessage", ref, emoji)
}

func (c *Client) Capabilities() domain.Capabilities {
	return c.Caps
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
