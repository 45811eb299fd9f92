package bot

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/danhigham/telefleet/internal/login"
)

// Step is the input the next free-text message of a chat answers.
type Step int

const (
	StepNone Step = iota
	StepLogin
	StepEditFirstName
	StepEditLastName
	StepEditUsername
	StepEditBio
	StepCurrentPassword
	StepNewPassword
	StepMessageUsername
	StepMessageText
	StepJoinChannel
	StepReactionLink
)

func (s Step) String() string {
	switch s {
	case StepNone:
		return "none"
	case StepLogin:
		return "login"
	case StepEditFirstName:
		return "edit_first_name"
	case StepEditLastName:
		return "edit_last_name"
	case StepEditUsername:
		return "edit_username"
	case StepEditBio:
		return "edit_bio"
	case StepCurrentPassword:
		return "current_password"
	case StepNewPassword:
		return "new_password"
	case StepMessageUsername:
		return "message_username"
	case StepMessageText:
		return "message_text"
	case StepJoinChannel:
		return "join_channel"
	case StepReactionLink:
		return "reaction_link"
	default:
		return "unknown"
	}
}

// Conversation is the interaction state of one chat.
type Conversation struct {
	ChatID int64

	mu        sync.Mutex
	step      Step
	gen       uint64
	messageID int
	lang      Lang
	account   string
	scratch   map[string]string
	sessions  map[int]int64
	flow      *login.Flow
	limiter   *rate.Limiter
}

// View is a point-in-time copy of a conversation.
type View struct {
	Step      Step
	Gen       uint64
	MessageID int
	Lang      Lang
	Account   string
}

func (c *Conversation) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{Step: c.step, Gen: c.gen, MessageID: c.messageID, Lang: c.lang, Account: c.account}
}

// SetStep moves the conversation to step for account and returns the new
// generation. Any pending login is cancelled unless step is StepLogin.
func (c *Conversation) SetStep(step Step, account string) uint64 {
	c.mu.Lock()
	var stale *login.Flow
	if step != StepLogin {
		stale, c.flow = c.flow, nil
	}
	c.step = step
	c.account = account
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	if stale != nil {
		stale.Cancel()
	}
	return gen
}

// Reset returns to the home state and clears scratch data.
func (c *Conversation) Reset() uint64 {
	gen := c.SetStep(StepNone, "")
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scratch = nil
	return gen
}

// Current reports whether no step change happened since gen.
func (c *Conversation) Current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen
}

func (c *Conversation) SetMessageID(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messageID = id
}

func (c *Conversation) SetLang(lang Lang) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lang = lang
}

func (c *Conversation) Put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scratch == nil {
		c.scratch = make(map[string]string)
	}
	c.scratch[key] = value
}

func (c *Conversation) Take(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.scratch[key]
	delete(c.scratch, key)
	return v
}

// SetSessions remembers the authorization hash behind each displayed index.
func (c *Conversation) SetSessions(byIndex map[int]int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions = byIndex
}

func (c *Conversation) SessionHash(index int) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.sessions[index]
	return h, ok
}

// StartLogin replaces any in-flight login with flow.
func (c *Conversation) StartLogin(flow *login.Flow) uint64 {
	c.mu.Lock()
	stale := c.flow
	c.flow = flow
	c.mu.Unlock()

	if stale != nil {
		stale.Cancel()
	}
	return c.SetStep(StepLogin, "")
}

func (c *Conversation) Login() *login.Flow {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flow
}

// Wait blocks until the chat may be served again.
func (c *Conversation) Wait(ctx context.Context) error {
	return c.limiter.Wait(ctx)
}

// Conversations holds the state of every chat the bot talks to.
type Conversations struct {
	mu          sync.RWMutex
	byChat      map[int64]*Conversation
	lang        Lang
	minInterval time.Duration
}

func NewConversations(lang Lang, minInterval time.Duration) *Conversations {
	return &Conversations{
		byChat:      make(map[int64]*Conversation),
		lang:        lang,
		minInterval: minInterval,
	}
}

// Get returns the conversation of chatID, creating it on first use.
func (cs *Conversations) Get(chatID int64) *Conversation {
	cs.mu.RLock()
	c, ok := cs.byChat[chatID]
	cs.mu.RUnlock()
	if ok {
		return c
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if c, ok := cs.byChat[chatID]; ok {
		return c
	}
	limit := rate.Inf
	if cs.minInterval > 0 {
		limit = rate.Every(cs.minInterval)
	}
	c = &Conversation{
		ChatID:  chatID,
		lang:    cs.lang,
		limiter: rate.NewLimiter(limit, 1),
	}
	cs.byChat[chatID] = c
	return c
}

func (cs *Conversations) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.byChat)
}
