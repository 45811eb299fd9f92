package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// KeyPrefix is the prefix of every record key ("session_<n>").
const KeyPrefix = "session_"

// Account is one registered end-user account as persisted by the store.
type Account struct {
	Key       string `json:"-"`
	ID        int    `json:"id"`
	APIHash   string `json:"api_hash"`
	APIID     int    `json:"api_id"`
	Phone     string `json:"phone"`
	Session   string `json:"session"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username"`
	AccountID string `json:"account_id"`
}

// DisplayName returns "First Last", falling back to the username or key.
func (a Account) DisplayName() string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name != "" {
		return name
	}
	if a.Username != "" {
		return "@" + a.Username
	}
	return a.Key
}

// Credentials returns what is needed to reconnect as this account.
func (a Account) Credentials() Credentials {
	return Credentials{APIID: a.APIID, APIHash: a.APIHash, Session: a.Session}
}

// Validate reports whether the record carries everything needed to dial.
func (a Account) Validate() error {
	switch {
	case a.Session == "":
		return fmt.Errorf("%s: session string missing", a.Key)
	case a.APIID == 0:
		return fmt.Errorf("%s: api id missing", a.Key)
	case a.APIHash == "":
		return fmt.Errorf("%s: api hash missing", a.Key)
	}
	return nil
}

// NewAccount is the input of Store.Add.
type NewAccount struct {
	APIID     int
	APIHash   string
	Phone     string
	Session   string
	FirstName string
	LastName  string
	Username  string
	AccountID string
}

// Credentials identify a platform connection. An empty Session means a
// fresh, unauthenticated connection.
type Credentials struct {
	APIID   int
	APIHash string
	Session string
}

// FormatKey builds the record key for index n.
func FormatKey(n int) string {
	return KeyPrefix + strconv.Itoa(n)
}

// ParseKey extracts n from a record key. ok is false for foreign keys.
func ParseKey(key string) (int, bool) {
	rest, found := strings.CutPrefix(key, KeyPrefix)
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// SortedKeys orders record keys by index. Foreign keys sort last.
func SortedKeys(accounts map[string]Account) []string {
	keys := make([]string, 0, len(accounts))
	for k := range accounts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, oki := ParseKey(keys[i])
		nj, okj := ParseKey(keys[j])
		if oki != okj {
			return oki
		}
		if ni != nj {
			return ni < nj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// User is the subset of a platform user the system cares about.
type User struct {
	ID         int64
	FirstName  string
	LastName   string
	Username   string
	Phone      string
	HasPhoto   bool
	Premium    bool
	Verified   bool
	Restricted bool
}

// AccountDetails is the aggregated snapshot shown for one account.
type AccountDetails struct {
	User
	Bio           string
	SessionsCount int
	Has2FA        bool
}

// ProfileUpdate carries optional profile edits. Nil fields are left as
// they currently are on the platform.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Bio       *string
	Username  *string
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Bio == nil && u.Username == nil
}

// Profile is the combined first/last/bio triple sent in one update call.
type Profile struct {
	FirstName string
	LastName  string
	Bio       string
}

// Authorization is one active login of an account.
type Authorization struct {
	Hash            int64
	DeviceModel     string
	Platform        string
	SystemVersion   string
	APIID           int
	AppName         string
	AppVersion      string
	DateCreated     int
	DateActive      int
	IP              string
	Country         string
	Region          string
	Current         bool
	OfficialApp     bool
	PasswordPending bool
}

// Session is an Authorization prepared for display.
type Session struct {
	Authorization
	Created    string
	LastActive string
}

// Terminable returns the 1-based display indices of the sessions that may be
// offered for termination. The current session is never included.
func Terminable(sessions []Session) []int {
	out := make([]int, 0, len(sessions))
	for i, s := range sessions {
		if !s.Current {
			out = append(out, i+1)
		}
	}
	return out
}

// Capabilities describes which call shapes a connected client supports.
type Capabilities struct {
	DirectReaction bool
}

// MessageRef points at one message in a public chat.
type MessageRef struct {
	Chat      string
	MessageID int
}
