package bot

import (
	"errors"
	"html"
	"strconv"
	"strings"

	"github.com/danhigham/telefleet/internal/accounts"
	"github.com/danhigham/telefleet/internal/broadcast"
	"github.com/danhigham/telefleet/internal/domain"
)

func escape(s string) string {
	return html.EscapeString(s)
}

func yesNo(lang Lang, v bool) string {
	if v {
		return T(lang, "yes")
	}
	return T(lang, "no")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return html.EscapeString(s)
}

func detailsText(lang Lang, d *domain.AccountDetails) string {
	username := "-"
	if d.Username != "" {
		username = "@" + html.EscapeString(d.Username)
	}
	return T(lang, "details",
		"id", d.ID,
		"first_name", orDash(d.FirstName),
		"last_name", orDash(d.LastName),
		"username", username,
		"phone", orDash(d.Phone),
		"bio", orDash(d.Bio),
		"has_photo", yesNo(lang, d.HasPhoto),
		"premium", yesNo(lang, d.Premium),
		"verified", yesNo(lang, d.Verified),
		"restricted", yesNo(lang, d.Restricted),
		"sessions", d.SessionsCount,
		"has_2fa", yesNo(lang, d.Has2FA),
	)
}

// sessionsText renders the session list and returns the displayed index
// to authorization hash mapping of the terminable entries.
func sessionsText(lang Lang, sessions []domain.Session) (string, map[int]int64) {
	byIndex := make(map[int]int64)
	if len(sessions) == 0 {
		return T(lang, "no_sessions"), byIndex
	}

	for _, n := range domain.Terminable(sessions) {
		byIndex[n] = sessions[n-1].Hash
	}

	var b strings.Builder
	b.WriteString(T(lang, "sessions_header"))
	for i, s := range sessions {
		n := i + 1
		current := ""
		if s.Current {
			current = T(lang, "session_current")
		}

		lines := []string{
			T(lang, "session_number", "number", n, "current", current),
			T(lang, "session_device", "device", orDash(s.DeviceModel)),
			T(lang, "session_platform", "platform", orDash(s.Platform), "system", html.EscapeString(s.SystemVersion)),
			T(lang, "session_app", "app", orDash(s.AppName), "version", html.EscapeString(s.AppVersion)),
			T(lang, "session_created", "date", s.Created),
			T(lang, "session_active", "date", s.LastActive),
			T(lang, "session_ip", "ip", orDash(s.IP)),
			T(lang, "session_location", "country", orDash(s.Country), "region", orDash(s.Region)),
		}
		if s.OfficialApp {
			lines = append(lines, T(lang, "session_official"))
		}
		if s.PasswordPending {
			lines = append(lines, T(lang, "session_pending"))
		}
		lines = append(lines, T(lang, "session_hash", "hash", strconv.FormatInt(s.Hash, 10)))

		b.WriteString(strings.Join(lines, "\n"))
		if n < len(sessions) {
			b.WriteString("\n\n" + strings.Repeat("-", 30) + "\n\n")
		}
	}
	return b.String(), byIndex
}

func reportText(lang Lang, r *broadcast.Report) string {
	return T(lang, "broadcast_done", "ok", r.Succeeded, "total", r.Total)
}

// errorText converts an operation error into operator-facing text.
func errorText(lang Lang, err error) string {
	var fw *domain.FloodWaitError
	switch {
	case errors.As(err, &fw):
		return T(lang, "flood_wait", "seconds", int(fw.Wait.Seconds()))
	case errors.Is(err, domain.ErrAccountNotFound):
		return T(lang, "account_gone")
	case errors.Is(err, domain.ErrSessionInvalid):
		return T(lang, "session_dead")
	case errors.Is(err, domain.ErrInvalidMessageLink):
		return T(lang, "bad_link")
	case errors.Is(err, domain.ErrCurrentSession):
		return T(lang, "current_protected")
	case errors.Is(err, domain.ErrInvalidPassword):
		return T(lang, "bad_password")
	case errors.Is(err, accounts.ErrCurrentPasswordRequired):
		return T(lang, "need_current_2fa")
	default:
		return T(lang, "error")
	}
}
