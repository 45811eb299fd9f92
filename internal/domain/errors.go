package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrAccountNotFound     = errors.New("session not found")
	ErrSessionInvalid      = errors.New("session is no longer valid")
	ErrInvalidCode         = errors.New("invalid code")
	ErrInvalidPassword     = errors.New("invalid password")
	ErrPasswordNeeded      = errors.New("two-step verification is enabled")
	ErrNoSessionsSpecified = errors.New("no sessions specified to terminate")
	ErrCurrentSession      = errors.New("the current session cannot be terminated")
	ErrInvalidMessageLink  = errors.New("invalid message link")
	ErrLoginNotActive      = errors.New("no login in progress")
	ErrInvalidAPIID        = errors.New("api id must be a positive number")
)

// FloodWaitError is returned when the platform asks the client to slow down.
type FloodWaitError struct {
	Wait time.Duration
}

func (e *FloodWaitError) Error() string {
	return fmt.Sprintf("flood wait: retry after %s", e.Wait)
}
