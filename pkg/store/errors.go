package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("store: not found")

// MessageLister is implemented by errors that carry user-facing messages.
type MessageLister interface {
	error
	Messages() []string
}

// ValidationError is returned when a record is rejected on write. Each
// message is meant to be shown to the user on its own.
type ValidationError struct {
	MessageList []string `json:"errorMessageList"`
}

func (e *ValidationError) Error() string {
	return "store: validation failed: " + strings.Join(e.MessageList, "; ")
}

// Messages implements MessageLister.
func (e *ValidationError) Messages() []string {
	return append([]string(nil), e.MessageList...)
}

// FetchError is returned when the schedule for a month cannot be loaded.
type FetchError struct {
	Month       string
	MessageList []string
	Err         error
}

func (e *FetchError) Error() string {
	msg := strings.Join(e.MessageList, "; ")
	if e.Err != nil {
		if msg != "" {
			msg += ": "
		}
		msg += e.Err.Error()
	}
	return fmt.Sprintf("store: fetch schedule for %s: %s", e.Month, msg)
}

// Messages implements MessageLister.
func (e *FetchError) Messages() []string {
	if len(e.MessageList) == 0 && e.Err != nil {
		return []string{e.Err.Error()}
	}
	return append([]string(nil), e.MessageList...)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// MessagesOf extracts the user-facing messages from err. Errors that do not
// implement MessageLister yield their Error() text.
func MessagesOf(err error) []string {
	if err == nil {
		return nil
	}
	var ml MessageLister
	if errors.As(err, &ml) {
		return ml.Messages()
	}
	return []string{err.Error()}
}
