package slack

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication indicates a missing API token or one the platform
	// rejected.
	ErrAuthentication = errors.New("slack authentication failed")

	// ErrTransport indicates a network or HTTP-level failure, or a
	// platform-reported call failure.
	ErrTransport = errors.New("slack transport failure")

	// ErrProtocol indicates a response missing expected fields.
	ErrProtocol = errors.New("unexpected slack api response")

	// ErrNoChannel indicates a recipient with no resolvable direct message
	// channel, either an unknown username or a user with no open DM.
	ErrNoChannel = errors.New("no direct message channel")
)

// RecipientError records a single recipient's delivery failure. It never
// aborts the rest of a batch.
type RecipientError struct {
	Username string
	Err      error
}

func (e *RecipientError) Error() string {
	return fmt.Sprintf("recipient %s: %v", e.Username, e.Err)
}

func (e *RecipientError) Unwrap() error {
	return e.Err
}
