package quotefed

import (
	"errors"
	"fmt"
)

// RemoteError wraps a failure talking to the wiki API: transport errors,
// non-200 responses, and malformed JSON bodies. These are always retryable.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s failed: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Sentinel failures for the non-transport stages of a fetch attempt. None of
// these reach callers directly; they only drive retries and attempt logging.
var (
	// ErrNoPageID means the random-page response carried no usable page id.
	ErrNoPageID = errors.New("no page identifier in response")

	// ErrInvalidSection means the wiki reported the requested section does
	// not exist. Distinct from a section that exists but has no list items.
	ErrInvalidSection = errors.New("section does not exist")

	// ErrNoCandidates means the rendered section contained no quote
	// candidates to choose from.
	ErrNoCandidates = errors.New("no quote candidates in section")

	// ErrRejected means the chosen candidate failed validation.
	ErrRejected = errors.New("candidate rejected")
)

// RetryExhaustedError is the only error surfaced by GetRandomQuote. It means
// every attempt in the budget failed somewhere in the pipeline. LastReason
// carries the final attempt's failure for diagnostics.
type RetryExhaustedError struct {
	Attempts   int
	LastReason error
}

func (e *RetryExhaustedError) Error() string {
	if e.LastReason != nil {
		return fmt.Sprintf("no valid quote found after %d attempts (last failure: %v)", e.Attempts, e.LastReason)
	}
	return fmt.Sprintf("no valid quote found after %d attempts", e.Attempts)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.LastReason
}
