package supabase

import (
	"fmt"
	"time"
)

// InsertError is a non-2xx response from the hosted table insert. Status 0
// means the request never reached the server (network failure).
type InsertError struct {
	Status int
	Body   string
}

func (e *InsertError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("insert failed: network error: %s", e.Body)
	}
	return fmt.Sprintf("insert failed: status %d: %s", e.Status, e.Body)
}

// TimeoutError means the call exceeded its deadline. The underlying HTTP
// request is cancelled with the context; nothing keeps running in the
// background.
type TimeoutError struct {
	Bound time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s", e.Bound)
}

// OTPError wraps a failed passcode dispatch.
type OTPError struct {
	Cause error
}

func (e *OTPError) Error() string {
	return fmt.Sprintf("otp dispatch failed: %v", e.Cause)
}

func (e *OTPError) Unwrap() error {
	return e.Cause
}
