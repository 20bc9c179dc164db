// Package errors defines the error taxonomy shared by the refresh pipeline.
package errors

import (
	"errors"
	"fmt"
)

// Refresh pipeline errors. Each one aborts only the refresh that produced it
// and leaves the published snapshot untouched.
var (
	ErrDirectoryNotFound         = errors.New("directory not found")
	ErrDirectoryPermissionDenied = errors.New("directory permission denied")
	ErrDirectoryRead             = errors.New("directory read failed")
	ErrInvalidPattern            = errors.New("invalid pattern")
	ErrCodecFailure              = errors.New("codec failure")

	// ErrOverflowed is soft: the snapshot is stale but the system stays live.
	ErrOverflowed = errors.New("compressed snapshot exceeds buffer capacity")
)

// Watch errors
var (
	ErrWatchArmFailure   = errors.New("failed to arm watch")
	ErrRetargetQueueFull = errors.New("retarget queue full")
	ErrSupervisorStopped = errors.New("watch supervisor stopped")
)

// Configuration and service errors
var (
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrUnknownField      = errors.New("unknown configuration field")
	ErrServiceNotRunning = errors.New("service not running")
)

// Wrap wraps an error with additional context
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is checks if the error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As checks if the error can be unwrapped to the target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// IsSoft reports whether err leaves the pipeline live with a stale snapshot
// rather than signalling a broken input.
func IsSoft(err error) bool {
	return errors.Is(err, ErrOverflowed)
}

// Kind returns a short stable label for err, used in metrics and history.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrDirectoryNotFound):
		return "not_found"
	case errors.Is(err, ErrDirectoryPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrDirectoryRead):
		return "read_error"
	case errors.Is(err, ErrInvalidPattern):
		return "invalid_pattern"
	case errors.Is(err, ErrCodecFailure):
		return "codec_failure"
	case errors.Is(err, ErrOverflowed):
		return "overflowed"
	case errors.Is(err, ErrWatchArmFailure):
		return "watch_arm_failure"
	default:
		return "error"
	}
}
