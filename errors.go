package showcase

import (
	"errors"
	"fmt"
)

// Sentinel errors. Programmer errors (index out of range, unknown category,
// missing handles) are returned immediately and never swallowed.
var (
	// ErrIndexOutOfRange is returned when an item or frame index is outside
	// the current list.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrCategoryNotFound is returned when a category id does not exist in
	// the resolved catalog.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrNoWidthInRange is the non-fatal warning reported by ResolveWidths
	// when no available width lies within [min, max].
	ErrNoWidthInRange = errors.New("no width in range")

	// ErrInvalidComposition is returned when catalog data is malformed.
	ErrInvalidComposition = errors.New("invalid composition")

	// ErrNotLoaded is returned by viewer operations that need a composition
	// before one has been loaded.
	ErrNotLoaded = errors.New("composition not loaded")

	// ErrInvalidFrameCount is returned when a spin is built with no frames.
	ErrInvalidFrameCount = errors.New("frame count must be positive")

	// ErrNilScheduler is returned when an engine is built without a
	// Scheduler.
	ErrNilScheduler = errors.New("nil scheduler")
)

// AssetError reports a failed image, video, or frame load. It is scoped to
// a single item: siblings are unaffected and nothing is retried.
type AssetError struct {
	Index int    // item index in the resolved catalog
	Frame int    // spin frame index, or -1 for single-asset items
	URL   string // source that failed, if known
	Err   error
}

func (e *AssetError) Error() string {
	if e.Frame >= 0 {
		return fmt.Sprintf("asset %d frame %d (%s): %v", e.Index, e.Frame, e.URL, e.Err)
	}
	return fmt.Sprintf("asset %d (%s): %v", e.Index, e.URL, e.Err)
}

// Unwrap returns the underlying load error.
func (e *AssetError) Unwrap() error { return e.Err }

// RetryableError wraps an error to indicate the catalog fetch should be
// attempted again. Wrap transient failures (network timeouts, 5xx
// responses) with this type.
type RetryableError struct{ Err error }

// Retryable wraps an error as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}
