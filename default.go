package exceptx

import (
	"errors"

	"github.com/comalice/exceptx/internal/core"
)

// ErrActiveRegions is returned by SetDefault while the default stack has
// installed regions.
var ErrActiveRegions = errors.New("default stack has active regions")

var defaultStack = core.NewStack()

// Default returns the process-wide stack used by the package-level functions.
func Default() *Stack {
	return defaultStack
}

// SetDefault replaces the process-wide stack. It fails while regions are
// installed on the current one.
func SetDefault(s *Stack) error {
	if defaultStack.Depth() > 0 {
		return ErrActiveRegions
	}
	defaultStack = s
	return nil
}

// Try starts a region on the default stack.
func Try(body func()) *Region {
	return defaultStack.Try(body)
}

// Raise raises an exception on the default stack. It does not return.
func Raise(kind Kind, payload any) {
	defaultStack.Raise(kind, payload)
}

// Recover arms a recovery boundary on the default stack.
func Recover(body func()) error {
	return defaultStack.Recover(body)
}

// Pending returns the exception pending at the default stack's current region.
func Pending() Exception {
	return defaultStack.Pending()
}
