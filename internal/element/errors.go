package element

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every *NotFoundError.
	ErrNotFound = errors.New("element not found")
	// ErrNoSuchElement is returned by SearchContext.FindFirst when nothing matches.
	ErrNoSuchElement = errors.New("no such element")
	// ErrStaleElement means the node was detached between query and use.
	ErrStaleElement = errors.New("element is stale or detached from the document")
	// ErrClickIntercepted means another node would receive the click.
	ErrClickIntercepted = errors.New("element click intercepted")
	// ErrIndexOutOfRange is matched by every *IndexError.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrKeyNotImplemented is returned by PressKey for unsupported key names.
	ErrKeyNotImplemented = errors.New("key press not implemented")
)

// NotFoundError reports a lookup that ran out of attempts (or a single-pass
// lookup that matched nothing).
type NotFoundError struct {
	Selector string
	// Filter describes the predicate, empty for a plain existence query.
	Filter string
	// Err is the underlying cause, if any.
	Err error
}

func (e *NotFoundError) Error() string {
	if e.Filter == "" {
		return fmt.Sprintf("was not able to find component: %q", e.Selector)
	}
	return fmt.Sprintf("was not able to find element with %s for locator %q", e.Filter, e.Selector)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func (e *NotFoundError) Unwrap() error { return e.Err }

// IndexError reports a sub-element index beyond a candidate's match list.
// It is a contract violation and is never retried.
type IndexError struct {
	Selector string
	Index    int
	Len      int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("sub-element %q index %d out of range [0,%d)", e.Selector, e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool { return target == ErrIndexOutOfRange }
