// internal/element/search.go
package element

import (
	"context"
	"fmt"
)

// SearchContext is anything elements can be queried from: a live browser
// session, a saved document, or a previously resolved element.
// Selectors are CSS selectors; malformed selectors yield zero results.
type SearchContext interface {
	// FindAll returns every element matching selector in document order.
	// No match is an empty slice, not an error.
	FindAll(ctx context.Context, selector string) ([]Element, error)
	// FindFirst returns the first match, or an error wrapping ErrNoSuchElement.
	FindFirst(ctx context.Context, selector string) (Element, error)
}

// Element is a single node handed out by a SearchContext. Implementations
// report a node that left the document as ErrStaleElement and a click that
// would land on another node as ErrClickIntercepted.
type Element interface {
	SearchContext

	Text(ctx context.Context) (string, error)
	Displayed(ctx context.Context) (bool, error)
	Enabled(ctx context.Context) (bool, error)
	// Attribute returns the attribute value and whether it is present at all.
	Attribute(ctx context.Context, name string) (string, bool, error)
	CSSValue(ctx context.Context, property string) (string, error)

	Click(ctx context.Context) error
	Clear(ctx context.Context) error
	SendKeys(ctx context.Context, text string) error
	Press(ctx context.Context, key Key) error
}

// Key names a non-printable keyboard key.
type Key string

const (
	KeyEnter     Key = "Enter"
	KeyBackspace Key = "Backspace"
)

// First returns els[0], or an error wrapping ErrNoSuchElement when els is
// empty. Backends use it to derive FindFirst from FindAll.
func First(els []Element, selector string) (Element, error) {
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchElement, selector)
	}
	return els[0], nil
}
