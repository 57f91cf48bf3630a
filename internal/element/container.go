// internal/element/container.go
package element

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Container is a composed selector bound to a search context. It holds no
// elements; every call queries the DOM again.
type Container struct {
	sc       SearchContext
	selector string
	s        *settings
}

// Selector returns the effective composed selector.
func (c *Container) Selector() string { return c.selector }

// AddSubElement returns a new Container for selector nested under c.
// c itself is left untouched.
func (c *Container) AddSubElement(selector string) *Container {
	c.s.logger.Info("Adding a sub-element.", zap.String("parent", c.selector), zap.String("sub_element", selector))
	return c.s.define(c.sc, selector, c.selector)
}

// resolveAll returns the current candidate set, retrying on an empty result.
func (c *Container) resolveAll(ctx context.Context) ([]Element, error) {
	log := c.s.logger.With(zap.String("selector", c.selector))

	els, err := poll(ctx, c.s.existence, c.s.sleep,
		func(ctx context.Context, attempt int) probeResult[[]Element] {
			log.Info("Starting attempt to define component.", zap.Int("attempt", attempt))
			candidates, err := c.sc.FindAll(ctx, c.selector)
			if err != nil {
				return classify[[]Element](err)
			}
			if len(candidates) == 0 {
				return notFoundYet[[]Element](nil)
			}
			log.Debug("Container defined.", zap.Int("attempt", attempt), zap.Int("count", len(candidates)))
			return found(candidates)
		},
		func(attempt int, reason error) {
			log.Warn("Attempt failed. Waiting and starting again.", zap.Int("attempt", attempt), zap.NamedError("reason", reason))
		},
	)
	if isExhausted(err) {
		log.Error("Was not able to find component.")
		return nil, &NotFoundError{Selector: c.selector, Err: errors.Unwrap(err)}
	}
	return els, err
}

// matcher decides whether one candidate satisfies a filter.
type matcher func(ctx context.Context, el Element) (bool, error)

// first polls until match accepts a candidate, returning the first one in
// document order.
func (c *Container) first(ctx context.Context, filter string, match matcher) (*Handle, error) {
	log := c.s.logger.With(zap.String("selector", c.selector), zap.String("filter", filter))

	el, err := poll(ctx, c.s.resolution, c.s.sleep,
		func(ctx context.Context, attempt int) probeResult[Element] {
			candidates, err := c.resolveAll(ctx)
			if err != nil {
				return classify[Element](err)
			}
			for _, candidate := range candidates {
				ok, err := match(ctx, candidate)
				if err != nil {
					return classify[Element](err)
				}
				if ok {
					return found(candidate)
				}
			}
			return notFoundYet[Element](nil)
		},
		func(attempt int, reason error) {
			log.Debug("Failed to locate element.", zap.NamedError("reason", reason))
			log.Warn("Failed attempt.", zap.Int("attempt", attempt))
		},
	)
	if isExhausted(err) {
		log.Error("Filter exhausted its attempts.")
		return nil, &NotFoundError{Selector: c.selector, Filter: filter, Err: errors.Unwrap(err)}
	}
	if err != nil {
		return nil, err
	}
	return newHandle(el, c.s), nil
}

// -- Filter strategies --

// ByText picks the first candidate whose text equals text.
func (c *Container) ByText(ctx context.Context, text string) (*Handle, error) {
	return c.first(ctx, fmt.Sprintf("text %q", text), textMatches(text, equals))
}

// ByTextContaining picks the first candidate whose text contains text.
func (c *Container) ByTextContaining(ctx context.Context, text string) (*Handle, error) {
	return c.first(ctx, fmt.Sprintf("text containing %q", text), textMatches(text, strings.Contains))
}

// ByAttribute picks the first candidate whose attribute name equals value.
func (c *Container) ByAttribute(ctx context.Context, name, value string) (*Handle, error) {
	return c.first(ctx, fmt.Sprintf("attribute %q=%q", name, value), attributeMatches(name, value, equals))
}

// ByAttributeContaining picks the first candidate whose attribute name contains value.
func (c *Container) ByAttributeContaining(ctx context.Context, name, value string) (*Handle, error) {
	return c.first(ctx, fmt.Sprintf("attribute %q containing %q", name, value), attributeMatches(name, value, strings.Contains))
}

// BySubElementText picks the first candidate whose first child matching
// childSelector has text equal to text. Candidates without such a child are
// skipped rather than ending the attempt.
func (c *Container) BySubElementText(ctx context.Context, childSelector, text string) (*Handle, error) {
	return c.first(ctx,
		fmt.Sprintf("sub-element %q text %q", childSelector, text),
		firstChild(childSelector, textMatches(text, equals)))
}

// BySubElementTextContaining is BySubElementText with a containment test.
func (c *Container) BySubElementTextContaining(ctx context.Context, childSelector, text string) (*Handle, error) {
	return c.first(ctx,
		fmt.Sprintf("sub-element %q text containing %q", childSelector, text),
		firstChild(childSelector, textMatches(text, strings.Contains)))
}

// BySubElementsTextContaining picks the first candidate having any child
// matching childSelector whose text contains text.
func (c *Container) BySubElementsTextContaining(ctx context.Context, childSelector, text string) (*Handle, error) {
	return c.first(ctx,
		fmt.Sprintf("any sub-element %q text containing %q", childSelector, text),
		anyChild(childSelector, textMatches(text, strings.Contains)))
}

// BySubElementAttribute picks the first candidate whose first child matching
// childSelector has attribute name equal to value.
func (c *Container) BySubElementAttribute(ctx context.Context, childSelector, name, value string) (*Handle, error) {
	return c.first(ctx,
		fmt.Sprintf("sub-element %q attribute %q=%q", childSelector, name, value),
		firstChild(childSelector, attributeMatches(name, value, equals)))
}

// BySubElementAttributeContaining is BySubElementAttribute with a containment test.
func (c *Container) BySubElementAttributeContaining(ctx context.Context, childSelector, name, value string) (*Handle, error) {
	return c.first(ctx,
		fmt.Sprintf("sub-element %q attribute %q containing %q", childSelector, name, value),
		firstChild(childSelector, attributeMatches(name, value, strings.Contains)))
}

// BySubElementsAttributeContaining picks the first candidate having any child
// matching childSelector whose attribute name contains value.
func (c *Container) BySubElementsAttributeContaining(ctx context.Context, childSelector, name, value string) (*Handle, error) {
	return c.first(ctx,
		fmt.Sprintf("any sub-element %q attribute %q containing %q", childSelector, name, value),
		anyChild(childSelector, attributeMatches(name, value, strings.Contains)))
}

// BySubElementTextAt picks the first candidate whose child at index (among
// matches of childSelector) has text equal to text. An index past the end of
// any inspected candidate's children fails immediately with an *IndexError.
func (c *Container) BySubElementTextAt(ctx context.Context, childSelector string, index int, text string) (*Handle, error) {
	return c.first(ctx,
		fmt.Sprintf("sub-element %q[%d] text %q", childSelector, index, text),
		childAt(childSelector, index, textMatches(text, equals)))
}

// BySubElementAttributeContainingAt is the attribute counterpart of BySubElementTextAt.
func (c *Container) BySubElementAttributeContainingAt(ctx context.Context, childSelector string, index int, name, value string) (*Handle, error) {
	return c.first(ctx,
		fmt.Sprintf("sub-element %q[%d] attribute %q containing %q", childSelector, index, name, value),
		childAt(childSelector, index, attributeMatches(name, value, strings.Contains)))
}

// -- Single pass lookups --

// IndexOfText returns the position of the first candidate whose text equals
// text, or -1. The candidate set is resolved once.
func (c *Container) IndexOfText(ctx context.Context, text string) (int, error) {
	return c.indexOf(ctx, text, textMatches(text, equals))
}

// IndexOfAttribute returns the position of the first candidate whose attribute
// name equals value, or -1. The candidate set is resolved once.
func (c *Container) IndexOfAttribute(ctx context.Context, name, value string) (int, error) {
	return c.indexOf(ctx, value, attributeMatches(name, value, equals))
}

func (c *Container) indexOf(ctx context.Context, target string, match matcher) (int, error) {
	candidates, err := c.resolveAll(ctx)
	if err != nil {
		return -1, err
	}
	for i, candidate := range candidates {
		ok, err := match(ctx, candidate)
		if err != nil {
			return -1, err
		}
		if ok {
			c.s.logger.Info("Index located.", zap.String("target", target), zap.Int("index", i))
			return i, nil
		}
	}
	c.s.logger.Info("No candidate matched.", zap.String("target", target))
	return -1, nil
}

// All returns a Handle for every current candidate.
func (c *Container) All(ctx context.Context) ([]*Handle, error) {
	candidates, err := c.resolveAll(ctx)
	if err != nil {
		return nil, err
	}
	handles := make([]*Handle, 0, len(candidates))
	for _, el := range candidates {
		handles = append(handles, newHandle(el, c.s))
	}
	return handles, nil
}

// AllSubElementsAt returns, for each candidate, its child at index among the
// matches of childSelector.
func (c *Container) AllSubElementsAt(ctx context.Context, childSelector string, index int) ([]*Handle, error) {
	candidates, err := c.resolveAll(ctx)
	if err != nil {
		return nil, err
	}
	handles := make([]*Handle, 0, len(candidates))
	for _, el := range candidates {
		children, err := el.FindAll(ctx, childSelector)
		if err != nil {
			return nil, err
		}
		if index < 0 || index >= len(children) {
			return nil, &IndexError{Selector: childSelector, Index: index, Len: len(children)}
		}
		handles = append(handles, newHandle(children[index], c.s))
	}
	return handles, nil
}

// -- Matchers --

func equals(a, b string) bool { return a == b }

func textMatches(target string, cmp func(got, target string) bool) matcher {
	return func(ctx context.Context, el Element) (bool, error) {
		text, err := el.Text(ctx)
		if err != nil {
			return false, err
		}
		return cmp(text, target), nil
	}
}

// attributeMatches never matches an absent attribute.
func attributeMatches(name, value string, cmp func(got, target string) bool) matcher {
	return func(ctx context.Context, el Element) (bool, error) {
		got, ok, err := el.Attribute(ctx, name)
		if err != nil || !ok {
			return false, err
		}
		return cmp(got, value), nil
	}
}

// firstChild applies inner to the first child matching selector; a missing
// child counts as a mismatch.
func firstChild(selector string, inner matcher) matcher {
	return func(ctx context.Context, el Element) (bool, error) {
		child, err := el.FindFirst(ctx, selector)
		if errors.Is(err, ErrNoSuchElement) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return inner(ctx, child)
	}
}

func anyChild(selector string, inner matcher) matcher {
	return func(ctx context.Context, el Element) (bool, error) {
		children, err := el.FindAll(ctx, selector)
		if err != nil {
			return false, err
		}
		for _, child := range children {
			ok, err := inner(ctx, child)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	}
}

func childAt(selector string, index int, inner matcher) matcher {
	return func(ctx context.Context, el Element) (bool, error) {
		children, err := el.FindAll(ctx, selector)
		if err != nil {
			return false, err
		}
		if index < 0 || index >= len(children) {
			return false, &IndexError{Selector: selector, Index: index, Len: len(children)}
		}
		return inner(ctx, children[index])
	}
}
