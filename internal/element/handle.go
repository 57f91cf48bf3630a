package element

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Handle is one element picked by a filter strategy. It is meant to be used
// straight away, either as an action target or as the root of a deeper lookup.
type Handle struct {
	el Element
	s  *settings
}

func newHandle(el Element, s *settings) *Handle {
	if el == nil {
		panic("element: nil Element")
	}
	return &Handle{el: el, s: s}
}

// Element exposes the underlying element, which is itself a SearchContext.
func (h *Handle) Element() Element { return h.el }

// Actions returns the action layer for this element.
func (h *Handle) Actions() *Actions { return newActions(h.el, h.s) }

// Define starts a fresh lookup rooted at this element.
func (h *Handle) Define(selector string) *Container {
	return h.s.define(h.el, selector, "")
}

// SubElement returns the first child matching selector. Single pass.
func (h *Handle) SubElement(ctx context.Context, selector string) (*Actions, error) {
	child, err := h.el.FindFirst(ctx, selector)
	if errors.Is(err, ErrNoSuchElement) {
		return nil, &NotFoundError{Selector: selector, Err: err}
	}
	if err != nil {
		return nil, err
	}
	h.s.logger.Debug("Found sub-element.", zap.String("selector", selector))
	return newActions(child, h.s), nil
}

// SubElements returns every child matching selector. Single pass; no match is
// an empty slice.
func (h *Handle) SubElements(ctx context.Context, selector string) ([]*Actions, error) {
	children, err := h.el.FindAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	actions := make([]*Actions, 0, len(children))
	for _, child := range children {
		actions = append(actions, newActions(child, h.s))
	}
	h.s.logger.Debug("Found sub-elements.", zap.String("selector", selector), zap.Int("count", len(actions)))
	return actions, nil
}

// SubElementByText returns the first child matching selector whose text equals text.
func (h *Handle) SubElementByText(ctx context.Context, selector, text string) (*Actions, error) {
	return h.pick(ctx, selector, fmt.Sprintf("text %q", text), textMatches(text, equals))
}

// SubElementByAttribute returns the first child matching selector whose
// attribute name equals value.
func (h *Handle) SubElementByAttribute(ctx context.Context, selector, name, value string) (*Actions, error) {
	return h.pick(ctx, selector, fmt.Sprintf("attribute %q=%q", name, value), attributeMatches(name, value, equals))
}

// SubElementByAttributeContaining returns the first child matching selector
// whose attribute name contains value.
func (h *Handle) SubElementByAttributeContaining(ctx context.Context, selector, name, value string) (*Actions, error) {
	return h.pick(ctx, selector, fmt.Sprintf("attribute %q containing %q", name, value), attributeMatches(name, value, strings.Contains))
}

func (h *Handle) pick(ctx context.Context, selector, filter string, match matcher) (*Actions, error) {
	h.s.logger.Debug("Getting sub-element.", zap.String("selector", selector), zap.String("filter", filter))
	children, err := h.el.FindAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		ok, err := match(ctx, child)
		if err != nil {
			return nil, err
		}
		if ok {
			return newActions(child, h.s), nil
		}
	}
	return nil, &NotFoundError{Selector: selector, Filter: filter}
}
