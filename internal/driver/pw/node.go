package pw

import (
	"context"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/xkilldash9x/locus/internal/driver/script"
	"github.com/xkilldash9x/locus/internal/element"
)

// Node is an element handle of a Firefox page.
type Node struct {
	s *Session
	h playwright.ElementHandle
}

func (n *Node) FindAll(ctx context.Context, selector string) ([]element.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	handles, err := n.h.QuerySelectorAll(selector)
	return n.s.wrap(handles, selector, err)
}

func (n *Node) FindFirst(ctx context.Context, selector string) (element.Element, error) {
	els, err := n.FindAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	return element.First(els, selector)
}

// bind adapts a this-bound function declaration to Playwright's
// element-as-first-argument convention.
func bind(fn string) string {
	return fmt.Sprintf("(el, arg) => (%s).call(el, arg)", fn)
}

func (n *Node) eval(ctx context.Context, fn string, arg interface{}) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := n.h.Evaluate(bind(fn), arg)
	if err != nil {
		return nil, classify(err)
	}
	return res, nil
}

func (n *Node) Text(ctx context.Context) (string, error) {
	res, err := n.eval(ctx, script.Text, nil)
	if err != nil {
		return "", err
	}
	text, _ := res.(string)
	return strings.TrimSpace(text), nil
}

func (n *Node) Displayed(ctx context.Context) (bool, error) {
	res, err := n.eval(ctx, script.Displayed, nil)
	if err != nil {
		return false, err
	}
	ok, _ := res.(bool)
	return ok, nil
}

func (n *Node) Enabled(ctx context.Context) (bool, error) {
	res, err := n.eval(ctx, script.Enabled, nil)
	if err != nil {
		return false, err
	}
	ok, _ := res.(bool)
	return ok, nil
}

func (n *Node) Attribute(ctx context.Context, name string) (string, bool, error) {
	res, err := n.eval(ctx, script.Attribute, name)
	if err != nil {
		return "", false, err
	}
	m, _ := res.(map[string]interface{})
	present, _ := m["present"].(bool)
	value, _ := m["value"].(string)
	return value, present, nil
}

func (n *Node) CSSValue(ctx context.Context, property string) (string, error) {
	res, err := n.eval(ctx, script.CSSValue, property)
	if err != nil {
		return "", err
	}
	value, _ := res.(string)
	return value, nil
}

// Click checks for a covering node before clicking so interception is
// reported at once instead of after Playwright's actionability timeout.
func (n *Node) Click(ctx context.Context) error {
	res, err := n.eval(ctx, script.Interceptor, nil)
	if err != nil {
		return err
	}
	if hit, _ := res.(string); hit != "" {
		return fmt.Errorf("%w: %s intercepts pointer events", element.ErrClickIntercepted, hit)
	}
	if err := n.h.Click(playwright.ElementHandleClickOptions{Timeout: timeout(ctx)}); err != nil {
		return classify(err)
	}
	return nil
}

func (n *Node) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.h.Fill("", playwright.ElementHandleFillOptions{Timeout: timeout(ctx)}); err != nil {
		return classify(err)
	}
	return nil
}

func (n *Node) SendKeys(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.h.Type(text, playwright.ElementHandleTypeOptions{Timeout: timeout(ctx)}); err != nil {
		return classify(err)
	}
	return nil
}

func (n *Node) Press(ctx context.Context, key element.Key) error {
	switch key {
	case element.KeyEnter, element.KeyBackspace:
	default:
		return fmt.Errorf("%w: %q", element.ErrKeyNotImplemented, key)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	// Playwright key names match element.Key values.
	if err := n.h.Press(string(key), playwright.ElementHandlePressOptions{Timeout: timeout(ctx)}); err != nil {
		return classify(err)
	}
	return nil
}
