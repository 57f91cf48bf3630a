package rod

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"

	"github.com/xkilldash9x/locus/internal/driver/script"
	"github.com/xkilldash9x/locus/internal/element"
)

// Node is an element of an Edge page.
type Node struct {
	s  *Session
	el *rod.Element
}

func (n *Node) String() string { return n.el.String() }

func (n *Node) FindAll(ctx context.Context, selector string) ([]element.Element, error) {
	found, err := n.el.Context(ctx).Elements(selector)
	return wrap(n.s, found, selector, err)
}

func (n *Node) FindFirst(ctx context.Context, selector string) (element.Element, error) {
	els, err := n.FindAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	return element.First(els, selector)
}

func (n *Node) eval(ctx context.Context, js string, args ...interface{}) (*proto.RuntimeRemoteObject, error) {
	res, err := n.el.Context(ctx).Eval(js, args...)
	if err != nil {
		return nil, classify(err)
	}
	return res, nil
}

func (n *Node) Text(ctx context.Context) (string, error) {
	res, err := n.eval(ctx, script.Text)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Value.Str()), nil
}

func (n *Node) Displayed(ctx context.Context) (bool, error) {
	res, err := n.eval(ctx, script.Displayed)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

func (n *Node) Enabled(ctx context.Context) (bool, error) {
	res, err := n.eval(ctx, script.Enabled)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

func (n *Node) Attribute(ctx context.Context, name string) (string, bool, error) {
	res, err := n.eval(ctx, script.Attribute, name)
	if err != nil {
		return "", false, err
	}
	return res.Value.Get("value").Str(), res.Value.Get("present").Bool(), nil
}

func (n *Node) CSSValue(ctx context.Context, property string) (string, error) {
	res, err := n.eval(ctx, script.CSSValue, property)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// Click checks interactability first; rod's own click would otherwise wait
// for a covering node to go away.
func (n *Node) Click(ctx context.Context) error {
	el := n.el.Context(ctx)
	if err := el.ScrollIntoView(); err != nil {
		return classify(err)
	}
	if _, err := el.Interactable(); err != nil {
		return classify(err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return classify(err)
	}
	return nil
}

func (n *Node) Clear(ctx context.Context) error {
	_, err := n.eval(ctx, script.Clear)
	return err
}

func (n *Node) SendKeys(ctx context.Context, text string) error {
	if err := n.el.Context(ctx).Input(text); err != nil {
		return classify(err)
	}
	return nil
}

func (n *Node) Press(ctx context.Context, key element.Key) error {
	k, ok := keyFor(key)
	if !ok {
		return fmt.Errorf("%w: %q", element.ErrKeyNotImplemented, key)
	}
	el := n.el.Context(ctx)
	if err := el.Focus(); err != nil {
		return classify(err)
	}
	if err := el.Type(k); err != nil {
		return classify(err)
	}
	return nil
}

func keyFor(key element.Key) (input.Key, bool) {
	switch key {
	case element.KeyEnter:
		return input.Enter, true
	case element.KeyBackspace:
		return input.Backspace, true
	default:
		return 0, false
	}
}
