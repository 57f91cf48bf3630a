package cdp

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/xkilldash9x/locus/internal/driver/script"
	"github.com/xkilldash9x/locus/internal/element"
)

// Node is a DOM node of a Chrome tab.
type Node struct {
	s    *Session
	node *cdp.Node
}

func (n *Node) String() string { return n.node.FullXPath() }

func (n *Node) FindAll(ctx context.Context, selector string) ([]element.Element, error) {
	return n.s.query(ctx, selector, chromedp.FromNode(n.node))
}

func (n *Node) FindFirst(ctx context.Context, selector string) (element.Element, error) {
	els, err := n.FindAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	return element.First(els, selector)
}

// call runs fn on the node with this bound to it.
func (n *Node) call(ctx context.Context, fn string, res interface{}, args ...interface{}) error {
	return n.s.run(ctx, callOn(n.node, fn, res, args...))
}

// callOn resolves node to a remote object and calls fn with it as this.
func callOn(node *cdp.Node, fn string, res interface{}, args ...interface{}) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithBackendNodeID(node.BackendNodeID).Do(ctx)
		if err != nil {
			return err
		}
		err = chromedp.CallFunctionOn(fn, res,
			func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
				return p.WithObjectID(obj.ObjectID)
			},
			args...,
		).Do(ctx)
		// Release fails once the page navigated away; nothing to do then.
		_ = runtime.ReleaseObject(obj.ObjectID).Do(ctx)
		return err
	})
}

func (n *Node) Text(ctx context.Context) (string, error) {
	var text string
	if err := n.call(ctx, script.Text, &text); err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (n *Node) Displayed(ctx context.Context) (bool, error) {
	var ok bool
	err := n.call(ctx, script.Displayed, &ok)
	return ok, err
}

func (n *Node) Enabled(ctx context.Context) (bool, error) {
	var ok bool
	err := n.call(ctx, script.Enabled, &ok)
	return ok, err
}

func (n *Node) Attribute(ctx context.Context, name string) (string, bool, error) {
	var res script.AttributeResult
	if err := n.call(ctx, script.Attribute, &res, name); err != nil {
		return "", false, err
	}
	return res.Value, res.Present, nil
}

func (n *Node) CSSValue(ctx context.Context, property string) (string, error) {
	var value string
	err := n.call(ctx, script.CSSValue, &value, property)
	return value, err
}

// Click fails with ErrClickIntercepted when another node covers the centre
// of this one.
func (n *Node) Click(ctx context.Context) error {
	var hit string
	if err := n.call(ctx, script.Interceptor, &hit); err != nil {
		return err
	}
	if hit != "" {
		return fmt.Errorf("%w: other element would receive the click: %s", element.ErrClickIntercepted, hit)
	}
	return n.s.run(ctx, chromedp.MouseClickNode(n.node))
}

func (n *Node) Clear(ctx context.Context) error {
	var done bool
	return n.call(ctx, script.Clear, &done)
}

func (n *Node) SendKeys(ctx context.Context, text string) error {
	return n.s.run(ctx, chromedp.KeyEventNode(n.node, text))
}

func (n *Node) Press(ctx context.Context, key element.Key) error {
	seq, ok := keySequence(key)
	if !ok {
		return fmt.Errorf("%w: %q", element.ErrKeyNotImplemented, key)
	}
	return n.s.run(ctx, chromedp.KeyEventNode(n.node, seq))
}

func keySequence(key element.Key) (string, bool) {
	switch key {
	case element.KeyEnter:
		return kb.Enter, true
	case element.KeyBackspace:
		return kb.Backspace, true
	default:
		return "", false
	}
}
