package snapshot

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/xkilldash9x/locus/internal/element"
)

// Node is one element of a Document.
type Node struct {
	d *Document
	// root is the tree the node came from; a reload makes the node stale.
	root *goquery.Document
	sel  *goquery.Selection
}

func (n *Node) String() string {
	return goquery.NodeName(n.sel)
}

// check must be called with n.d.mu held.
func (n *Node) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.root != n.d.doc {
		return fmt.Errorf("%w: %s from a previous load", element.ErrStaleElement, n)
	}
	return nil
}

func (n *Node) FindAll(ctx context.Context, selector string) ([]element.Element, error) {
	n.d.mu.RLock()
	defer n.d.mu.RUnlock()
	if err := n.check(ctx); err != nil {
		return nil, err
	}
	return n.d.wrap(n.root, n.sel.Find(selector)), nil
}

func (n *Node) FindFirst(ctx context.Context, selector string) (element.Element, error) {
	els, err := n.FindAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	return element.First(els, selector)
}

// read runs fn under the read lock after the staleness check.
func (n *Node) read(ctx context.Context, fn func()) error {
	n.d.mu.RLock()
	defer n.d.mu.RUnlock()
	if err := n.check(ctx); err != nil {
		return err
	}
	fn()
	return nil
}

// write runs fn under the write lock after the staleness check.
func (n *Node) write(ctx context.Context, fn func() error) error {
	n.d.mu.Lock()
	defer n.d.mu.Unlock()
	if err := n.check(ctx); err != nil {
		return err
	}
	return fn()
}

// Text is the text content with runs of whitespace collapsed.
func (n *Node) Text(ctx context.Context) (string, error) {
	var text string
	err := n.read(ctx, func() { text = strings.Join(strings.Fields(n.sel.Text()), " ") })
	return text, err
}

func (n *Node) Displayed(ctx context.Context) (bool, error) {
	var shown bool
	err := n.read(ctx, func() { shown = displayed(n.sel) })
	return shown, err
}

func (n *Node) Enabled(ctx context.Context) (bool, error) {
	var enabled bool
	err := n.read(ctx, func() {
		_, disabled := n.sel.Attr("disabled")
		enabled = !disabled
	})
	return enabled, err
}

// Attribute reads markup attributes. A textarea's value is its content.
func (n *Node) Attribute(ctx context.Context, name string) (string, bool, error) {
	var (
		value   string
		present bool
	)
	err := n.read(ctx, func() { value, present = attribute(n.sel, name) })
	return value, present, err
}

// CSSValue only knows about inline style declarations.
func (n *Node) CSSValue(ctx context.Context, property string) (string, error) {
	var value string
	err := n.read(ctx, func() { value = inlineStyle(n.sel)[strings.ToLower(property)] })
	return value, err
}

// Click toggles checkboxes and radios; other elements are left as they are.
// Hidden or disabled elements cannot be clicked.
func (n *Node) Click(ctx context.Context) error {
	return n.write(ctx, func() error {
		if !displayed(n.sel) {
			return fmt.Errorf("element not interactable: %s is not displayed", n)
		}
		if _, disabled := n.sel.Attr("disabled"); disabled {
			return fmt.Errorf("element not interactable: %s is disabled", n)
		}
		if goquery.NodeName(n.sel) != "input" {
			return nil
		}
		switch strings.ToLower(n.sel.AttrOr("type", "text")) {
		case "checkbox":
			if _, checked := n.sel.Attr("checked"); checked {
				n.sel.RemoveAttr("checked")
			} else {
				n.sel.SetAttr("checked", "checked")
			}
		case "radio":
			if name := n.sel.AttrOr("name", ""); name != "" {
				n.root.Find(fmt.Sprintf("input[type=radio][name=%q]", name)).RemoveAttr("checked")
			}
			n.sel.SetAttr("checked", "checked")
		}
		return nil
	})
}

func (n *Node) Clear(ctx context.Context) error {
	return n.write(ctx, func() error {
		setValue(n.sel, "")
		return nil
	})
}

// SendKeys appends text to the current value.
func (n *Node) SendKeys(ctx context.Context, text string) error {
	return n.write(ctx, func() error {
		value, _ := attribute(n.sel, "value")
		setValue(n.sel, value+text)
		return nil
	})
}

// Press handles Backspace by dropping the last character. Enter has no
// effect without a script engine.
func (n *Node) Press(ctx context.Context, key element.Key) error {
	switch key {
	case element.KeyEnter:
		return n.write(ctx, func() error { return nil })
	case element.KeyBackspace:
		return n.write(ctx, func() error {
			value, _ := attribute(n.sel, "value")
			runes := []rune(value)
			if len(runes) > 0 {
				setValue(n.sel, string(runes[:len(runes)-1]))
			}
			return nil
		})
	default:
		return fmt.Errorf("%w: %q", element.ErrKeyNotImplemented, key)
	}
}

// -- Markup helpers --

func attribute(sel *goquery.Selection, name string) (string, bool) {
	if strings.EqualFold(name, "value") && goquery.NodeName(sel) == "textarea" {
		return sel.Text(), true
	}
	return sel.Attr(name)
}

func setValue(sel *goquery.Selection, value string) {
	if goquery.NodeName(sel) == "textarea" {
		sel.SetText(value)
		return
	}
	sel.SetAttr("value", value)
}

// displayed walks up the tree looking for anything that hides the element.
func displayed(sel *goquery.Selection) bool {
	if goquery.NodeName(sel) == "input" && strings.EqualFold(sel.AttrOr("type", ""), "hidden") {
		return false
	}
	for s := sel; s.Length() > 0; s = s.Parent() {
		switch goquery.NodeName(s) {
		case "head", "script", "style", "template", "noscript":
			return false
		}
		if _, hidden := s.Attr("hidden"); hidden {
			return false
		}
		style := inlineStyle(s)
		if style["display"] == "none" || style["visibility"] == "hidden" {
			return false
		}
	}
	return true
}

// inlineStyle parses the style attribute into lower-cased property names.
func inlineStyle(sel *goquery.Selection) map[string]string {
	decls := map[string]string{}
	for _, decl := range strings.Split(sel.AttrOr("style", ""), ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important"))
		decls[strings.ToLower(strings.TrimSpace(prop))] = value
	}
	return decls
}
