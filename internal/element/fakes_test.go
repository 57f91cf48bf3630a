package element

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

// -- Fake Element --

// fakeElement is a scripted DOM node.
type fakeElement struct {
	name      string
	text      string
	attrs     map[string]string
	css       map[string]string
	displayed bool
	enabled   bool
	children  map[string][]*fakeElement

	textErr error
	findErr error

	// clickErrs[i] is returned by the (i+1)th click; later clicks succeed.
	clickErrs []error
	clicks    int
	succeeded int

	cleared int
	keys    []string
	presses []Key
}

func el(name, text string) *fakeElement {
	return &fakeElement{name: name, text: text, attrs: map[string]string{}, displayed: true, enabled: true}
}

func (f *fakeElement) withAttr(name, value string) *fakeElement {
	f.attrs[name] = value
	return f
}

func (f *fakeElement) withChildren(selector string, children ...*fakeElement) *fakeElement {
	if f.children == nil {
		f.children = map[string][]*fakeElement{}
	}
	f.children[selector] = children
	return f
}

func (f *fakeElement) String() string { return f.name }

func (f *fakeElement) FindAll(ctx context.Context, selector string) ([]Element, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return toElements(f.children[selector]), nil
}

func (f *fakeElement) FindFirst(ctx context.Context, selector string) (Element, error) {
	all, err := f.FindAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchElement, selector)
	}
	return all[0], nil
}

func (f *fakeElement) Text(ctx context.Context) (string, error) {
	if f.textErr != nil {
		return "", f.textErr
	}
	return f.text, nil
}

func (f *fakeElement) Displayed(ctx context.Context) (bool, error) { return f.displayed, nil }
func (f *fakeElement) Enabled(ctx context.Context) (bool, error)   { return f.enabled, nil }

func (f *fakeElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, ok := f.attrs[name]
	return v, ok, nil
}

func (f *fakeElement) CSSValue(ctx context.Context, property string) (string, error) {
	return f.css[property], nil
}

func (f *fakeElement) Click(ctx context.Context) error {
	f.clicks++
	if f.clicks <= len(f.clickErrs) {
		return f.clickErrs[f.clicks-1]
	}
	f.succeeded++
	return nil
}

func (f *fakeElement) Clear(ctx context.Context) error {
	f.cleared++
	return nil
}

func (f *fakeElement) SendKeys(ctx context.Context, text string) error {
	f.keys = append(f.keys, text)
	return nil
}

func (f *fakeElement) Press(ctx context.Context, key Key) error {
	f.presses = append(f.presses, key)
	return nil
}

func toElements(in []*fakeElement) []Element {
	out := make([]Element, 0, len(in))
	for _, e := range in {
		out = append(out, e)
	}
	return out
}

// -- Fake Search Context --

// fakeContext returns sets[n] on its nth query; the last set repeats.
type fakeContext struct {
	sets      [][]*fakeElement
	err       error
	calls     int
	selectors []string
}

func (f *fakeContext) FindAll(ctx context.Context, selector string) ([]Element, error) {
	f.calls++
	f.selectors = append(f.selectors, selector)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.sets) == 0 {
		return nil, nil
	}
	idx := f.calls - 1
	if idx >= len(f.sets) {
		idx = len(f.sets) - 1
	}
	return toElements(f.sets[idx]), nil
}

func (f *fakeContext) FindFirst(ctx context.Context, selector string) (Element, error) {
	all, err := f.FindAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchElement, selector)
	}
	return all[0], nil
}

func sets(s ...[]*fakeElement) *fakeContext { return &fakeContext{sets: s} }

func set(els ...*fakeElement) []*fakeElement { return els }

// -- Recording Sleep --

type recordingSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func (r *recordingSleep) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.delays)
}

// newTestBuilder wires a Builder to the test logger and a recording sleep so
// retry loops run instantly.
func newTestBuilder(t *testing.T, opts ...Option) (*Builder, *recordingSleep) {
	t.Helper()
	rec := &recordingSleep{}
	base := []Option{WithLogger(zaptest.NewLogger(t)), WithSleep(rec.sleep)}
	return NewBuilder(append(base, opts...)...), rec
}
