// internal/element/locator.go
package element

import (
	"strings"

	"go.uber.org/zap"
)

// Compose builds the effective selector for parent under an optional ancestor
// fragment. The ancestor comes first, producing a descendant combinator, and
// the result always ends in a single space so it can be composed again.
func Compose(parent, ancestor string) string {
	if ancestor == "" {
		return parent + " "
	}
	return strings.TrimRight(ancestor, " ") + " " + parent + " "
}

// settings is shared, read-only state handed down from a Builder to every
// Container, Handle and Actions created from it.
type settings struct {
	logger     *zap.Logger
	existence  Policy
	resolution Policy
	click      Policy
	sleep      SleepFunc
}

// Option customises a Builder.
type Option func(*settings)

// WithLogger sets the logger used by the resolver and action layer.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithExistencePolicy overrides the raw candidate query policy.
func WithExistencePolicy(p Policy) Option {
	return func(s *settings) { s.existence = p }
}

// WithResolutionPolicy overrides the policy used by filter strategies.
func WithResolutionPolicy(p Policy) Option {
	return func(s *settings) { s.resolution = p }
}

// WithClickPolicy overrides the click retry policy.
func WithClickPolicy(p Policy) Option {
	return func(s *settings) { s.click = p }
}

// WithSleep replaces the wait between attempts. Tests use it to avoid real delays.
func WithSleep(fn SleepFunc) Option {
	return func(s *settings) {
		if fn != nil {
			s.sleep = fn
		}
	}
}

// Builder is the entry point for defining element lookups.
type Builder struct {
	s *settings
}

// NewBuilder returns a Builder with the default retry policies.
func NewBuilder(opts ...Option) *Builder {
	s := &settings{
		logger:     zap.NewNop(),
		existence:  DefaultExistencePolicy,
		resolution: DefaultResolutionPolicy,
		click:      DefaultClickPolicy,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("element")
	return &Builder{s: s}
}

// Define starts a lookup for selector inside sc.
func (b *Builder) Define(sc SearchContext, selector string) *Container {
	return b.s.define(sc, selector, "")
}

// DefineWithin starts a lookup for selector nested under ancestor inside sc.
func (b *Builder) DefineWithin(sc SearchContext, selector, ancestor string) *Container {
	return b.s.define(sc, selector, ancestor)
}

// Wrap turns an element obtained elsewhere into a Handle sharing b's settings.
func (b *Builder) Wrap(el Element) *Handle {
	return newHandle(el, b.s)
}

func (s *settings) define(sc SearchContext, selector, ancestor string) *Container {
	if sc == nil {
		panic("element: Define called with nil SearchContext")
	}
	locator := Compose(selector, ancestor)
	s.logger.Info("Defining element.", zap.String("locator", locator))
	return &Container{sc: sc, selector: locator, s: s}
}
