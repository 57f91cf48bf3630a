// File: internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/locus/internal/config"
	"github.com/xkilldash9x/locus/internal/element"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

// --- Getters ---

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Resolver() config.ResolverConfig {
	args := m.Called()
	return args.Get(0).(config.ResolverConfig)
}

func (m *MockConfig) Browser() config.BrowserConfig {
	args := m.Called()
	return args.Get(0).(config.BrowserConfig)
}

// -- Element Mocks --

// MockSearchContext mocks element.SearchContext.
type MockSearchContext struct {
	mock.Mock
}

func (m *MockSearchContext) FindAll(ctx context.Context, selector string) ([]element.Element, error) {
	args := m.Called(ctx, selector)
	els, _ := args.Get(0).([]element.Element)
	return els, args.Error(1)
}

func (m *MockSearchContext) FindFirst(ctx context.Context, selector string) (element.Element, error) {
	args := m.Called(ctx, selector)
	el, _ := args.Get(0).(element.Element)
	return el, args.Error(1)
}

// MockElement mocks element.Element. Child queries go through the embedded
// MockSearchContext so expectations are set the same way.
type MockElement struct {
	MockSearchContext
}

func (m *MockElement) Text(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockElement) Displayed(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockElement) Enabled(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockElement) CSSValue(ctx context.Context, property string) (string, error) {
	args := m.Called(ctx, property)
	return args.String(0), args.Error(1)
}

func (m *MockElement) Click(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockElement) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockElement) SendKeys(ctx context.Context, text string) error {
	args := m.Called(ctx, text)
	return args.Error(0)
}

func (m *MockElement) Press(ctx context.Context, key element.Key) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Compile-time checks.
var (
	_ config.Interface      = (*MockConfig)(nil)
	_ element.SearchContext = (*MockSearchContext)(nil)
	_ element.Element       = (*MockElement)(nil)
)
