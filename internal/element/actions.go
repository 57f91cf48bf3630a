// internal/element/actions.go
package element

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Actions performs reads and interactions on a single element. Only Click
// retries; everything else is single-shot and returns driver errors as-is.
type Actions struct {
	el     Element
	s      *settings
	logger *zap.Logger
}

func newActions(el Element, s *settings) *Actions {
	if el == nil {
		panic("element: nil Element")
	}
	return &Actions{el: el, s: s, logger: s.logger.Named("actions")}
}

// Element returns the target element.
func (a *Actions) Element() Element { return a.el }

func (a *Actions) Text(ctx context.Context) (string, error) {
	a.logger.Info("Starting action to get text.")
	text, err := a.el.Text(ctx)
	if err != nil {
		return "", err
	}
	a.logger.Debug("Got text.", zap.String("text", text))
	return text, nil
}

func (a *Actions) IsDisplayed(ctx context.Context) (bool, error) {
	a.logger.Info("Starting action to get displayed state.")
	displayed, err := a.el.Displayed(ctx)
	if err != nil {
		return false, err
	}
	a.logger.Debug("Got displayed state.", zap.Bool("displayed", displayed))
	return displayed, nil
}

func (a *Actions) IsEnabled(ctx context.Context) (bool, error) {
	a.logger.Info("Starting action to get enabled state.")
	enabled, err := a.el.Enabled(ctx)
	if err != nil {
		return false, err
	}
	a.logger.Debug("Got enabled state.", zap.Bool("enabled", enabled))
	return enabled, nil
}

// Attribute returns the value of name, or "" when the attribute is absent.
func (a *Actions) Attribute(ctx context.Context, name string) (string, error) {
	a.logger.Debug("Starting action to get attribute.", zap.String("attribute", name))
	value, _, err := a.el.Attribute(ctx, name)
	if err != nil {
		return "", err
	}
	a.logger.Debug("Got attribute.", zap.String("attribute", name), zap.String("value", value))
	return value, nil
}

// HasAttribute reports whether name is present, regardless of its value.
func (a *Actions) HasAttribute(ctx context.Context, name string) (bool, error) {
	a.logger.Debug("Starting action to check attribute presence.", zap.String("attribute", name))
	_, ok, err := a.el.Attribute(ctx, name)
	return ok, err
}

func (a *Actions) CSSValue(ctx context.Context, property string) (string, error) {
	a.logger.Debug("Starting action to get CSS value.", zap.String("property", property))
	return a.el.CSSValue(ctx, property)
}

func (a *Actions) Clear(ctx context.Context) error {
	a.logger.Info("Starting action to clear.")
	return a.el.Clear(ctx)
}

// ClearByValueLength presses Backspace once per character of the current
// value attribute. Useful for inputs that ignore programmatic clears.
func (a *Actions) ClearByValueLength(ctx context.Context) error {
	a.logger.Debug("Starting action to clear by value length.")
	value, _, err := a.el.Attribute(ctx, "value")
	if err != nil {
		return err
	}
	for range []rune(value) {
		if err := a.el.Press(ctx, KeyBackspace); err != nil {
			return err
		}
	}
	return nil
}

func (a *Actions) SendText(ctx context.Context, text string) error {
	a.logger.Info("Starting action to send text.", zap.String("text", text))
	return a.el.SendKeys(ctx, text)
}

// SendTextCharByChar sends text one character at a time.
func (a *Actions) SendTextCharByChar(ctx context.Context, text string) error {
	a.logger.Info("Starting action to send text char by char.", zap.String("text", text))
	for _, r := range text {
		if err := a.el.SendKeys(ctx, string(r)); err != nil {
			return err
		}
	}
	return nil
}

// PressKey presses the named key. Only "Enter" is supported.
func (a *Actions) PressKey(ctx context.Context, name string) error {
	a.logger.Debug("Starting action to press keyboard key.", zap.String("key", name))
	switch Key(name) {
	case KeyEnter:
		return a.el.Press(ctx, KeyEnter)
	default:
		return fmt.Errorf("%w: %q", ErrKeyNotImplemented, name)
	}
}

// Click clicks the element, waiting and trying again while another node
// intercepts the click. When the attempts run out the last interception
// error is returned unchanged.
func (a *Actions) Click(ctx context.Context) error {
	a.logger.Info("Starting action to click.")

	_, err := poll(ctx, a.s.click, a.s.sleep,
		func(ctx context.Context, attempt int) probeResult[struct{}] {
			err := a.el.Click(ctx)
			switch {
			case err == nil:
				return found(struct{}{})
			case errors.Is(err, ErrClickIntercepted):
				return notFoundYet[struct{}](err)
			default:
				return fatal[struct{}](err)
			}
		},
		func(attempt int, reason error) {
			a.logger.Warn("Failed to click.", zap.Int("attempt", attempt), zap.Error(reason))
		},
	)
	if isExhausted(err) {
		a.logger.Error("Click attempts exhausted.")
		return errors.Unwrap(err)
	}
	if err != nil {
		return err
	}
	a.logger.Info("Click successful.")
	return nil
}
