// internal/driver/pw/session.go
package pw

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/locus/internal/config"
	"github.com/xkilldash9x/locus/internal/element"
)

const installTimeout = 5 * time.Minute

// Session drives one Firefox page through Playwright.
type Session struct {
	pw         *playwright.Playwright
	browser    playwright.Browser
	page       playwright.Page
	navTimeout time.Duration
	logger     *zap.Logger
}

// Open makes sure Firefox is installed, starts the Playwright driver and
// opens a page.
func Open(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Session, error) {
	logger = logger.Named("playwright")

	if err := ensureInstallation(ctx, logger); err != nil {
		return nil, err
	}

	pw, err := playwright.Run(&playwright.RunOptions{Browsers: []string{"firefox"}})
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright driver: %w", err)
	}

	browser, err := pw.Firefox.Launch(LaunchOptions(cfg))
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch firefox: %w", err)
	}

	page, err := browser.NewPage()
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	logger.Info("Browser session started.", zap.String("browser_version", browser.Version()))

	return &Session{
		pw:         pw,
		browser:    browser,
		page:       page,
		navTimeout: cfg.NavigationTimeout,
		logger:     logger,
	}, nil
}

func ensureInstallation(ctx context.Context, logger *zap.Logger) error {
	logger.Info("Verifying Playwright firefox installation.")
	installCtx, cancel := context.WithTimeout(ctx, installTimeout)
	defer cancel()

	// Install blocks and takes no context.
	errCh := make(chan error, 1)
	go func() {
		errCh <- playwright.Install(&playwright.RunOptions{Browsers: []string{"firefox"}})
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to install playwright firefox: %w", err)
		}
		return nil
	case <-installCtx.Done():
		return fmt.Errorf("timeout waiting for Playwright installation: %w", installCtx.Err())
	}
}

// LaunchOptions translates the browser config into Playwright launch options.
func LaunchOptions(cfg config.BrowserConfig) playwright.BrowserTypeLaunchOptions {
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Timeout:  playwright.Float(60000),
	}
	if len(cfg.Firefox.Arguments) > 0 {
		opts.Args = append([]string{}, cfg.Firefox.Arguments...)
	}
	if cfg.Firefox.ExecPath != "" {
		opts.ExecutablePath = playwright.String(cfg.Firefox.ExecPath)
	}
	return opts
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opts := playwright.PageGotoOptions{WaitUntil: playwright.WaitUntilStateLoad}
	if s.navTimeout > 0 {
		opts.Timeout = playwright.Float(float64(s.navTimeout.Milliseconds()))
	}
	if t := timeout(ctx); t != nil && (opts.Timeout == nil || *t < *opts.Timeout) {
		opts.Timeout = t
	}
	s.logger.Info("Navigating.", zap.String("url", url))
	if _, err := s.page.Goto(url, opts); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (s *Session) FindAll(ctx context.Context, selector string) ([]element.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	handles, err := s.page.QuerySelectorAll(selector)
	return s.wrap(handles, selector, err)
}

func (s *Session) FindFirst(ctx context.Context, selector string) (element.Element, error) {
	els, err := s.FindAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	return element.First(els, selector)
}

// Close closes the browser and stops the driver.
func (s *Session) Close() error {
	err := s.browser.Close()
	if stopErr := s.pw.Stop(); err == nil {
		err = stopErr
	}
	s.logger.Info("Browser session closed.")
	return err
}

func (s *Session) wrap(handles []playwright.ElementHandle, selector string, err error) ([]element.Element, error) {
	if err != nil {
		if isInvalidSelector(err) {
			s.logger.Debug("Invalid selector treated as no match.", zap.String("selector", selector))
			return []element.Element{}, nil
		}
		return nil, classify(err)
	}
	els := make([]element.Element, 0, len(handles))
	for _, h := range handles {
		els = append(els, &Node{s: s, h: h})
	}
	return els, nil
}

// timeout converts the remaining time on ctx into a Playwright timeout in
// milliseconds, or nil when ctx has no deadline.
func timeout(ctx context.Context) *float64 {
	deadline, ok := ctx.Deadline()
	if !ok {
		return nil
	}
	ms := float64(time.Until(deadline).Milliseconds())
	if ms < 1 {
		ms = 1
	}
	return playwright.Float(ms)
}

// classify maps Playwright error messages onto the element error taxonomy.
func classify(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "intercepts pointer events"):
		return fmt.Errorf("%w: %v", element.ErrClickIntercepted, err)
	case strings.Contains(msg, "not attached to the DOM"),
		strings.Contains(msg, "Element is not attached"),
		strings.Contains(msg, "JSHandle is disposed"):
		return fmt.Errorf("%w: %v", element.ErrStaleElement, err)
	}
	return err
}

func isInvalidSelector(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "is not a valid selector") ||
		strings.Contains(msg, "Unexpected token")
}
