// internal/driver/cdp/session.go
package cdp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/locus/internal/config"
	"github.com/xkilldash9x/locus/internal/driver/launch"
	"github.com/xkilldash9x/locus/internal/element"
)

// Session drives one Chrome tab over the DevTools protocol.
type Session struct {
	tabCtx      context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	navTimeout  time.Duration
	logger      *zap.Logger
}

// ExecOptions translates the browser config into chromedp allocator options.
func ExecOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.Chrome.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.Chrome.ExecPath))
	}
	for _, f := range launch.ParseFlags(cfg.Chrome.Arguments) {
		if f.Bool {
			opts = append(opts, chromedp.Flag(f.Name, true))
			continue
		}
		opts = append(opts, chromedp.Flag(f.Name, f.Value))
	}
	return opts
}

// Open launches Chrome and attaches to a fresh tab.
func Open(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Session, error) {
	logger = logger.Named("cdp")

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, ExecOptions(cfg)...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Sugar().Debugf),
		chromedp.WithErrorf(logger.Sugar().Debugf),
	)

	// Run with no actions starts the browser.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}
	logger.Info("Browser session started.", zap.Bool("headless", cfg.Headless))

	return &Session{
		tabCtx:      tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		navTimeout:  cfg.NavigationTimeout,
		logger:      logger,
	}, nil
}

// run executes actions on the tab, aborting when either ctx or the tab ends.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.tabCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return classify(err)
	}
	return nil
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if s.navTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.navTimeout)
		defer cancel()
	}
	s.logger.Info("Navigating.", zap.String("url", url))
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (s *Session) FindAll(ctx context.Context, selector string) ([]element.Element, error) {
	return s.query(ctx, selector)
}

func (s *Session) FindFirst(ctx context.Context, selector string) (element.Element, error) {
	els, err := s.query(ctx, selector)
	if err != nil {
		return nil, err
	}
	return element.First(els, selector)
}

func (s *Session) query(ctx context.Context, selector string, opts ...chromedp.QueryOption) ([]element.Element, error) {
	var nodes []*cdp.Node
	opts = append([]chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}, opts...)
	if err := s.run(ctx, chromedp.Nodes(selector, &nodes, opts...)); err != nil {
		if isInvalidSelector(err) {
			s.logger.Debug("Invalid selector treated as no match.", zap.String("selector", selector), zap.Error(err))
			return []element.Element{}, nil
		}
		return nil, err
	}
	els := make([]element.Element, 0, len(nodes))
	for _, n := range nodes {
		els = append(els, &Node{s: s, node: n})
	}
	return els, nil
}

// Close closes the tab and shuts the browser down.
func (s *Session) Close() error {
	s.cancelTab()
	s.cancelAlloc()
	s.logger.Info("Browser session closed.")
	return nil
}

// classify maps protocol errors for vanished nodes onto ErrStaleElement.
func classify(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "Could not find node"),
		strings.Contains(msg, "No node with given id"),
		strings.Contains(msg, "Node is detached"),
		strings.Contains(msg, "Cannot find context with specified id"):
		return fmt.Errorf("%w: %v", element.ErrStaleElement, err)
	}
	return err
}

func isInvalidSelector(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "is not a valid selector") ||
		strings.Contains(msg, "DOM Error while querying")
}
