// internal/driver/rod/session.go
package rod

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/xkilldash9x/locus/internal/config"
	"github.com/xkilldash9x/locus/internal/driver/launch"
	"github.com/xkilldash9x/locus/internal/element"
)

// edgeBinaries are tried in order when no exec path is configured.
var edgeBinaries = []string{"microsoft-edge", "microsoft-edge-stable", "msedge"}

// Session drives one Microsoft Edge page through rod.
type Session struct {
	browser    *rod.Browser
	page       *rod.Page
	launcher   *launcher.Launcher
	navTimeout time.Duration
	logger     *zap.Logger
}

// NewLauncher builds the Edge launcher from the browser config.
func NewLauncher(cfg config.BrowserConfig) (*launcher.Launcher, error) {
	bin := cfg.Edge.ExecPath
	if bin == "" {
		for _, name := range edgeBinaries {
			if p, err := exec.LookPath(name); err == nil {
				bin = p
				break
			}
		}
	}
	if bin == "" {
		return nil, fmt.Errorf("edge executable not found; set browser.edge.exec_path")
	}

	l := launcher.New().Bin(bin).Headless(cfg.Headless).Leakless(false)
	for _, f := range launch.ParseFlags(cfg.Edge.Arguments) {
		if f.Bool {
			l = l.Set(flags.Flag(f.Name))
			continue
		}
		l = l.Set(flags.Flag(f.Name), f.Value)
	}
	return l, nil
}

// Open launches Edge and opens a blank page.
func Open(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Session, error) {
	logger = logger.Named("rod")

	l, err := NewLauncher(cfg)
	if err != nil {
		return nil, err
	}
	u, err := l.Context(ctx).Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch edge: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to edge: %w", err)
	}
	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	logger.Info("Browser session started.", zap.Bool("headless", cfg.Headless))

	return &Session{
		browser:    browser,
		page:       page,
		launcher:   l,
		navTimeout: cfg.NavigationTimeout,
		logger:     logger,
	}, nil
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if s.navTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.navTimeout)
		defer cancel()
	}
	s.logger.Info("Navigating.", zap.String("url", url))
	p := s.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("failed waiting for %s to load: %w", url, err)
	}
	return nil
}

func (s *Session) FindAll(ctx context.Context, selector string) ([]element.Element, error) {
	found, err := s.page.Context(ctx).Elements(selector)
	return wrap(s, found, selector, err)
}

func (s *Session) FindFirst(ctx context.Context, selector string) (element.Element, error) {
	els, err := s.FindAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	return element.First(els, selector)
}

// Close closes the browser and kills the process.
func (s *Session) Close() error {
	err := s.browser.Close()
	s.launcher.Kill()
	s.launcher.Cleanup()
	s.logger.Info("Browser session closed.")
	return err
}

func wrap(s *Session, found rod.Elements, selector string, err error) ([]element.Element, error) {
	if err != nil {
		if strings.Contains(err.Error(), "is not a valid selector") {
			s.logger.Debug("Invalid selector treated as no match.", zap.String("selector", selector))
			return []element.Element{}, nil
		}
		return nil, classify(err)
	}
	els := make([]element.Element, 0, len(found))
	for _, el := range found {
		els = append(els, &Node{s: s, el: el})
	}
	return els, nil
}

// classify maps rod errors onto the element error taxonomy.
func classify(err error) error {
	var covered *rod.CoveredError
	var noPointer *rod.NoPointerEventsError
	switch {
	case errors.As(err, &covered), errors.As(err, &noPointer):
		return fmt.Errorf("%w: %v", element.ErrClickIntercepted, err)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "Could not find node"),
		strings.Contains(msg, "No node with given id"),
		strings.Contains(msg, "Cannot find context with specified id"),
		strings.Contains(msg, "Node is detached"):
		return fmt.Errorf("%w: %v", element.ErrStaleElement, err)
	}
	return err
}
