// internal/driver/driver.go
package driver

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/locus/internal/config"
	"github.com/xkilldash9x/locus/internal/driver/cdp"
	"github.com/xkilldash9x/locus/internal/driver/pw"
	"github.com/xkilldash9x/locus/internal/driver/rod"
	"github.com/xkilldash9x/locus/internal/element"
)

// Kind identifies a live browser backend.
type Kind string

const (
	Chrome  Kind = config.KindChrome
	Edge    Kind = config.KindEdge
	Firefox Kind = config.KindFirefox
)

// ParseKind resolves a configured browser name against config.Kinds.
func ParseKind(s string) (Kind, error) {
	k, err := config.ParseKind(s)
	if err != nil {
		return "", fmt.Errorf("unknown browser kind: %w", err)
	}
	return Kind(k), nil
}

// Session is a live page that elements can be looked up in.
type Session interface {
	element.SearchContext
	Navigate(ctx context.Context, url string) error
	Close() error
}

// Open launches the browser selected by cfg.Kind.
func Open(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	kind, err := ParseKind(cfg.Kind)
	if err != nil {
		return nil, err
	}
	sessionID := uuid.New().String()
	logger = logger.Named("driver").With(zap.String("session_id", sessionID))
	logger.Info("Opening browser session.", zap.String("kind", string(kind)))

	var (
		s       Session
		openErr error
	)
	switch kind {
	case Chrome:
		s, openErr = unwrap(cdp.Open(ctx, cfg, logger))
	case Edge:
		s, openErr = unwrap(rod.Open(ctx, cfg, logger))
	default:
		s, openErr = unwrap(pw.Open(ctx, cfg, logger))
	}
	if openErr != nil {
		return nil, fmt.Errorf("failed to open %s session: %w", kind, openErr)
	}
	return s, nil
}

// unwrap keeps a failed open from leaking a typed nil into the interface.
func unwrap[S Session](s S, err error) (Session, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
