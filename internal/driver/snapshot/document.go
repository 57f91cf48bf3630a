// Package snapshot implements element lookups over a static HTML document.
// There is no layout or script engine: visibility comes from markup and
// inline styles, and input actions edit the value attribute in place.
package snapshot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/xkilldash9x/locus/internal/element"
)

// Document is a parsed HTML page that can be searched and lightly edited.
type Document struct {
	mu     sync.RWMutex
	doc    *goquery.Document
	client *http.Client
	logger *zap.Logger
}

// Option configures a Document.
type Option func(*Document)

// WithHTTPClient sets the client Navigate uses for http and https URLs.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Document) {
		if c != nil {
			d.client = c
		}
	}
}

// New returns an empty document. Call Navigate or Load before searching.
func New(logger *zap.Logger, opts ...Option) *Document {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Document{client: http.DefaultClient, logger: logger.Named("snapshot")}
	for _, opt := range opts {
		opt(d)
	}
	d.doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
	return d
}

// Parse reads HTML from r.
func Parse(r io.Reader, logger *zap.Logger) (*Document, error) {
	d := New(logger)
	if err := d.Load(r); err != nil {
		return nil, err
	}
	return d, nil
}

// Load replaces the current content with HTML read from r.
func (d *Document) Load(r io.Reader) error {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return fmt.Errorf("failed to parse html: %w", err)
	}
	d.mu.Lock()
	d.doc = doc
	d.mu.Unlock()
	return nil
}

// Navigate loads a page from a file:// URL, a plain path or over HTTP.
func (d *Document) Navigate(ctx context.Context, url string) error {
	d.logger.Info("Loading snapshot.", zap.String("url", url))
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		f, err := os.Open(strings.TrimPrefix(url, "file://"))
		if err != nil {
			return fmt.Errorf("failed to open snapshot: %w", err)
		}
		defer f.Close()
		return d.Load(f)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("failed to fetch %s: %s", url, resp.Status)
	}
	return d.Load(resp.Body)
}

// Close is a no-op; a document holds no external resources.
func (d *Document) Close() error { return nil }

// HTML renders the current, possibly edited, document.
func (d *Document) HTML() (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.doc.Html()
}

func (d *Document) FindAll(ctx context.Context, selector string) ([]element.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.wrap(d.doc, d.doc.Find(selector)), nil
}

func (d *Document) FindFirst(ctx context.Context, selector string) (element.Element, error) {
	els, err := d.FindAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	return element.First(els, selector)
}

// wrap must be called with d.mu held.
func (d *Document) wrap(root *goquery.Document, found *goquery.Selection) []element.Element {
	els := make([]element.Element, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		els = append(els, &Node{d: d, root: root, sel: s})
	})
	return els
}
