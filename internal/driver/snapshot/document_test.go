package snapshot_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/locus/internal/driver/snapshot"
	"github.com/xkilldash9x/locus/internal/element"
)

const page = `<!DOCTYPE html>
<html>
<head><title>Shop</title></head>
<body>
  <nav>
    <ul>
      <li><a href="/">Home</a></li>
      <li><a href="/products" class="active nav-link">Products</a></li>
      <li><a href="/cart">Cart <span class="badge">2</span></a></li>
    </ul>
  </nav>
  <div class="card" data-sku="A-1">
    <h3>Widget</h3>
    <p class="price">9.99</p>
    <button>Add</button>
  </div>
  <div class="card" data-sku="B-2">
    <h3>Gadget</h3>
    <p class="price" style="color: red; display:block">19.99</p>
    <button disabled>Add</button>
  </div>
  <div class="card promo">
    <p>No title here</p>
  </div>
  <table>
    <tr><td>1</td><td>Alice</td></tr>
    <tr><td>2</td><td>Bob</td></tr>
  </table>
  <form>
    <input id="q" name="q" value="héllo">
    <input type="hidden" name="token" value="x">
    <textarea id="notes">line</textarea>
    <input type="checkbox" id="agree">
  </form>
  <div style="display: none"><span id="ghost">boo</span></div>
</body>
</html>`

func newDoc(t *testing.T) *snapshot.Document {
	t.Helper()
	doc, err := snapshot.Parse(strings.NewReader(page), zaptest.NewLogger(t))
	require.NoError(t, err)
	return doc
}

func newBuilder(t *testing.T) *element.Builder {
	t.Helper()
	return element.NewBuilder(
		element.WithLogger(zaptest.NewLogger(t)),
		element.WithSleep(func(ctx context.Context, d time.Duration) error { return ctx.Err() }),
	)
}

func texts(t *testing.T, handles []*element.Handle) []string {
	t.Helper()
	out := make([]string, 0, len(handles))
	for _, h := range handles {
		text, err := h.Actions().Text(context.Background())
		require.NoError(t, err)
		out = append(out, text)
	}
	return out
}

func TestDocument_ComposedLookup(t *testing.T) {
	ctx := context.Background()
	doc := newDoc(t)
	b := newBuilder(t)

	links := b.Define(doc, "nav").AddSubElement("ul").AddSubElement("li").AddSubElement("a")
	assert.Equal(t, "nav ul li a ", links.Selector())

	all, err := links.All(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"Home", "Products", "Cart 2"}, texts(t, all)); diff != "" {
		t.Errorf("link texts mismatch (-want +got):\n%s", diff)
	}

	h, err := links.ByAttributeContaining(ctx, "class", "active")
	require.NoError(t, err)
	href, err := h.Actions().Attribute(ctx, "href")
	require.NoError(t, err)
	assert.Equal(t, "/products", href)
}

func TestDocument_SubElementStrategies(t *testing.T) {
	ctx := context.Background()
	doc := newDoc(t)
	cards := newBuilder(t).Define(doc, "div.card")

	// The promo card has no h3 and must not end the search.
	h, err := cards.BySubElementText(ctx, "h3", "Gadget")
	require.NoError(t, err)
	sku, err := h.Actions().Attribute(ctx, "data-sku")
	require.NoError(t, err)
	assert.Equal(t, "B-2", sku)

	button, err := h.SubElement(ctx, "button")
	require.NoError(t, err)
	enabled, err := button.IsEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	price, err := h.SubElementByAttributeContaining(ctx, "p", "class", "price")
	require.NoError(t, err)
	color, err := price.CSSValue(ctx, "color")
	require.NoError(t, err)
	assert.Equal(t, "red", color)

	idx, err := cards.IndexOfAttribute(ctx, "data-sku", "B-2")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestDocument_TableColumn(t *testing.T) {
	ctx := context.Background()
	rows := newBuilder(t).Define(newDoc(t), "table").AddSubElement("tr")

	names, err := rows.AllSubElementsAt(ctx, "td", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, texts(t, names))

	row, err := rows.BySubElementTextAt(ctx, "td", 0, "2")
	require.NoError(t, err)
	cell, err := row.SubElementByText(ctx, "td", "Bob")
	require.NoError(t, err)
	assert.NotNil(t, cell)

	_, err = rows.AllSubElementsAt(ctx, "td", 5)
	assert.ErrorIs(t, err, element.ErrIndexOutOfRange)
}

func TestDocument_NotFound(t *testing.T) {
	ctx := context.Background()
	doc := newDoc(t)
	b := newBuilder(t)

	_, err := b.Define(doc, "section.missing").All(ctx)
	assert.ErrorIs(t, err, element.ErrNotFound)

	// Malformed selectors match nothing rather than erroring.
	_, err = b.Define(doc, "div[[").ByText(ctx, "x")
	assert.ErrorIs(t, err, element.ErrNotFound)
}

func TestDocument_Visibility(t *testing.T) {
	ctx := context.Background()
	doc := newDoc(t)

	tests := []struct {
		selector string
		expected bool
	}{
		{"#q", true},
		{"input[name=token]", false},
		{"#ghost", false},
		{"title", false},
		{"h3", true},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			el, err := doc.FindFirst(ctx, tt.selector)
			require.NoError(t, err)
			shown, err := el.Displayed(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, shown)
		})
	}
}

func TestDocument_InputActions(t *testing.T) {
	ctx := context.Background()
	doc := newDoc(t)
	b := newBuilder(t)

	q, err := doc.FindFirst(ctx, "#q")
	require.NoError(t, err)
	a := b.Wrap(q).Actions()

	require.NoError(t, a.ClearByValueLength(ctx))
	value, err := a.Attribute(ctx, "value")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, a.SendTextCharByChar(ctx, "go"))
	require.NoError(t, a.SendText(ctx, "lang"))
	value, err = a.Attribute(ctx, "value")
	require.NoError(t, err)
	assert.Equal(t, "golang", value)

	require.NoError(t, a.PressKey(ctx, "Enter"))
	assert.ErrorIs(t, a.PressKey(ctx, "Tab"), element.ErrKeyNotImplemented)

	notes, err := doc.FindFirst(ctx, "#notes")
	require.NoError(t, err)
	na := b.Wrap(notes).Actions()
	require.NoError(t, na.Clear(ctx))
	require.NoError(t, na.SendText(ctx, "new"))
	value, err = na.Attribute(ctx, "value")
	require.NoError(t, err)
	assert.Equal(t, "new", value)
}

func TestDocument_Click(t *testing.T) {
	ctx := context.Background()
	doc := newDoc(t)
	b := newBuilder(t)

	box, err := doc.FindFirst(ctx, "#agree")
	require.NoError(t, err)
	a := b.Wrap(box).Actions()

	require.NoError(t, a.Click(ctx))
	checked, err := a.HasAttribute(ctx, "checked")
	require.NoError(t, err)
	assert.True(t, checked)

	require.NoError(t, a.Click(ctx))
	checked, err = a.HasAttribute(ctx, "checked")
	require.NoError(t, err)
	assert.False(t, checked)

	ghost, err := doc.FindFirst(ctx, "#ghost")
	require.NoError(t, err)
	err = b.Wrap(ghost).Actions().Click(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, element.ErrClickIntercepted)
}

func TestDocument_StaleAfterReload(t *testing.T) {
	ctx := context.Background()
	doc := newDoc(t)

	h3, err := doc.FindFirst(ctx, "h3")
	require.NoError(t, err)
	require.NoError(t, doc.Load(strings.NewReader("<h3>Fresh</h3>")))

	_, err = h3.Text(ctx)
	assert.ErrorIs(t, err, element.ErrStaleElement)

	h, err := newBuilder(t).Define(doc, "h3").ByText(ctx, "Fresh")
	require.NoError(t, err)
	assert.NotNil(t, h)
}

func TestDocument_Navigate(t *testing.T) {
	ctx := context.Background()

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "page.html")
		require.NoError(t, os.WriteFile(path, []byte(page), 0o600))

		doc := snapshot.New(zaptest.NewLogger(t))
		require.NoError(t, doc.Navigate(ctx, "file://"+path))
		els, err := doc.FindAll(ctx, "div.card")
		require.NoError(t, err)
		assert.Len(t, els, 3)
	})

	t.Run("HTTP", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/" {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, page)
		}))
		defer srv.Close()

		doc := snapshot.New(zaptest.NewLogger(t))
		require.NoError(t, doc.Navigate(ctx, srv.URL+"/"))
		el, err := doc.FindFirst(ctx, "h3")
		require.NoError(t, err)
		text, err := el.Text(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Widget", text)

		assert.Error(t, doc.Navigate(ctx, srv.URL+"/missing"))
	})
}
