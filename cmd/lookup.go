package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/locus/internal/config"
	"github.com/xkilldash9x/locus/internal/element"
)

// lookupOptions describe one resolve-and-act run shared by probe and inspect.
type lookupOptions struct {
	selector string
	within   string

	// Filters. At most one of text, contains, attr and attrContains.
	text         string
	contains     string
	attr         string
	attrContains string
	sub          string

	indexOf string
	all     bool

	clear         bool
	clearByLength bool
	typeText      string
	charByChar    bool
	press         string
	click         bool
	attribute     string
}

func (o *lookupOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.selector, "selector", "s", "", "CSS selector of the candidate elements (required)")
	f.StringVar(&o.within, "within", "", "ancestor selector the candidates are nested under")
	f.StringVar(&o.text, "text", "", "pick the first candidate whose text equals this")
	f.StringVar(&o.contains, "contains", "", "pick the first candidate whose text contains this")
	f.StringVar(&o.attr, "attr", "", "pick by attribute, as name=value")
	f.StringVar(&o.attrContains, "attr-contains", "", "pick by attribute containing a value, as name=value")
	f.StringVar(&o.sub, "sub", "", "apply the filter to this sub-element of each candidate")
	f.StringVar(&o.indexOf, "index-of", "", "print the index of the first candidate with this text")
	f.BoolVar(&o.all, "all", false, "print the text of every candidate")
	f.BoolVar(&o.clear, "clear", false, "clear the picked element before typing")
	f.BoolVar(&o.clearByLength, "clear-by-length", false, "clear by pressing Backspace once per character of the value")
	f.StringVar(&o.typeText, "type", "", "text to type into the picked element")
	f.BoolVar(&o.charByChar, "char-by-char", false, "type one character at a time")
	f.StringVar(&o.press, "press", "", "key to press on the picked element (Enter)")
	f.BoolVar(&o.click, "click", false, "click the picked element")
	f.StringVar(&o.attribute, "print-attr", "", "print this attribute instead of the element text")
	_ = cmd.MarkFlagRequired("selector")
}

func (o *lookupOptions) validate() error {
	set := 0
	for _, v := range []string{o.text, o.contains, o.attr, o.attrContains} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return errors.New("--text, --contains, --attr and --attr-contains are mutually exclusive")
	}
	if o.sub != "" && set == 0 {
		return errors.New("--sub needs one of --text, --contains, --attr or --attr-contains")
	}
	if (o.all || o.indexOf != "") && (set > 0 || o.click || o.typeText != "" || o.press != "" || o.clear || o.clearByLength) {
		return errors.New("--all and --index-of cannot be combined with filters or actions")
	}
	return nil
}

// splitPair parses name=value.
func splitPair(flag, s string) (string, string, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", "", fmt.Errorf("--%s must look like name=value, got %q", flag, s)
	}
	return name, value, nil
}

// newBuilder maps the resolver config onto element policies.
func newBuilder(c config.Interface, logger *zap.Logger) *element.Builder {
	cfg := c.Resolver()
	return element.NewBuilder(
		element.WithLogger(logger),
		element.WithExistencePolicy(element.Policy{Attempts: cfg.ExistenceAttempts}),
		element.WithResolutionPolicy(element.Policy{Attempts: cfg.Attempts, Interval: cfg.Interval}),
		element.WithClickPolicy(element.Policy{Attempts: cfg.ClickAttempts, Interval: cfg.ClickInterval}),
	)
}

// pick applies the selected filter strategy.
func (o *lookupOptions) pick(ctx context.Context, c *element.Container) (*element.Handle, error) {
	switch {
	case o.attr != "":
		name, value, err := splitPair("attr", o.attr)
		if err != nil {
			return nil, err
		}
		if o.sub != "" {
			return c.BySubElementAttribute(ctx, o.sub, name, value)
		}
		return c.ByAttribute(ctx, name, value)
	case o.attrContains != "":
		name, value, err := splitPair("attr-contains", o.attrContains)
		if err != nil {
			return nil, err
		}
		if o.sub != "" {
			return c.BySubElementsAttributeContaining(ctx, o.sub, name, value)
		}
		return c.ByAttributeContaining(ctx, name, value)
	case o.contains != "":
		if o.sub != "" {
			return c.BySubElementsTextContaining(ctx, o.sub, o.contains)
		}
		return c.ByTextContaining(ctx, o.contains)
	case o.text != "":
		if o.sub != "" {
			return c.BySubElementText(ctx, o.sub, o.text)
		}
		return c.ByText(ctx, o.text)
	default:
		all, err := c.All(ctx)
		if err != nil {
			return nil, err
		}
		return all[0], nil
	}
}

// run resolves against sc and performs the requested actions, writing results to out.
func (o *lookupOptions) run(ctx context.Context, out io.Writer, sc element.SearchContext, b *element.Builder) error {
	c := b.DefineWithin(sc, o.selector, o.within)

	if o.all {
		handles, err := c.All(ctx)
		if err != nil {
			return err
		}
		for _, h := range handles {
			text, err := h.Actions().Text(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, text)
		}
		return nil
	}

	if o.indexOf != "" {
		idx, err := c.IndexOfText(ctx, o.indexOf)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, idx)
		return nil
	}

	h, err := o.pick(ctx, c)
	if err != nil {
		return err
	}
	a := h.Actions()

	if o.clear {
		if err := a.Clear(ctx); err != nil {
			return err
		}
	}
	if o.clearByLength {
		if err := a.ClearByValueLength(ctx); err != nil {
			return err
		}
	}
	if o.typeText != "" {
		send := a.SendText
		if o.charByChar {
			send = a.SendTextCharByChar
		}
		if err := send(ctx, o.typeText); err != nil {
			return err
		}
	}
	if o.press != "" {
		if err := a.PressKey(ctx, o.press); err != nil {
			return err
		}
	}

	// Read before clicking; a click may navigate away.
	var result string
	if o.attribute != "" {
		result, err = a.Attribute(ctx, o.attribute)
	} else {
		result, err = a.Text(ctx)
	}
	if err != nil {
		return err
	}

	if o.click {
		if err := a.Click(ctx); err != nil {
			return err
		}
	}
	fmt.Fprintln(out, result)
	return nil
}
