package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/locus/internal/driver/snapshot"
	"github.com/xkilldash9x/locus/internal/element"
	"github.com/xkilldash9x/locus/internal/network"
	"github.com/xkilldash9x/locus/internal/observability"
)

// newInspectCmd creates the `inspect` command, which runs a lookup against
// saved pages without starting a browser.
func newInspectCmd() *cobra.Command {
	var (
		sources  []string
		dump     string
		insecure bool
		rps      float64
		parallel int
		opts     lookupOptions
	)

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Resolve an element in saved HTML snapshots",
		Example: `  locus inspect --file page.html --selector "table tr" --sub td --text Alice
  locus inspect --file page.html --selector "nav li" --index-of Products
  locus inspect -f https://a.example -f https://b.example --selector h1 --rate 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			if dump != "" && len(sources) > 1 {
				return errors.New("--dump needs exactly one --file")
			}
			if parallel < 1 {
				return fmt.Errorf("--parallel must be at least 1, got %d", parallel)
			}
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			logger := observability.GetLogger().Named("inspect")

			clientCfg := network.NewDefaultClientConfig()
			clientCfg.RequestTimeout = cfg.Browser().NavigationTimeout
			clientCfg.IgnoreTLSErrors = insecure
			clientCfg.RequestsPerSecond = rps
			clientCfg.Logger = logger
			client := network.NewClient(clientCfg)
			builder := newBuilder(cfg, logger)

			outputs := make([]bytes.Buffer, len(sources))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(parallel)
			for i, src := range sources {
				g.Go(func() error {
					return inspectOne(ctx, src, dump, &outputs[i], client, &opts, builder, logger)
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, src := range sources {
				if len(sources) > 1 {
					fmt.Fprintf(out, "==> %s <==\n", src)
				}
				if _, err := outputs[i].WriteTo(out); err != nil {
					return err
				}
			}
			return nil
		},
	}

	inspectCmd.Flags().StringArrayVarP(&sources, "file", "f", nil, "HTML file path or http(s) URL, repeatable (required)")
	inspectCmd.Flags().StringVar(&dump, "dump", "", "write the document to this path after the actions ran")
	inspectCmd.Flags().BoolVar(&insecure, "insecure", false, "skip TLS certificate verification when fetching over https")
	inspectCmd.Flags().Float64Var(&rps, "rate", 0, "maximum http requests per second, 0 for unlimited")
	inspectCmd.Flags().IntVar(&parallel, "parallel", 4, "documents inspected at the same time")
	_ = inspectCmd.MarkFlagRequired("file")
	opts.register(inspectCmd)
	return inspectCmd
}

// inspectOne loads a single source into its own document and runs the lookup.
func inspectOne(ctx context.Context, src, dump string, out *bytes.Buffer, client *http.Client, opts *lookupOptions, b *element.Builder, logger *zap.Logger) error {
	path, err := homedir.Expand(src)
	if err != nil {
		return fmt.Errorf("invalid path %q: %w", src, err)
	}

	doc := snapshot.New(logger.With(zap.String("source", src)), snapshot.WithHTTPClient(client))
	if err := doc.Navigate(ctx, path); err != nil {
		return err
	}
	if err := opts.run(ctx, out, doc, b); err != nil {
		return fmt.Errorf("inspect failed for %s: %w", src, err)
	}

	if dump == "" {
		return nil
	}
	dumpPath, err := homedir.Expand(dump)
	if err != nil {
		return fmt.Errorf("invalid dump path: %w", err)
	}
	html, err := doc.HTML()
	if err != nil {
		return err
	}
	return os.WriteFile(dumpPath, []byte(html), 0o644)
}
