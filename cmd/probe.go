package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/locus/internal/driver"
	"github.com/xkilldash9x/locus/internal/observability"
)

// newProbeCmd creates the `probe` command, which runs a lookup in a live browser.
func newProbeCmd() *cobra.Command {
	var (
		url     string
		timeout time.Duration
		opts    lookupOptions
	)

	probeCmd := &cobra.Command{
		Use:   "probe",
		Short: "Open a page in a live browser, resolve an element and act on it",
		Example: `  locus probe --url https://example.com --selector "nav a" --text Docs --click
  locus probe --browser firefox --url https://example.com/login --selector input --attr name=user --type alice`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			logger := observability.GetLogger().Named("probe")

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			session, err := driver.Open(ctx, cfg.Browser(), logger)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := session.Close(); cerr != nil {
					logger.Warn("Failed to close browser session.", zap.Error(cerr))
				}
			}()

			if err := session.Navigate(ctx, url); err != nil {
				return err
			}
			if err := opts.run(ctx, cmd.OutOrStdout(), session, newBuilder(cfg, logger)); err != nil {
				return fmt.Errorf("probe failed: %w", err)
			}
			return nil
		},
	}

	probeCmd.Flags().StringVar(&url, "url", "", "page to open (required)")
	probeCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall time limit, 0 for none")
	_ = probeCmd.MarkFlagRequired("url")
	opts.register(probeCmd)
	return probeCmd
}
