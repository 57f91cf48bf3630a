// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/locus/internal/config"
	"github.com/xkilldash9x/locus/internal/observability"
)

type contextKey string

const configKey contextKey = "config"

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	cfgFile  string
	envFile  string
	logLevel string
	browser  string
	headless bool
}

// NewRootCmd builds a fresh command tree. Tests get an isolated instance
// each time.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "locus",
		Short: "Locus resolves page elements reliably, in live browsers or saved snapshots.",
		// Version is set at build time. See cmd/version.go.
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "locus"})
				return fmt.Errorf("failed to load or validate config: %w", err)
			}

			observability.InitializeLogger(cfg.Logger())
			observability.GetLogger().Debug("Starting locus.", zap.String("version", Version))

			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.cfgFile, "config", "c", "", "config file (default is ./locus.yaml, then ~/.locus/locus.yaml)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error or fatal")
	flags.StringVar(&opts.browser, "browser", "", "browser kind: chrome, edge or firefox")
	flags.BoolVar(&opts.headless, "headless", true, "run the browser without a window")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(newVersionCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newProbeCmd())
	root.AddCommand(newInspectCmd())
	return root
}

// Execute runs a fresh command tree with ctx and flushes the logger.
func Execute(ctx context.Context) error {
	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	observability.Sync()
	if err != nil && !errors.Is(err, context.Canceled) {
		root.PrintErrln("Error:", err)
	}
	return err
}

// loadConfig layers defaults, the config file, the dotenv file, LOCUS_*
// environment variables and explicitly set flags, in rising precedence.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	if opts.envFile != "" {
		envFile, err := homedir.Expand(opts.envFile)
		if err != nil {
			return nil, fmt.Errorf("invalid env file path: %w", err)
		}
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading env file: %w", err)
		}
	}

	v := viper.New()
	config.SetDefaults(v)

	if opts.cfgFile != "" {
		cfgFile, err := homedir.Expand(opts.cfgFile)
		if err != nil {
			return nil, fmt.Errorf("invalid config file path: %w", err)
		}
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".locus"))
		}
		v.SetConfigName("locus")
	}

	v.SetEnvPrefix("LOCUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and environment apply.
	}

	flags := cmd.Root().PersistentFlags()
	for key, name := range map[string]string{
		"logger.level":     "log-level",
		"browser.kind":     "browser",
		"browser.headless": "headless",
	} {
		if f := flags.Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	return config.NewConfigFromViper(v)
}

// configFromContext returns the config stored by PersistentPreRunE.
func configFromContext(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, errors.New("configuration missing from command context")
	}
	return cfg, nil
}
