// Command hooks2vue rewrites React hook calls into Vue Composition API calls.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/hooks2vue/pkg/parser"
	"github.com/gnana997/hooks2vue/pkg/parser/queries"
	"github.com/gnana997/hooks2vue/pkg/rewrite"
	"github.com/gnana997/hooks2vue/pkg/util"
)

const version = "0.1.0-dev"

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	configFile string
	verbose    bool
	logFormat  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "hooks2vue",
		Short: "Rewrite React hooks as Vue Composition API calls",
		Long: `hooks2vue rewrites React hook calls (useState, useRef, useMemo, useCallback,
useEffect, useContext) into their Vue Composition API equivalents, keeping the
rest of the source byte for byte.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (default is ./.hooks2vue.yaml or $HOME/.hooks2vue.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format: text or json (overrides log.format)")

	rootCmd.AddCommand(transformCmd(flags))
	rootCmd.AddCommand(diffCmd(flags))
	rootCmd.AddCommand(convertCmd(flags))
	rootCmd.AddCommand(watchCmd(flags))
	rootCmd.AddCommand(examplesCmd(flags))
	rootCmd.AddCommand(serveCmd(flags))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hooks2vue %s\n", version)
		},
	}
}

// app holds what a command run needs: config, logger and the transform
// pipeline. Close releases the parser pools.
type app struct {
	cfg           *Config
	logger        *slog.Logger
	parserManager *parser.ParserManager
	queryManager  *queries.QueryManager
	transformer   *rewrite.Transformer
}

func newApp(cmd *cobra.Command, flags *rootFlags) (*app, error) {
	cfg, err := LoadConfig(flags.configFile)
	if err != nil {
		return nil, err
	}

	logConfig := util.LoggerConfig{
		Level:  util.LogLevel(cfg.Log.Level),
		Format: util.LogFormat(cfg.Log.Format),
		Output: cmd.ErrOrStderr(),
	}
	if flags.verbose {
		logConfig.Level = util.LevelDebug
	}
	if flags.logFormat != "" {
		logConfig.Format = util.LogFormat(flags.logFormat)
	}
	logger := util.NewLogger(logConfig)

	pm := parser.NewParserManager(logger)
	qm := queries.NewQueryManager(pm, logger)

	return &app{
		cfg:           cfg,
		logger:        logger,
		parserManager: pm,
		queryManager:  qm,
		transformer:   rewrite.NewTransformer(pm, qm, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.queryManager.Close(); err != nil {
		a.logger.Warn("Failed to close query manager", "error", err)
	}
	if err := a.parserManager.Close(); err != nil {
		a.logger.Warn("Failed to close parser manager", "error", err)
	}
}
