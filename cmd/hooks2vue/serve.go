package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnana997/hooks2vue/pkg/mcp"
	"github.com/gnana997/hooks2vue/pkg/mcplog"
)

func serveCmd(flags *rootFlags) *cobra.Command {
	var catalogPath, logFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Serve the transform, diff and example tools over the Model Context Protocol
on stdin/stdout. Logs go to stderr; --log-file additionally records every tool
call as a JSONL line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			qs, err := loadCatalog(catalogPath)
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}
			pg, err := a.newPlayground()
			if err != nil {
				return err
			}

			if logFile == "" {
				logFile = a.cfg.Serve.LogFile
			}
			callLog, err := mcplog.NewLogger(logFile)
			if err != nil {
				return err
			}
			if callLog != nil {
				defer callLog.Close()
			}

			a.logger.Info("Starting MCP server", "examples", len(qs.Catalog.Examples), "call_log", logFile)
			srv := mcp.NewServer(pg, qs, callLog, version)
			if err := srv.ServeStdio(); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "example catalog YAML (default: bundled)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "JSONL tool-call log (overrides serve.log_file)")

	return cmd
}
