package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jojobot/website/internal/config"
	"github.com/jojobot/website/internal/site"
	"github.com/jojobot/website/pkg/logging"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	var cfgFile string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the website",
		Long: `Run the HTTP server. It stops gracefully on SIGINT or SIGTERM:
readiness fails first, then in-flight requests drain, then live sessions close.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServeConfig(cfgFile, addr)
			if err != nil {
				return err
			}

			logger, err := newServeLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			srv, err := site.NewServer(cfg, logger, site.WithVersion(version))
			if err != nil {
				return err
			}
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.address")

	return cmd
}

func loadServeConfig(path, addr string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if addr != "" {
		cfg.Server.Address = addr
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return cfg, nil
}

// newServeLogger builds the server logger. Debug output carries source locations.
func newServeLogger(cfg config.LogConfig, w io.Writer) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := []logging.LoggerOption{
		logging.WithLevel(level),
		logging.WithJSON(cfg.JSON),
		logging.WithOutput(w),
	}
	if level <= slog.LevelDebug {
		opts = append(opts, logging.WithSource())
	}
	return logging.NewSlogLogger(opts...), nil
}
