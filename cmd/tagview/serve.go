package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/alevsk/tagview/internal/api"
	"github.com/alevsk/tagview/internal/ingestor"
	"github.com/alevsk/tagview/internal/logger"
)

var (
	// Server flags
	serverHost     string
	serverPort     int
	serverTimeout  string
	serverLogLevel string
	serverCache    string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tagview API server",
	PreRun: func(cmd *cobra.Command, args []string) {
		// Override config values with flags if provided
		if cmd.Flags().Changed("host") {
			cfg.Server.Host = serverHost
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = serverPort
		}
		if cmd.Flags().Changed("timeout") {
			if duration, err := time.ParseDuration(serverTimeout); err == nil {
				cfg.Server.Timeout = duration
			} else {
				logger.Warn().Str("timeout", serverTimeout).Msg("ignoring invalid timeout")
			}
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level = serverLogLevel
			logger.Init(cfg)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := openCache(serverCache)
		if err != nil {
			return err
		}
		if cache != nil {
			defer cache.Close()
		}

		ing := ingestor.New(&ingestor.Options{
			MaxConcurrency: cfg.Extract.MaxConcurrency,
			Stealth:        cfg.Extract.Stealth,
			Cache:          cache,
		})

		opts := api.DefaultOptions()
		if cfg.Server.Host != "" {
			opts.Host = cfg.Server.Host
		}
		opts.Port = cfg.Server.Port
		if cfg.Server.Timeout > 0 {
			opts.Timeout = cfg.Server.Timeout
		}
		if cfg.Server.MaxUploadBytes > 0 {
			opts.MaxUploadBytes = cfg.Server.MaxUploadBytes
		}
		opts.Ingestor = ing

		logger.Info().Str("log_level", cfg.Log.Level).Dur("timeout", opts.Timeout).
			Int64("max_upload_bytes", opts.MaxUploadBytes).Msg("tagview API server configured")
		return api.NewServer(opts).Start(cmd.Context())
	},
}

func init() {
	// Server flags
	serveCmd.Flags().StringVarP(&serverHost, "host", "H", "", "Server host (default: 0.0.0.0)")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (default: 8080)")
	serveCmd.Flags().StringVarP(&serverTimeout, "timeout", "t", "", "Server timeout (e.g., 30s, 1m)")
	serveCmd.Flags().StringVarP(&serverLogLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&serverCache, "cache", "", "path of the result cache database")
}
