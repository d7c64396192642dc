package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/quorum/internal/config"
	"github.com/Dicklesworthstone/quorum/internal/gateway"
	"github.com/Dicklesworthstone/quorum/internal/modes"
	"github.com/Dicklesworthstone/quorum/internal/serve"
)

func newServeCmd() *cobra.Command {
	var (
		host     string
		port     int
		authMode string
		apiKey   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API with SSE streaming",
		Long: `Start a local HTTP server exposing the deliberation engine.

API Endpoints:
  POST /api/ask                 Run a deliberation (SSE event stream)
  GET  /api/modes               List mode definitions
  GET  /api/conversations       List conversations
  GET  /api/conversations/:id   Conversation with messages and stages
  GET  /health                  Health check

The config file is watched while the server runs; editing the default
model roster takes effect on the next request without a restart.

Examples:
  quorum serve                          # 127.0.0.1:8377, loopback only
  quorum serve --port 8080
  quorum serve --host 0.0.0.0 --auth api_key --api-key $KEY`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(host, port, authMode, apiKey)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "bind address (default from config)")
	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config)")
	cmd.Flags().StringVar(&authMode, "auth", "", "auth mode: local or api_key")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key clients must present (auth api_key)")

	return cmd
}

func runServe(host string, port int, authMode, apiKey string) error {
	if host == "" {
		host = cfg.Server.Host
	}
	if port == 0 {
		port = cfg.Server.Port
	}
	if authMode == "" {
		authMode = cfg.Server.AuthMode
	}
	if apiKey == "" {
		apiKey = cfg.Server.APIKey
	}

	auth, err := serve.ParseAuthMode(authMode)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	gw := gateway.NewClient(cfg.Gateway.APIKey, gateway.WithBaseURL(cfg.Gateway.BaseURL))

	// The roster is re-read per request so a config reload lands without
	// restarting the server.
	var roster atomic.Value
	roster.Store(cfg.Defaults.Models)

	serveCfg := serve.Config{
		Host:           host,
		Port:           port,
		Dispatcher:     modes.NewDispatcher(gw, nil),
		Store:          store,
		AuthMode:       auth,
		APIKey:         apiKey,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DefaultModels: func() []string {
			models, _ := roster.Load().([]string)
			return models
		},
	}
	if err := serve.ValidateConfig(serveCfg); err != nil {
		return err
	}

	watchPath := cfgFile
	if watchPath == "" {
		watchPath = config.DefaultPath()
	}
	if _, err := os.Stat(watchPath); err == nil {
		stop, err := config.Watch(watchPath, nil, func(next *config.Config) {
			roster.Store(next.Defaults.Models)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: config watch disabled: %v\n", err)
		} else {
			defer stop()
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("Starting quorum server on http://%s:%d\n", host, port)
	fmt.Printf("Conversations stored in %s\n", filepath.Clean(cfg.Storage.Path))
	fmt.Println("Press Ctrl+C to stop")

	return serve.New(serveCfg).Start(ctx)
}
