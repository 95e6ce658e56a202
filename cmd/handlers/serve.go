package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"scentlab/internal/battle"
	"scentlab/internal/config"
	"scentlab/internal/insights"
	"scentlab/internal/llm"
	"scentlab/internal/logger"
	"scentlab/internal/server"
)

// NewServeCmd creates the serve command for starting the HTTP server
func NewServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the scentlab API server.

The server provides:
  • Layered fragrance search with database write-back
  • Category battle and test session endpoints
  • Preference insights and AI recommendations

Examples:
  # Start server on default port 8080
  scentlab serve

  # Start on custom port
  scentlab serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 0.0.0.0)")

	return cmd
}

func runServe(ctx context.Context, port int, host string) error {
	log := logger.Get()

	cfg := config.Get()
	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	deps := server.Deps{
		Store:    st,
		Search:   buildOrchestrator(st),
		Battles:  battle.NewService(st),
		Analyzer: insights.NewAnalyzer(st),
	}

	// Recommendations are optional; without a Gemini key the endpoint
	// reports itself unavailable.
	if config.HasGemini() {
		client, err := llm.NewClient(ctx, cfg.AI.Gemini.Model)
		if err != nil {
			log.Warn("AI recommendations disabled", "error", err.Error())
		} else {
			defer client.Close()
			deps.Recommender = client
		}
	} else {
		log.Info("No Gemini API key configured, AI recommendations disabled")
	}

	srv := server.New(deps, serverCfg)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("Server listening on http://%s:%d", serverCfg.Host, serverCfg.Port))
		log.Info("Press Ctrl+C to stop")
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed, forcing close", "error", err)
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		log.Info("Server stopped successfully")
	}

	return nil
}
