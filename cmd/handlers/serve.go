package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"insightcast/internal/logger"
	"insightcast/internal/server"

	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command for starting the HTTP server
func NewServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the insightcast HTTP API used by the document reader frontend.

Endpoints:
  • POST /get_retrieved_sections  related passages for a selection
  • POST /get_generated_insights  contradictions, enhancements and connections
  • POST /get_persona_podcast     one podcast script per persona
  • POST /generate_podcast        render a script to an mp3 file
  • POST /index_sections          index parsed sections of a document
  • POST /delete_document         remove a document from the vector store
  • GET  /health                  vector store reachability

Examples:
  # Start server on default port 8080
  insightcast serve

  # Start on custom port
  insightcast serve --port 3000`,
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

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	serverCfg := a.cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	srv := server.New(server.Deps{
		Retriever:   a.retrieval,
		Insights:    a.insights,
		Podcasts:    a.podcasts,
		Synthesizer: a.synthesizer(),
		Indexer:     a.indexer,
		Store:       a.store,
	}, serverCfg)

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info(fmt.Sprintf("Server listening on http://%s:%d", serverCfg.Host, serverCfg.Port))
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case sig := <-shutdown:
		log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", "error", err)
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		log.Info("Server stopped successfully")
	}

	return nil
}
