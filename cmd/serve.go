package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/markvz/proefgesprek/internal/config"
	"github.com/markvz/proefgesprek/internal/llm"
	"github.com/markvz/proefgesprek/internal/relay"
	"github.com/spf13/cobra"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the streaming relay server",
	Long: `Start the HTTP relay that bridges the generation backend onto the
streaming wire protocol.

Endpoints:
  POST /api/chat-stream   token-by-token event stream
  POST /api/chat          blocking generation (used for feedback)`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Bind address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	listen := cfg.Listen
	if serveListen != "" {
		listen = serveListen
	}

	// The backend handle is built lazily on first use and shared by
	// all requests after that.
	factory := func(ctx context.Context) (llm.Provider, error) {
		return llm.NewProvider(ctx, cfg)
	}
	server := relay.NewServer(factory, cfg.Gemini.Models)

	httpServer := &http.Server{
		Addr:    listen,
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("relay listening on %s\n", listen)
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
