package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/communityhub/importer/internal/assist"
	"github.com/communityhub/importer/internal/handlers"
	"github.com/communityhub/importer/internal/storage"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port        string
		dbPath      string
		assistName  string
		assistModel string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the import review API",
		Long: `Starts the importer HTTP API on the specified port.

Uploaded sheets become import sessions holding the detected mapping. Sessions
can be reviewed, corrected and confirmed over the API, then turned into
contacts with "importer apply --session".`,
		Example: `  # Start server on default port 8888 with in-memory sessions
  importer serve

  # Persist sessions and ask Gemini about unmapped columns
  importer serve --port 3000 --db importer.db --assist gemini`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if p := os.Getenv("PORT"); p != "" && !cmd.Flags().Changed("port") {
				port = p
			}
			if !cmd.Flags().Changed("db") {
				dbPath = os.Getenv("IMPORTER_DB")
			}

			store, err := storage.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			assistant, err := assist.NewFromEnv(assistName, assistModel)
			if err != nil {
				return err
			}
			if assistant != nil {
				slog.Info("Assist suggestions enabled", "provider", assistant.Provider())
			}

			mux := http.NewServeMux()
			handlers.New(store, assistant).Routes(mux)

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Importer API available", "addr", addr, "url", "http://localhost"+addr, "db", dbPath)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on (env: PORT)")
	cmd.Flags().StringVar(&dbPath, "db", "", "bbolt file for sessions; empty keeps them in memory (env: IMPORTER_DB)")
	cmd.Flags().StringVar(&assistName, "assist", "", "LLM provider for unmapped columns: gemini, openai or ollama (env: ASSIST_PROVIDER)")
	cmd.Flags().StringVar(&assistModel, "assist-model", "", "Model for --assist (env: ASSIST_MODEL)")

	return cmd
}
