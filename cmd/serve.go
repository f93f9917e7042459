package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/devserver"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/ui"
)

func serveCmd() *cobra.Command {
	var (
		dir     string
		addr    string
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve concept graphs from a directory of paper texts",
		Long: `Run a local stand-in for the research assistant backend. Every .txt or
.md file in the directory is a paper; its concept graph is extracted on
each request and served on the same routes as the real backend.

  papergraph serve --dir ./papers
  papergraph serve --addr :9000 --origin http://localhost:5173`,
		Run: func(cmd *cobra.Command, args []string) {
			log := buildLogger("stderr", zap.InfoLevel)
			defer log.Sync()

			store := devserver.NewStore(dir)
			papers, err := store.List()
			if err != nil {
				ui.Bad.Printf("  Could not read %s: %v\n", dir, err)
				os.Exit(1)
			}

			srv := &http.Server{
				Addr:         addr,
				Handler:      devserver.New(store, log, origins).Handler(),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			ui.Banner(os.Stdout, "dev backend")
			fmt.Printf("  Papers:    %s %s\n", dir, ui.Subtle.Sprintf("(%d found)", len(papers)))
			fmt.Printf("  Listening: %s\n", ui.Info.Sprint(addr))
			fmt.Println()

			errc := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-errc:
				if err != nil {
					ui.Bad.Printf("  Server error: %v\n", err)
					os.Exit(1)
				}
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("shutdown", zap.Error(err))
			}
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "papers", "Directory of paper texts")
	cmd.Flags().StringVarP(&addr, "addr", "a", "localhost:8000", "Address to listen on")
	cmd.Flags().StringSliceVar(&origins, "origin", nil, "Allowed CORS origins (default http://localhost:3000)")
	return cmd
}
