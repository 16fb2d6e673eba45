package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/h7lu/modkg/services/kgraph/graph"
	"github.com/h7lu/modkg/services/kgraph/httpapi"
	"github.com/h7lu/modkg/services/kgraph/telemetry"
)

func newServeCmd() *cobra.Command {
	var (
		graphDir string
		addr     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP query API over a built graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(graphDir, addr)
		},
	}

	cmd.Flags().StringVar(&graphDir, "graph", ".", "base path of the graph artefacts (<graph>.nodes.tsv, <graph>.csr.bin, ...)")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")

	return cmd
}

func runServe(graphDir, addr string) error {
	g, err := graph.Load(graphDir)
	if err != nil {
		return fmt.Errorf("kgraph serve: %w", err)
	}

	metricsHandler, shutdown, err := telemetry.Setup(telemetry.Options{ServiceName: "kgraph"})
	if err != nil {
		return fmt.Errorf("kgraph serve: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			slog.Error("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	router := httpapi.NewRouter(g, metricsHandler)
	srv := &http.Server{Addr: addr, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown failed", slog.String("error", err.Error()))
		}
	}()

	slog.Info("kgraph serve starting", slog.String("addr", addr), slog.Int("nodes", g.Nodes.Len()))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("kgraph serve: %w", err)
	}
	return nil
}
