package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/blox"
	"github.com/aretw0/blox/internal/config"
	httpadapter "github.com/aretw0/blox/pkg/adapters/http"
	redisadapter "github.com/aretw0/blox/pkg/adapters/redis"
	"github.com/aretw0/blox/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the editor HTTP server",
	Long: `Serves the document over a JSON API with a server-sent event stream.
Every edit is written back to the document file. With --watch, changes made
to the file on disk are loaded into the running editor.

When redis.addr is configured, every change is also pushed to the Redis
outbox list and published on the events channel.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}

		ws, err := openWorkspace(cmd, blox.WithLifecycleHooks(metrics.Hooks()))
		if err != nil {
			return err
		}
		applyServeFlags(cmd, ws.cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if ws.cfg.Redis.Enabled() {
			outbox, err := openOutbox(ctx, ws)
			if err != nil {
				return err
			}
			defer outbox.Close()
			defer ws.editor.Subscribe(outbox.Listener())()
		}
		defer ws.persistChanges()()

		if ws.cfg.Server.Watch {
			go func() {
				if err := ws.source.Watch(ctx, ws.editor); err != nil {
					ws.logger.Error("file watch stopped", "error", err)
				}
			}()
		}

		handler := httpadapter.NewHandler(ws.editor,
			httpadapter.WithLogger(ws.logger),
			httpadapter.WithCORSOrigin(ws.cfg.Server.GetCORSOrigin()),
			httpadapter.WithMetrics(reg),
			httpadapter.WithRequestValidation(true),
		)
		defer handler.Close()

		srv := &http.Server{
			Addr:              ws.cfg.Server.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			ws.logger.Info("starting blox server", "address", srv.Addr, "document", ws.cfg.Document, "watch", ws.cfg.Server.Watch)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			ws.logger.Info("shutting down")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				ws.logger.Warn("graceful shutdown did not complete", "timeout", 5*time.Second, "error", err)
				return srv.Close()
			}
			ws.logger.Info("blox server stopped gracefully")
			return nil
		}
	},
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("watch") {
		cfg.Server.Watch, _ = cmd.Flags().GetBool("watch")
	}
}

// openOutbox connects to the configured Redis outbox.
func openOutbox(ctx context.Context, ws *workspace) (*redisadapter.Outbox, error) {
	opts := []redisadapter.Option{
		redisadapter.WithPrefix(ws.cfg.Redis.GetPrefix()),
		redisadapter.WithChannel(ws.cfg.Redis.GetChannel()),
		redisadapter.WithLogger(ws.logger),
	}
	if ws.cfg.Redis.MaxLen > 0 {
		opts = append(opts, redisadapter.WithMaxLen(ws.cfg.Redis.MaxLen))
	}
	outbox := redisadapter.New(ws.cfg.Redis.Addr, os.Getenv("BLOX_REDIS_PASSWORD"), 0, opts...)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := outbox.Ping(pingCtx); err != nil {
		_ = outbox.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", ws.cfg.Redis.Addr, err)
	}
	return outbox, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "localhost", "Host to bind, overrides the config")
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on, overrides the config")
	serveCmd.Flags().Bool("watch", false, "Reload the document when the file changes")
}
