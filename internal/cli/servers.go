package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/defm/console/internal/api"
	"github.com/defm/console/internal/core/service"
	"github.com/defm/console/internal/infrastructure/db/memory"
	statushttp "github.com/defm/console/internal/infrastructure/http"
	"github.com/defm/console/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

func newStatusServerCommand(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "status-server",
		Short: "Serve health, session and metrics endpoints for operators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.StatusAddr
			}
			e := statushttp.NewRouter(statushttp.Options{
				Store:    a.kv,
				Upstream: a.client,
				Session:  a.session,
			})
			a.log.Info().Str("addr", addr).Str("backend", a.client.BaseURL()).Msg("status server listening")
			return serve(ctx, e, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides STATUS_ADDR)")
	return cmd
}

func newDevBackendCommand(a *app) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "dev-backend",
		Short: "Run an in-memory DEFM backend for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			dev := a.cfg.Dev
			if port == "" {
				port = dev.Port
			}

			repo := memory.NewBackend()
			if _, err := service.SeedAdmin(ctx, repo, dev.AdminPassword); err != nil {
				return err
			}
			e := api.NewRouter(api.Options{
				Repo:      repo,
				JWTSecret: dev.JWTSecret,
				TokenTTL:  dev.TokenTTL,
				Version:   a.opts.Version,
				Logger:    logger.For("dev-backend"),
			})
			addr := net.JoinHostPort("127.0.0.1", port)
			a.log.Info().Str("addr", addr).Str("admin", "admin").Msg("development backend listening")
			return serve(ctx, e, addr)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides DEV_PORT)")
	return cmd
}

// serve runs e until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
