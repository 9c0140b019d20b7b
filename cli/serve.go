package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"obsidian_briefing_sync/logger"
	"obsidian_briefing_sync/server"
)

func newServeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, store, err := opts.buildApp(cmd.Context())
			if err != nil {
				return err
			}
			srv, err := server.New(app, store, opts.cfg.RequestTimeout, logger.WithField("component", "server"))
			if err != nil {
				return err
			}

			listen := opts.cfg.ServerAddr
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				listen = addr
			}
			if listen == "" {
				listen = ":8080"
			}
			return listenAndServe(cmd.Context(), listen, srv.Routes())
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides server_addr)")
	return cmd
}

// listenAndServe runs until ctx is cancelled, then drains in-flight requests.
func listenAndServe(ctx context.Context, addr string, h http.Handler) error {
	hs := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting web server on %s", addr)
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Infof("Shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
