package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/hupe1980/tripgraph"
	"github.com/hupe1980/tripgraph/logging"
	"github.com/hupe1980/tripgraph/server"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planning API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			tg, err := tripgraph.NewFromConfig(cfg, tripgraph.Deps{Registerer: reg, Logger: logger})
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr: cfg.Server.Addr,
				Handler: server.New(tg, func(o *server.Options) {
					o.Gatherer = reg
					o.Logger = logging.With(logger, "component", "server")
				}),
				ReadHeaderTimeout: cfg.Server.ReadTimeout,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			serverErrors := make(chan error, 1)
			go func() {
				logger.Info("server.start", "addr", srv.Addr, "provider", cfg.Model.Provider)
				serverErrors <- srv.ListenAndServe()
			}()

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				logger.Info("server.shutdown", "timeout", cfg.Server.ShutdownTimeout.String())

				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()

				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Error("server.shutdown.error", "error", err.Error())
					return srv.Close()
				}
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides server.addr)")

	return cmd
}
