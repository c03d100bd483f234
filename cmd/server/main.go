package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/gatelink/gatelink/internal/container"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"go.uber.org/zap"
)

const shutdownGrace = 30 * time.Second

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		injector := do.New()
		container.RegisterServerPackages(injector, options)

		logger := do.MustInvoke[*zap.Logger](injector)

		if options.Secret == "" {
			logger.Fatal("a token signing secret is required (--secret)")
		}

		var server *http.Server

		hooks.OnStart(func() {
			// Building the API registers every route on the mux.
			_ = do.MustInvoke[huma.API](injector)

			server = &http.Server{
				Addr:              fmt.Sprintf(":%d", options.Port),
				Handler:           do.MustInvoke[*chi.Mux](injector),
				ReadHeaderTimeout: 10 * time.Second,
			}

			logger.Info("listening",
				zap.Int("port", options.Port),
				zap.Bool("challenge", options.Challenge),
				zap.Bool("postgres", options.DatabaseURL != ""),
			)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("http server failed", zap.Error(err))
			}
		})

		hooks.OnStop(func() {
			stop(logger, server, injector)
		})
	})

	cli.Run()
}

func stop(logger *zap.Logger, server *http.Server, injector *do.Injector) {
	logger.Info("draining")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if server != nil {
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("http shutdown failed", zap.Error(err))
		}
	}

	if err := injector.Shutdown(); err != nil {
		logger.Error("container shutdown failed", zap.Error(err))
	}

	logger.Info("stopped")
}
