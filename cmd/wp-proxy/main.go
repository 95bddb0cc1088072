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

	"github.com/Sternrassler/wp-reader/internal/config"
	"github.com/Sternrassler/wp-reader/pkg/client"
	"github.com/Sternrassler/wp-reader/pkg/logging"
	"github.com/Sternrassler/wp-reader/pkg/wordpress"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.Config{
		Level:  cfg.App.LogLevel,
		Pretty: cfg.App.LogPretty,
		Output: os.Stderr,
	})

	site, err := newSite(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create WordPress site")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      newRouter(site, cfg.Site),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * cfg.HTTP.Timeout,
		IdleTimeout:  60 * time.Second,
	}
	if cfg.HTTP.Timeout == 0 {
		srv.WriteTimeout = 0
	}

	go func() {
		log.Info().
			Str("port", cfg.App.Port).
			Str("rest_root", site.RESTRoot()).
			Str("user_agent", cfg.HTTP.UserAgent).
			Msg("Starting WordPress proxy")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}

// newSite builds the site described by cfg. A configured REST root takes
// precedence over the WordPress.com public API.
func newSite(cfg config.Cfg) (*wordpress.Site, error) {
	transport, err := client.NewHTTPTransport(client.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTP.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create transport: %w", err)
	}

	opts := []wordpress.Option{wordpress.WithTransport(transport)}
	if cfg.Site.Name != "" {
		opts = append(opts, wordpress.WithName(cfg.Site.Name))
	}
	if cfg.Site.RESTRoot != "" {
		opts = append(opts, wordpress.WithRESTRoots(cfg.Site.RESTRoot, cfg.Site.SettingsRoot))
	}

	return wordpress.New(cfg.Site.Domain, opts...)
}
