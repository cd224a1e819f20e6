package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hintwise/hintgate/internal/auth"
	"github.com/hintwise/hintgate/internal/config"
	"github.com/hintwise/hintgate/internal/proxy"
	"github.com/hintwise/hintgate/internal/rbac"
	"github.com/hintwise/hintgate/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway",
	Long:  `Starts the HTTP gateway: SSO login bounce, session token issuance, RBAC enforcement, and reverse-proxy dispatch to the backend services.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		registry, err := rbac.NewRegistry(cfg.Roles)
		if err != nil {
			return fmt.Errorf("configure role registry: %w", err)
		}

		codec := auth.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL)
		loginState := auth.NewLoginState(cfg.JWTSecret, cfg.CookieSecure)
		tickets := auth.NewCASClient(cfg.SSO)

		// chatbot strips its route prefix before forwarding; the record
		// services route on the full inbound path.
		targets := make([]proxy.Target, 0, len(cfg.Services))
		for name, baseURL := range cfg.Services {
			target := proxy.Target{Name: name, BaseURL: baseURL}
			if name == "chatbot" {
				target.StripPrefix = "/chatbot"
			}
			targets = append(targets, target)
		}
		dispatcher, err := proxy.NewDispatcher(targets, cfg.ProxyTimeout)
		if err != nil {
			return fmt.Errorf("configure dispatcher: %w", err)
		}

		router, err := server.NewRouter(server.RouterOptions{
			Cfg:        cfg,
			Codec:      codec,
			LoginState: loginState,
			Registry:   registry,
			Tickets:    tickets,
			Dispatcher: dispatcher,
		})
		if err != nil {
			return fmt.Errorf("assemble router: %w", err)
		}

		srv := &http.Server{
			Addr:        cfg.ServerAddr,
			Handler:     router,
			ReadTimeout: 15 * time.Second,
			// The write timeout must outlast the dispatcher's upstream
			// budget or slow-but-healthy backends get cut off mid-response.
			WriteTimeout: cfg.ProxyTimeout + 15*time.Second,
			IdleTimeout:  60 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			log.Printf("gateway listening on %s (sso=%s)", cfg.ServerAddr, cfg.SSO.BaseURL)
			for name, baseURL := range cfg.Services {
				log.Printf("  service %s -> %s", name, baseURL)
			}
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			log.Printf("received signal %v, shutting down gracefully", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			log.Printf("gateway stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
