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

	"github.com/hintwise/hintgate/internal/config"
	"github.com/hintwise/hintgate/internal/db/bunx"
	"github.com/hintwise/hintgate/internal/hints"
	"github.com/hintwise/hintgate/internal/repository"
)

var hintsMode string

var hintsCmd = &cobra.Command{
	Use:   "hints",
	Short: "Start a backend hint record service",
	Long: `Starts one of the single-purpose hint record services (create, update
or delete). Each deployment runs one mode, mirroring the per-operation
services the gateway dispatches to.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := hints.ParseMode(hintsMode)
		if err != nil {
			return err
		}

		cfg, err := config.LoadHints()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		db, err := bunx.NewDB(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		log.Printf("database connected")

		repo := repository.NewBunHintRepository(db)
		if err := repo.EnsureSchema(cmd.Context()); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      hints.NewServer(mode, repo).Router(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			log.Printf("%s service listening on %s", mode, cfg.ServerAddr)
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
			return nil
		}
	},
}

func init() {
	hintsCmd.Flags().StringVar(&hintsMode, "mode", "", "Service mode: create, update or delete (required)")
	_ = hintsCmd.MarkFlagRequired("mode")
	rootCmd.AddCommand(hintsCmd)
}
