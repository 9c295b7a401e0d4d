package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tjwilli6/Fitness/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analytics API with a periodic sync",
	Long: `Start the HTTP API. A background scheduler syncs every
server.sync_interval (0 disables it).

On SIGINT/SIGTERM the server stops accepting connections, waits up to 30s
for active requests, then stops the scheduler and closes the store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		addr := a.Config.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		interval, _ := a.Config.SyncInterval()

		handler := api.NewHandler(a)
		router := api.NewRouter(handler, a.Config.Server.AllowedOrigins)

		scheduler := api.NewSyncScheduler(handler, interval)
		handler.Scheduler = scheduler
		scheduler.Start()
		defer scheduler.Stop()

		server := &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		failed := make(chan error, 1)
		go func() {
			log.Printf("[API] %s", a.Describe())
			log.Printf("[API] Listening on %s", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				failed <- err
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-failed:
			return fmt.Errorf("server failed: %w", err)
		case <-quit:
		}

		log.Println("[API] Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Printf("[API] Server forced to shutdown: %v", err)
		}

		log.Println("[API] Server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}
