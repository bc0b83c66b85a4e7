package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1handlers "github.com/deepgram/shopfront/internal/api/v1/handlers"
	"github.com/deepgram/shopfront/internal/config"
	"github.com/deepgram/shopfront/internal/services"
	"github.com/deepgram/shopfront/pkg/httpext"
	"github.com/deepgram/shopfront/pkg/logger"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "shopfront",
		Short:   "Storefront shopping assistant",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadDotEnv()
			if secret := os.Getenv("JWT_SECRET"); secret != "" {
				config.SetJWTSecret([]byte(secret))
			}
			zerolog.SetGlobalLevel(logger.ZerologLevel())
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront API and assistant websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			return serve(addr)
		},
	}
	serveCmd.Flags().String("addr", config.GetListenAddr(), "listen address")

	rootCmd.AddCommand(serveCmd, newChatCommand(), newSearchCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(addr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := services.InitializeServices(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           setupRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
		}
	}()

	log.Info().Str("addr", addr).Msg("Server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("ListenAndServe error")
		return err
	}
	log.Info().Msg("Server stopped")
	return nil
}

func setupRouter(svc *services.Services) *mux.Router {
	r := mux.NewRouter()
	v1handlers.RegisterV1Routes(r, svc)
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpext.JsonResponse(w, http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"assistant": svc.GetChatService().Available(),
			"products":  svc.GetCatalog().Len(),
		})
	}).Methods("GET")
	return r
}
