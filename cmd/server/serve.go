package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/paygate/internal/auth"
	"github.com/mmynk/paygate/internal/metrics"
	"github.com/mmynk/paygate/internal/middleware"
	"github.com/mmynk/paygate/internal/provider"
	"github.com/mmynk/paygate/internal/rpc"
	"github.com/mmynk/paygate/internal/service"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var sandbox bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the ledger RPC server and settlement runner",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is required")
			}

			store, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			m := metrics.New()
			opts := []service.Option{service.WithLogger(logger), service.WithMetrics(m)}

			providers := provider.NewRegistry()
			if sandbox {
				providers.Register(provider.NewSandbox("sandbox"))
			}

			jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
			interceptors := connect.WithInterceptors(
				middleware.MetricsInterceptor(m),
				middleware.RequireRole(jwtManager, auth.RoleAdmin, rpc.AdminProcedures...),
				middleware.RequireRole(jwtManager, auth.RoleProvider, rpc.ProviderProcedures...),
				middleware.LoggingInterceptor(logger),
			)

			rpcPath, rpcHandler := rpc.NewHandler(rpc.Services{
				Commission:    service.NewCommissionService(store, opts...),
				Wallet:        service.NewWalletService(store, opts...),
				Disbursements: service.NewDisbursementService(store, opts...),
				Adjustments:   service.NewAdjustmentService(store, opts...),
				Transactions:  service.NewTransactionService(store, providers, opts...),
				Reports:       service.NewReportService(store, opts...),
			}, interceptors)

			r := chi.NewRouter()
			r.Use(chimw.RequestID)
			r.Use(chimw.Recoverer)
			r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{"status":"ok"}`))
			})
			r.Handle("/metrics", m.Handler())
			r.Handle(rpcPath+"*", rpcHandler)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if cfg.SettlementInterval > 0 {
				runner := service.NewSettlementService(store, opts...)
				go runner.Run(ctx, cfg.SettlementInterval)
			}

			// h2c serves HTTP/2 without TLS for gRPC-protocol clients.
			srv := &http.Server{
				Addr:              cfg.Addr(),
				Handler:           h2c.NewHandler(r, &http2.Server{}),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return listenAndServe(ctx, srv, logger)
		},
	}

	cmd.Flags().BoolVar(&sandbox, "sandbox", false, "register the in-process sandbox payment provider")
	return cmd
}

// listenAndServe runs srv until ctx is done, then drains open requests.
func listenAndServe(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Connect server starting", "address", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
