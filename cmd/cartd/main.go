package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/yofoo_cart/internal/api"
	"github.com/fjod/yofoo_cart/internal/cart"
	"github.com/fjod/yofoo_cart/internal/checkout"
	"github.com/fjod/yofoo_cart/internal/config"
	"github.com/fjod/yofoo_cart/internal/gateway"
	cartgrpc "github.com/fjod/yofoo_cart/internal/grpc"
	h "github.com/fjod/yofoo_cart/internal/http"
	"github.com/fjod/yofoo_cart/internal/outbox"
	"github.com/fjod/yofoo_cart/internal/wallet"
	"github.com/fjod/yofoo_cart/pkg/circuitbreaker"
	"github.com/fjod/yofoo_cart/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Service: "cartd",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	log.Info("storage ready", "backend", cfg.Storage.Backend)

	// Cart
	store := cart.NewCartStore(b.kv, log)
	store.Load(ctx)

	// Backend client
	breaker := circuitbreaker.DefaultConfig("backend")
	breaker.Logger = log
	client := api.NewClient(cfg.BackendURL,
		api.WithTimeout(cfg.BackendTimeout),
		api.WithSessionStore(b.kv),
		api.WithLogger(log),
		api.WithBreaker(breaker),
	)

	// Outbox
	recorder := outbox.NewRecorder(b.repo)
	var poller *outbox.Poller
	if len(cfg.KafkaBrokers) > 0 {
		poller = outbox.NewPoller(b.repo, outbox.NewWriter(cfg.KafkaBrokers...), log)
		go poller.Run(ctx)
		log.Info("outbox poller started", "brokers", cfg.KafkaBrokers, "topic", outbox.Topic)
	} else {
		log.Warn("KAFKA_BROKERS is empty, outbox events stay in the database")
	}

	// Payment gateway
	hub := h.NewHub(log, cfg.AllowedOrigins...)
	var (
		gw     gateway.Checkout
		bridge *gateway.Bridge
	)
	switch cfg.Gateway.Mode {
	case "sandbox":
		gw = gateway.NewSandbox(cfg.Gateway.SandboxSecret, gateway.ApproveAll)
	default:
		bridge = gateway.NewBridge(hub.NotifySession)
		gw = bridge
	}

	// Wallet and payment flows
	balance := wallet.NewBalanceCache(client, cfg.BalanceMaxAge, log)
	feed := wallet.NewTransactionFeed(client, wallet.DefaultPageSize)
	checkoutCfg := checkoutConfig(cfg)
	orchestrator := checkout.NewOrchestrator(store, client, balance, gw, recorder, checkoutCfg, log)
	topUp := checkout.NewTopUp(client, balance, feed, gw, checkoutCfg, log)
	unwatch := hub.Watch(store, orchestrator, topUp)
	defer unwatch()

	// gRPC
	grpcServer, healthServer := cartgrpc.NewServer(store, log)
	grpcAddr := net.JoinHostPort(cfg.GRPCHost, cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Error("failed to listen", "addr", grpcAddr, "error", err)
		os.Exit(1)
	}
	go func() {
		log.Info("gRPC server listening", "addr", grpcAddr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("gRPC server stopped", "error", err)
			stop()
		}
	}()

	// HTTP
	router := h.NewRouter(h.Handlers{
		Cart:     h.NewCartHandler(store),
		Checkout: h.NewCheckoutHandler(orchestrator, topUp),
		Wallet:   h.NewWalletHandler(balance, feed),
		Payments: h.NewPaymentsHandler(bridge),
		Orders:   h.NewOrdersHandler(client),
		Events:   hub,
	}, cfg.RequestTimeout, cfg.AllowedOrigins, log)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr, "gateway_mode", cfg.Gateway.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	// warm the balance so the first wallet checkout does not wait
	balance.Prefetch(ctx)

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", "error", err)
	}
	grpcServer.GracefulStop()

	if err := store.Close(shutdownCtx); err != nil {
		log.Error("failed to flush cart", "error", err)
	}
	if poller != nil {
		if err := poller.Close(); err != nil {
			log.Warn("closing kafka writer failed", "error", err)
		}
	}
	b.close(shutdownCtx, log)
	log.Info("cartd stopped")
}

func checkoutConfig(cfg config.Config) checkout.Config {
	return checkout.Config{
		Timeout: cfg.BackendTimeout,
		Gateway: checkout.GatewayConfig{
			KeyID:      cfg.Gateway.KeyID,
			Name:       cfg.Gateway.DisplayName,
			Image:      cfg.Gateway.Image,
			ThemeColor: cfg.Gateway.ThemeColor,
		},
	}
}
