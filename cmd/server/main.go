package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/fundme-backend/internal/adapter/grpc"
	"github.com/simaogato/fundme-backend/internal/adapter/repository/memory"
	"github.com/simaogato/fundme-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/fundme-backend/internal/adapter/repository/sqlite"
	"github.com/simaogato/fundme-backend/internal/adapter/settlement"
	"github.com/simaogato/fundme-backend/internal/config"
	"github.com/simaogato/fundme-backend/internal/domain"
	"github.com/simaogato/fundme-backend/internal/infra"
	"github.com/simaogato/fundme-backend/internal/usecase/access"
	"github.com/simaogato/fundme-backend/internal/usecase/aggregator"
	"github.com/simaogato/fundme-backend/internal/usecase/dashboard"
	"github.com/simaogato/fundme-backend/internal/usecase/fundme"
	"github.com/simaogato/fundme-backend/internal/usecase/oracle"
	"github.com/simaogato/fundme-backend/internal/usecase/seeder"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := infra.NewLogger(cfg.IsDevelopment())
	ctx := context.Background()

	owner, err := domain.ParseAddress(cfg.OwnerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid OWNER_ADDRESS")
	}
	feedAddress, err := domain.ParseAddress(cfg.PriceFeedAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid PRICE_FEED_ADDRESS")
	}

	// 2. Initialize Repositories
	stores, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("Failed to open storage")
	}
	defer stores.close()
	logger.Info().Str("driver", cfg.StorageDriver).Msg("Storage ready")

	// 3. Price feed: rounds live in storage; development networks seed and drive them
	feed := aggregator.NewAggregatorService(feedAddress, cfg.MockDecimals, stores.rounds)
	var mockFeed *aggregator.AggregatorService
	if seeder.IsDevelopmentNetwork(cfg.Network) {
		mockFeed = feed
		initialAnswer, err := decimal.NewFromString(cfg.MockInitialAnswer)
		if err != nil {
			logger.Fatal().Err(err).Msg("Invalid MOCK_INITIAL_ANSWER")
		}
		seeded, err := seeder.NewMockFeedSeeder(feed).Seed(ctx, initialAnswer)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to seed mock price feed")
		}
		logger.Info().
			Str("network", cfg.Network).
			Str("feed", feedAddress.String()).
			Bool("seeded", seeded).
			Msg("Mock price feed ready")
	}

	// 4. Initialize Services (Use Cases)
	guard, err := access.NewGuard(owner)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid owner")
	}
	prices := oracle.NewAdapter(feed)

	fundMeService, err := fundme.NewFundMeService(ctx, stores.ledger, prices, guard, settlement.NewBook(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load ledger")
	}
	dashboardService := dashboard.NewDashboardService(fundMeService, prices, stores.ledger)

	logger.Info().
		Str("owner", owner.String()).
		Str("balance", fundMeService.Balance().String()).
		Msg("Ledger loaded")

	// 5. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(logger),
			grpcadapter.AuthInterceptor(cfg.APIToken),
			grpcadapter.CallerInterceptor(),
		),
	)

	grpcAdapter := grpcadapter.NewServer(fundMeService, dashboardService, mockFeed)
	grpcadapter.RegisterFundMeServiceServer(grpcServer, grpcAdapter)

	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.GRPCAddr).Msg("Failed to listen")
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			logger.Fatal().Err(err).Msg("Failed to serve gRPC server")
		}
	}()

	// Graceful shutdown
	waitForShutdown(grpcServer, logger)
}

// storage bundles the repositories of one driver
type storage struct {
	ledger domain.LedgerStore
	rounds domain.PriceRoundRepository
	close  func()
}

// openStores opens the repositories of the configured storage driver
func openStores(ctx context.Context, cfg config.Config) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StorageSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &storage{ledger: store, rounds: store, close: func() { _ = store.Close() }}, nil

	case config.StoragePostgres:
		// Give Postgres a moment when started alongside the service
		time.Sleep(2 * time.Second)

		db, err := postgres.NewDB(cfg.Database.DSN())
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &storage{
			ledger: postgres.NewLedgerStore(db),
			rounds: postgres.NewPriceRoundRepository(db),
			close:  func() { _ = db.Close() },
		}, nil

	default:
		return &storage{
			ledger: memory.NewLedgerStore(),
			rounds: memory.NewPriceRoundRepository(),
			close:  func() {},
		}, nil
	}
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(grpcServer *grpclib.Server, logger zerolog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")

	grpcServer.GracefulStop()
	logger.Info().Msg("gRPC server stopped")
}
