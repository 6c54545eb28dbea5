// Command withdraw drains the FundMe balance to the owner. CALLER_ADDRESS must be the owner.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"

	grpcadapter "github.com/simaogato/fundme-backend/internal/adapter/grpc"
	"github.com/simaogato/fundme-backend/internal/config"
	"github.com/simaogato/fundme-backend/internal/domain"
	"github.com/simaogato/fundme-backend/internal/infra"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "withdraw: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	logger := infra.NewLogger(true)

	caller, err := domain.ParseAddress(cfg.CallerAddress)
	if err != nil {
		return fmt.Errorf("CALLER_ADDRESS: %w", err)
	}

	conn, err := grpc.NewClient(cfg.ServerAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("connect to %s: %w", cfg.ServerAddr, err)
	}
	defer conn.Close()

	client := grpcadapter.NewFundMeServiceClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ctx = grpcadapter.OutgoingContext(ctx, cfg.APIToken, caller)

	logger.Info().Str("caller", caller.String()).Msg("Withdrawing from contract...")
	withdrawn, err := client.Withdraw(ctx, &emptypb.Empty{})
	if err != nil {
		return err
	}
	logger.Info().Str("amount", withdrawn.GetValue()).Msg("Got it back!")
	return nil
}
