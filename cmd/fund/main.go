// Command fund sends a contribution to the FundMe service as CALLER_ADDRESS.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	grpcadapter "github.com/simaogato/fundme-backend/internal/adapter/grpc"
	"github.com/simaogato/fundme-backend/internal/config"
	"github.com/simaogato/fundme-backend/internal/domain"
	"github.com/simaogato/fundme-backend/internal/infra"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fund: %v\n", err)
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
	amount, err := domain.ParseEther(cfg.FundAmount)
	if err != nil {
		return fmt.Errorf("FUND_AMOUNT: %w", err)
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

	logger.Info().Str("caller", caller.String()).Str("amount", amount.String()).Msg("Funding contract...")
	if _, err := client.Fund(ctx, wrapperspb.String(amount.String())); err != nil {
		return err
	}

	funded, err := client.GetAddressToAmountFunded(ctx, wrapperspb.String(caller.String()))
	if err != nil {
		return err
	}
	logger.Info().Str("funded", funded.GetValue()).Msg("Funded!")
	return nil
}
