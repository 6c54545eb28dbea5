package grpc

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/simaogato/fundme-backend/internal/domain"
	"github.com/simaogato/fundme-backend/internal/usecase/aggregator"
	"github.com/simaogato/fundme-backend/internal/usecase/dashboard"
	"github.com/simaogato/fundme-backend/internal/usecase/fundme"
)

// Server implements the FundMeService gRPC server
type Server struct {
	FundMeService    *fundme.FundMeService
	DashboardService *dashboard.DashboardService

	// AggregatorService is only set when the price feed is the local mock
	AggregatorService *aggregator.AggregatorService
}

var _ FundMeServiceServer = (*Server)(nil)

// NewServer creates a new gRPC server instance
func NewServer(
	fundMeService *fundme.FundMeService,
	dashboardService *dashboard.DashboardService,
	aggregatorService *aggregator.AggregatorService,
) *Server {
	return &Server{
		FundMeService:     fundMeService,
		DashboardService:  dashboardService,
		AggregatorService: aggregatorService,
	}
}

// Fund handles the Fund RPC
func (s *Server) Fund(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}

	// Parse amount (wei) from string to decimal
	amount, err := domain.ParseAmount(req.GetValue())
	if err != nil {
		return nil, mapError(err)
	}

	if _, err := s.FundMeService.Fund(ctx, caller, amount); err != nil {
		return nil, mapError(err)
	}

	return &emptypb.Empty{}, nil
}

// Withdraw handles the Withdraw RPC
func (s *Server) Withdraw(ctx context.Context, req *emptypb.Empty) (*wrapperspb.StringValue, error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}

	withdrawal, err := s.FundMeService.Withdraw(ctx, caller)
	if err != nil {
		return nil, mapError(err)
	}

	return wrapperspb.String(withdrawal.Amount.String()), nil
}

// GetPriceFeed handles the GetPriceFeed RPC
func (s *Server) GetPriceFeed(ctx context.Context, req *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String(s.FundMeService.GetPriceFeed().String()), nil
}

// GetOwner handles the GetOwner RPC
func (s *Server) GetOwner(ctx context.Context, req *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String(s.FundMeService.GetOwner().String()), nil
}

// GetFunder handles the GetFunder RPC
func (s *Server) GetFunder(ctx context.Context, req *wrapperspb.UInt64Value) (*wrapperspb.StringValue, error) {
	funder, err := s.FundMeService.GetFunder(req.GetValue())
	if err != nil {
		return nil, mapError(err)
	}
	return wrapperspb.String(funder.String()), nil
}

// GetAddressToAmountFunded handles the GetAddressToAmountFunded RPC
func (s *Server) GetAddressToAmountFunded(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	addr, err := domain.ParseAddress(req.GetValue())
	if err != nil {
		return nil, mapError(err)
	}
	return wrapperspb.String(s.FundMeService.GetAddressToAmountFunded(addr).String()), nil
}

// GetBalance handles the GetBalance RPC
func (s *Server) GetBalance(ctx context.Context, req *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String(s.FundMeService.Balance().String()), nil
}

// GetSummary handles the GetSummary RPC
func (s *Server) GetSummary(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	summary, err := s.DashboardService.GetSummary(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(map[string]any{
		"owner":            summary.Owner.String(),
		"price_feed":       summary.PriceFeed.String(),
		"balance":          summary.Balance.String(),
		"balance_usd":      summary.BalanceUSD.String(),
		"price":            summary.Price.String(),
		"funder_entries":   summary.FunderEntries,
		"distinct_funders": summary.DistinctFunders,
	})
}

// ListContributions handles the ListContributions RPC
// The request carries numeric "limit" and "offset" fields.
func (s *Server) ListContributions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	limit, offset, err := pageFromRequest(req)
	if err != nil {
		return nil, err
	}

	contributions, err := s.DashboardService.ListContributions(ctx, limit, offset)
	if err != nil {
		return nil, mapError(err)
	}

	items := make([]any, 0, len(contributions))
	for _, c := range contributions {
		items = append(items, map[string]any{
			"id":         c.ID.String(),
			"funder":     c.Funder.String(),
			"amount":     c.Amount.String(),
			"usd_value":  c.USDValue.String(),
			"created_at": c.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}

	return newStruct(map[string]any{"contributions": items})
}

// ListWithdrawals handles the ListWithdrawals RPC
// The request carries numeric "limit" and "offset" fields.
func (s *Server) ListWithdrawals(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	limit, offset, err := pageFromRequest(req)
	if err != nil {
		return nil, err
	}

	withdrawals, err := s.DashboardService.ListWithdrawals(ctx, limit, offset)
	if err != nil {
		return nil, mapError(err)
	}

	items := make([]any, 0, len(withdrawals))
	for _, w := range withdrawals {
		items = append(items, map[string]any{
			"id":           w.ID.String(),
			"owner":        w.Owner.String(),
			"amount":       w.Amount.String(),
			"funder_count": w.FunderCount,
			"created_at":   w.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}

	return newStruct(map[string]any{"withdrawals": items})
}

// UpdateAnswer handles the UpdateAnswer RPC
// Only available against the mock price feed, and only to the owner.
func (s *Server) UpdateAnswer(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if s.AggregatorService == nil {
		return nil, status.Error(codes.FailedPrecondition, "price feed is not a mock aggregator")
	}

	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.FundMeService.Guard.EnsureOwner(caller); err != nil {
		return nil, mapError(err)
	}

	answer, err := decimal.NewFromString(req.GetValue())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid answer format: %v", err)
	}

	round, err := s.AggregatorService.UpdateAnswer(ctx, answer)
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(map[string]any{
		"round_id":          round.RoundID,
		"answer":            round.Answer.String(),
		"updated_at":        round.UpdatedAt.UTC().Format(time.RFC3339Nano),
		"answered_in_round": round.AnsweredInRound,
	})
}

// requireCaller returns the caller address set by CallerInterceptor
func requireCaller(ctx context.Context) (domain.Address, error) {
	caller, ok := CallerFromContext(ctx)
	if !ok {
		return "", status.Errorf(codes.Unauthenticated, "missing %s header", CallerHeader)
	}
	return caller, nil
}

// maxPageLimit caps the number of records returned by one list call
const maxPageLimit = 1000

// pageFromRequest reads and validates limit/offset
func pageFromRequest(req *structpb.Struct) (int, int, error) {
	fields := req.GetFields()

	limit, err := pageField(fields, "limit")
	if err != nil {
		return 0, 0, err
	}
	offset, err := pageField(fields, "offset")
	if err != nil {
		return 0, 0, err
	}

	// Validate limit (must be positive)
	if limit <= 0 {
		return 0, 0, status.Errorf(codes.InvalidArgument, "limit must be positive")
	}
	if limit > maxPageLimit {
		return 0, 0, status.Errorf(codes.InvalidArgument, "limit must not exceed %d", maxPageLimit)
	}

	return limit, offset, nil
}

// pageField reads a non-negative whole number small enough for an int32
func pageField(fields map[string]*structpb.Value, name string) (int, error) {
	v := fields[name].GetNumberValue()
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a whole number", name)
	}
	// Validate range (must be non-negative)
	if v < 0 {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be non-negative", name)
	}
	if v > math.MaxInt32 {
		return 0, status.Errorf(codes.InvalidArgument, "%s is too large", name)
	}
	return int(v), nil
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return st, nil
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrInsufficientContribution),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidAddress):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotOwner):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return status.Error(codes.OutOfRange, err.Error())
	case errors.Is(err, domain.ErrRoundNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrOracleUnavailable),
		errors.Is(err, domain.ErrTransferFailed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	// Default to Internal error for unknown errors
	return status.Error(codes.Internal, err.Error())
}
