package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// FundMeServiceName is the fully-qualified name of the gRPC service
const FundMeServiceName = "fundme.v1.FundMeService"

// Full method names, as seen by interceptors
const (
	FundMeService_Fund_FullMethodName                     = "/fundme.v1.FundMeService/Fund"
	FundMeService_Withdraw_FullMethodName                 = "/fundme.v1.FundMeService/Withdraw"
	FundMeService_GetPriceFeed_FullMethodName             = "/fundme.v1.FundMeService/GetPriceFeed"
	FundMeService_GetOwner_FullMethodName                 = "/fundme.v1.FundMeService/GetOwner"
	FundMeService_GetFunder_FullMethodName                = "/fundme.v1.FundMeService/GetFunder"
	FundMeService_GetAddressToAmountFunded_FullMethodName = "/fundme.v1.FundMeService/GetAddressToAmountFunded"
	FundMeService_GetBalance_FullMethodName               = "/fundme.v1.FundMeService/GetBalance"
	FundMeService_GetSummary_FullMethodName               = "/fundme.v1.FundMeService/GetSummary"
	FundMeService_ListContributions_FullMethodName        = "/fundme.v1.FundMeService/ListContributions"
	FundMeService_ListWithdrawals_FullMethodName          = "/fundme.v1.FundMeService/ListWithdrawals"
	FundMeService_UpdateAnswer_FullMethodName             = "/fundme.v1.FundMeService/UpdateAnswer"
)

// FundMeServiceServer is the server API of the FundMe service.
// Messages are protobuf well-known types so no generated code is needed:
// amounts and addresses travel as decimal strings, pages and records as Structs.
type FundMeServiceServer interface {
	Fund(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	Withdraw(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	GetPriceFeed(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	GetOwner(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	GetFunder(context.Context, *wrapperspb.UInt64Value) (*wrapperspb.StringValue, error)
	GetAddressToAmountFunded(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	GetBalance(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	GetSummary(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListContributions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListWithdrawals(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateAnswer(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// RegisterFundMeServiceServer registers srv on s
func RegisterFundMeServiceServer(s grpc.ServiceRegistrar, srv FundMeServiceServer) {
	s.RegisterService(&FundMeService_ServiceDesc, srv)
}

// FundMeService_ServiceDesc is the grpc.ServiceDesc of the FundMe service
var FundMeService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: FundMeServiceName,
	HandlerType: (*FundMeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Fund", Handler: unaryHandler(FundMeService_Fund_FullMethodName, FundMeServiceServer.Fund)},
		{MethodName: "Withdraw", Handler: unaryHandler(FundMeService_Withdraw_FullMethodName, FundMeServiceServer.Withdraw)},
		{MethodName: "GetPriceFeed", Handler: unaryHandler(FundMeService_GetPriceFeed_FullMethodName, FundMeServiceServer.GetPriceFeed)},
		{MethodName: "GetOwner", Handler: unaryHandler(FundMeService_GetOwner_FullMethodName, FundMeServiceServer.GetOwner)},
		{MethodName: "GetFunder", Handler: unaryHandler(FundMeService_GetFunder_FullMethodName, FundMeServiceServer.GetFunder)},
		{MethodName: "GetAddressToAmountFunded", Handler: unaryHandler(FundMeService_GetAddressToAmountFunded_FullMethodName, FundMeServiceServer.GetAddressToAmountFunded)},
		{MethodName: "GetBalance", Handler: unaryHandler(FundMeService_GetBalance_FullMethodName, FundMeServiceServer.GetBalance)},
		{MethodName: "GetSummary", Handler: unaryHandler(FundMeService_GetSummary_FullMethodName, FundMeServiceServer.GetSummary)},
		{MethodName: "ListContributions", Handler: unaryHandler(FundMeService_ListContributions_FullMethodName, FundMeServiceServer.ListContributions)},
		{MethodName: "ListWithdrawals", Handler: unaryHandler(FundMeService_ListWithdrawals_FullMethodName, FundMeServiceServer.ListWithdrawals)},
		{MethodName: "UpdateAnswer", Handler: unaryHandler(FundMeService_UpdateAnswer_FullMethodName, FundMeServiceServer.UpdateAnswer)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fundme/v1/fundme.proto",
}

// unaryHandler adapts a typed server method to a grpc.MethodHandler
func unaryHandler[Req, Resp any](
	fullMethod string,
	call func(FundMeServiceServer, context.Context, *Req) (*Resp, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(FundMeServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(FundMeServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// FundMeServiceClient is the client API of the FundMe service
type FundMeServiceClient interface {
	Fund(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	Withdraw(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	GetPriceFeed(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	GetOwner(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	GetFunder(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	GetAddressToAmountFunded(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	GetBalance(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	GetSummary(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListContributions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListWithdrawals(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	UpdateAnswer(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type fundMeServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewFundMeServiceClient creates a client on top of cc
func NewFundMeServiceClient(cc grpc.ClientConnInterface) FundMeServiceClient {
	return &fundMeServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *fundMeServiceClient) Fund(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, FundMeService_Fund_FullMethodName, in, opts)
}

func (c *fundMeServiceClient) Withdraw(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, FundMeService_Withdraw_FullMethodName, in, opts)
}

func (c *fundMeServiceClient) GetPriceFeed(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, FundMeService_GetPriceFeed_FullMethodName, in, opts)
}

func (c *fundMeServiceClient) GetOwner(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, FundMeService_GetOwner_FullMethodName, in, opts)
}

func (c *fundMeServiceClient) GetFunder(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, FundMeService_GetFunder_FullMethodName, in, opts)
}

func (c *fundMeServiceClient) GetAddressToAmountFunded(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, FundMeService_GetAddressToAmountFunded_FullMethodName, in, opts)
}

func (c *fundMeServiceClient) GetBalance(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, FundMeService_GetBalance_FullMethodName, in, opts)
}

func (c *fundMeServiceClient) GetSummary(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, FundMeService_GetSummary_FullMethodName, in, opts)
}

func (c *fundMeServiceClient) ListContributions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, FundMeService_ListContributions_FullMethodName, in, opts)
}

func (c *fundMeServiceClient) ListWithdrawals(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, FundMeService_ListWithdrawals_FullMethodName, in, opts)
}

func (c *fundMeServiceClient) UpdateAnswer(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, FundMeService_UpdateAnswer_FullMethodName, in, opts)
}
