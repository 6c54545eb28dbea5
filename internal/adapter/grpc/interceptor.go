package grpc

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/simaogato/fundme-backend/internal/domain"
)

const (
	// AuthorizationHeader carries the API token
	AuthorizationHeader = "authorization"
	// CallerHeader carries the address the request is made on behalf of
	CallerHeader = "x-caller-address"
)

type callerKey struct{}

// AuthInterceptor returns a gRPC unary server interceptor that validates
// the authorization token from request metadata.
// If the token is missing or invalid, it returns status.Unauthenticated.
// If valid, it calls the handler with the original context.
func AuthInterceptor(validToken string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		authHeaders := md.Get(AuthorizationHeader)
		if len(authHeaders) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization header")
		}

		if authHeaders[0] != validToken {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		return handler(ctx, req)
	}
}

// CallerInterceptor returns a gRPC unary server interceptor that reads the
// caller address from request metadata and stores it in the context.
// A missing header is allowed (queries are anonymous); a malformed one is
// rejected with status.InvalidArgument.
func CallerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return handler(ctx, req)
		}

		values := md.Get(CallerHeader)
		if len(values) == 0 {
			return handler(ctx, req)
		}

		caller, err := domain.ParseAddress(values[0])
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid %s: %v", CallerHeader, err)
		}

		return handler(context.WithValue(ctx, callerKey{}, caller), req)
	}
}

// CallerFromContext returns the caller stored by CallerInterceptor
func CallerFromContext(ctx context.Context) (domain.Address, bool) {
	caller, ok := ctx.Value(callerKey{}).(domain.Address)
	return caller, ok
}

// LoggingInterceptor returns a gRPC unary server interceptor that logs every call
// with its method, resulting status code and duration.
func LoggingInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)

		var event *zerolog.Event
		switch code {
		case codes.OK:
			event = logger.Info()
		case codes.Internal, codes.Unknown, codes.DataLoss:
			event = logger.Error().Err(err)
		default:
			event = logger.Warn().Err(err)
		}

		event.
			Str("method", info.FullMethod).
			Str("code", code.String()).
			Dur("duration", time.Since(start)).
			Msg("grpc call")

		return resp, err
	}
}

// OutgoingContext attaches the API token and, when set, the caller address
// to the metadata of outgoing client calls
func OutgoingContext(ctx context.Context, token string, caller domain.Address) context.Context {
	pairs := []string{AuthorizationHeader, token}
	if !caller.IsZero() {
		pairs = append(pairs, CallerHeader, caller.String())
	}
	return metadata.AppendToOutgoingContext(ctx, pairs...)
}
