package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/pdfsheets/internal/common"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "x-request-id"

// MaxMessageBytes bounds a single request, base64 documents included.
const MaxMessageBytes = 64 << 20

// NewGRPCServer registers the extraction service and the health service. The
// health status starts out SERVING for the empty service name and ServiceName.
func NewGRPCServer(svc ExtractionServiceServer, logger *slog.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]grpc.ServerOption{
		grpc.MaxRecvMsgSize(MaxMessageBytes),
		grpc.MaxSendMsgSize(MaxMessageBytes),
		grpc.ChainUnaryInterceptor(RequestIDInterceptor(logger)),
	}, opts...)
	srv := grpc.NewServer(opts...)
	RegisterExtractionServiceServer(srv, svc)

	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	return srv, hs
}

// RequestIDInterceptor tags the context with the caller's x-request-id, or a
// fresh uuid, echoes it back as a header and logs each call.
func RequestIDInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(RequestIDHeader); len(v) > 0 {
				id = v[0]
			}
		}
		if id == "" {
			id = uuid.New().String()
		}
		ctx = common.WithRequestID(ctx, id)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, id))

		start := time.Now()
		resp, err := handler(ctx, req)
		common.LoggerFromContext(ctx, logger).Info("grpc.request",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}
