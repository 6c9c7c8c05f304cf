package grpcapi

import (
	"context"
	"crypto/tls"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	rpc "github.com/example/threestatement/api/statementsrpc"
	"github.com/example/threestatement/internal/security"
)

const (
	correlationKey = "x-correlation-id"
	maxMessageSize = 4 << 20
)

// NewGRPCServer registers srv together with the health and reflection
// services. tlsCfg may be nil for plaintext.
func NewGRPCServer(srv *Server, tlsCfg *tls.Config) *grpc.Server {
	opts := []grpc.ServerOption{
		grpc.MaxRecvMsgSize(maxMessageSize),
		grpc.MaxSendMsgSize(maxMessageSize),
		grpc.ChainUnaryInterceptor(recoverer(srv.logger), requestLogger(srv.logger)),
	}
	if tlsCfg != nil {
		opts = append(opts, grpc.Creds(credentials.NewTLS(tlsCfg)))
	}

	gs := grpc.NewServer(opts...)
	rpc.RegisterStatementServiceServer(gs, srv)

	hs := health.NewServer()
	hs.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)

	reflection.Register(gs)
	return gs
}

// requestLogger propagates x-correlation-id from incoming metadata, or mints
// one, and logs each call.
func requestLogger(l *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		cid := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(correlationKey); len(v) > 0 && len(v[0]) <= 128 {
				cid = v[0]
			}
		}
		if cid == "" {
			cid = uuid.NewString()
		}
		ctx = security.WithCorrelationID(ctx, cid)
		_ = grpc.SetHeader(ctx, metadata.Pairs(correlationKey, cid))

		start := time.Now()
		resp, err := handler(ctx, req)

		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelWarn
		}
		l.Log(ctx, level, "grpc_request",
			"cid", cid,
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}

func recoverer(l *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if p := recover(); p != nil {
				l.Error("grpc panic", "method", info.FullMethod, "panic", p)
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
