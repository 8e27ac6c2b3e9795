// Package grpc exposes the auth and profile services over gRPC with the JSON
// codec from internal/proto.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	pb "github.com/dmitrijs2005/authkeeper/internal/proto"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"google.golang.org/grpc"
)

// AuthService is the part of services.AuthService the transport needs.
type AuthService interface {
	Signup(ctx context.Context, handle, password string, profile models.Profile) (*models.User, error)
	Login(ctx context.Context, handle, password string) (*models.SessionToken, error)
	Logout(ctx context.Context, token string) error
}

// ProfileService is the part of services.ProfileService the transport needs.
type ProfileService interface {
	Get(ctx context.Context, token string) (*models.User, error)
	Update(ctx context.Context, token, targetID string, patch models.ProfilePatch) (*models.User, error)
	AvatarUploadURL(ctx context.Context, token string) (string, string, error)
}

type GRPCServer struct {
	pb.UnimplementedAuthServiceServer
	address  string
	auth     AuthService
	profiles ProfileService
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, as AuthService, ps ProfileService) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		auth:     as,
		profiles: ps,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	pb.RegisterAuthServiceServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
