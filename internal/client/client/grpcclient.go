package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	pb "github.com/dmitrijs2005/authkeeper/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	conn   *grpc.ClientConn
	client pb.AuthServiceClient

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.AccessToken(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewAuthKeeperClient connects to endpointURL without TLS. Extra dial
// options are appended, which lets tests swap the transport.
func NewAuthKeeperClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewAuthServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

func (s *GRPCClient) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &pb.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "ok" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Signup(ctx context.Context, handle, password string, profile map[string]string) (*pb.User, error) {
	resp, err := s.client.Signup(ctx, &pb.SignupRequest{LoginHandle: handle, Password: password, Profile: profile})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.User, nil
}

// Login authenticates and keeps the returned token for later calls.
func (s *GRPCClient) Login(ctx context.Context, handle, password string) (*pb.LoginResponse, error) {
	resp, err := s.client.Login(ctx, &pb.LoginRequest{LoginHandle: handle, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	s.SetAccessToken(resp.AccessToken)
	return resp, nil
}

// Logout ends the server session and forgets the token either way.
func (s *GRPCClient) Logout(ctx context.Context) error {
	if s.AccessToken() == "" {
		return ErrNotLoggedIn
	}
	_, err := s.client.Logout(ctx, &pb.LogoutRequest{})
	s.SetAccessToken("")
	return s.mapError(err)
}

func (s *GRPCClient) Me(ctx context.Context) (*pb.User, error) {
	resp, err := s.client.GetProfile(ctx, &pb.GetProfileRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.User, nil
}

func (s *GRPCClient) UpdateProfile(ctx context.Context, fields map[string]string) (*pb.User, error) {
	resp, err := s.client.UpdateProfile(ctx, &pb.UpdateProfileRequest{Fields: fields})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.User, nil
}

func (s *GRPCClient) AvatarUploadURL(ctx context.Context) (string, string, error) {
	resp, err := s.client.AvatarUploadURL(ctx, &pb.AvatarUploadURLRequest{})
	if err != nil {
		return "", "", s.mapError(err)
	}
	return resp.ObjectKey, resp.URL, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		if st.Message() == common.ErrInvalidCredentials.Error() {
			return ErrInvalidCredentials
		}
		return ErrUnauthorized
	case codes.PermissionDenied:
		return ErrForbidden
	case codes.AlreadyExists:
		return ErrAlreadyRegistered
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
