package client

import (
	"context"

	pb "github.com/dmitrijs2005/authkeeper/internal/proto"
)

// Client is the API the CLI needs from the authkeeper server.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Signup(ctx context.Context, handle, password string, profile map[string]string) (*pb.User, error)
	Login(ctx context.Context, handle, password string) (*pb.LoginResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*pb.User, error)
	UpdateProfile(ctx context.Context, fields map[string]string) (*pb.User, error)
	AvatarUploadURL(ctx context.Context) (string, string, error)
	SetAccessToken(token string)
	AccessToken() string
}
