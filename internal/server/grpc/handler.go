package grpc

import (
	"context"

	pb "github.com/dmitrijs2005/authkeeper/internal/proto"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

const tokenTypeBearer = "bearer"

func toUser(u *models.User) *pb.User {
	return &pb.User{
		ID:          u.ID,
		LoginHandle: u.LoginHandle,
		Profile:     u.Profile,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (s *GRPCServer) Signup(ctx context.Context, req *pb.SignupRequest) (*pb.SignupResponse, error) {
	u, err := s.auth.Signup(ctx, req.LoginHandle, req.Password, models.Profile(req.Profile))
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.SignupResponse{User: toUser(u)}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.LoginResponse, error) {
	tok, err := s.auth.Login(ctx, req.LoginHandle, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.LoginResponse{AccessToken: tok.Value, TokenType: tokenTypeBearer, ExpiresAt: tok.ExpiresAt}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *pb.LogoutRequest) (*pb.LogoutResponse, error) {
	if err := s.auth.Logout(ctx, accessTokenFromContext(ctx)); err != nil {
		return nil, toStatus(err)
	}
	return &pb.LogoutResponse{}, nil
}

func (s *GRPCServer) GetProfile(ctx context.Context, _ *pb.GetProfileRequest) (*pb.GetProfileResponse, error) {
	u, err := s.profiles.Get(ctx, accessTokenFromContext(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.GetProfileResponse{User: toUser(u)}, nil
}

func (s *GRPCServer) UpdateProfile(ctx context.Context, req *pb.UpdateProfileRequest) (*pb.UpdateProfileResponse, error) {
	u, err := s.profiles.Update(ctx, accessTokenFromContext(ctx), req.TargetID, models.ProfilePatch(req.Fields))
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.UpdateProfileResponse{User: toUser(u)}, nil
}

func (s *GRPCServer) AvatarUploadURL(ctx context.Context, _ *pb.AvatarUploadURLRequest) (*pb.AvatarUploadURLResponse, error) {
	key, url, err := s.profiles.AvatarUploadURL(ctx, accessTokenFromContext(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.AvatarUploadURLResponse{ObjectKey: key, URL: url}, nil
}

func (s *GRPCServer) Ping(context.Context, *pb.PingRequest) (*pb.PingResponse, error) {
	return &pb.PingResponse{Status: "ok"}, nil
}
