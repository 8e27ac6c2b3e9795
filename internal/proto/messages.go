// Package proto defines the authkeeper gRPC service: its messages, the JSON
// codec they travel with, the service descriptor and a typed client.
package proto

import "time"

type User struct {
	ID          string            `json:"id"`
	LoginHandle string            `json:"login_handle"`
	Profile     map[string]string `json:"profile"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type SignupRequest struct {
	LoginHandle string            `json:"login_handle"`
	Password    string            `json:"password"`
	Profile     map[string]string `json:"profile"`
}

type SignupResponse struct {
	User *User `json:"user"`
}

type LoginRequest struct {
	LoginHandle string `json:"login_handle"`
	Password    string `json:"password"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type GetProfileRequest struct{}

type GetProfileResponse struct {
	User *User `json:"user"`
}

// UpdateProfileRequest carries only the fields to change. An empty value
// clears the field. TargetID defaults to the caller.
type UpdateProfileRequest struct {
	TargetID string            `json:"target_id,omitempty"`
	Fields   map[string]string `json:"fields"`
}

type UpdateProfileResponse struct {
	User *User `json:"user"`
}

type AvatarUploadURLRequest struct{}

type AvatarUploadURLResponse struct {
	ObjectKey string `json:"object_key"`
	URL       string `json:"url"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}
