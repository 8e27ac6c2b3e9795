package httpapi

import "time"

// DTOs for HTTP JSON request/response payloads.

type SignupRequest struct {
	LoginHandle string            `json:"login_handle"`
	Password    string            `json:"password"`
	Profile     map[string]string `json:"profile"`
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

// UpdateRequest lists only the fields to change; an empty value clears one.
type UpdateRequest struct {
	TargetID string            `json:"target_id,omitempty"`
	Fields   map[string]string `json:"fields"`
}

type PublicUser struct {
	ID          string            `json:"id"`
	LoginHandle string            `json:"login_handle"`
	Profile     map[string]string `json:"profile"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type UserResponse struct {
	User *PublicUser `json:"user"`
}

type AvatarResponse struct {
	ObjectKey string `json:"object_key"`
	UploadURL string `json:"upload_url"`
}
