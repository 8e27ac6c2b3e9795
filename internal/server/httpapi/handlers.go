package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

type ctxKey string

const accessTokenKey ctxKey = "accessToken"

// requireToken extracts the bearer token. The services validate it.
func (r *Router) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		token, err := bearerToken(req.Header.Get("Authorization"))
		if err != nil {
			r.logger.Warn(req.Context(), "authorization header invalid", "error", err, "path", req.URL.Path)
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, reauthenticate)
			return
		}
		ctx := context.WithValue(req.Context(), accessTokenKey, token)
		next(w, req.WithContext(ctx))
	}
}

func accessToken(ctx context.Context) string {
	v, _ := ctx.Value(accessTokenKey).(string)
	return v
}

func toPublicUser(u *models.User) *PublicUser {
	return &PublicUser{
		ID:          u.ID,
		LoginHandle: u.LoginHandle,
		Profile:     u.Profile,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *Router) handleSignup(w http.ResponseWriter, req *http.Request) {
	var in SignupRequest
	if err := decodeJSON(w, req, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	u, err := r.auth.Signup(req.Context(), in.LoginHandle, in.Password, models.Profile(in.Profile))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, UserResponse{User: toPublicUser(u)})
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	var in LoginRequest
	if err := decodeJSON(w, req, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	tok, err := r.auth.Login(req.Context(), in.LoginHandle, in.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, LoginResponse{AccessToken: tok.Value, TokenType: "bearer", ExpiresAt: tok.ExpiresAt})
}

func (r *Router) handleLogout(w http.ResponseWriter, req *http.Request) {
	if err := r.auth.Logout(req.Context(), accessToken(req.Context())); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) handleMe(w http.ResponseWriter, req *http.Request) {
	u, err := r.profiles.Get(req.Context(), accessToken(req.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{User: toPublicUser(u)})
}

func (r *Router) handleUpdate(w http.ResponseWriter, req *http.Request) {
	var in UpdateRequest
	if err := decodeJSON(w, req, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	u, err := r.profiles.Update(req.Context(), accessToken(req.Context()), in.TargetID, models.ProfilePatch(in.Fields))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{User: toPublicUser(u)})
}

func (r *Router) handleAvatar(w http.ResponseWriter, req *http.Request) {
	key, url, err := r.profiles.AvatarUploadURL(req.Context(), accessToken(req.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AvatarResponse{ObjectKey: key, UploadURL: url})
}
