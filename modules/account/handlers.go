package account

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrymomot/authkit/pkg/auth"
	"github.com/dmitrymomot/authkit/pkg/clientip"
	"github.com/dmitrymomot/authkit/pkg/fingerprint"
	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/session"
	"github.com/dmitrymomot/authkit/provider"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type updateProfileRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

type userResponse struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	FirstName       string     `json:"first_name,omitempty"`
	LastName        string     `json:"last_name,omitempty"`
	DisplayName     string     `json:"display_name,omitempty"`
	AvatarURL       string     `json:"avatar_url,omitempty"`
	AuthProvider    string     `json:"auth_provider"`
	IsEmailVerified bool       `json:"is_email_verified"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toUserResponse(u *auth.User) userResponse {
	return userResponse{
		ID:              u.ID.String(),
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		DisplayName:     u.DisplayName,
		AvatarURL:       u.AvatarURL,
		AuthProvider:    string(u.AuthProvider),
		IsEmailVerified: u.IsEmailVerified,
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
	}
}

func (s *Service) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, sess, err := s.auth.Register(r.Context(), auth.RegisterParams{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Client:    clientInfo(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.local.IssueSession(w, sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Service) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, sess, err := s.auth.Authenticate(r.Context(), req.Email, req.Password, clientInfo(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.local.IssueSession(w, sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Service) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.local.SignOut(w, r); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.auth.RequestPasswordReset(r.Context(), req.Email, clientInfo(r)); err != nil {
		s.writeError(w, r, err)
		return
	}

	// Always 202: the response must not reveal whether the email exists.
	s.writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "If the email is registered, a reset link has been sent.",
	})
}

func (s *Service) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) currentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := provider.UserFromContext(r.Context())
	if !ok {
		s.writeError(w, r, auth.ErrSessionInvalid)
		return
	}
	s.writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Service) updateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := provider.UserFromContext(r.Context())
	if !ok {
		s.writeError(w, r, auth.ErrSessionInvalid)
		return
	}

	var req updateProfileRequest
	if !s.decode(w, r, &req) {
		return
	}

	updated, err := s.auth.UpdateProfile(r.Context(), user.ID, auth.UpdateProfileParams{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toUserResponse(updated))
}

func (s *Service) changePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := provider.UserFromContext(r.Context())
	if !ok {
		s.writeError(w, r, auth.ErrSessionInvalid)
		return
	}

	var req changePasswordRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.auth.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}

	// The change destroyed every session, including this one.
	s.local.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) revokeOtherSessions(w http.ResponseWriter, r *http.Request) {
	user, ok := provider.UserFromContext(r.Context())
	if !ok {
		s.writeError(w, r, auth.ErrSessionInvalid)
		return
	}

	sess, err := s.local.CurrentSession(r)
	if err != nil {
		s.writeError(w, r, auth.ErrSessionInvalid)
		return
	}

	count, err := s.auth.RevokeOtherSessions(r.Context(), user.ID, sess.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int64{"revoked": count})
}

func (s *Service) deleteAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := provider.UserFromContext(r.Context())
	if !ok {
		s.writeError(w, r, auth.ErrSessionInvalid)
		return
	}

	if err := s.auth.Delete(r.Context(), user.ID); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.local.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, r, auth.NewValidationError("Invalid request body"))
		return false
	}
	return true
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := auth.StatusOf(err)
	resp := errorResponse{Error: "Internal server error"}

	var authErr *auth.Error
	if errors.As(err, &authErr) {
		resp.Error = authErr.Message
		resp.Fields = authErr.Fields
	} else {
		s.log.ErrorContext(r.Context(), "unhandled account error", logger.Error(err))
	}

	s.writeJSON(w, status, resp)
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("failed to encode response", logger.Error(err))
	}
}

func clientInfo(r *http.Request) *session.ClientInfo {
	return &session.ClientInfo{
		IP:          clientip.FromRequest(r),
		UserAgent:   r.UserAgent(),
		Fingerprint: fingerprint.Generate(r),
	}
}
