package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authkit/pkg/audit"
	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/mailer"
	"github.com/dmitrymomot/authkit/pkg/password"
	"github.com/dmitrymomot/authkit/pkg/ratelimiter"
	"github.com/dmitrymomot/authkit/pkg/sanitizer"
	"github.com/dmitrymomot/authkit/pkg/session"
)

// DefaultResetTokenTTL bounds how long a password reset link stays valid.
const DefaultResetTokenTTL = 15 * time.Minute

// Service orchestrates registration, authentication, and account lifecycle
// over pluggable storage.
type Service struct {
	users       UserStore
	resetTokens ResetTokenStore
	sessions    *session.Manager
	hasher      *password.Hasher
	breach      *password.BreachChecker
	sender      mailer.Sender
	audit       audit.Logger
	limiter     *ratelimiter.Bucket
	log         *slog.Logger
	resetTTL    time.Duration
	resetURL    string

	// dummyHash is compared against for unknown emails so the response time
	// of a failed login does not reveal whether the account exists.
	dummyHash string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithHasher overrides the default password hasher.
func WithHasher(h *password.Hasher) ServiceOption {
	return func(s *Service) {
		if h != nil {
			s.hasher = h
		}
	}
}

// WithBreachChecker sets the breach-lookup client. A nil checker disables
// breach checks entirely.
func WithBreachChecker(c *password.BreachChecker) ServiceOption {
	return func(s *Service) { s.breach = c }
}

// WithMailer sets the sender used for password reset email.
func WithMailer(m mailer.Sender) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.sender = m
		}
	}
}

// WithAuditLogger sets the audit trail destination.
func WithAuditLogger(a audit.Logger) ServiceOption {
	return func(s *Service) {
		if a != nil {
			s.audit = a
		}
	}
}

// WithLoginLimiter rate-limits authentication and reset requests per
// email+IP pair. A nil bucket disables limiting.
func WithLoginLimiter(b *ratelimiter.Bucket) ServiceOption {
	return func(s *Service) { s.limiter = b }
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithResetTokenTTL overrides the reset token lifetime.
func WithResetTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.resetTTL = ttl
		}
	}
}

// WithResetBaseURL sets the public URL the reset email links to. The raw
// token is appended as a query parameter.
func WithResetBaseURL(url string) ServiceOption {
	return func(s *Service) { s.resetURL = url }
}

// NewService creates the auth service. Users, reset tokens, and sessions are
// required; everything else has a safe default.
func NewService(users UserStore, resetTokens ResetTokenStore, sessions *session.Manager, opts ...ServiceOption) *Service {
	if users == nil {
		panic("auth: user store is required")
	}
	if resetTokens == nil {
		panic("auth: reset token store is required")
	}
	if sessions == nil {
		panic("auth: session manager is required")
	}

	s := &Service{
		users:       users,
		resetTokens: resetTokens,
		sessions:    sessions,
		hasher:      password.NewHasher(),
		sender:      mailer.NewNoopSender(nil),
		audit:       audit.NewLogger(audit.NewMemoryStorage()),
		log:         slog.New(slog.DiscardHandler),
		resetTTL:    DefaultResetTokenTTL,
	}
	for _, opt := range opts {
		opt(s)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		panic("auth: failed to generate dummy hash: " + err.Error())
	}
	s.dummyHash = string(dummy)

	return s
}

// RegisterParams carries new-account input.
type RegisterParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Client    *session.ClientInfo
}

// Register creates a local account and signs it in. The password must pass
// strength validation and must not appear in known breach corpora.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, *session.Session, error) {
	email, err := s.normalizeEmail(params.Email)
	if err != nil {
		return nil, nil, err
	}

	if err := s.checkPassword(ctx, params.Password, auditClient(params.Client, audit.WithEmail(email))...); err != nil {
		return nil, nil, err
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, nil, NewValidationError("Invalid password").WithCause(err)
	}

	now := time.Now()
	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(params.FirstName),
		LastName:     strings.TrimSpace(params.LastName),
		AuthProvider: ProviderLocal,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrStorageEmailExists) {
			_ = s.audit.LogError(ctx, audit.ActionRegister, ErrEmailTaken, auditClient(params.Client, audit.WithEmail(email))...)
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, fmt.Errorf("auth: create user: %w", err)
	}

	sess, err := s.sessions.Create(ctx, user.ID, params.Client)
	if err != nil {
		return nil, nil, fmt.Errorf("auth: create session: %w", err)
	}

	_ = s.audit.Log(ctx, audit.ActionRegister, auditClient(params.Client,
		audit.WithUserID(user.ID.String()), audit.WithEmail(email))...)
	s.log.InfoContext(ctx, "user registered", logger.UserID(user.ID.String()), logger.Email(email))

	return user, sess, nil
}

// Authenticate verifies local credentials and opens a session. All credential
// failures return the same error so responses cannot distinguish a wrong
// password from an unknown email.
func (s *Service) Authenticate(ctx context.Context, emailAddr, pass string, client *session.ClientInfo) (*User, *session.Session, error) {
	email := sanitizer.NormalizeEmail(emailAddr)

	if err := s.allowAttempt(ctx, "login", email, client); err != nil {
		_ = s.audit.LogError(ctx, audit.ActionLogin, err, auditClient(client, audit.WithEmail(email))...)
		return nil, nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil || user.AuthProvider != ProviderLocal {
		// Burn the same hashing work as a real comparison.
		s.hasher.Verify(pass, s.dummyHash)
		_ = s.audit.LogError(ctx, audit.ActionLogin, ErrInvalidCredentials, auditClient(client, audit.WithEmail(email))...)
		return nil, nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(pass, user.PasswordHash) {
		_ = s.audit.LogError(ctx, audit.ActionLogin, ErrInvalidCredentials, auditClient(client,
			audit.WithUserID(user.ID.String()), audit.WithEmail(email))...)
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		_ = s.audit.LogError(ctx, audit.ActionLogin, ErrAccountInactive, auditClient(client,
			audit.WithUserID(user.ID.String()), audit.WithEmail(email))...)
		return nil, nil, ErrAccountInactive
	}

	if s.limiter != nil {
		_ = s.limiter.Reset(ctx, s.attemptKey("login", email, client))
	}

	now := time.Now()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		s.log.WarnContext(ctx, "failed to record last login", logger.Error(err), logger.UserID(user.ID.String()))
	}

	sess, err := s.sessions.Create(ctx, user.ID, client)
	if err != nil {
		return nil, nil, fmt.Errorf("auth: create session: %w", err)
	}

	_ = s.audit.Log(ctx, audit.ActionLogin, auditClient(client,
		audit.WithUserID(user.ID.String()), audit.WithEmail(email))...)

	return user, sess, nil
}

// ValidateSession resolves a session token to its owning user. The session is
// destroyed when its user no longer exists.
func (s *Service) ValidateSession(ctx context.Context, token string) (*User, *session.Session, error) {
	sess, err := s.sessions.Validate(ctx, token)
	if err != nil {
		return nil, nil, ErrSessionInvalid.WithCause(err)
	}

	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil || user.IsDeleted() {
		_ = s.sessions.Destroy(ctx, token)
		return nil, nil, ErrSessionInvalid
	}

	if !user.IsActive {
		return nil, nil, ErrAccountInactive
	}

	return user, sess, nil
}

// FlagSessionAnomaly records a mismatch between a session's recorded client
// characteristics and the request presenting it. The session stays valid; the
// trail exists for review and forced revocation.
func (s *Service) FlagSessionAnomaly(ctx context.Context, sess *session.Session, client *session.ClientInfo) {
	s.log.WarnContext(ctx, "session fingerprint mismatch",
		logger.UserID(sess.UserID.String()))
	_ = s.audit.LogError(ctx, audit.ActionSuspiciousActivity, errors.New("session fingerprint mismatch"),
		auditClient(client,
			audit.WithUserID(sess.UserID.String()),
			audit.WithMetadata("reason", "fingerprint_mismatch"),
			audit.WithMetadata("session_id", sess.ID.String()))...)
}

// Logout destroys a single session. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	sess, err := s.sessions.Validate(ctx, token)
	if err == nil {
		_ = s.audit.Log(ctx, audit.ActionLogout, audit.WithUserID(sess.UserID.String()))
	}
	return s.sessions.Destroy(ctx, token)
}

// ChangePassword rotates a local account's password after verifying the
// current one. All of the user's sessions are destroyed afterwards; the two
// steps are not atomic, so a session created in between may survive.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, newPass string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound.WithCause(err)
	}

	if user.AuthProvider != ProviderLocal {
		return ErrNotLocalAccount
	}

	if !s.hasher.Verify(current, user.PasswordHash) {
		_ = s.audit.LogError(ctx, audit.ActionPasswordChange, ErrInvalidCredentials, audit.WithUserID(userID.String()))
		return NewUnauthorizedError("Current password is incorrect")
	}

	if err := s.checkPassword(ctx, newPass, audit.WithUserID(userID.String())); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPass)
	if err != nil {
		return NewValidationError("Invalid password").WithCause(err)
	}

	now := time.Now()
	user.PasswordHash = hash
	user.PasswordChangedAt = &now
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("auth: update password: %w", err)
	}

	if _, err := s.sessions.DestroyAll(ctx, userID); err != nil {
		s.log.WarnContext(ctx, "failed to destroy sessions after password change",
			logger.Error(err), logger.UserID(userID.String()))
	}

	_ = s.audit.Log(ctx, audit.ActionPasswordChange, audit.WithUserID(userID.String()))
	return nil
}

// RequestPasswordReset issues a reset token and emails a reset link. It never
// reveals whether the email is registered: unknown addresses go through the
// same token generation work and return success.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string, client *session.ClientInfo) error {
	email := sanitizer.NormalizeEmail(emailAddr)

	if err := s.allowAttempt(ctx, "reset", email, client); err != nil {
		return err
	}

	raw, hash, err := generateResetToken()
	if err != nil {
		return fmt.Errorf("auth: generate reset token: %w", err)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil || user.AuthProvider != ProviderLocal || !user.IsActive {
		// Same work, no side effects, so the response is indistinguishable.
		return nil
	}

	// A new request supersedes any outstanding token.
	if err := s.resetTokens.DeleteByUserID(ctx, user.ID); err != nil {
		return fmt.Errorf("auth: clear reset tokens: %w", err)
	}

	token := &ResetToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(s.resetTTL),
		CreatedAt: time.Now(),
	}
	if err := s.resetTokens.Create(ctx, token); err != nil {
		return fmt.Errorf("auth: store reset token: %w", err)
	}

	link := s.resetURL
	if link != "" {
		link += "?token=" + raw
	}
	if err := s.sender.Send(ctx, mailer.Email{
		To:      user.Email,
		Subject: "Reset your password",
		Tag:     "password-reset",
		TextBody: fmt.Sprintf(
			"We received a request to reset your password.\n\nReset link: %s\n\nThe link expires in %s. If you did not request this, you can ignore this email.",
			link, s.resetTTL),
		HTMLBody: fmt.Sprintf(
			`<p>We received a request to reset your password.</p><p><a href="%s">Reset your password</a></p><p>The link expires in %s. If you did not request this, you can ignore this email.</p>`,
			link, s.resetTTL),
	}); err != nil {
		s.log.ErrorContext(ctx, "failed to send reset email", logger.Error(err), logger.Email(email))
		return fmt.Errorf("auth: send reset email: %w", err)
	}

	_ = s.audit.Log(ctx, audit.ActionPasswordResetReq, auditClient(client,
		audit.WithUserID(user.ID.String()), audit.WithEmail(email))...)
	return nil
}

// ResetPassword consumes a reset token and sets a new password. The token is
// single use, and all of the user's sessions are destroyed.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPass string) error {
	token, err := s.resetTokens.GetByHash(ctx, hashResetToken(rawToken))
	if err != nil {
		return ErrInvalidResetToken
	}

	if token.IsExpired() {
		_ = s.resetTokens.Delete(ctx, token.ID)
		return ErrInvalidResetToken
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return ErrInvalidResetToken
	}

	if err := s.checkPassword(ctx, newPass, audit.WithUserID(user.ID.String())); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPass)
	if err != nil {
		return NewValidationError("Invalid password").WithCause(err)
	}

	now := time.Now()
	user.PasswordHash = hash
	user.PasswordChangedAt = &now
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("auth: update password: %w", err)
	}

	if err := s.resetTokens.DeleteByUserID(ctx, user.ID); err != nil {
		s.log.WarnContext(ctx, "failed to delete consumed reset token",
			logger.Error(err), logger.UserID(user.ID.String()))
	}

	if _, err := s.sessions.DestroyAll(ctx, user.ID); err != nil {
		s.log.WarnContext(ctx, "failed to destroy sessions after password reset",
			logger.Error(err), logger.UserID(user.ID.String()))
	}

	_ = s.audit.Log(ctx, audit.ActionPasswordReset, audit.WithUserID(user.ID.String()))
	return nil
}

// UpdateProfileParams carries optional profile changes. Nil fields are left
// untouched.
type UpdateProfileParams struct {
	FirstName   *string
	LastName    *string
	DisplayName *string
	AvatarURL   *string
}

// UpdateProfile applies partial profile changes.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (*User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound.WithCause(err)
	}

	if params.FirstName != nil {
		user.FirstName = strings.TrimSpace(*params.FirstName)
	}
	if params.LastName != nil {
		user.LastName = strings.TrimSpace(*params.LastName)
	}
	if params.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*params.DisplayName)
	}
	if params.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*params.AvatarURL)
	}
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("auth: update profile: %w", err)
	}
	return user, nil
}

// Deactivate disables the account and destroys its sessions. The account can
// be reactivated later; no data is removed.
func (s *Service) Deactivate(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound.WithCause(err)
	}

	user.IsActive = false
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("auth: deactivate user: %w", err)
	}

	if _, err := s.sessions.DestroyAll(ctx, userID); err != nil {
		s.log.WarnContext(ctx, "failed to destroy sessions on deactivation",
			logger.Error(err), logger.UserID(userID.String()))
	}

	_ = s.audit.Log(ctx, audit.ActionAccountDeactivate, audit.WithUserID(userID.String()))
	return nil
}

// Reactivate re-enables a previously deactivated account.
func (s *Service) Reactivate(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound.WithCause(err)
	}

	user.IsActive = true
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("auth: reactivate user: %w", err)
	}
	return nil
}

// Delete soft-deletes the account and destroys its sessions. Storage keeps
// the row for referential integrity; HardDelete removes it for good.
func (s *Service) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.SoftDelete(ctx, userID); err != nil {
		if errors.Is(err, ErrStorageUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("auth: delete user: %w", err)
	}

	if _, err := s.sessions.DestroyAll(ctx, userID); err != nil {
		s.log.WarnContext(ctx, "failed to destroy sessions on delete",
			logger.Error(err), logger.UserID(userID.String()))
	}
	_ = s.resetTokens.DeleteByUserID(ctx, userID)

	_ = s.audit.Log(ctx, audit.ActionAccountDelete, audit.WithUserID(userID.String()))
	return nil
}

// HardDelete permanently removes the account row.
func (s *Service) HardDelete(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.sessions.DestroyAll(ctx, userID); err != nil {
		s.log.WarnContext(ctx, "failed to destroy sessions on hard delete",
			logger.Error(err), logger.UserID(userID.String()))
	}
	_ = s.resetTokens.DeleteByUserID(ctx, userID)

	if err := s.users.HardDelete(ctx, userID); err != nil {
		if errors.Is(err, ErrStorageUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("auth: hard delete user: %w", err)
	}
	return nil
}

// ExternalUserParams carries the identity claims an external provider
// asserts about a user.
type ExternalUserParams struct {
	Provider      Provider
	ExternalID    string
	Email         string
	FirstName     string
	LastName      string
	AvatarURL     string
	EmailVerified bool
}

// EnsureExternalUser provisions a local record for an externally
// authenticated identity on first sight and refreshes its profile on later
// ones. An existing account with the same email is linked only when the
// provider asserts the email as verified; otherwise the conflict is refused.
func (s *Service) EnsureExternalUser(ctx context.Context, params ExternalUserParams) (*User, error) {
	if !params.Provider.Valid() || params.Provider == ProviderLocal {
		return nil, NewValidationError("Unknown identity provider")
	}
	if params.ExternalID == "" {
		return nil, NewValidationError("Missing external identity")
	}

	email := sanitizer.NormalizeEmail(params.Email)

	user, err := s.users.GetByExternalID(ctx, params.Provider, params.ExternalID)
	if err == nil {
		changed := false
		if email != "" && user.Email != email {
			user.Email = email
			changed = true
		}
		if params.FirstName != "" && user.FirstName != params.FirstName {
			user.FirstName = params.FirstName
			changed = true
		}
		if params.LastName != "" && user.LastName != params.LastName {
			user.LastName = params.LastName
			changed = true
		}
		if params.AvatarURL != "" && user.AvatarURL != params.AvatarURL {
			user.AvatarURL = params.AvatarURL
			changed = true
		}
		if params.EmailVerified && !user.IsEmailVerified {
			user.IsEmailVerified = true
			changed = true
		}
		if changed {
			user.UpdatedAt = time.Now()
			if err := s.users.Update(ctx, user); err != nil {
				return nil, fmt.Errorf("auth: sync external user: %w", err)
			}
		}
		return user, nil
	}

	if email != "" {
		if existing, err := s.users.GetByEmail(ctx, email); err == nil {
			if !params.EmailVerified {
				return nil, ErrEmailTaken
			}
			existing.AuthProvider = params.Provider
			existing.ExternalID = params.ExternalID
			existing.IsEmailVerified = true
			existing.UpdatedAt = time.Now()
			if err := s.users.Update(ctx, existing); err != nil {
				return nil, fmt.Errorf("auth: link external user: %w", err)
			}
			s.log.InfoContext(ctx, "linked external identity",
				logger.UserID(existing.ID.String()), logger.Provider(string(params.Provider)))
			return existing, nil
		}
	}

	now := time.Now()
	user = &User{
		ID:              uuid.New(),
		Email:           email,
		FirstName:       params.FirstName,
		LastName:        params.LastName,
		AvatarURL:       params.AvatarURL,
		AuthProvider:    params.Provider,
		ExternalID:      params.ExternalID,
		IsActive:        true,
		IsEmailVerified: params.EmailVerified,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth: provision external user: %w", err)
	}

	s.log.InfoContext(ctx, "provisioned external user",
		logger.UserID(user.ID.String()), logger.Provider(string(params.Provider)))
	return user, nil
}

// RevokeOtherSessions destroys every session of the user except the current
// one, returning how many were removed.
func (s *Service) RevokeOtherSessions(ctx context.Context, userID, keepSessionID uuid.UUID) (int64, error) {
	count, err := s.sessions.DestroyAllExcept(ctx, userID, keepSessionID)
	if err != nil {
		return 0, fmt.Errorf("auth: revoke sessions: %w", err)
	}
	return count, nil
}

// GetUser loads a user by id.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound.WithCause(err)
	}
	return user, nil
}

func (s *Service) normalizeEmail(emailAddr string) (string, error) {
	email := sanitizer.NormalizeEmail(emailAddr)
	if _, err := mail.ParseAddress(email); err != nil {
		return "", NewValidationError("Invalid email address").
			WithFields(map[string]string{"email": "must be a valid email address"})
	}
	return email, nil
}

// checkPassword enforces strength requirements and the breach blocklist. A
// breach hit is recorded as a suspicious-activity event before it is returned.
func (s *Service) checkPassword(ctx context.Context, pass string, opts ...audit.EventOption) error {
	strength := password.ValidateStrength(pass)
	if !strength.Valid {
		fields := map[string]string{"password": strings.Join(strength.Feedback, "; ")}
		if len(strength.Feedback) == 0 {
			fields["password"] = "password is too weak"
		}
		return NewValidationError("Password does not meet requirements").WithFields(fields)
	}

	if s.breach != nil {
		if result := s.breach.Check(ctx, pass); result.Breached {
			_ = s.audit.LogError(ctx, audit.ActionSuspiciousActivity, ErrPasswordBreached,
				append(opts, audit.WithMetadata("reason", "breached_password"))...)
			return ErrPasswordBreached
		}
	}
	return nil
}

func (s *Service) allowAttempt(ctx context.Context, action, email string, client *session.ClientInfo) error {
	if s.limiter == nil {
		return nil
	}
	res, err := s.limiter.Allow(ctx, s.attemptKey(action, email, client))
	if err != nil {
		// A broken limiter must not lock everyone out.
		s.log.ErrorContext(ctx, "rate limiter failure", logger.Error(err))
		return nil
	}
	if !res.Allowed {
		return ErrTooManyAttempts
	}
	return nil
}

func (s *Service) attemptKey(action, email string, client *session.ClientInfo) string {
	ip := ""
	if client != nil {
		ip = client.IP
	}
	return action + ":" + email + ":" + ip
}

func auditClient(client *session.ClientInfo, opts ...audit.EventOption) []audit.EventOption {
	if client == nil {
		return opts
	}
	return append(opts, audit.WithIP(client.IP), audit.WithUserAgent(client.UserAgent))
}

func generateResetToken() (raw, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(b)
	return raw, hashResetToken(raw), nil
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
