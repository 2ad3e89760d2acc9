package auth_test

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/audit"
	"github.com/dmitrymomot/authkit/pkg/auth"
	"github.com/dmitrymomot/authkit/pkg/mailer"
	"github.com/dmitrymomot/authkit/pkg/password"
	"github.com/dmitrymomot/authkit/pkg/session"
)

const strongPassword = "Tr4verse!Mountain9"

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Create(ctx context.Context, user *auth.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) GetByExternalID(ctx context.Context, provider auth.Provider, externalID string) (*auth.User, error) {
	args := m.Called(ctx, provider, externalID)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) Update(ctx context.Context, user *auth.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserStore) HardDelete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockResetTokenStore struct {
	mock.Mock
}

func (m *mockResetTokenStore) Create(ctx context.Context, token *auth.ResetToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockResetTokenStore) GetByHash(ctx context.Context, tokenHash string) (*auth.ResetToken, error) {
	args := m.Called(ctx, tokenHash)
	if t := args.Get(0); t != nil {
		return t.(*auth.ResetToken), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockResetTokenStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockResetTokenStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockResetTokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type capturingSender struct {
	emails []mailer.Email
}

func (s *capturingSender) Send(_ context.Context, email mailer.Email) error {
	s.emails = append(s.emails, email)
	return nil
}

// fastHasher keeps bcrypt cheap in tests.
func fastHasher() *password.Hasher {
	return password.NewHasher(password.WithCost(4))
}

func newTestService(t *testing.T, users *mockUserStore, tokens *mockResetTokenStore, opts ...auth.ServiceOption) (*auth.Service, *session.Manager) {
	t.Helper()

	sessions := session.NewManager(session.NewMemoryStore(0))
	t.Cleanup(func() { _ = sessions.Close() })

	opts = append([]auth.ServiceOption{auth.WithHasher(fastHasher())}, opts...)
	return auth.NewService(users, tokens, sessions, opts...), sessions
}

func hashPassword(t *testing.T, pass string) string {
	t.Helper()
	hash, err := fastHasher().Hash(pass)
	require.NoError(t, err)
	return hash
}

func TestService_Register(t *testing.T) {
	t.Parallel()

	t.Run("creates user and session", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, _ := newTestService(t, users, tokens)

		users.On("Create", mock.Anything, mock.MatchedBy(func(u *auth.User) bool {
			return u.Email == "jane@example.com" &&
				u.AuthProvider == auth.ProviderLocal &&
				u.IsActive &&
				u.PasswordHash != ""
		})).Return(nil)

		user, sess, err := svc.Register(context.Background(), auth.RegisterParams{
			Email:     "  Jane@Example.COM ",
			Password:  strongPassword,
			FirstName: "Jane",
			LastName:  "Doe",
		})
		require.NoError(t, err)
		require.NotNil(t, user)
		require.NotNil(t, sess)
		assert.Equal(t, "jane@example.com", user.Email)
		assert.Equal(t, user.ID, sess.UserID)
		assert.Len(t, sess.Token, 64)
		users.AssertExpectations(t)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, _ := newTestService(t, users, tokens)

		_, _, err := svc.Register(context.Background(), auth.RegisterParams{
			Email:    "not-an-email",
			Password: strongPassword,
		})
		require.Error(t, err)
		assert.Equal(t, auth.KindValidation, auth.KindOf(err))
		assert.Equal(t, 400, auth.StatusOf(err))
	})

	t.Run("rejects weak password with feedback", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, _ := newTestService(t, users, tokens)

		_, _, err := svc.Register(context.Background(), auth.RegisterParams{
			Email:    "jane@example.com",
			Password: "short",
		})
		require.Error(t, err)

		var authErr *auth.Error
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, auth.KindValidation, authErr.Kind)
		assert.NotEmpty(t, authErr.Fields["password"])
	})

	t.Run("breached password is refused and audited", func(t *testing.T) {
		t.Parallel()

		// Range endpoint reporting every suffix as breached.
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sum := sha1.Sum([]byte(strongPassword))
			digest := strings.ToUpper(hex.EncodeToString(sum[:]))
			fmt.Fprintf(w, "%s:1337\r\n", digest[5:])
		}))
		t.Cleanup(srv.Close)

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		trail := audit.NewMemoryStorage()
		svc, _ := newTestService(t, users, tokens,
			auth.WithBreachChecker(password.NewBreachChecker(
				password.WithBreachAPIURL(srv.URL+"/"),
			)),
			auth.WithAuditLogger(audit.NewLogger(trail)),
		)

		_, _, err := svc.Register(context.Background(), auth.RegisterParams{
			Email:    "jane@example.com",
			Password: strongPassword,
		})
		require.ErrorIs(t, err, auth.ErrPasswordBreached)
		assert.Equal(t, 403, auth.StatusOf(err))

		events := trail.Events()
		require.Len(t, events, 1)
		assert.Equal(t, audit.ActionSuspiciousActivity, events[0].Action)
		assert.Equal(t, "jane@example.com", events[0].Email)
		assert.Equal(t, "breached_password", events[0].Metadata["reason"])
	})

	t.Run("duplicate email maps to conflict", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, _ := newTestService(t, users, tokens)

		users.On("Create", mock.Anything, mock.Anything).Return(auth.ErrStorageEmailExists)

		_, _, err := svc.Register(context.Background(), auth.RegisterParams{
			Email:    "jane@example.com",
			Password: strongPassword,
		})
		require.ErrorIs(t, err, auth.ErrEmailTaken)
		assert.Equal(t, 409, auth.StatusOf(err))
	})
}

func TestService_Authenticate(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials open a session", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, _ := newTestService(t, users, tokens)

		user := &auth.User{
			ID:           uuid.New(),
			Email:        "jane@example.com",
			PasswordHash: hashPassword(t, strongPassword),
			AuthProvider: auth.ProviderLocal,
			IsActive:     true,
		}
		users.On("GetByEmail", mock.Anything, "jane@example.com").Return(user, nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *auth.User) bool {
			return u.LastLoginAt != nil
		})).Return(nil)

		got, sess, err := svc.Authenticate(context.Background(), "jane@example.com", strongPassword, nil)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		require.NotNil(t, sess)
		assert.Equal(t, user.ID, sess.UserID)
	})

	t.Run("unknown email and wrong password return the same error", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, _ := newTestService(t, users, tokens)

		users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, auth.ErrStorageUserNotFound)

		known := &auth.User{
			ID:           uuid.New(),
			Email:        "jane@example.com",
			PasswordHash: hashPassword(t, strongPassword),
			AuthProvider: auth.ProviderLocal,
			IsActive:     true,
		}
		users.On("GetByEmail", mock.Anything, "jane@example.com").Return(known, nil)

		_, _, errUnknown := svc.Authenticate(context.Background(), "ghost@example.com", "whatever123", nil)
		_, _, errWrongPass := svc.Authenticate(context.Background(), "jane@example.com", "wrong-password", nil)

		require.ErrorIs(t, errUnknown, auth.ErrInvalidCredentials)
		require.ErrorIs(t, errWrongPass, auth.ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
	})

	t.Run("externally managed account cannot log in locally", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, _ := newTestService(t, users, tokens)

		external := &auth.User{
			ID:           uuid.New(),
			Email:        "jane@example.com",
			AuthProvider: auth.ProviderClerk,
			ExternalID:   "user_abc",
			IsActive:     true,
		}
		users.On("GetByEmail", mock.Anything, "jane@example.com").Return(external, nil)

		_, _, err := svc.Authenticate(context.Background(), "jane@example.com", strongPassword, nil)
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("deactivated account is rejected after password check", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, _ := newTestService(t, users, tokens)

		user := &auth.User{
			ID:           uuid.New(),
			Email:        "jane@example.com",
			PasswordHash: hashPassword(t, strongPassword),
			AuthProvider: auth.ProviderLocal,
			IsActive:     false,
		}
		users.On("GetByEmail", mock.Anything, "jane@example.com").Return(user, nil)

		_, _, err := svc.Authenticate(context.Background(), "jane@example.com", strongPassword, nil)
		require.ErrorIs(t, err, auth.ErrAccountInactive)
		assert.Equal(t, 401, auth.StatusOf(err))
	})
}

func TestService_ValidateSession(t *testing.T) {
	t.Parallel()

	t.Run("resolves token to user", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, sessions := newTestService(t, users, tokens)

		userID := uuid.New()
		sess, err := sessions.Create(context.Background(), userID, nil)
		require.NoError(t, err)

		users.On("GetByID", mock.Anything, userID).Return(&auth.User{
			ID:       userID,
			IsActive: true,
		}, nil)

		user, got, err := svc.ValidateSession(context.Background(), sess.Token)
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, sess.ID, got.ID)
	})

	t.Run("unknown token is invalid", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, _ := newTestService(t, users, tokens)

		_, _, err := svc.ValidateSession(context.Background(), "deadbeef")
		require.ErrorIs(t, err, auth.ErrSessionInvalid)
		assert.Equal(t, 401, auth.StatusOf(err))
	})

	t.Run("session of a deleted user is destroyed", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, sessions := newTestService(t, users, tokens)

		userID := uuid.New()
		sess, err := sessions.Create(context.Background(), userID, nil)
		require.NoError(t, err)

		users.On("GetByID", mock.Anything, userID).Return(nil, auth.ErrStorageUserNotFound)

		_, _, err = svc.ValidateSession(context.Background(), sess.Token)
		require.ErrorIs(t, err, auth.ErrSessionInvalid)

		_, err = sessions.Validate(context.Background(), sess.Token)
		require.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("inactive user cannot use a live session", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, sessions := newTestService(t, users, tokens)

		userID := uuid.New()
		sess, err := sessions.Create(context.Background(), userID, nil)
		require.NoError(t, err)

		users.On("GetByID", mock.Anything, userID).Return(&auth.User{
			ID:       userID,
			IsActive: false,
		}, nil)

		_, _, err = svc.ValidateSession(context.Background(), sess.Token)
		require.ErrorIs(t, err, auth.ErrAccountInactive)
	})
}

func TestService_ChangePassword(t *testing.T) {
	t.Parallel()

	t.Run("rotates password and destroys sessions", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, sessions := newTestService(t, users, tokens)

		userID := uuid.New()
		oldHash := hashPassword(t, strongPassword)
		user := &auth.User{
			ID:           userID,
			Email:        "jane@example.com",
			PasswordHash: oldHash,
			AuthProvider: auth.ProviderLocal,
			IsActive:     true,
		}
		users.On("GetByID", mock.Anything, userID).Return(user, nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *auth.User) bool {
			return u.PasswordHash != oldHash && u.PasswordChangedAt != nil
		})).Return(nil)

		sess, err := sessions.Create(context.Background(), userID, nil)
		require.NoError(t, err)

		err = svc.ChangePassword(context.Background(), userID, strongPassword, "N3w!Secure#Phrase7")
		require.NoError(t, err)

		_, err = sessions.Validate(context.Background(), sess.Token)
		require.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("wrong current password is unauthorized", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, _ := newTestService(t, users, tokens)

		userID := uuid.New()
		users.On("GetByID", mock.Anything, userID).Return(&auth.User{
			ID:           userID,
			PasswordHash: hashPassword(t, strongPassword),
			AuthProvider: auth.ProviderLocal,
		}, nil)

		err := svc.ChangePassword(context.Background(), userID, "wrong-password", "N3w!Secure#Phrase7")
		require.Error(t, err)
		assert.Equal(t, 401, auth.StatusOf(err))
	})

	t.Run("external account is refused", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, _ := newTestService(t, users, tokens)

		userID := uuid.New()
		users.On("GetByID", mock.Anything, userID).Return(&auth.User{
			ID:           userID,
			AuthProvider: auth.ProviderCognito,
			ExternalID:   "sub-123",
		}, nil)

		err := svc.ChangePassword(context.Background(), userID, "anything", "N3w!Secure#Phrase7")
		require.ErrorIs(t, err, auth.ErrNotLocalAccount)
	})
}

func TestService_PasswordReset(t *testing.T) {
	t.Parallel()

	t.Run("known email gets a token and an email", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		sender := &capturingSender{}
		svc, _ := newTestService(t, users, tokens,
			auth.WithMailer(sender),
			auth.WithResetBaseURL("https://app.example.com/reset-password"),
		)

		userID := uuid.New()
		users.On("GetByEmail", mock.Anything, "jane@example.com").Return(&auth.User{
			ID:           userID,
			Email:        "jane@example.com",
			AuthProvider: auth.ProviderLocal,
			IsActive:     true,
		}, nil)
		tokens.On("DeleteByUserID", mock.Anything, userID).Return(nil)
		tokens.On("Create", mock.Anything, mock.MatchedBy(func(tok *auth.ResetToken) bool {
			return tok.UserID == userID &&
				len(tok.TokenHash) == 64 &&
				time.Until(tok.ExpiresAt) <= auth.DefaultResetTokenTTL
		})).Return(nil)

		err := svc.RequestPasswordReset(context.Background(), "jane@example.com", nil)
		require.NoError(t, err)

		require.Len(t, sender.emails, 1)
		assert.Equal(t, "jane@example.com", sender.emails[0].To)
		assert.Contains(t, sender.emails[0].TextBody, "https://app.example.com/reset-password?token=")
		tokens.AssertExpectations(t)
	})

	t.Run("unknown email succeeds without side effects", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		sender := &capturingSender{}
		svc, _ := newTestService(t, users, tokens, auth.WithMailer(sender))

		users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, auth.ErrStorageUserNotFound)

		err := svc.RequestPasswordReset(context.Background(), "ghost@example.com", nil)
		require.NoError(t, err)
		assert.Empty(t, sender.emails)
		tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("expired token is rejected and removed", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, _ := newTestService(t, users, tokens)

		tokenID := uuid.New()
		tokens.On("GetByHash", mock.Anything, mock.Anything).Return(&auth.ResetToken{
			ID:        tokenID,
			UserID:    uuid.New(),
			ExpiresAt: time.Now().Add(-time.Minute),
		}, nil)
		tokens.On("Delete", mock.Anything, tokenID).Return(nil)

		err := svc.ResetPassword(context.Background(), "some-raw-token", "N3w!Secure#Phrase7")
		require.ErrorIs(t, err, auth.ErrInvalidResetToken)
		tokens.AssertExpectations(t)
	})

	t.Run("valid token sets the new password and kills sessions", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, sessions := newTestService(t, users, tokens)

		userID := uuid.New()
		oldHash := hashPassword(t, strongPassword)

		tokens.On("GetByHash", mock.Anything, mock.Anything).Return(&auth.ResetToken{
			ID:        uuid.New(),
			UserID:    userID,
			ExpiresAt: time.Now().Add(10 * time.Minute),
		}, nil)
		tokens.On("DeleteByUserID", mock.Anything, userID).Return(nil)
		users.On("GetByID", mock.Anything, userID).Return(&auth.User{
			ID:           userID,
			PasswordHash: oldHash,
			AuthProvider: auth.ProviderLocal,
			IsActive:     true,
		}, nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *auth.User) bool {
			return u.PasswordHash != oldHash
		})).Return(nil)

		sess, err := sessions.Create(context.Background(), userID, nil)
		require.NoError(t, err)

		err = svc.ResetPassword(context.Background(), "raw-token-value", "N3w!Secure#Phrase7")
		require.NoError(t, err)

		_, err = sessions.Validate(context.Background(), sess.Token)
		require.ErrorIs(t, err, session.ErrSessionNotFound)
	})
}

func TestService_EnsureExternalUser(t *testing.T) {
	t.Parallel()

	t.Run("provisions on first sight", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, _ := newTestService(t, users, tokens)

		users.On("GetByExternalID", mock.Anything, auth.ProviderClerk, "user_abc").
			Return(nil, auth.ErrStorageUserNotFound)
		users.On("GetByEmail", mock.Anything, "jane@example.com").
			Return(nil, auth.ErrStorageUserNotFound)
		users.On("Create", mock.Anything, mock.MatchedBy(func(u *auth.User) bool {
			return u.AuthProvider == auth.ProviderClerk &&
				u.ExternalID == "user_abc" &&
				u.IsActive &&
				u.PasswordHash == ""
		})).Return(nil)

		user, err := svc.EnsureExternalUser(context.Background(), auth.ExternalUserParams{
			Provider:      auth.ProviderClerk,
			ExternalID:    "user_abc",
			Email:         "jane@example.com",
			EmailVerified: true,
		})
		require.NoError(t, err)
		assert.Equal(t, auth.ProviderClerk, user.AuthProvider)
		users.AssertExpectations(t)
	})

	t.Run("refreshes profile on later sights", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, _ := newTestService(t, users, tokens)

		existing := &auth.User{
			ID:           uuid.New(),
			Email:        "jane@example.com",
			AuthProvider: auth.ProviderCognito,
			ExternalID:   "sub-1",
			IsActive:     true,
		}
		users.On("GetByExternalID", mock.Anything, auth.ProviderCognito, "sub-1").Return(existing, nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *auth.User) bool {
			return u.FirstName == "Jane"
		})).Return(nil)

		user, err := svc.EnsureExternalUser(context.Background(), auth.ExternalUserParams{
			Provider:   auth.ProviderCognito,
			ExternalID: "sub-1",
			Email:      "jane@example.com",
			FirstName:  "Jane",
		})
		require.NoError(t, err)
		assert.Equal(t, "Jane", user.FirstName)
	})

	t.Run("links existing account only with verified email", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, _ := newTestService(t, users, tokens)

		local := &auth.User{
			ID:           uuid.New(),
			Email:        "jane@example.com",
			AuthProvider: auth.ProviderLocal,
			IsActive:     true,
		}
		users.On("GetByExternalID", mock.Anything, auth.ProviderClerk, "user_abc").
			Return(nil, auth.ErrStorageUserNotFound)
		users.On("GetByEmail", mock.Anything, "jane@example.com").Return(local, nil)

		_, err := svc.EnsureExternalUser(context.Background(), auth.ExternalUserParams{
			Provider:      auth.ProviderClerk,
			ExternalID:    "user_abc",
			Email:         "jane@example.com",
			EmailVerified: false,
		})
		require.ErrorIs(t, err, auth.ErrEmailTaken)

		users.On("Update", mock.Anything, mock.MatchedBy(func(u *auth.User) bool {
			return u.AuthProvider == auth.ProviderClerk && u.ExternalID == "user_abc"
		})).Return(nil)

		linked, err := svc.EnsureExternalUser(context.Background(), auth.ExternalUserParams{
			Provider:      auth.ProviderClerk,
			ExternalID:    "user_abc",
			Email:         "jane@example.com",
			EmailVerified: true,
		})
		require.NoError(t, err)
		assert.Equal(t, local.ID, linked.ID)
		assert.Equal(t, auth.ProviderClerk, linked.AuthProvider)
	})

	t.Run("rejects local provider", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, _ := newTestService(t, users, tokens)

		_, err := svc.EnsureExternalUser(context.Background(), auth.ExternalUserParams{
			Provider:   auth.ProviderLocal,
			ExternalID: "x",
		})
		require.Error(t, err)
		assert.Equal(t, auth.KindValidation, auth.KindOf(err))
	})
}

func TestService_AccountLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("deactivate destroys sessions", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, sessions := newTestService(t, users, tokens)

		userID := uuid.New()
		users.On("GetByID", mock.Anything, userID).Return(&auth.User{
			ID:       userID,
			IsActive: true,
		}, nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *auth.User) bool {
			return !u.IsActive
		})).Return(nil)

		sess, err := sessions.Create(context.Background(), userID, nil)
		require.NoError(t, err)

		require.NoError(t, svc.Deactivate(context.Background(), userID))

		_, err = sessions.Validate(context.Background(), sess.Token)
		require.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("delete soft-deletes and clears tokens", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, _ := newTestService(t, users, tokens)

		userID := uuid.New()
		users.On("SoftDelete", mock.Anything, userID).Return(nil)
		tokens.On("DeleteByUserID", mock.Anything, userID).Return(nil)

		require.NoError(t, svc.Delete(context.Background(), userID))
		users.AssertExpectations(t)
		tokens.AssertExpectations(t)
	})

	t.Run("delete of unknown user maps to not found", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, _ := newTestService(t, users, tokens)

		userID := uuid.New()
		users.On("SoftDelete", mock.Anything, userID).Return(auth.ErrStorageUserNotFound)

		err := svc.Delete(context.Background(), userID)
		require.ErrorIs(t, err, auth.ErrUserNotFound)
		assert.Equal(t, 404, auth.StatusOf(err))
	})

	t.Run("update profile applies only provided fields", func(t *testing.T) {
		t.Parallel()

		users := new(mockUserStore)
		tokens := new(mockResetTokenStore)
		svc, _ := newTestService(t, users, tokens)

		userID := uuid.New()
		users.On("GetByID", mock.Anything, userID).Return(&auth.User{
			ID:        userID,
			FirstName: "Jane",
			LastName:  "Doe",
			IsActive:  true,
		}, nil)
		users.On("Update", mock.Anything, mock.Anything).Return(nil)

		display := "JD"
		user, err := svc.UpdateProfile(context.Background(), userID, auth.UpdateProfileParams{
			DisplayName: &display,
		})
		require.NoError(t, err)
		assert.Equal(t, "JD", user.DisplayName)
		assert.Equal(t, "Jane", user.FirstName)
	})
}
