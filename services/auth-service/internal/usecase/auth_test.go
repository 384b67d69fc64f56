package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/book-platform-api/services/auth-service/internal/config"
	"github.com/bookhaven/book-platform-api/services/auth-service/internal/model"
	"github.com/bookhaven/book-platform-api/services/auth-service/internal/repository"
	"github.com/bookhaven/book-platform-api/services/auth-service/internal/usecase"
	authtypes "github.com/bookhaven/book-platform-api/services/auth-service/pkg/types"
	"github.com/bookhaven/book-platform-api/shared/auth"
)

func newTestConfig() *config.AuthServiceConfig {
	return &config.AuthServiceConfig{
		Env: "test",
		Token: config.TokenConfig{
			Issuer:                "book-platform-api",
			AccessTokenSecret:     "access-secret",
			RefreshTokenSecret:    "refresh-secret",
			AccessTokenExpiresIn:  15 * time.Minute,
			RefreshTokenExpiresIn: 7 * 24 * time.Hour,
		},
	}
}

type fixture struct {
	authUsecase usecase.AuthUsecase
	userRepo    *repository.InMemoryUserRepository
	sessionRepo *repository.InMemorySessionRepository
}

func newFixture() *fixture {
	cfg := newTestConfig()
	userRepo := repository.NewInMemoryUserRepository()
	sessionRepo := repository.NewInMemorySessionRepository()
	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Issuer)

	return &fixture{
		authUsecase: usecase.NewAuthUsecase(userRepo, sessionRepo, jwtAuth, cfg),
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
	}
}

func registerAlice(t *testing.T, f *fixture) (*model.User, *authtypes.Tokens) {
	t.Helper()

	user, tokens, err := f.authUsecase.Register(context.Background(), usecase.RegisterParams{
		Email:    "alice@example.com",
		Password: "Password1",
		Username: "alice",
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotNil(t, tokens)

	return user, tokens
}

func TestRegister(t *testing.T) {
	f := newFixture()

	user, tokens := registerAlice(t, f)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.False(t, user.EmailVerified)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "Password1", user.PasswordHash)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, 1, f.sessionRepo.Len())
}

func TestRegisterDuplicate(t *testing.T) {
	f := newFixture()
	registerAlice(t, f)

	tests := []struct {
		name     string
		email    string
		username string
	}{
		{name: "same email", email: "alice@example.com", username: "alice2"},
		{name: "same username", email: "alice2@example.com", username: "alice"},
		{name: "both taken", email: "alice@example.com", username: "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.authUsecase.Register(context.Background(), usecase.RegisterParams{
				Email:    tt.email,
				Password: "Password1",
				Username: tt.username,
			})
			assert.ErrorIs(t, err, usecase.ErrUserAlreadyExists)
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture()
	registerAlice(t, f)

	user, tokens, err := f.authUsecase.Login(context.Background(), usecase.LoginParams{
		Email:    "alice@example.com",
		Password: "Password1",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
}

// Login must fail identically whether the account is missing or the password
// is wrong, so failures cannot be used to enumerate accounts.
func TestLoginNoEnumeration(t *testing.T) {
	f := newFixture()
	registerAlice(t, f)

	_, _, unknownErr := f.authUsecase.Login(context.Background(), usecase.LoginParams{
		Email:    "nobody@example.com",
		Password: "Password1",
	})
	_, _, wrongPasswordErr := f.authUsecase.Login(context.Background(), usecase.LoginParams{
		Email:    "alice@example.com",
		Password: "WrongPassword1",
	})

	assert.ErrorIs(t, unknownErr, usecase.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongPasswordErr, usecase.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongPasswordErr.Error())
}

func TestRefreshRotation(t *testing.T) {
	f := newFixture()
	_, tokens := registerAlice(t, f)

	rotated, err := f.authUsecase.Refresh(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, 1, f.sessionRepo.Len())

	// The old token was consumed by the rotation.
	_, err = f.authUsecase.Refresh(context.Background(), tokens.RefreshToken)
	assert.ErrorIs(t, err, usecase.ErrInvalidRefreshToken)

	// The rotated token is still redeemable.
	_, err = f.authUsecase.Refresh(context.Background(), rotated.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshConcurrentSingleUse(t *testing.T) {
	f := newFixture()
	_, tokens := registerAlice(t, f)

	const attempts = 16

	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.authUsecase.Refresh(context.Background(), tokens.RefreshToken)
		}()
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, usecase.ErrInvalidRefreshToken)
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one concurrent redemption may succeed")
	assert.Equal(t, 1, f.sessionRepo.Len())
}

func TestRefreshUnknownToken(t *testing.T) {
	f := newFixture()
	registerAlice(t, f)

	_, err := f.authUsecase.Refresh(context.Background(), "never-issued")
	assert.ErrorIs(t, err, usecase.ErrInvalidRefreshToken)
}

func TestRefreshDeletedUser(t *testing.T) {
	f := newFixture()
	user, tokens := registerAlice(t, f)

	f.userRepo.DeleteUser(context.Background(), user.ID.Hex())

	_, err := f.authUsecase.Refresh(context.Background(), tokens.RefreshToken)
	assert.ErrorIs(t, err, usecase.ErrInvalidRefreshToken)
}

// Logging out must revoke the refresh token even though its signature and
// expiry are still cryptographically valid.
func TestLogoutRevokes(t *testing.T) {
	f := newFixture()
	_, tokens := registerAlice(t, f)

	require.NoError(t, f.authUsecase.Logout(context.Background(), tokens.RefreshToken))
	assert.Equal(t, 0, f.sessionRepo.Len())

	_, err := f.authUsecase.Refresh(context.Background(), tokens.RefreshToken)
	assert.ErrorIs(t, err, usecase.ErrInvalidRefreshToken)

	// Logout is idempotent.
	require.NoError(t, f.authUsecase.Logout(context.Background(), tokens.RefreshToken))
}

func TestCurrentUser(t *testing.T) {
	f := newFixture()
	user, _ := registerAlice(t, f)

	got, err := f.authUsecase.CurrentUser(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	f.userRepo.DeleteUser(context.Background(), user.ID.Hex())

	_, err = f.authUsecase.CurrentUser(context.Background(), user.ID.Hex())
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
}
