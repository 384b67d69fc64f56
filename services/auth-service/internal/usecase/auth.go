package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/bookhaven/book-platform-api/services/auth-service/internal/config"
	"github.com/bookhaven/book-platform-api/services/auth-service/internal/model"
	"github.com/bookhaven/book-platform-api/services/auth-service/internal/repository"
	authtypes "github.com/bookhaven/book-platform-api/services/auth-service/pkg/types"
	"github.com/bookhaven/book-platform-api/shared/auth"
	"github.com/bookhaven/book-platform-api/shared/security"
)

// AuthUsecase defines the authentication and session-refresh use cases.
type AuthUsecase interface {
	Register(ctx context.Context, params RegisterParams) (*model.User, *authtypes.Tokens, error)
	Login(ctx context.Context, params LoginParams) (*model.User, *authtypes.Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (*authtypes.Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Email    string
	Password string
	Username string
	Name     string
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
}

var (
	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUserNotFound        = errors.New("user not found")
)

type authUsecase struct {
	userRepo       repository.UserRepository
	sessionRepo    repository.SessionRepository
	jwtAuth        auth.JWTAuthenticator
	authServiceCfg *config.AuthServiceConfig
}

// NewAuthUsecase creates a new AuthUsecase instance.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	jwtAuth auth.JWTAuthenticator,
	authServiceCfg *config.AuthServiceConfig,
) AuthUsecase {
	return &authUsecase{
		userRepo:       userRepo,
		sessionRepo:    sessionRepo,
		jwtAuth:        jwtAuth,
		authServiceCfg: authServiceCfg,
	}
}

func (u *authUsecase) Register(
	ctx context.Context,
	params RegisterParams,
) (*model.User, *authtypes.Tokens, error) {
	// Fast path for a friendly conflict message. The unique indexes remain
	// the authoritative guard against concurrent registrations.
	if _, err := u.userRepo.GetUserByEmailOrUsername(ctx, params.Email, params.Username); err == nil {
		return nil, nil, ErrUserAlreadyExists
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, err
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, nil, err
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Email:         params.Email,
		Username:      params.Username,
		Name:          params.Name,
		PasswordHash:  passwordHash,
		Role:          model.RoleUser,
		EmailVerified: false,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, nil, ErrUserAlreadyExists
		}

		return nil, nil, err
	}

	tokens, err := u.createAuthSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, tokens, nil
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*model.User, *authtypes.Tokens, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrInvalidCredentials
		}

		return nil, nil, err
	}

	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return nil, nil, err
	} else if !ok {
		return nil, nil, ErrInvalidCredentials
	}

	if err := u.userRepo.UpdateLastLogin(ctx, user.ID.Hex()); err != nil {
		return nil, nil, err
	}

	tokens, err := u.createAuthSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, tokens, nil
}

// Refresh redeems a refresh token for a fresh token pair. Redemption is
// single-use: the registry entry is consumed atomically before anything
// else, so a replayed or concurrently redeemed token finds no entry and
// fails. Once consumed, any later failure leaves the token revoked rather
// than redeemable.
func (u *authUsecase) Refresh(ctx context.Context, refreshToken string) (*authtypes.Tokens, error) {
	session, err := u.sessionRepo.TakeSession(ctx, hashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidRefreshToken
		}

		return nil, err
	}

	claims := &authtypes.RefreshTokenClaims{}
	if _, err := u.jwtAuth.ValidateTokenWithClaims(
		refreshToken,
		u.authServiceCfg.Token.RefreshTokenSecret,
		claims,
	); err != nil {
		return nil, ErrInvalidRefreshToken
	}

	// A registry entry that disagrees with the token it was keyed by means
	// the record is corrupt; treat it as revoked.
	if claims.UserID != session.UserID {
		return nil, ErrInvalidRefreshToken
	}

	user, err := u.userRepo.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidRefreshToken
		}

		return nil, err
	}

	return u.createAuthSession(ctx, user)
}

// Logout revokes a refresh token. It is idempotent: revoking a token that
// was never issued, already rotated, or already revoked is not an error,
// since the end state is the same either way.
func (u *authUsecase) Logout(ctx context.Context, refreshToken string) error {
	return u.sessionRepo.DeleteSession(ctx, hashRefreshToken(refreshToken))
}

func (u *authUsecase) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return user, nil
}

func (u *authUsecase) createAuthSession(ctx context.Context, user *model.User) (*authtypes.Tokens, error) {
	now := time.Now()
	jti := uuid.NewString()

	accessToken, err := u.jwtAuth.GenerateToken(authtypes.AccessTokenClaims{
		UserID:           user.ID.Hex(),
		Email:            user.Email,
		Role:             string(user.Role),
		RegisteredClaims: u.registeredClaims(now, user.ID.Hex(), jti, u.authServiceCfg.Token.AccessTokenExpiresIn),
	}, u.authServiceCfg.Token.AccessTokenSecret)
	if err != nil {
		return nil, err
	}

	refreshToken, err := u.jwtAuth.GenerateToken(authtypes.RefreshTokenClaims{
		UserID:           user.ID.Hex(),
		RegisteredClaims: u.registeredClaims(now, user.ID.Hex(), jti, u.authServiceCfg.Token.RefreshTokenExpiresIn),
	}, u.authServiceCfg.Token.RefreshTokenSecret)
	if err != nil {
		return nil, err
	}

	if _, err := u.sessionRepo.PutSession(ctx, &model.Session{
		UserID:    user.ID.Hex(),
		JTI:       jti,
		TokenHash: hashRefreshToken(refreshToken),
		ExpiresAt: now.Add(u.authServiceCfg.Token.RefreshTokenExpiresIn),
	}); err != nil {
		return nil, err
	}

	return &authtypes.Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (u *authUsecase) registeredClaims(
	now time.Time,
	subject, jti string,
	expiresIn time.Duration,
) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        jti,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    u.authServiceCfg.Token.Issuer,
		Audience:  jwt.ClaimStrings{u.authServiceCfg.Token.Issuer},
	}
}

// hashRefreshToken fingerprints a refresh token for registry storage, so a
// leaked registry never yields redeemable tokens.
func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
