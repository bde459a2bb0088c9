package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cpbi/librarian/internal/app/models"
	"github.com/cpbi/librarian/internal/app/models/dto"
	"github.com/cpbi/librarian/internal/pkg/apperrors"
	"github.com/cpbi/librarian/internal/pkg/auth"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret-key-for-unit-tests",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "librarian-test",
	})
}

type authFixture struct {
	userRepo   *mockUserRepo
	tokenRepo  *mockTokenRepo
	jwtService *auth.JWTService
	svc        IAuthService
}

func newAuthFixture() *authFixture {
	userRepo := newMockUserRepo()
	tokenRepo := newMockTokenRepo()
	jwtService := newTestJWTService()
	return &authFixture{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		svc:        NewAuthService(userRepo, tokenRepo, jwtService, zerolog.Nop()),
	}
}

func TestRegisterCreatesMemberAccount(t *testing.T) {
	f := newAuthFixture()

	resp, err := f.svc.Register(context.Background(), dto.RegisterRequest{
		Email:    "reader@example.com",
		Password: "s3cretpass",
		Name:     "Reader",
	})
	require.NoError(t, err)
	require.Equal(t, "reader@example.com", resp.Email)
	require.Equal(t, models.RoleMember, resp.Role)
	require.Equal(t, models.UserActive, resp.Status)
	require.NotZero(t, resp.ID)

	// The stored password is a hash, never the plaintext.
	stored, err := f.userRepo.GetByEmail(context.Background(), "reader@example.com")
	require.NoError(t, err)
	require.NotEqual(t, "s3cretpass", stored.Password)
	require.True(t, auth.CheckPassword(stored.Password, "s3cretpass"))
}

func TestRegisterRepeatedIsIdempotent(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	first, err := f.svc.Register(ctx, dto.RegisterRequest{
		Email:    "reader@example.com",
		Password: "s3cretpass",
		Name:     "Reader",
	})
	require.NoError(t, err)

	// Same email again, different name and password: the original account
	// is returned untouched.
	second, err := f.svc.Register(ctx, dto.RegisterRequest{
		Email:    "reader@example.com",
		Password: "otherpassword",
		Name:     "Impostor",
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "Reader", second.Name)

	stored, err := f.userRepo.GetByEmail(ctx, "reader@example.com")
	require.NoError(t, err)
	require.True(t, auth.CheckPassword(stored.Password, "s3cretpass"))
}

func TestLoginIssuesTokenPair(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, dto.RegisterRequest{
		Email:    "reader@example.com",
		Password: "s3cretpass",
		Name:     "Reader",
	})
	require.NoError(t, err)

	tokens, err := f.svc.Login(ctx, dto.LoginRequest{Email: "reader@example.com", Password: "s3cretpass"})
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)
	require.Positive(t, tokens.ExpiresIn)

	claims, err := f.jwtService.ValidateAndExtractClaims(tokens.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "reader@example.com", claims.Email)

	// The refresh token is stored and redeemable.
	userID, err := f.tokenRepo.GetUserID(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, claims.UserID, userID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, dto.RegisterRequest{
		Email:    "reader@example.com",
		Password: "s3cretpass",
		Name:     "Reader",
	})
	require.NoError(t, err)

	// Unknown accounts and wrong passwords are indistinguishable.
	_, err = f.svc.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "s3cretpass"})
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, dto.LoginRequest{Email: "reader@example.com", Password: "wrong"})
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	created, err := f.svc.Register(ctx, dto.RegisterRequest{
		Email:    "reader@example.com",
		Password: "s3cretpass",
		Name:     "Reader",
	})
	require.NoError(t, err)
	require.NoError(t, f.userRepo.UpdateStatus(ctx, created.ID, models.UserPending))

	_, err = f.svc.Login(ctx, dto.LoginRequest{Email: "reader@example.com", Password: "s3cretpass"})
	require.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestRefreshTokenRotates(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, dto.RegisterRequest{
		Email:    "reader@example.com",
		Password: "s3cretpass",
		Name:     "Reader",
	})
	require.NoError(t, err)
	tokens, err := f.svc.Login(ctx, dto.LoginRequest{Email: "reader@example.com", Password: "s3cretpass"})
	require.NoError(t, err)

	fresh, err := f.svc.RefreshToken(ctx, dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	require.NotEmpty(t, fresh.AccessToken)
	require.NotEqual(t, tokens.RefreshToken, fresh.RefreshToken)

	claims, err := f.jwtService.ValidateAndExtractClaims(fresh.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "reader@example.com", claims.Email)

	// The redeemed token is single-use.
	_, err = f.svc.RefreshToken(ctx, dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	// The rotated token still works.
	_, err = f.svc.RefreshToken(ctx, dto.RefreshTokenRequest{RefreshToken: fresh.RefreshToken})
	require.NoError(t, err)
}

func TestRefreshTokenRejections(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.RefreshToken(ctx, dto.RefreshTokenRequest{RefreshToken: "unknown"})
	require.ErrorIs(t, err, apperrors.ErrTokenNotFound)

	created, err := f.svc.Register(ctx, dto.RegisterRequest{
		Email:    "reader@example.com",
		Password: "s3cretpass",
		Name:     "Reader",
	})
	require.NoError(t, err)
	tokens, err := f.svc.Login(ctx, dto.LoginRequest{Email: "reader@example.com", Password: "s3cretpass"})
	require.NoError(t, err)

	// Expired tokens are rejected even when otherwise intact.
	f.tokenRepo.tokens[tokens.RefreshToken].expiryDate = time.Now().Add(-time.Hour)
	_, err = f.svc.RefreshToken(ctx, dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.ErrorIs(t, err, apperrors.ErrTokenExpired)

	// A disabled account cannot refresh.
	tokens2, err := f.svc.Login(ctx, dto.LoginRequest{Email: "reader@example.com", Password: "s3cretpass"})
	require.NoError(t, err)
	require.NoError(t, f.userRepo.UpdateStatus(ctx, created.ID, models.UserPending))
	_, err = f.svc.RefreshToken(ctx, dto.RefreshTokenRequest{RefreshToken: tokens2.RefreshToken})
	require.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}
