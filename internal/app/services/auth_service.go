package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/cpbi/librarian/internal/app/models"
	"github.com/cpbi/librarian/internal/app/models/dto"
	"github.com/cpbi/librarian/internal/app/repositories"
	"github.com/cpbi/librarian/internal/pkg/apperrors"
	"github.com/cpbi/librarian/internal/pkg/auth"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (*dto.TokenResponse, error)
}

// AuthService handles registration, login and token refresh
type AuthService struct {
	userRepo   repositories.IUserRepository
	tokenRepo  repositories.ITokenRepository
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repositories.IUserRepository, tokenRepo repositories.ITokenRepository, jwtService *auth.JWTService, logger zerolog.Logger) IAuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Register creates a new member account. Registering an email that already
// has an account succeeds without touching the existing account, so a retried
// registration never fails or overwrites anything.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error) {
	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}
	if existing != nil {
		s.logger.Info().Str("email", req.Email).Msg("Registration repeated for existing account")
		resp := dto.FromUser(existing)
		return &resp, nil
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password during registration")
		return nil, err
	}

	user := &models.User{
		Email:    req.Email,
		Password: hashed,
		Name:     req.Name,
		Role:     models.RoleMember,
		Status:   models.UserActive,
	}

	id, err := s.userRepo.Create(ctx, user)
	if err != nil {
		// Lost a race with a concurrent registration of the same email;
		// treat it like the repeat-registration case.
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			winner, getErr := s.userRepo.GetByEmail(ctx, req.Email)
			if getErr != nil {
				return nil, getErr
			}
			resp := dto.FromUser(winner)
			return &resp, nil
		}
		return nil, err
	}
	user.ID = id

	s.logger.Info().Int64("userID", id).Str("email", req.Email).Msg("User registered")
	resp := dto.FromUser(user)
	return &resp, nil
}

// Login verifies credentials and issues a token pair. Accounts toggled to
// PENDING cannot log in.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Warn().Str("email", req.Email).Msg("Login rejected: wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}

	if user.Status != models.UserActive {
		s.logger.Warn().Str("email", req.Email).Msg("Login rejected: account not active")
		return nil, apperrors.ErrAccountDisabled
	}

	tokens, err := s.issueTokenPair(ctx, user.ID, user.Email)
	if err != nil {
		s.logger.Error().Err(err).Str("email", req.Email).Msg("Failed to issue token pair")
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("email", user.Email).Msg("User logged in")
	return tokens, nil
}

// RefreshToken redeems a refresh token for a new token pair. The presented
// token is revoked so each refresh token is single-use.
func (s *AuthService) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	userID, err := s.tokenRepo.GetUserID(ctx, req.RefreshToken)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Refresh token rejected")
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Status != models.UserActive {
		s.logger.Warn().Str("email", user.Email).Msg("Refresh rejected: account not active")
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.tokenRepo.Revoke(ctx, req.RefreshToken); err != nil {
		return nil, err
	}

	tokens, err := s.issueTokenPair(ctx, user.ID, user.Email)
	if err != nil {
		s.logger.Error().Err(err).Str("email", user.Email).Msg("Failed to issue token pair on refresh")
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("email", user.Email).Msg("Token pair refreshed")
	return tokens, nil
}

// issueTokenPair generates a token pair and stores the refresh token
func (s *AuthService) issueTokenPair(ctx context.Context, userID int64, email string) (*dto.TokenResponse, error) {
	accessToken, refreshToken, expiresIn, err := s.jwtService.GenerateTokenPair(userID, email)
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.Create(ctx, refreshToken, userID, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}
