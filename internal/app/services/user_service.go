package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cpbi/librarian/internal/app/models"
	"github.com/cpbi/librarian/internal/app/models/dto"
	"github.com/cpbi/librarian/internal/app/repositories"
	"github.com/cpbi/librarian/internal/pkg/helpers"
)

// IUserService defines the interface for profile and user administration
type IUserService interface {
	GetProfile(ctx context.Context, email string) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, email string, req dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, page, pageSize int) (*dto.UserListResponse, error)
	DeleteUser(ctx context.Context, id int64) error
	UpdateUserStatus(ctx context.Context, id int64, status models.UserStatus) (*dto.UserResponse, error)
}

// UserService handles profile reads and the admin user operations
type UserService struct {
	userRepo repositories.IUserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.IUserRepository, logger zerolog.Logger) IUserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// GetProfile returns the caller's own profile
func (s *UserService) GetProfile(ctx context.Context, email string) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	resp := dto.FromUser(user)
	return &resp, nil
}

// UpdateProfile applies the allow-listed profile mutation. Only the display
// name is writable here; role, status and email stay untouched no matter what
// the request body carries.
func (s *UserService) UpdateProfile(ctx context.Context, email string, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	if err := s.userRepo.UpdateName(ctx, email, req.Name); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", email).Msg("Profile updated")
	resp := dto.FromUser(user)
	return &resp, nil
}

// ListUsers returns a paginated listing of all accounts
func (s *UserService) ListUsers(ctx context.Context, page, pageSize int) (*dto.UserListResponse, error) {
	users, totalItems, err := s.userRepo.GetAll(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, dto.FromUser(&users[i]))
	}

	return &dto.UserListResponse{
		Users:          responses,
		PaginationInfo: helpers.NewPaginationInfo(totalItems, page, pageSize),
	}, nil
}

// DeleteUser removes an account
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", id).Msg("User deleted by admin")
	return nil
}

// UpdateUserStatus toggles an account between ACTIVE and PENDING
func (s *UserService) UpdateUserStatus(ctx context.Context, id int64, status models.UserStatus) (*dto.UserResponse, error) {
	if err := s.userRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", id).Str("status", string(status)).Msg("User status updated by admin")
	resp := dto.FromUser(user)
	return &resp, nil
}
