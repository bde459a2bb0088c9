package dto

import (
	"github.com/cpbi/librarian/internal/app/models"
)

// UserResponse is the public projection of a user
type UserResponse struct {
	ID        int64             `json:"id"`
	Email     string            `json:"email"`
	Name      string            `json:"name"`
	Role      models.Role       `json:"role"`
	Status    models.UserStatus `json:"status"`
	CreatedAt string            `json:"createdAt"`
}

// FromUser converts a user model to its response projection
func FromUser(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// UserListResponse is the paginated user listing for admins
type UserListResponse struct {
	Users          []UserResponse `json:"users"`
	PaginationInfo PaginationInfo `json:"pagination"`
}

// UpdateUserStatusRequest toggles an account between ACTIVE and PENDING
type UpdateUserStatusRequest struct {
	Status models.UserStatus `json:"status" binding:"required,oneof=ACTIVE PENDING"`
}
