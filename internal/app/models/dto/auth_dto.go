package dto

// RegisterRequest is the payload for user registration.
// Registering an already-known email is a no-op success.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"reader@cpbi.org"`
	Password string `json:"password" binding:"required,min=8" example:"s3cretpass"`
	Name     string `json:"name" binding:"required" example:"Jane Doe"`
}

// LoginRequest is the payload for obtaining a token pair
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest is the payload for redeeming a refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse carries an issued token pair
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"` // Seconds until the access token expires
}

// UpdateProfileRequest is the allow-listed profile mutation payload.
// Role, status and email are deliberately not accepted here.
type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required" example:"Jane D. Doe"`
}
