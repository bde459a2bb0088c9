package dto

// CreateContactMessageRequest is the public contact form payload
type CreateContactMessageRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// CreateCarouselSlideRequest adds a landing-page slide
type CreateCarouselSlideRequest struct {
	Title     string `json:"title" binding:"required"`
	Subtitle  string `json:"subtitle"`
	ImageURL  string `json:"imageUrl" binding:"required,url"`
	SortOrder int    `json:"sortOrder"`
}

// UpdateCarouselSlideRequest edits a landing-page slide
type UpdateCarouselSlideRequest struct {
	Title     *string `json:"title,omitempty"`
	Subtitle  *string `json:"subtitle,omitempty"`
	ImageURL  *string `json:"imageUrl,omitempty"`
	SortOrder *int    `json:"sortOrder,omitempty"`
}
