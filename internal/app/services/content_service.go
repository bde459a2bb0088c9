package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cpbi/librarian/internal/app/models"
	"github.com/cpbi/librarian/internal/app/models/dto"
	"github.com/cpbi/librarian/internal/app/repositories"
	"github.com/cpbi/librarian/internal/pkg/apperrors"
	"github.com/cpbi/librarian/internal/pkg/helpers"
)

// IContentService defines the interface for contact messages and carousel slides
type IContentService interface {
	SubmitContactMessage(ctx context.Context, req dto.CreateContactMessageRequest) (*models.ContactMessage, error)
	ListContactMessages(ctx context.Context, page, pageSize int) ([]models.ContactMessage, dto.PaginationInfo, error)
	DeleteContactMessage(ctx context.Context, id int64) error
	ListCarouselSlides(ctx context.Context) ([]models.CarouselSlide, error)
	CreateCarouselSlide(ctx context.Context, req dto.CreateCarouselSlideRequest) (*models.CarouselSlide, error)
	UpdateCarouselSlide(ctx context.Context, id int64, req dto.UpdateCarouselSlideRequest) (*models.CarouselSlide, error)
	DeleteCarouselSlide(ctx context.Context, id int64) error
}

// ContentService handles the contact form and the landing-page carousel
type ContentService struct {
	contactRepo  repositories.IContactRepository
	carouselRepo repositories.ICarouselRepository
	logger       zerolog.Logger
}

// NewContentService creates a new ContentService
func NewContentService(contactRepo repositories.IContactRepository, carouselRepo repositories.ICarouselRepository, logger zerolog.Logger) IContentService {
	return &ContentService{
		contactRepo:  contactRepo,
		carouselRepo: carouselRepo,
		logger:       logger,
	}
}

// SubmitContactMessage stores a message from the public contact form
func (s *ContentService) SubmitContactMessage(ctx context.Context, req dto.CreateContactMessageRequest) (*models.ContactMessage, error) {
	message := &models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}

	id, err := s.contactRepo.Create(ctx, message)
	if err != nil {
		return nil, err
	}
	message.ID = id

	s.logger.Info().Int64("messageID", id).Str("email", req.Email).Msg("Contact message received")
	return message, nil
}

// ListContactMessages returns a paginated listing for admins
func (s *ContentService) ListContactMessages(ctx context.Context, page, pageSize int) ([]models.ContactMessage, dto.PaginationInfo, error) {
	messages, totalItems, err := s.contactRepo.GetAll(ctx, page, pageSize)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	return messages, helpers.NewPaginationInfo(totalItems, page, pageSize), nil
}

// DeleteContactMessage removes a contact message
func (s *ContentService) DeleteContactMessage(ctx context.Context, id int64) error {
	return s.contactRepo.Delete(ctx, id)
}

// ListCarouselSlides returns the carousel in display order
func (s *ContentService) ListCarouselSlides(ctx context.Context) ([]models.CarouselSlide, error) {
	return s.carouselRepo.GetAll(ctx)
}

// CreateCarouselSlide adds a landing-page slide
func (s *ContentService) CreateCarouselSlide(ctx context.Context, req dto.CreateCarouselSlideRequest) (*models.CarouselSlide, error) {
	slide := &models.CarouselSlide{
		Title:     req.Title,
		Subtitle:  req.Subtitle,
		ImageURL:  req.ImageURL,
		SortOrder: req.SortOrder,
	}

	id, err := s.carouselRepo.Create(ctx, slide)
	if err != nil {
		return nil, err
	}
	slide.ID = id
	return slide, nil
}

// UpdateCarouselSlide applies a partial edit to a slide
func (s *ContentService) UpdateCarouselSlide(ctx context.Context, id int64, req dto.UpdateCarouselSlideRequest) (*models.CarouselSlide, error) {
	slides, err := s.carouselRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var slide *models.CarouselSlide
	for i := range slides {
		if slides[i].ID == id {
			slide = &slides[i]
			break
		}
	}
	if slide == nil {
		return nil, apperrors.ErrCarouselSlideNotFound
	}

	if req.Title != nil {
		slide.Title = *req.Title
	}
	if req.Subtitle != nil {
		slide.Subtitle = *req.Subtitle
	}
	if req.ImageURL != nil {
		slide.ImageURL = *req.ImageURL
	}
	if req.SortOrder != nil {
		slide.SortOrder = *req.SortOrder
	}

	if err := s.carouselRepo.Update(ctx, slide); err != nil {
		return nil, err
	}
	return slide, nil
}

// DeleteCarouselSlide removes a slide
func (s *ContentService) DeleteCarouselSlide(ctx context.Context, id int64) error {
	return s.carouselRepo.Delete(ctx, id)
}
