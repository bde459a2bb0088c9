package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/cpbi/librarian/internal/app/models/dto"
	"github.com/cpbi/librarian/internal/app/services"
	"github.com/cpbi/librarian/internal/middleware"
	"github.com/cpbi/librarian/internal/pkg/helpers"
)

// ContentController handles the contact form and carousel endpoints
type ContentController struct {
	contentService services.IContentService
	logger         zerolog.Logger
}

// NewContentController creates a new ContentController
func NewContentController(contentService services.IContentService, logger zerolog.Logger) *ContentController {
	return &ContentController{
		contentService: contentService,
		logger:         logger,
	}
}

// SubmitContactMessage accepts a message from the public contact form
// @Summary Submit a contact message
// @Tags content
// @Accept json
// @Produce json
// @Param request body dto.CreateContactMessageRequest true "Message"
// @Success 201 {object} dto.APIResponse{data=models.ContactMessage}
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Router /contact [post]
func (c *ContentController) SubmitContactMessage(ctx *gin.Context) {
	var req dto.CreateContactMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	message, err := c.contentService.SubmitContactMessage(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(message, "Message received"))
}

// ListContactMessages returns a paginated message listing for admins
// @Summary List contact messages
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /contact [get]
func (c *ContentController) ListContactMessages(ctx *gin.Context) {
	page, pageSize := helpers.ParsePaginationParams(ctx)

	messages, pagination, err := c.contentService.ListContactMessages(ctx.Request.Context(), page, pageSize)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{
		"messages":   messages,
		"pagination": pagination,
	}, "Messages retrieved"))
}

// DeleteContactMessage removes a contact message
// @Summary Delete a contact message
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Contact message not found"
// @Router /contact/{id} [delete]
func (c *ContentController) DeleteContactMessage(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.contentService.DeleteContactMessage(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Message deleted"))
}

// ListCarouselSlides returns the landing-page carousel in display order
// @Summary List carousel slides
// @Tags content
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.CarouselSlide}
// @Router /carousel [get]
func (c *ContentController) ListCarouselSlides(ctx *gin.Context) {
	slides, err := c.contentService.ListCarouselSlides(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(slides, "Carousel retrieved"))
}

// CreateCarouselSlide adds a landing-page slide
// @Summary Create a carousel slide
// @Tags content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCarouselSlideRequest true "Slide data"
// @Success 201 {object} dto.APIResponse{data=models.CarouselSlide}
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Router /carousel [post]
func (c *ContentController) CreateCarouselSlide(ctx *gin.Context) {
	var req dto.CreateCarouselSlideRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	slide, err := c.contentService.CreateCarouselSlide(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(slide, "Slide created"))
}

// UpdateCarouselSlide edits a landing-page slide
// @Summary Update a carousel slide
// @Tags content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Slide ID"
// @Param request body dto.UpdateCarouselSlideRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.CarouselSlide}
// @Failure 404 {object} dto.ErrorResponse "Carousel slide not found"
// @Router /carousel/{id} [put]
func (c *ContentController) UpdateCarouselSlide(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateCarouselSlideRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	slide, err := c.contentService.UpdateCarouselSlide(ctx.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(slide, "Slide updated"))
}

// DeleteCarouselSlide removes a landing-page slide
// @Summary Delete a carousel slide
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param id path int true "Slide ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Carousel slide not found"
// @Router /carousel/{id} [delete]
func (c *ContentController) DeleteCarouselSlide(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.contentService.DeleteCarouselSlide(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Slide deleted"))
}
