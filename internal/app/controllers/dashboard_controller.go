package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/cpbi/librarian/internal/app/models/dto"
	"github.com/cpbi/librarian/internal/app/services"
	"github.com/cpbi/librarian/internal/middleware"
)

// DashboardController handles the role dashboards
type DashboardController struct {
	dashboardService services.IDashboardService
	logger           zerolog.Logger
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService services.IDashboardService, logger zerolog.Logger) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// MemberDashboard returns the caller's 30-day activity view
// @Summary Member dashboard
// @Description Daily borrow/return series over the last 30 days, zero-filled for days without activity
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.MemberDashboardResponse}
// @Failure 403 {object} dto.ErrorResponse "Wrong role for this dashboard"
// @Router /dashboard/member [get]
func (c *DashboardController) MemberDashboard(ctx *gin.Context) {
	email := ctx.GetString(middleware.ContextEmail)

	dashboard, err := c.dashboardService.MemberDashboard(ctx.Request.Context(), email)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dashboard, "Dashboard retrieved"))
}

// TeacherDashboard returns the caller's 15-day activity view and reading summary
// @Summary Teacher dashboard
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.TeacherDashboardResponse}
// @Failure 403 {object} dto.ErrorResponse "Wrong role for this dashboard"
// @Router /dashboard/teacher [get]
func (c *DashboardController) TeacherDashboard(ctx *gin.Context) {
	email := ctx.GetString(middleware.ContextEmail)

	dashboard, err := c.dashboardService.TeacherDashboard(ctx.Request.Context(), email)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dashboard, "Dashboard retrieved"))
}

// AdminDashboard returns the library-wide 180-day view with summaries
// @Summary Admin dashboard
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AdminDashboardResponse}
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /dashboard/admin [get]
func (c *DashboardController) AdminDashboard(ctx *gin.Context) {
	dashboard, err := c.dashboardService.AdminDashboard(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dashboard, "Dashboard retrieved"))
}
