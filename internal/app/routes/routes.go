package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cpbi/librarian/internal/app/controllers"
	"github.com/cpbi/librarian/internal/app/models"
	"github.com/cpbi/librarian/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	bookController *controllers.BookController,
	borrowController *controllers.BorrowController,
	dashboardController *controllers.DashboardController,
	contentController *controllers.ContentController,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API version group
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	v1.POST("/register", authController.Register)
	v1.POST("/login", authController.Login)
	v1.POST("/refresh", authController.RefreshToken)
	v1.POST("/contact", contentController.SubmitContactMessage)
	v1.GET("/carousel", contentController.ListCarouselSlides)
	v1.GET("/featured", bookController.Featured)
	v1.GET("/top-borrowed", bookController.TopBorrowed)

	// Catalog reads are public
	books := v1.Group("/books")
	{
		books.GET("", bookController.ListBooks)
		books.GET("/categories", bookController.ListCategories)
		books.GET("/:id", bookController.GetBook)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/me", userController.Me)
		authenticated.PUT("/update", userController.UpdateProfile)

		authenticated.POST("/books/borrow/:id", borrowController.RequestBorrow)
		authenticated.POST("/books/return/:id", borrowController.RequestReturn)
		authenticated.GET("/books/status/:id", borrowController.BorrowStatus)
		authenticated.GET("/my-borrowed-books", borrowController.MyBorrowedBooks)
		authenticated.GET("/borrow-history", borrowController.BorrowHistory)

		// Dashboards are audience-gated; teachers also get the member view
		dashboards := authenticated.Group("/dashboard")
		{
			dashboards.GET("/member",
				authMiddleware.RoleRequired(models.RoleMember, models.RoleTeacher),
				dashboardController.MemberDashboard)
			dashboards.GET("/teacher",
				authMiddleware.RoleRequired(models.RoleTeacher),
				dashboardController.TeacherDashboard)
			dashboards.GET("/admin",
				authMiddleware.RoleRequired(models.RoleAdmin),
				dashboardController.AdminDashboard)
		}

		// --- Admin routes ---
		adminOnly := authenticated.Group("")
		adminOnly.Use(authMiddleware.RoleRequired(models.RoleAdmin))
		{
			adminOnly.GET("/users", userController.ListUsers)
			adminOnly.DELETE("/users/:id", userController.DeleteUser)
			adminOnly.PATCH("/users/:id/status", userController.UpdateUserStatus)

			adminOnly.POST("/books", bookController.CreateBook)
			adminOnly.PUT("/books/:id", bookController.UpdateBook)
			adminOnly.DELETE("/books/:id", bookController.DeleteBook)

			admin := adminOnly.Group("/admin")
			{
				admin.GET("/pending-requests", borrowController.PendingRequests)
				admin.GET("/borrows/pending", borrowController.PendingRequests)
				admin.GET("/borrows", borrowController.AllRecords)
				admin.POST("/confirm-borrow/:id", borrowController.ConfirmBorrow)
				admin.POST("/confirm-return/:id", borrowController.ConfirmReturn)
			}

			adminOnly.GET("/contact", contentController.ListContactMessages)
			adminOnly.DELETE("/contact/:id", contentController.DeleteContactMessage)

			adminOnly.POST("/carousel", contentController.CreateCarouselSlide)
			adminOnly.PUT("/carousel/:id", contentController.UpdateCarouselSlide)
			adminOnly.DELETE("/carousel/:id", contentController.DeleteCarouselSlide)
		}
	}
}
