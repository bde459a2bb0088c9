// Package bootstrap wires configuration, storage and the application layers
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/cpbi/librarian/internal/app/controllers"
	appMigrations "github.com/cpbi/librarian/internal/app/migrations"
	"github.com/cpbi/librarian/internal/app/policy"
	appRepos "github.com/cpbi/librarian/internal/app/repositories"
	appRoutes "github.com/cpbi/librarian/internal/app/routes"
	appServices "github.com/cpbi/librarian/internal/app/services"
	"github.com/cpbi/librarian/internal/config"
	"github.com/cpbi/librarian/internal/db"
	appMiddleware "github.com/cpbi/librarian/internal/middleware"
	pkgAuth "github.com/cpbi/librarian/internal/pkg/auth"
	"github.com/cpbi/librarian/internal/pkg/helpers"
	"github.com/cpbi/librarian/internal/pkg/logger"
	"github.com/cpbi/librarian/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService         appServices.IAuthService
	UserService         appServices.IUserService
	BookService         appServices.IBookService
	BorrowService       appServices.IBorrowService
	DashboardService    appServices.IDashboardService
	ContentService      appServices.IContentService
	AuthController      *appControllers.AuthController
	UserController      *appControllers.UserController
	BookController      *appControllers.BookController
	BorrowController    *appControllers.BorrowController
	DashboardController *appControllers.DashboardController
	ContentController   *appControllers.ContentController
	AuthMiddleware      *appMiddleware.AuthMiddleware
	Repos               *appRepos.Repositories
	JWTService          *pkgAuth.JWTService
	Logger              zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds default data
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection established")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations applied")

	if err := seed.CreateDefaultData(context.Background(), dbPool, cfg, lgr); err != nil {
		// Startup continues; the admin can be created manually
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway")
	}

	return dbPool, nil
}

// BuildDependencies initializes repositories, services and controllers
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	policyConfig := policy.Config{
		MemberMaxBorrows:  cfg.Policy.MemberMaxBorrows,
		TeacherMaxBorrows: cfg.Policy.TeacherMaxBorrows,
		MemberLoanDays:    cfg.Policy.MemberLoanDays,
		TeacherLoanDays:   cfg.Policy.TeacherLoanDays,
		AdminLoanDays:     cfg.Policy.AdminLoanDays,
	}

	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, deps.Repos.TokenRepository, deps.JWTService, lgr)
	deps.UserService = appServices.NewUserService(deps.Repos.UserRepository, lgr)
	deps.BookService = appServices.NewBookService(deps.Repos.BookRepository, lgr)
	deps.BorrowService = appServices.NewBorrowService(
		deps.Repos.BorrowRepository,
		deps.Repos.BookRepository,
		deps.Repos.UserRepository,
		policyConfig,
		lgr,
	)
	deps.DashboardService = appServices.NewDashboardService(deps.Repos.BorrowRepository, deps.Repos.BookRepository, lgr)
	deps.ContentService = appServices.NewContentService(deps.Repos.ContactRepository, deps.Repos.CarouselRepository, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Repos.UserRepository)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.UserController = appControllers.NewUserController(deps.UserService, lgr)
	deps.BookController = appControllers.NewBookController(deps.BookService, lgr)
	deps.BorrowController = appControllers.NewBorrowController(deps.BorrowService, lgr)
	deps.DashboardController = appControllers.NewDashboardController(deps.DashboardService, lgr)
	deps.ContentController = appControllers.NewContentController(deps.ContentService, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.UserController,
		deps.BookController,
		deps.BorrowController,
		deps.DashboardController,
		deps.ContentController,
		deps.AuthMiddleware,
	)

	return router
}
