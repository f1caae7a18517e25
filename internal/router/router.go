// Package router assembles the Fiber application: repositories, services,
// handlers and middleware over a single database handle.
package router

import (
	"time"

	"yamdb/internal/handlers"
	"yamdb/internal/middleware"
	"yamdb/internal/repositories"
	"yamdb/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// Options configures New.
type Options struct {
	DB       *gorm.DB
	Notifier services.Notifier
	Auth     services.AuthConfig
	// AuthRateLimit caps signup and token requests per client IP per minute.
	// Zero disables the limiter.
	AuthRateLimit int
	// Quiet drops the request logger.
	Quiet bool
}

// New builds the application with every route mounted under /api/v1.
func New(opts Options) *fiber.App {
	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(opts.DB)
	categoryRepo := repositories.NewGORMCategoryRepository(opts.DB)
	genreRepo := repositories.NewGORMGenreRepository(opts.DB)
	titleRepo := repositories.NewGORMTitleRepository(opts.DB)
	reviewRepo := repositories.NewGORMReviewRepository(opts.DB)
	commentRepo := repositories.NewGORMCommentRepository(opts.DB)

	// --- Services ---
	authService := services.NewAuthService(userRepo, opts.Notifier, opts.Auth)
	catalogService := services.NewCatalogService(categoryRepo, genreRepo)
	titleService := services.NewTitleService(titleRepo, categoryRepo, genreRepo)
	reviewService := services.NewReviewService(titleRepo, reviewRepo, commentRepo)
	userService := services.NewUserService(userRepo)

	// --- Handlers ---
	var authLimiter fiber.Handler
	if opts.AuthRateLimit > 0 {
		authLimiter = limiter.New(limiter.Config{
			Max:        opts.AuthRateLimit,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"message": "Request was throttled.",
				})
			},
		})
	}

	app := fiber.New()

	// --- Middleware ---
	app.Use(recover.New())
	if !opts.Quiet {
		app.Use(logger.New())
	}

	apiV1 := app.Group("/api/v1", middleware.Authenticate(authService, userRepo))
	handlers.NewAuthHandler(authService, authLimiter).RegisterRoutes(apiV1)
	handlers.NewCatalogHandler(catalogService).RegisterRoutes(apiV1)
	handlers.NewTitleHandler(titleService).RegisterRoutes(apiV1)
	handlers.NewReviewHandler(reviewService).RegisterRoutes(apiV1)
	handlers.NewUserHandler(userService).RegisterRoutes(apiV1)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		status, code := "healthy", fiber.StatusOK
		sqlDB, err := opts.DB.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			status, code = "unhealthy", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return app
}
