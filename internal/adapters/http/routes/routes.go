package routes

import (
	"red-reserve/internal/adapters/http/handlers"
	"red-reserve/internal/adapters/http/middleware"
	"red-reserve/internal/adapters/persistence/repositories"
	"red-reserve/internal/config"
	"red-reserve/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	store := repositories.NewStore(db)

	authService := services.NewAuthService(store, cfg)
	donorService := services.NewDonorService(store)
	hospitalService := services.NewHospitalService(store)
	lifecycleService := services.NewLifecycleService(store)

	healthHandler := handlers.NewHealthHandler()
	donorHandler := handlers.NewDonorHandler(authService, donorService, lifecycleService, cfg)
	hospitalHandler := handlers.NewHospitalHandler(authService, hospitalService, lifecycleService, cfg)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	api := app.Group("/api")
	SetupDonorRoutes(api.Group("/donor"), donorHandler, cfg)
	SetupHospitalRoutes(api.Group("/hospital"), hospitalHandler, cfg)
}

// SetupDonorRoutes configures donor routes
func SetupDonorRoutes(router fiber.Router, handler *handlers.DonorHandler, cfg *config.Config) {
	// Public routes
	router.Post("/signup", middleware.AuthRateLimiter(), handler.Signup)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.Refresh)
	router.Post("/logout", handler.Logout)

	// Protected routes
	auth := middleware.AuthMiddleware(cfg)
	donorOnly := middleware.DonorOnly()
	router.Post("/createprofile", auth, donorOnly, handler.CreateProfile)
	router.Post("/updateprofile", auth, donorOnly, handler.UpdateProfile)
	router.Get("/profile", auth, donorOnly, handler.GetProfile)
	router.Get("/requests", auth, donorOnly, handler.MatchingRequests)
	router.Post("/accept", auth, donorOnly, handler.Accept)
	router.Get("/lastdonation", auth, donorOnly, handler.LastDonation)
	router.Get("/cooldown", auth, donorOnly, handler.Cooldown)
}

// SetupHospitalRoutes configures hospital routes
func SetupHospitalRoutes(router fiber.Router, handler *handlers.HospitalHandler, cfg *config.Config) {
	// Public routes
	router.Post("/signup", middleware.AuthRateLimiter(), handler.Signup)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.Refresh)
	router.Post("/logout", handler.Logout)

	// Protected routes
	auth := middleware.AuthMiddleware(cfg)
	hospitalOnly := middleware.HospitalOnly()
	router.Post("/bloodrequest", auth, hospitalOnly, handler.CreateRequest)
	router.Post("/fulfillrequest", auth, hospitalOnly, handler.Fulfill)
	router.Get("/requests", auth, hospitalOnly, handler.OpenRequests)
	router.Post("/responses", auth, hospitalOnly, handler.Responders)
	router.Get("/history", auth, hospitalOnly, handler.History)
	router.Get("/others", auth, hospitalOnly, handler.Others)
	// Cross-hospital fulfillment keeps its own route with identical
	// semantics
	router.Post("/fulfillhospital", auth, hospitalOnly, handler.Fulfill)
}
