package routes

import (
	"time"

	"susu-collect/internal/adapters/http/handlers"
	"susu-collect/internal/adapters/http/middleware"
	"susu-collect/internal/adapters/persistence/repositories"
	"susu-collect/internal/config"
	"susu-collect/internal/core/services"
	"susu-collect/internal/pkg/businessday"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application and returns the background
// scheduler so main can start and stop it.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) (*services.ActivityScheduler, error) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	officerRepo := repositories.NewOfficerRepository(db)
	communityRepo := repositories.NewCommunityRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	contributionRepo := repositories.NewContributionRepository(db)
	submissionRepo := repositories.NewSubmissionRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	ledgerRepo := repositories.NewLedgerTransactionRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	settingRepo := repositories.NewSettingRepository(db)

	clock := businessday.SystemClock{}

	// Initialize services
	notifyService := services.NewNotificationService(notificationRepo, userRepo)
	authService := services.NewAuthService(
		userRepo, refreshTokenRepo, officerRepo,
		cfg.JWT.Secret, cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenMins, cfg.JWT.RefreshTokenDays,
	)
	customerService := services.NewCustomerService(customerRepo, contributionRepo, clock)
	contributionService := services.NewContributionService(contributionRepo, customerRepo, settingRepo, clock)
	submissionService := services.NewSubmissionService(submissionRepo, contributionRepo, userRepo, notifyService, clock)
	loanService := services.NewLoanService(loanRepo, customerRepo, contributionRepo, ledgerRepo, settingRepo, notifyService, clock)
	officerService := services.NewOfficerService(officerRepo, communityRepo, userRepo)
	dashboardService := services.NewDashboardService(customerRepo, officerRepo, contributionRepo, submissionRepo, loanRepo, clock)

	scheduler, err := services.NewActivityScheduler(customerService, refreshTokenRepo)
	if err != nil {
		return nil, err
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	customerHandler := handlers.NewCustomerHandler(customerService)
	contributionHandler := handlers.NewContributionHandler(contributionService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)
	loanHandler := handlers.NewLoanHandler(loanService)
	officerHandler := handlers.NewOfficerHandler(officerService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	notificationHandler := handlers.NewNotificationHandler(notifyService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public, stricter rate limit)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Everything below requires authentication
	protected := apiV1.Group("", middleware.AuthMiddleware(cfg))

	setupCustomerRoutes(protected, customerHandler, contributionHandler, loanHandler)
	setupContributionRoutes(protected, contributionHandler)
	setupSubmissionRoutes(protected, submissionHandler)
	setupLoanRoutes(protected, loanHandler)
	setupNotificationRoutes(protected, notificationHandler)

	// Officer dashboard
	protected.Get("/dashboard", dashboardHandler.Officer)

	// Communities are readable by any authenticated user
	protected.Get("/communities", middleware.CacheControl(time.Hour), officerHandler.ListCommunities)

	// Admin routes
	admin := protected.Group("/admin", middleware.AdminOnly())
	setupAdminRoutes(admin, officerHandler, submissionHandler, loanHandler, dashboardHandler)

	return scheduler, nil
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupCustomerRoutes configures customer routes (officer scoped)
func setupCustomerRoutes(
	router fiber.Router,
	customerHandler *handlers.CustomerHandler,
	contributionHandler *handlers.ContributionHandler,
	loanHandler *handlers.LoanHandler,
) {
	router.Post("/customers", customerHandler.Create)
	router.Get("/customers", customerHandler.List)
	router.Get("/customers/:id", customerHandler.Get)
	router.Put("/customers/:id", customerHandler.Update)
	router.Delete("/customers/:id", middleware.AdminOnly(), customerHandler.Delete)

	// Per-customer histories
	router.Get("/customers/:id/contributions", contributionHandler.ListForCustomer)
	router.Get("/customers/:id/loans", loanHandler.ListForCustomer)
}

// setupContributionRoutes configures contribution routes
func setupContributionRoutes(router fiber.Router, handler *handlers.ContributionHandler) {
	router.Post("/contributions", handler.Record)
	router.Get("/contributions/expected-today", handler.ExpectedToday)
}

// setupSubmissionRoutes configures daily submission routes
func setupSubmissionRoutes(router fiber.Router, handler *handlers.SubmissionHandler) {
	router.Post("/submissions", handler.Create)
	router.Get("/submissions", handler.ListMine)
	router.Get("/submissions/:id", handler.Get)
}

// setupLoanRoutes configures loan lifecycle routes
func setupLoanRoutes(router fiber.Router, handler *handlers.LoanHandler) {
	router.Post("/loans", handler.Apply)
	router.Get("/loans/:id", handler.Get)
	router.Post("/loans/:id/repayments", handler.RecordRepayment)

	// Decisions are admin only
	router.Post("/loans/:id/approve", middleware.AdminOnly(), handler.Approve)
	router.Post("/loans/:id/reject", middleware.AdminOnly(), handler.Reject)
	router.Post("/loans/:id/disburse", middleware.AdminOnly(), handler.Disburse)
}

// setupNotificationRoutes configures notification routes
func setupNotificationRoutes(router fiber.Router, handler *handlers.NotificationHandler) {
	router.Get("/notifications", handler.List)
	router.Get("/notifications/unread-count", handler.UnreadCount)
	router.Post("/notifications/:id/read", handler.MarkRead)
}

// setupAdminRoutes configures admin-only routes
func setupAdminRoutes(
	router fiber.Router,
	officerHandler *handlers.OfficerHandler,
	submissionHandler *handlers.SubmissionHandler,
	loanHandler *handlers.LoanHandler,
	dashboardHandler *handlers.DashboardHandler,
) {
	// Dashboard
	router.Get("/dashboard", dashboardHandler.Admin)

	// Officer management
	router.Post("/officers", officerHandler.Create)
	router.Get("/officers", officerHandler.List)
	router.Get("/officers/:id", officerHandler.Get)
	router.Put("/officers/:id", officerHandler.Update)
	router.Delete("/officers/:id", officerHandler.Deactivate)

	// Communities
	router.Post("/communities", officerHandler.CreateCommunity)

	// Review queues
	router.Get("/submissions", submissionHandler.ListReviewQueue)
	router.Post("/submissions/:id/approve", submissionHandler.Approve)
	router.Get("/loans", loanHandler.ListByStatus)
}
