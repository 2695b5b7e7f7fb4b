package handlers

import (
	"errors"

	"susu-collect/internal/adapters/http/middleware"
	"susu-collect/internal/core/domain"
	"susu-collect/internal/core/services"
	"susu-collect/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Admin handles the admin overview
// @Summary Admin dashboard
// @Description Operation-wide counts for the admin landing screen
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/dashboard [get]
func (h *DashboardHandler) Admin(c *fiber.Ctx) error {
	dashboard, err := h.dashboardService.ForAdmin(c.Context(), middleware.ActorFromContext(c))
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return response.Forbidden(c, "Only admins can view this dashboard")
		}
		return response.InternalServerError(c, "Failed to build dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", dashboard)
}

// Officer handles the officer's current-day view
// @Summary Officer dashboard
// @Description The calling officer's current business day at a glance
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) Officer(c *fiber.Ctx) error {
	dashboard, err := h.dashboardService.ForOfficer(c.Context(), middleware.ActorFromContext(c))
	if err != nil {
		if errors.Is(err, domain.ErrOfficerNotFound) {
			return response.BadRequest(c, "Caller has no officer profile")
		}
		return response.InternalServerError(c, "Failed to build dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", dashboard)
}
