package handlers

import (
	"errors"
	"strconv"

	"susu-collect/internal/adapters/http/middleware"
	"susu-collect/internal/core/domain"
	"susu-collect/internal/core/services"
	"susu-collect/internal/pkg/pagination"
	"susu-collect/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ContributionHandler handles daily contribution endpoints
type ContributionHandler struct {
	contributionService *services.ContributionService
}

// NewContributionHandler creates a new contribution handler
func NewContributionHandler(contributionService *services.ContributionService) *ContributionHandler {
	return &ContributionHandler{contributionService: contributionService}
}

// Record handles recording a collection visit
// @Summary Record contribution
// @Description Record a customer's contribution for the current business day
// @Tags Contributions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.RecordContributionInput true "Contribution data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /contributions [post]
func (h *ContributionHandler) Record(c *fiber.Ctx) error {
	var input services.RecordContributionInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.CustomerID == 0 {
		return response.BadRequest(c, "Customer ID is required")
	}

	contribution, err := h.contributionService.Record(c.Context(), middleware.ActorFromContext(c), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			return response.BadRequest(c, "Amount must be greater than zero")
		case errors.Is(err, domain.ErrAmountTooLarge):
			return response.BadRequest(c, "Amount exceeds the allowed ceiling")
		case errors.Is(err, domain.ErrCustomerNotFound):
			return response.NotFound(c, "Customer not found")
		case errors.Is(err, domain.ErrDuplicateContribution):
			return response.Conflict(c, "Contribution already recorded for this business day")
		default:
			return response.InternalServerError(c, "Failed to record contribution")
		}
	}

	return response.Created(c, "Contribution recorded successfully", contribution)
}

// ListForCustomer handles a customer's contribution history
// @Summary List contributions
// @Description List a customer's contributions, newest first
// @Tags Contributions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id}/contributions [get]
func (h *ContributionHandler) ListForCustomer(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid customer ID")
	}

	params := pagination.GetParams(c)

	contributions, total, err := h.contributionService.ListForCustomer(
		c.Context(), middleware.ActorFromContext(c), uint(id), params.Offset, params.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return response.NotFound(c, "Customer not found")
		}
		return response.InternalServerError(c, "Failed to list contributions")
	}

	return response.Success(c, "Contributions retrieved successfully", pagination.NewResponse(contributions, params, total))
}

// ExpectedToday handles the officer's running total for the day
// @Summary Expected total today
// @Description The sum of the calling officer's recorded contributions for the current business day
// @Tags Contributions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /contributions/expected-today [get]
func (h *ContributionHandler) ExpectedToday(c *fiber.Ctx) error {
	actor := middleware.ActorFromContext(c)
	if actor.OfficerID == 0 {
		return response.BadRequest(c, "Caller has no officer profile")
	}

	total, err := h.contributionService.ExpectedTotalToday(c.Context(), actor.OfficerID)
	if err != nil {
		return response.InternalServerError(c, "Failed to compute expected total")
	}

	return response.Success(c, "Expected total retrieved successfully", fiber.Map{
		"expected_total": total,
	})
}
