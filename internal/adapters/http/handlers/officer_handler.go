package handlers

import (
	"errors"
	"strconv"
	"strings"

	"susu-collect/internal/adapters/http/middleware"
	"susu-collect/internal/core/domain"
	"susu-collect/internal/core/services"
	"susu-collect/internal/pkg/pagination"
	"susu-collect/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// OfficerHandler handles officer and community administration endpoints
type OfficerHandler struct {
	officerService *services.OfficerService
}

// NewOfficerHandler creates a new officer handler
func NewOfficerHandler(officerService *services.OfficerService) *OfficerHandler {
	return &OfficerHandler{officerService: officerService}
}

// CreateCommunityRequest carries the community name
type CreateCommunityRequest struct {
	Name string `json:"name"`
}

// Create handles provisioning an officer account
// @Summary Create officer
// @Description Create an officer account with its profile (admin only)
// @Tags Officers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateOfficerInput true "Officer data"
// @Success 201 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/officers [post]
func (h *OfficerHandler) Create(c *fiber.Ctx) error {
	var input services.CreateOfficerInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.Username == "" || input.Email == "" || input.FullName == "" {
		return response.BadRequest(c, "Username, email and full name are required")
	}

	officer, err := h.officerService.CreateOfficer(c.Context(), middleware.ActorFromContext(c), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Only admins can create officers")
		case errors.Is(err, domain.ErrUserAlreadyExists):
			return response.Conflict(c, "Username or email already exists")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Password does not meet requirements")
		case errors.Is(err, domain.ErrNotFound):
			return response.BadRequest(c, "Community not found")
		default:
			return response.InternalServerError(c, "Failed to create officer")
		}
	}

	return response.Created(c, "Officer created successfully", officer)
}

// Get handles fetching one officer
// @Summary Get officer
// @Description Get an officer with its user account
// @Tags Officers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Officer ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/officers/{id} [get]
func (h *OfficerHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid officer ID")
	}

	officer, err := h.officerService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrOfficerNotFound) {
			return response.NotFound(c, "Officer not found")
		}
		return response.InternalServerError(c, "Failed to get officer")
	}

	return response.Success(c, "Officer retrieved successfully", officer)
}

// Update handles editing an officer profile
// @Summary Update officer
// @Description Update an officer's profile fields (admin only)
// @Tags Officers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Officer ID"
// @Param body body services.UpdateOfficerInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/officers/{id} [put]
func (h *OfficerHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid officer ID")
	}

	var input services.UpdateOfficerInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	officer, err := h.officerService.Update(c.Context(), middleware.ActorFromContext(c), uint(id), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Only admins can update officers")
		case errors.Is(err, domain.ErrOfficerNotFound):
			return response.NotFound(c, "Officer not found")
		case errors.Is(err, domain.ErrNotFound):
			return response.BadRequest(c, "Community not found")
		default:
			return response.InternalServerError(c, "Failed to update officer")
		}
	}

	return response.Success(c, "Officer updated successfully", officer)
}

// Deactivate handles disabling an officer
// @Summary Deactivate officer
// @Description Soft-delete an officer profile and disable its login (admin only)
// @Tags Officers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Officer ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/officers/{id} [delete]
func (h *OfficerHandler) Deactivate(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid officer ID")
	}

	if err := h.officerService.Deactivate(c.Context(), middleware.ActorFromContext(c), uint(id)); err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Only admins can deactivate officers")
		case errors.Is(err, domain.ErrOfficerNotFound):
			return response.NotFound(c, "Officer not found")
		default:
			return response.InternalServerError(c, "Failed to deactivate officer")
		}
	}

	return response.Success(c, "Officer deactivated successfully", nil)
}

// List handles listing officers
// @Summary List officers
// @Description List officers with pagination
// @Tags Officers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /admin/officers [get]
func (h *OfficerHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	officers, total, err := h.officerService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list officers")
	}

	return response.Success(c, "Officers retrieved successfully", pagination.NewResponse(officers, params, total))
}

// CreateCommunity handles adding a community
// @Summary Create community
// @Description Add a community for grouping officers (admin only)
// @Tags Officers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateCommunityRequest true "Community name"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/communities [post]
func (h *OfficerHandler) CreateCommunity(c *fiber.Ctx) error {
	var req CreateCommunityRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	community, err := h.officerService.CreateCommunity(c.Context(), middleware.ActorFromContext(c), strings.TrimSpace(req.Name))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Only admins can create communities")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Community name is required")
		case errors.Is(err, domain.ErrDuplicateEntry):
			return response.Conflict(c, "Community already exists")
		default:
			return response.InternalServerError(c, "Failed to create community")
		}
	}

	return response.Created(c, "Community created successfully", community)
}

// ListCommunities handles listing communities
// @Summary List communities
// @Description List all communities
// @Tags Officers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /communities [get]
func (h *OfficerHandler) ListCommunities(c *fiber.Ctx) error {
	communities, err := h.officerService.ListCommunities(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list communities")
	}

	return response.Success(c, "Communities retrieved successfully", communities)
}
