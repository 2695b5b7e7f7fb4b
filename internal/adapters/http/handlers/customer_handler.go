package handlers

import (
	"errors"
	"strconv"

	"susu-collect/internal/adapters/http/middleware"
	"susu-collect/internal/adapters/persistence/repositories"
	"susu-collect/internal/core/domain"
	"susu-collect/internal/core/services"
	"susu-collect/internal/pkg/pagination"
	"susu-collect/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CustomerHandler handles customer endpoints
type CustomerHandler struct {
	customerService *services.CustomerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// Create handles customer enrolment
// @Summary Enrol customer
// @Description Enrol a new customer under a collection officer
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateCustomerInput true "Customer data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /customers [post]
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var input services.CreateCustomerInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.FirstName == "" || input.LastName == "" {
		return response.BadRequest(c, "First and last name are required")
	}

	customer, err := h.customerService.Create(c.Context(), middleware.ActorFromContext(c), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			return response.BadRequest(c, "Daily contribution amount must be greater than zero")
		case errors.Is(err, domain.ErrOfficerNotFound):
			return response.BadRequest(c, "Officer is required")
		case errors.Is(err, domain.ErrDuplicateEntry):
			return response.Conflict(c, "Could not allocate a customer code, please retry")
		default:
			return response.InternalServerError(c, "Failed to enrol customer")
		}
	}

	return response.Created(c, "Customer enrolled successfully", customer.ToResponse())
}

// Get handles fetching one customer
// @Summary Get customer
// @Description Get a customer with derived status and total savings
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id} [get]
func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid customer ID")
	}

	detail, err := h.customerService.GetDetail(c.Context(), middleware.ActorFromContext(c), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return response.NotFound(c, "Customer not found")
		}
		return response.InternalServerError(c, "Failed to get customer")
	}

	return response.Success(c, "Customer retrieved successfully", detail)
}

// Update handles editing a customer
// @Summary Update customer
// @Description Update a customer's mutable fields; the customer code never changes
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Param body body services.UpdateCustomerInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id} [put]
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid customer ID")
	}

	var input services.UpdateCustomerInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	customer, err := h.customerService.Update(c.Context(), middleware.ActorFromContext(c), uint(id), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCustomerNotFound):
			return response.NotFound(c, "Customer not found")
		case errors.Is(err, domain.ErrInvalidAmount):
			return response.BadRequest(c, "Daily contribution amount must be greater than zero")
		default:
			return response.InternalServerError(c, "Failed to update customer")
		}
	}

	return response.Success(c, "Customer updated successfully", customer.ToResponse())
}

// Delete handles removing a customer (admin only)
// @Summary Delete customer
// @Description Soft-delete a customer
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id} [delete]
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid customer ID")
	}

	if err := h.customerService.Delete(c.Context(), middleware.ActorFromContext(c), uint(id)); err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Only admins can delete customers")
		case errors.Is(err, domain.ErrCustomerNotFound):
			return response.NotFound(c, "Customer not found")
		default:
			return response.InternalServerError(c, "Failed to delete customer")
		}
	}

	return response.Success(c, "Customer deleted successfully", nil)
}

// List handles listing customers
// @Summary List customers
// @Description List customers visible to the caller, with search and status filters
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param search query string false "Match name, customer code, phone or address"
// @Param status query string false "active or inactive"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /customers [get]
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	q := repositories.CustomerQuery{
		Search: c.Query("search"),
		Status: c.Query("status"),
		Offset: params.Offset,
		Limit:  params.Limit,
	}

	customers, total, err := h.customerService.List(c.Context(), middleware.ActorFromContext(c), q)
	if err != nil {
		return response.InternalServerError(c, "Failed to list customers")
	}

	return response.Success(c, "Customers retrieved successfully", pagination.NewResponse(customers, params, total))
}
