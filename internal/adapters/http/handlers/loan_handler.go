package handlers

import (
	"context"
	"errors"
	"strconv"

	"susu-collect/internal/adapters/http/middleware"
	"susu-collect/internal/adapters/persistence/models"
	"susu-collect/internal/core/domain"
	"susu-collect/internal/core/services"
	"susu-collect/internal/pkg/pagination"
	"susu-collect/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// LoanHandler handles loan lifecycle endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// DecisionRequest carries decision notes for approve/reject
type DecisionRequest struct {
	Notes string `json:"notes"`
}

// RepaymentRequest carries a repayment amount
type RepaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Apply handles a loan application
// @Summary Apply for loan
// @Description File a loan application for an eligible customer
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ApplyLoanInput true "Application data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /loans [post]
func (h *LoanHandler) Apply(c *fiber.Ctx) error {
	var input services.ApplyLoanInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.CustomerID == 0 {
		return response.BadRequest(c, "Customer ID is required")
	}

	loan, err := h.loanService.Apply(c.Context(), middleware.ActorFromContext(c), input)
	if err != nil {
		switch {
		case domain.IsEligibilityError(err):
			return response.Error(c, fiber.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, domain.ErrInvalidAmount):
			return response.BadRequest(c, "Principal must be greater than zero")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid term or rate")
		case errors.Is(err, domain.ErrCustomerNotFound):
			return response.NotFound(c, "Customer not found")
		default:
			return response.InternalServerError(c, "Failed to file loan application")
		}
	}

	return response.Created(c, "Loan application filed successfully", loan)
}

// Get handles fetching one loan with derived figures
// @Summary Get loan
// @Description Get a loan with remaining balance, progress and overdue flag
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [get]
func (h *LoanHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	detail, err := h.loanService.GetDetail(c.Context(), middleware.ActorFromContext(c), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return response.NotFound(c, "Loan not found")
		}
		return response.InternalServerError(c, "Failed to get loan")
	}

	return response.Success(c, "Loan retrieved successfully", detail)
}

// Approve handles loan approval (admin only)
// @Summary Approve loan
// @Description Approve a pending loan and fix its repayment schedule
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body DecisionRequest false "Decision notes"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/approve [post]
func (h *LoanHandler) Approve(c *fiber.Ctx) error {
	return h.decide(c, h.loanService.Approve, "Loan approved successfully")
}

// Reject handles loan rejection (admin only)
// @Summary Reject loan
// @Description Reject a pending loan
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body DecisionRequest false "Decision notes"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/reject [post]
func (h *LoanHandler) Reject(c *fiber.Ctx) error {
	return h.decide(c, h.loanService.Reject, "Loan rejected successfully")
}

// Disburse handles paying out an approved loan (admin only)
// @Summary Disburse loan
// @Description Pay out an approved loan and write the ledger entry
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/disburse [post]
func (h *LoanHandler) Disburse(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.Disburse(c.Context(), middleware.ActorFromContext(c), uint(id))
	if err != nil {
		return h.mapLoanError(c, err, "Failed to disburse loan")
	}

	return response.Success(c, "Loan disbursed successfully", loan)
}

// RecordRepayment handles booking a repayment
// @Summary Record repayment
// @Description Record a repayment against a disbursed loan
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body RepaymentRequest true "Repayment amount"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/repayments [post]
func (h *LoanHandler) RecordRepayment(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	var req RepaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	loan, err := h.loanService.RecordRepayment(c.Context(), middleware.ActorFromContext(c), uint(id), req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			return response.BadRequest(c, "Amount must be greater than zero")
		case errors.Is(err, domain.ErrOverpayment):
			return response.BadRequest(c, "Repayment exceeds the remaining balance")
		default:
			return h.mapLoanError(c, err, "Failed to record repayment")
		}
	}

	return response.Success(c, "Repayment recorded successfully", loan)
}

// ListForCustomer handles a customer's loan history
// @Summary List customer loans
// @Description List a customer's loans, newest first
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id}/loans [get]
func (h *LoanHandler) ListForCustomer(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid customer ID")
	}

	loans, err := h.loanService.ListByCustomer(c.Context(), middleware.ActorFromContext(c), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return response.NotFound(c, "Customer not found")
		}
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", loans)
}

// ListByStatus handles the admin loan queue
// @Summary List loans by status
// @Description List loans in a given state for admin review
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved, rejected, disbursed or repaid (default pending)"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/loans [get]
func (h *LoanHandler) ListByStatus(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	status := c.Query("status", models.LoanStatusPending)
	switch status {
	case models.LoanStatusPending, models.LoanStatusApproved, models.LoanStatusRejected,
		models.LoanStatusDisbursed, models.LoanStatusRepaid:
	default:
		return response.BadRequest(c, "Invalid loan status")
	}

	loans, total, err := h.loanService.ListByStatus(
		c.Context(), middleware.ActorFromContext(c), status, params.Offset, params.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return response.Forbidden(c, "Only admins can view the loan queue")
		}
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", pagination.NewResponse(loans, params, total))
}

// decide shares the approve/reject handler shape
func (h *LoanHandler) decide(
	c *fiber.Ctx,
	action func(ctx context.Context, actor domain.Actor, id uint, notes string) (*models.Loan, error),
	successMessage string,
) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	var req DecisionRequest
	_ = c.BodyParser(&req)

	loan, err := action(c.Context(), middleware.ActorFromContext(c), uint(id), req.Notes)
	if err != nil {
		return h.mapLoanError(c, err, "Failed to decide loan")
	}

	return response.Success(c, successMessage, loan)
}

// mapLoanError maps common loan service errors to HTTP responses
func (h *LoanHandler) mapLoanError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "Only admins can perform this action")
	case errors.Is(err, domain.ErrLoanNotFound):
		return response.NotFound(c, "Loan not found")
	case errors.Is(err, domain.ErrInvalidLoanStatus):
		return response.Conflict(c, "Loan is not in a state that allows this action")
	default:
		return response.InternalServerError(c, fallback)
	}
}
