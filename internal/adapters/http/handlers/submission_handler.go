package handlers

import (
	"errors"
	"strconv"

	"susu-collect/internal/adapters/http/middleware"
	"susu-collect/internal/adapters/persistence/models"
	"susu-collect/internal/core/domain"
	"susu-collect/internal/core/services"
	"susu-collect/internal/pkg/pagination"
	"susu-collect/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SubmissionHandler handles end-of-day submission endpoints
type SubmissionHandler struct {
	submissionService *services.SubmissionService
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissionService *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// ApproveRequest carries the optional review notes
type ApproveRequest struct {
	Notes string `json:"notes"`
}

// Create handles an officer's end-of-day cash declaration
// @Summary Submit daily total
// @Description Declare the cash total for the current business day; exact matches auto-approve
// @Tags Submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateSubmissionInput true "Submission data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /submissions [post]
func (h *SubmissionHandler) Create(c *fiber.Ctx) error {
	var input services.CreateSubmissionInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	submission, err := h.submissionService.Create(c.Context(), middleware.ActorFromContext(c), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			return response.BadRequest(c, "Submitted total cannot be negative")
		case errors.Is(err, domain.ErrOfficerNotFound):
			return response.BadRequest(c, "Caller has no officer profile")
		case errors.Is(err, domain.ErrDuplicateSubmission):
			return response.Conflict(c, "Submission already exists for this business day")
		default:
			return response.InternalServerError(c, "Failed to create submission")
		}
	}

	return response.Created(c, "Submission created successfully", submission)
}

// Get handles fetching one submission
// @Summary Get submission
// @Description Get one submission, visible to its officer and admins
// @Tags Submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Submission ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid submission ID")
	}

	submission, err := h.submissionService.GetByID(c.Context(), middleware.ActorFromContext(c), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrSubmissionNotFound) {
			return response.NotFound(c, "Submission not found")
		}
		return response.InternalServerError(c, "Failed to get submission")
	}

	return response.Success(c, "Submission retrieved successfully", submission)
}

// Approve handles admin review of a flagged submission
// @Summary Approve submission
// @Description Approve a pending or flagged submission
// @Tags Submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Submission ID"
// @Param body body ApproveRequest false "Review notes"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /submissions/{id}/approve [post]
func (h *SubmissionHandler) Approve(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid submission ID")
	}

	var req ApproveRequest
	_ = c.BodyParser(&req)

	submission, err := h.submissionService.Approve(c.Context(), middleware.ActorFromContext(c), uint(id), req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Only admins can approve submissions")
		case errors.Is(err, domain.ErrSubmissionNotFound):
			return response.NotFound(c, "Submission not found")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Submission is already approved")
		default:
			return response.InternalServerError(c, "Failed to approve submission")
		}
	}

	return response.Success(c, "Submission approved successfully", submission)
}

// ListMine handles the calling officer's submission history
// @Summary List my submissions
// @Description List the calling officer's submissions, newest first
// @Tags Submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /submissions [get]
func (h *SubmissionHandler) ListMine(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	submissions, total, err := h.submissionService.ListMine(
		c.Context(), middleware.ActorFromContext(c), params.Offset, params.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrOfficerNotFound) {
			return response.BadRequest(c, "Caller has no officer profile")
		}
		return response.InternalServerError(c, "Failed to list submissions")
	}

	return response.Success(c, "Submissions retrieved successfully", pagination.NewResponse(submissions, params, total))
}

// ListReviewQueue handles the admin review queue
// @Summary List submissions by status
// @Description List submissions in a given state for admin review
// @Tags Submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or flagged (default flagged)"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/submissions [get]
func (h *SubmissionHandler) ListReviewQueue(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	status := c.Query("status", models.SubmissionStatusFlagged)
	switch status {
	case models.SubmissionStatusPending, models.SubmissionStatusApproved, models.SubmissionStatusFlagged:
	default:
		return response.BadRequest(c, "Invalid submission status")
	}

	submissions, total, err := h.submissionService.ListByStatus(
		c.Context(), middleware.ActorFromContext(c), status, params.Offset, params.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return response.Forbidden(c, "Only admins can view the review queue")
		}
		return response.InternalServerError(c, "Failed to list submissions")
	}

	return response.Success(c, "Submissions retrieved successfully", pagination.NewResponse(submissions, params, total))
}
