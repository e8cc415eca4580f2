package handler

import (
	"errors"

	"grant-compass/internal/delivery/http/dto"
	"grant-compass/internal/delivery/http/middleware"
	"grant-compass/internal/domain/application"
	"grant-compass/internal/pkg/response"
	"grant-compass/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ApplicationsHandler struct {
	uc usecase.ApplicationUsecase
}

type applyRequest struct {
	GrantID string `json:"grant_id"`
}

type transitionRequest struct {
	Status string `json:"status"`
	Actor  string `json:"actor"`
}

func NewApplicationsHandler(uc usecase.ApplicationUsecase) *ApplicationsHandler {
	return &ApplicationsHandler{uc: uc}
}

func (h *ApplicationsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/applications")
	grp.Get("", h.List)
	grp.Post("", h.Apply)
	grp.Patch("/:id/status", h.Transition)
	grp.Post("/:id/withdraw", h.Withdraw)
}

func (h *ApplicationsHandler) List(c fiber.Ctx) error {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	apps, err := h.uc.List(c.Context(), userID)
	if err != nil {
		return mapApplicationUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicationListResponse(apps))
}

func (h *ApplicationsHandler) Apply(c fiber.Ctx) error {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req applyRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if req.GrantID == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Missing grant_id", nil, nil)
	}

	a, err := h.uc.Apply(c.Context(), userID, req.GrantID)
	if err != nil {
		return mapApplicationUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageOK, dto.NewApplicationResponse(a))
}

// Transition is the reviewer-facing status update.
func (h *ApplicationsHandler) Transition(c fiber.Ctx) error {
	if _, ok := userIDFromCtx(c); !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid application id", nil, err)
	}

	var req transitionRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	to, err := application.ParseStatus(req.Status)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Unknown status", nil, err)
	}

	a, err := h.uc.Transition(c.Context(), id, to, req.Actor)
	if err != nil {
		return mapApplicationUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicationResponse(a))
}

func (h *ApplicationsHandler) Withdraw(c fiber.Ctx) error {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid application id", nil, err)
	}

	a, err := h.uc.Withdraw(c.Context(), userID, id)
	if err != nil {
		return mapApplicationUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicationResponse(a))
}

func mapApplicationUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrGrantNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Grant not found", nil, err)
	case errors.Is(err, usecase.ErrApplicationNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Application not found", nil, err)
	case errors.Is(err, usecase.ErrNotMatched):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Grant not matched for this profile", nil, err)
	case errors.Is(err, usecase.ErrDeadlinePassed):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Grant deadline passed", nil, err)
	case errors.Is(err, usecase.ErrAlreadyApplied):
		return middleware.NewAppError(fiber.StatusConflict, "Active application already exists", nil, err)
	case errors.Is(err, usecase.ErrInvalidTransition):
		return middleware.NewAppError(fiber.StatusConflict, "Invalid status transition", nil, err)
	case errors.Is(err, usecase.ErrTerminalState):
		return middleware.NewAppError(fiber.StatusConflict, "Application already closed", nil, err)
	case errors.Is(err, usecase.ErrConflict):
		return middleware.NewAppError(fiber.StatusConflict, "Application changed concurrently", nil, err)
	case errors.Is(err, usecase.ErrForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, usecase.ErrStoreUnavailable):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, response.MessageServiceUnavailable, nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
