package handler

import (
	"errors"

	"grant-compass/internal/delivery/http/dto"
	"grant-compass/internal/delivery/http/middleware"
	"grant-compass/internal/pkg/response"
	"grant-compass/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type GrantsHandler struct {
	uc usecase.MatchingUsecase
}

func NewGrantsHandler(uc usecase.MatchingUsecase) *GrantsHandler {
	return &GrantsHandler{uc: uc}
}

func (h *GrantsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/grants")
	grp.Get("", h.ListActive)
	grp.Get("/matched", h.ListMatched)
}

// ListActive returns the full catalog of grants whose deadline has not
// passed, independent of the caller's profile.
func (h *GrantsHandler) ListActive(c fiber.Ctx) error {
	grants, err := h.uc.ActiveGrants(c.Context())
	if err != nil {
		return mapMatchingUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewGrantListResponse(grants))
}

// ListMatched returns the grants the authenticated user is eligible for. An
// empty list is a normal result; an incomplete profile is reported
// separately so the client can route back to profile completion.
func (h *GrantsHandler) ListMatched(c fiber.Ctx) error {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	grants, err := h.uc.MatchedGrants(c.Context(), userID)
	if err != nil {
		return mapMatchingUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewGrantListResponse(grants))
}

func mapMatchingUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrIncompleteProfile):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Profile incomplete", nil, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, usecase.ErrStoreUnavailable):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, response.MessageServiceUnavailable, nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
