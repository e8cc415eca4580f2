package handler

import (
	"errors"

	"grant-compass/internal/delivery/http/middleware"
	"grant-compass/internal/pkg/response"
	"grant-compass/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type LandingHandler struct {
	uc usecase.OnboardingUsecase
}

func NewLandingHandler(uc usecase.OnboardingUsecase) *LandingHandler {
	return &LandingHandler{uc: uc}
}

func (h *LandingHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/landing", h.GetLanding)
}

// GetLanding tells the client which screen an authenticated user starts on.
func (h *LandingHandler) GetLanding(c fiber.Ctx) error {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	landing, err := h.uc.ResolveLanding(c.Context(), userID)
	if err != nil {
		if errors.Is(err, usecase.ErrStoreUnavailable) {
			return middleware.NewAppError(fiber.StatusServiceUnavailable, response.MessageServiceUnavailable, nil, err)
		}
		if errors.Is(err, usecase.ErrUnauthorized) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, map[string]any{"landing": landing})
}
