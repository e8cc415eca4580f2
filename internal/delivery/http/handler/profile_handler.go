package handler

import (
	"errors"
	"strings"
	"time"

	"grant-compass/internal/delivery/http/dto"
	"grant-compass/internal/delivery/http/middleware"
	"grant-compass/internal/domain/profile"
	"grant-compass/internal/pkg/response"
	"grant-compass/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type ProfileHandler struct {
	uc usecase.ProfileUsecase
}

type submitProfileRequest struct {
	Occupation   string `json:"occupation"`
	Birthdate    string `json:"birthdate"`
	Income       *int64 `json:"income"`
	Demographic  string `json:"demographic"`
	Organization string `json:"organization"`
}

func NewProfileHandler(uc usecase.ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

func (h *ProfileHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/profile", h.GetProfile)
	r.Put("/profile", h.SubmitProfile)
}

func (h *ProfileHandler) GetProfile(c fiber.Ctx) error {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	p, err := h.uc.GetProfile(c.Context(), userID)
	if err != nil {
		return mapProfileUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(p))
}

func (h *ProfileHandler) SubmitProfile(c fiber.Ctx) error {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req submitProfileRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	in := usecase.SubmitProfileInput{
		Occupation:   req.Occupation,
		Income:       req.Income,
		Organization: req.Organization,
	}

	if raw := strings.TrimSpace(req.Birthdate); raw != "" {
		birthdate, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid birthdate, expected YYYY-MM-DD", nil, err)
		}
		in.Birthdate = birthdate
	}

	demographic, err := profile.ParseDemographic(req.Demographic)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Unknown demographic", nil, err)
	}
	in.Demographic = demographic

	p, err := h.uc.SubmitProfile(c.Context(), userID, in)
	if err != nil {
		return mapProfileUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(p))
}

func mapProfileUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, profile.ErrInvalid):
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
	case errors.Is(err, usecase.ErrProfileNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Profile not found", nil, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, usecase.ErrStoreUnavailable):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, response.MessageServiceUnavailable, nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
