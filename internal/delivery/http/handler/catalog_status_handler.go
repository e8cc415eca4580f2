package handler

import (
	"log"
	"time"

	"grant-compass/internal/delivery/http/middleware"
	"grant-compass/internal/pkg/response"
	"grant-compass/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type CatalogStatusHandler struct {
	uc  usecase.CatalogStatusUsecase
	log *log.Logger
}

func NewCatalogStatusHandler(uc usecase.CatalogStatusUsecase, logger *log.Logger) *CatalogStatusHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &CatalogStatusHandler{uc: uc, log: logger}
}

func (h *CatalogStatusHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/catalog/status", h.GetStatus)
}

func (h *CatalogStatusHandler) GetStatus(c fiber.Ctx) error {
	start := time.Now()

	data, err := h.uc.GetStatus(c.Context())
	if err != nil {
		h.log.Printf("catalog_status status=error duration=%s err=%v", time.Since(start), err)
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	h.log.Printf("catalog_status status=ok duration=%s sources=%d", time.Since(start), len(data.Sources))
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}
