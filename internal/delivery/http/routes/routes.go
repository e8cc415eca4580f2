package routes

import (
	"log"

	"grant-compass/internal/config"
	"grant-compass/internal/database"
	"grant-compass/internal/delivery/http/handler"
	v1 "grant-compass/internal/delivery/http/routes/v1"
	"grant-compass/internal/usecase"
	"grant-compass/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	cfg    config.Config
	db     database.DB
	cache  usecase.MatchCache
	hub    *ws.Hub
	logger *log.Logger
}

func NewRegistry(cfg config.Config, db database.DB, cache usecase.MatchCache, hub *ws.Hub, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{cfg: cfg, db: db, cache: cache, hub: hub, logger: logger}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	health := handler.NewHealthHandler(r.db)
	health.RegisterRoutes(app)

	api := app.Group("/api")
	v1.Register(api.Group("/v1"), r.cfg, r.db, r.cache, r.hub, r.logger)
}
