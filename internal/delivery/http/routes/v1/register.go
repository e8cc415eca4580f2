package v1

import (
	"log"

	"grant-compass/internal/config"
	"grant-compass/internal/database"
	"grant-compass/internal/delivery/http/handler"
	"grant-compass/internal/delivery/http/middleware"
	"grant-compass/internal/pkg/jwt"
	"grant-compass/internal/repository"
	"grant-compass/internal/usecase"
	"grant-compass/internal/ws"

	"github.com/gofiber/fiber/v3"
)

// Register wires the v1 API surface: repositories over the shared DB,
// usecases on top, handlers and the websocket endpoint on the outside.
func Register(r fiber.Router, cfg config.Config, db database.DB, cache usecase.MatchCache, hub *ws.Hub, logger *log.Logger) {
	if r == nil {
		return
	}
	if logger == nil {
		logger = log.Default()
	}

	jwtSvc := jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
	)

	authMw := middleware.NewAuthMiddleware(jwtSvc)

	userRepo := repository.NewPostgresUserRepository(db)
	profileRepo := repository.NewPostgresProfileRepository(db)
	grantRepo := repository.NewPostgresGrantRepository(db)
	appRepo := repository.NewPostgresApplicationRepository(db)
	statusRepo := repository.NewPostgresCatalogStatusRepository(db)

	var notifier usecase.StatusNotifier
	if hub != nil {
		notifier = ws.NewNotifier(hub)
	}

	authUC := usecase.NewAuthUsecase(userRepo, jwtSvc)
	onboardingUC := usecase.NewOnboardingUsecase(profileRepo)
	profileUC := usecase.NewProfileUsecase(profileRepo, cache, logger)
	matchingUC := usecase.NewMatchingUsecase(profileRepo, grantRepo, cache, logger)
	applicationUC := usecase.NewApplicationUsecase(appRepo, profileRepo, grantRepo, notifier, logger)
	statusUC := usecase.NewCatalogStatusUsecase(statusRepo, logger)

	authHandler := handler.NewAuthHandler(authUC)
	authHandler.RegisterRoutes(r.Group("/auth"))

	protected := r.Group("", authMw.Middleware())

	handler.NewLandingHandler(onboardingUC).RegisterRoutes(protected)
	handler.NewProfileHandler(profileUC).RegisterRoutes(protected)
	handler.NewGrantsHandler(matchingUC).RegisterRoutes(protected)
	handler.NewApplicationsHandler(applicationUC).RegisterRoutes(protected)
	handler.NewCatalogStatusHandler(statusUC, logger).RegisterRoutes(protected)

	if hub != nil {
		wsHandler := ws.NewHandler(hub, jwtSvc, logger)
		r.Get("/ws/applications", wsHandler.HandleStatusWS)
	}
}
