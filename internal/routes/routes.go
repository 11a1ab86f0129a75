package routes

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripboard/internal/app/domain/auth"
	"github.com/FACorreiaa/go-tripboard/internal/app/domain/itineraries"
	"github.com/FACorreiaa/go-tripboard/internal/app/domain/pages"
	"github.com/FACorreiaa/go-tripboard/internal/app/domain/search"
	"github.com/FACorreiaa/go-tripboard/internal/app/handlers"
	"github.com/FACorreiaa/go-tripboard/internal/app/middleware"
	"github.com/FACorreiaa/go-tripboard/internal/pkg/config"
)

const limiterIdleTTL = 10 * time.Minute

// AppHandlers groups every domain handler mounted on the router.
type AppHandlers struct {
	Auth        *auth.Handler
	Itineraries *itineraries.Handler
	Search      *search.Handler
	Pages       *pages.Handler
}

// App is the wired application. Close releases background workers.
type App struct {
	Handlers AppHandlers
	Sessions *auth.SessionValidator
	Limiter  *middleware.RateLimiter
}

func (a *App) Close() {
	if a.Limiter != nil {
		a.Limiter.Stop()
	}
}

// Build constructs the domain services and handlers from one pool, config
// and logger.
func Build(db itineraries.DBTX, cfg *config.Config, logger *zap.Logger) (*App, error) {
	base := handlers.NewBaseHandler(logger)

	// Itineraries
	itineraryRepo := itineraries.NewRepository(db, logger)
	itineraryService := itineraries.NewService(itineraryRepo, logger)

	// Search
	categories, err := search.DefaultCategories()
	if err != nil {
		return nil, fmt.Errorf("failed to load search categories: %w", err)
	}
	geoapify := search.NewGeoapifyClient(cfg.Search.BaseURL, cfg.Search.APIKey, cfg.Search.HTTPTimeout, logger)
	searchService := search.NewService(geoapify, categories, cfg.Search, logger)

	// Auth
	provider := auth.NewHTTPProvider(cfg.Auth.ProviderURL, cfg.Auth.AnonKey, cfg.Auth.HTTPTimeout, logger)

	return &App{
		Handlers: AppHandlers{
			Auth:        auth.NewHandler(provider, cfg.Auth, cfg.SiteURL, base),
			Itineraries: itineraries.NewHandler(itineraryService, base),
			Search:      search.NewHandler(searchService, base),
			Pages:       pages.NewHandler(itineraryService, cfg.Auth.OAuthProviders, base),
		},
		Sessions: auth.NewSessionValidator(cfg.Auth.JWTSecret, cfg.Auth.CookieName, logger),
		Limiter:  middleware.NewRateLimiter(logger, cfg.Search.RateLimit, cfg.Search.RateBurst, limiterIdleTTL),
	}, nil
}

// Setup installs the session guard and mounts every route.
func Setup(r *gin.Engine, app *App, logger *zap.Logger) {
	r.Use(middleware.Session(app.Sessions, logger))
	r.Use(middleware.Protect())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	app.Handlers.Pages.RegisterRoutes(r)
	app.Handlers.Auth.RegisterRoutes(r)

	api := r.Group("/api")
	app.Handlers.Itineraries.RegisterRoutes(api)
	app.Handlers.Search.RegisterRoutes(api, app.Limiter.Middleware())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.ErrorResponse{Error: "Not found"})
	})
}
