package handler

import (
	"context"
	"net/http"
	"time"

	"weather_gateway/internal/auth"
	"weather_gateway/internal/config"
	"weather_gateway/internal/exchange"
	"weather_gateway/internal/middleware"
	"weather_gateway/internal/observability"
	"weather_gateway/internal/user"
	"weather_gateway/internal/weather"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const healthTimeout = 2 * time.Second

// Dependencies are the long-lived collaborators built by main.
type Dependencies struct {
	Users           user.UserRepositoryInterface
	WeatherLogs     weather.LogRepositoryInterface
	WeatherProvider weather.Provider
	Recorder        weather.QueryRecorder
	Rates           exchange.RateGetter
	Tokens          *auth.TokenManager
	Metrics         *observability.Metrics
	Gatherer        prometheus.Gatherer

	// HealthChecks are run by /health, keyed by component name.
	HealthChecks map[string]func(ctx context.Context) error
}

// SetupHandler initializes services, controllers and routes
func SetupHandler(cfg *config.Config, deps *Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	if deps.Metrics != nil {
		r.Use(middleware.PrometheusMiddleware(deps.Metrics))
	}

	// Initialize services
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	userService := user.NewUserService(deps.Users, hasher, deps.Tokens, deps.Metrics)
	weatherService := weather.NewWeatherService(deps.WeatherProvider, deps.WeatherLogs, deps.Recorder)
	countries := exchange.NewCountryTable(cfg.Exchange.Countries)

	// Initialize controllers
	userController := user.NewUserController(userService)
	weatherController := weather.NewWeatherController(weatherService)
	exchangeController := exchange.NewExchangeController(deps.Rates, countries)

	// Setup routes
	setupRoutes(r, deps, userController, weatherController, exchangeController)

	return r
}

// setupRoutes configures all application routes
func setupRoutes(
	r *gin.Engine,
	deps *Dependencies,
	userCtrl *user.UserController,
	weatherCtrl *weather.WeatherController,
	exchangeCtrl *exchange.ExchangeController,
) {
	r.GET("/health", healthHandler(deps.HealthChecks))

	if deps.Gatherer != nil {
		// Expose /metrics endpoint for Prometheus to scrape
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// Public routes - Authentication
	public := r.Group("/api")
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Protected routes
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(deps.Tokens, deps.Metrics))
	{
		api.GET("/me", userCtrl.Me)

		// Live data
		api.GET("/weather", weatherCtrl.GetCurrent)
		api.GET("/air-quality", weatherCtrl.GetAirQuality)
		api.GET("/exchange-rate", exchangeCtrl.GetRates)
		api.GET("/exchange-rate/currencies", exchangeCtrl.ListCurrencies)

		// Weather logs
		api.POST("/weather", weatherCtrl.CreateLog)
		api.GET("/weather/logs", weatherCtrl.ListLogs)
		api.GET("/weather/:city", weatherCtrl.LogsByCity)
		api.PUT("/weather/:id", weatherCtrl.UpdateLog)
		api.DELETE("/weather/:id", weatherCtrl.DeleteLog)
	}
}

func healthHandler(checks map[string]func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		status := http.StatusOK
		components := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				components[name] = "down"
				continue
			}
			components[name] = "up"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		c.JSON(status, gin.H{
			"status":     overall,
			"components": components,
		})
	}
}
