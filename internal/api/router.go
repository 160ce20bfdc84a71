package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/eventhub/events-api/docs"
	"github.com/eventhub/events-api/internal/api/handler"
	"github.com/eventhub/events-api/internal/api/middleware"
	"github.com/eventhub/events-api/internal/core/domain"
	"github.com/eventhub/events-api/internal/core/ports"
	"github.com/eventhub/events-api/internal/infrastructure/http/handlers"
)

const (
	defaultLoginRate  = 20
	loginLimiterTTL   = 3 * time.Minute
	defaultBodyLimit  = 5 << 20
	formOverheadBytes = 1 << 20
)

// Dependencies carries everything the router mounts.
type Dependencies struct {
	Log       zerolog.Logger
	JWTSecret string
	// Users resolves the subject of a bearer token.
	Users middleware.UserFinder

	Auth       ports.AuthService
	Events     ports.EventService
	Attendance ports.AttendanceService
	UserSvc    ports.UserService
	Images     ports.ImageService
	Readiness  *handlers.ReadinessHandler

	// LoginRatePerMinute caps login attempts per client IP.
	LoginRatePerMinute int
	// MaxUploadBytes sizes the request body limit.
	MaxUploadBytes int64
	// MetricsRegisterer defaults to the global Prometheus registry.
	MetricsRegisterer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	registerer := deps.MetricsRegisterer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	maxUpload := deps.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultBodyLimit
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.BodyLimit(strconv.FormatInt(maxUpload+formOverheadBytes, 10)))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	authMW := middleware.Auth(deps.JWTSecret, deps.Users)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Ops ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	if deps.Readiness != nil {
		e.GET("/health/ready", deps.Readiness.Readiness)
	}
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Users ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.UserSvc)

	users := e.Group("/users")
	users.GET("", userHandler.List)
	users.GET("/favorites", userHandler.Favorites, authMW)
	users.GET("/:id", userHandler.Get)
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login, loginLimiter(deps.LoginRatePerMinute))
	users.PUT("", userHandler.UpdateEmail, authMW)
	users.PUT("/:id", userHandler.UpdateEmail, authMW)
	users.PATCH("/favorites/:eventId", userHandler.ToggleFavorite, authMW)

	// --- Events ---
	eventHandler := handler.NewEventHandler(deps.Events)

	events := e.Group("/events")
	events.GET("", eventHandler.List)
	events.GET("/:id", eventHandler.Get)
	events.GET("/search/title/:title", eventHandler.SearchByTitle)
	events.GET("/search/date/:date", eventHandler.SearchByDate)
	events.POST("/create", eventHandler.Create, authMW)
	events.PUT("/:id", eventHandler.Update, authMW)
	events.DELETE("/:id", eventHandler.Delete, authMW)

	// --- Attendees ---
	attendeeHandler := handler.NewAttendeeHandler(deps.Attendance)

	attendees := e.Group("/attendees")
	attendees.GET("/:eventId", attendeeHandler.ListForEvent)
	attendees.GET("/user/:userId", attendeeHandler.ListForUser)
	attendees.POST("/:eventId", attendeeHandler.Register, authMW)
	attendees.DELETE("/event/:eventId", attendeeHandler.Cancel, authMW)
	attendees.POST("/:eventId/reconcile", attendeeHandler.Reconcile, authMW, adminOnly)

	// --- Uploads ---
	e.POST("/upload", handler.NewUploadHandler(deps.Images).Upload, authMW)

	return e
}

// requestLogger feeds echo's access log into zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

// loginLimiter throttles login attempts per client IP with a token bucket.
func loginLimiter(perMinute int) echo.MiddlewareFunc {
	if perMinute <= 0 {
		perMinute = defaultLoginRate
	}
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60),
		Burst:     perMinute,
		ExpiresIn: loginLimiterTTL,
	})
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many login attempts, please try again later")
		},
	})
}
