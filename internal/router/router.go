package router

import (
	"log/slog"
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/bytes"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"recipes/internal/config"
	"recipes/internal/errors"
	"recipes/internal/handler"
	"recipes/internal/logger"
	"recipes/internal/model"
	"recipes/internal/serializer"
	"recipes/internal/service"
)

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	Users       *handler.UserHandler
	Auth        *handler.AuthHandler
	Tags        *handler.LabelHandler[model.Tag]
	Ingredients *handler.LabelHandler[model.Ingredient]
	Recipes     *handler.RecipeHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, log *slog.Logger, authService service.AuthService, h Handlers) {
	e.Use(middleware.RequestID())
	e.Use(logger.RequestLogger(log))
	e.Use(middleware.Recover())
	if cfg.MaxUploadBytes > 0 {
		// leave room for multipart framing around the file itself
		e.Use(middleware.BodyLimit(bytes.Format(cfg.MaxUploadBytes + 1<<20)))
	}

	e.Validator = NewCustomValidator()
	e.HTTPErrorHandler = ErrorHandler(e)

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if strings.HasPrefix(cfg.MediaURL, "/") {
		e.Static(strings.TrimSuffix(cfg.MediaURL, "/"), cfg.MediaRoot)
	}

	api := e.Group("/api")

	// Public routes
	var throttle []echo.MiddlewareFunc
	if cfg.AuthRateLimit > 0 {
		throttle = append(throttle, middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.AuthRateLimit))))
	}
	api.POST("/users/create", h.Users.Create, throttle...)
	api.POST("/users/token", h.Auth.Token, throttle...)

	// Secured routes
	secured := api.Group("", Authenticate(authService))

	secured.POST("/users/token/revoke", h.Auth.Revoke)
	secured.GET("/users/me", h.Users.Me)
	secured.PUT("/users/me", h.Users.UpdateMe)
	secured.PATCH("/users/me", h.Users.UpdateMe)
	secured.POST("/users/me", handler.MethodNotAllowed)

	recipe := secured.Group("/recipe")
	mountLabels(recipe.Group("/tags"), h.Tags)
	mountLabels(recipe.Group("/ingredients"), h.Ingredients)

	recipes := recipe.Group("/recipes")
	recipes.GET("", h.Recipes.List)
	recipes.POST("", h.Recipes.Create)
	recipes.GET("/:id", h.Recipes.Retrieve)
	recipes.PUT("/:id", h.Recipes.Update)
	recipes.PATCH("/:id", h.Recipes.Update)
	recipes.DELETE("/:id", h.Recipes.Delete)
	recipes.POST("/:id/upload-image", h.Recipes.UploadImage)
}

// labelRoutes is satisfied by every LabelHandler instantiation.
type labelRoutes interface {
	List(echo.Context) error
	Create(echo.Context) error
	Update(echo.Context) error
	Delete(echo.Context) error
}

func mountLabels(g *echo.Group, h labelRoutes) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// Authenticate resolves the request token to an active user. Both the
// "Token <key>" and "Bearer <key>" authorization schemes are accepted.
func Authenticate(authService service.AuthService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  handler.ClaimsKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Token ,header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			user, claims, err := authService.Authenticate(c.Request().Context(), token)
			if err != nil {
				return nil, err
			}
			c.Set(handler.UserKey, user)
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			httpErr := errors.MapErrorToHTTP(errors.ErrUnauthenticated)
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		},
	})
}

// ErrorHandler renders every error as an ErrorResponse.
func ErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		he, ok := err.(*echo.HTTPError)
		if !ok {
			httpErr := errors.MapErrorToHTTP(err)
			he = echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
		}
		if msg, ok := he.Message.(string); ok {
			he = echo.NewHTTPError(he.Code, errors.ErrorResponse{
				Error: msg,
				Code:  http.StatusText(he.Code),
			})
		}
		e.DefaultHTTPErrorHandler(he, c)
	}
}

// CustomValidator wraps the shared payload validator for Echo.
type CustomValidator struct{}

// NewCustomValidator creates the validator installed on the echo instance.
func NewCustomValidator() *CustomValidator {
	return &CustomValidator{}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return serializer.Validate(i)
}
