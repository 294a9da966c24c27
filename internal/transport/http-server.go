package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/recipe-back/internal/config"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/db"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/models"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/service"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/storage"
)

const (
	userContextKey = "user"
	tokenScheme    = "Token"
)

type (
	CustomValidator struct {
		validator *models.Validator
	}

	// HTTPServer is the application context handed to every handler.
	HTTPServer struct {
		echo        *echo.Echo
		logger      *zap.SugaredLogger
		users       *service.Users
		tags        *service.Tags
		ingredients *service.Ingredients
		recipes     *service.Recipes
		mediaPrefix string
	}

	Deps struct {
		fx.In

		Config      *config.Config
		Logger      *zap.SugaredLogger
		Users       *service.Users
		Tags        *service.Tags
		Ingredients *service.Ingredients
		Recipes     *service.Recipes
		Storage     storage.Storage
	}
)

func NewHTTPServer(lc fx.Lifecycle, d Deps) *HTTPServer {
	instance := New(d)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				listen := d.Config.HTTPListen()
				if err := instance.echo.Start(listen); err != nil && err != http.ErrServerClosed {
					d.Logger.Fatalw("shutting down the server", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("Stopping HTTP server.")
			return instance.echo.Shutdown(ctx)
		},
	})

	return instance
}

// New builds the router without binding a listener.
func New(d Deps) *HTTPServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	instance := &HTTPServer{
		echo:        e,
		logger:      d.Logger,
		users:       d.Users,
		tags:        d.Tags,
		ingredients: d.Ingredients,
		recipes:     d.Recipes,
	}

	e.Validator = &CustomValidator{validator: models.NewValidator()}
	e.HTTPErrorHandler = instance.errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(instance.requestLogger())
	if d.Config.Debug {
		e.Use(middleware.BodyDump(instance.dumpBody))
	}
	if d.Config.RateLimit > 0 {
		e.Use(echo.WrapMiddleware(httprate.LimitByIP(d.Config.RateLimit, time.Minute)))
	}
	e.Use(instance.AuthMiddleware)

	if local, ok := d.Storage.(*storage.Local); ok && strings.HasPrefix(d.Config.MediaURL, "/") {
		instance.mediaPrefix = strings.TrimSuffix(d.Config.MediaURL, "/") + "/"
		e.Static(instance.mediaPrefix, local.Root())
	}

	userG := e.Group("/api/user")
	userG.POST("/create", instance.UserCreate)
	userG.POST("/token", instance.TokenCreate)
	userG.GET("/me", instance.MeGet)
	userG.PATCH("/me", instance.MeUpdate)

	recipeG := e.Group("/api/recipe")
	tagH := newCatalogHandler[db.Tag](d.Tags)
	recipeG.GET("/tags", tagH.List)
	recipeG.POST("/tags", tagH.Create)
	ingredientH := newCatalogHandler[db.Ingredient](d.Ingredients)
	recipeG.GET("/ingredients", ingredientH.List)
	recipeG.POST("/ingredients", ingredientH.Create)

	recipeG.GET("/recipes", instance.RecipeList)
	recipeG.POST("/recipes", instance.RecipeCreate)
	recipeG.GET("/recipes/:id", instance.RecipeGet)
	recipeG.PATCH("/recipes/:id", instance.RecipePatch)
	recipeG.PUT("/recipes/:id", instance.RecipeReplace)
	recipeG.DELETE("/recipes/:id", instance.RecipeDelete)
	recipeG.POST("/recipes/:id/upload-image", instance.RecipeUploadImage)

	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	return instance
}

func (s *HTTPServer) Handler() http.Handler {
	return s.echo
}

func (s *HTTPServer) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.isPublic(c) {
			return next(c)
		}

		token, ok := parseToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication credentials were not provided.")
		}
		user, err := s.users.Resolve(c.Request().Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token.")
			}
			return errors.Wrap(err, "resolve token")
		}

		c.Set(userContextKey, user)
		return next(c)
	}
}

func (s *HTTPServer) isPublic(c echo.Context) bool {
	switch c.Path() {
	// no route matched, let the router answer 404
	case "", "/api/user/create", "/api/user/token", "/ping":
		return true
	}
	return s.mediaPrefix != "" && strings.HasPrefix(c.Request().URL.Path, s.mediaPrefix)
}

// parseToken accepts "Token <value>" with a case-insensitive scheme.
func parseToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], tokenScheme) {
		return "", false
	}
	return parts[1], true
}

func (s *HTTPServer) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	var body interface{} = map[string]string{"detail": "A server error occurred."}

	var (
		verr *models.ValidationError
		herr *echo.HTTPError
	)
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		body = verr.Fields
	case service.IsLoginFailure(err):
		status = http.StatusUnauthorized
		body = map[string][]string{models.NonFieldErrors: {models.MsgBadCredential}}
	case errors.Is(err, service.ErrUnauthenticated):
		status = http.StatusUnauthorized
		body = map[string]string{"detail": "Invalid token."}
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
		body = map[string]string{"detail": "Not found."}
	case errors.As(err, &herr):
		status = herr.Code
		msg, ok := herr.Message.(string)
		if !ok {
			msg = http.StatusText(status)
		}
		body = map[string]string{"detail": msg}
	default:
		s.logger.Errorw("request failed", "method", c.Request().Method, "path", c.Request().URL.Path, "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		s.logger.Errorw("write error response", "error", err)
	}
}

func (s *HTTPServer) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Infow("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			)
			return nil
		},
	})
}

func (s *HTTPServer) dumpBody(c echo.Context, reqBody, resBody []byte) {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		reqBody = []byte("$multipart")
	}
	s.logger.Debugw("body",
		"path", c.Path(),
		"request", string(censorBody(reqBody)),
		"response", string(censorBody(resBody)),
	)
}

// censorBody masks password and token values in a JSON object body. Anything
// that is not a JSON object comes back unchanged.
func censorBody(b []byte) []byte {
	fields := map[string]interface{}{}
	if err := json.Unmarshal(b, &fields); err != nil {
		return b
	}
	censored := false
	for _, key := range []string{"password", "token"} {
		if _, ok := fields[key]; ok {
			fields[key] = "$censored"
			censored = true
		}
	}
	if !censored {
		return b
	}
	out, err := json.Marshal(fields)
	if err != nil {
		return b
	}
	return out
}

////////

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Validate(i)
}

func BindAndValidate(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		var herr *echo.HTTPError
		if errors.As(err, &herr) {
			if msg, ok := herr.Message.(string); ok {
				return echo.NewHTTPError(http.StatusBadRequest, msg)
			}
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.Validate(v)
}

func GetUserFromContext(c echo.Context) (*db.User, error) {
	user, ok := c.Get(userContextKey).(*db.User)
	if !ok || user == nil {
		return nil, errors.New("no user found in context")
	}
	return user, nil
}

func GetAndParseParam(c echo.Context, name string) (uint64, error) {
	value := c.Param(name)
	if value == "" {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid path param '"+name+"'")
	}
	vv, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		// ids are numeric, anything else cannot exist
		return 0, service.ErrNotFound
	}
	return vv, nil
}

// ParseIDList splits a comma-separated query value like "1,2,3".
func ParseIDList(value string) ([]uint64, bool) {
	if value == "" {
		return nil, true
	}
	parts := strings.Split(value, ",")
	ids := make([]uint64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
