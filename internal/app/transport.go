package app

import (
	stdlog "log"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	timeserver_middleware "github.com/ton-connect/timeserver/internal/middleware"
	"github.com/ton-connect/timeserver/internal/utils"
	"golang.org/x/time/rate"
)

type HTTPOptions struct {
	Endpoint         string
	RPSLimit         int
	ConnectionsLimit int
	BypassTokens     []string
	CorsEnable       bool
	Extractor        *utils.RealIPExtractor
}

// NewStreamableHandler exposes the tool server over stateless streamable HTTP.
func NewStreamableHandler(s *server.MCPServer, endpoint string) http.Handler {
	return server.NewStreamableHTTPServer(s,
		server.WithStateLess(true),
		server.WithEndpointPath(endpoint),
	)
}

// NewHTTPServer mounts handler on opts.Endpoint behind the rate and
// connection limits. Other routes are not limited.
func NewHTTPServer(handler http.Handler, opts HTTPOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = utils.SonicJSONSerializer{}

	skipLimits := func(c echo.Context) bool {
		return SkipRateLimitsByToken(c.Request(), opts.BypassTokens) || c.Path() != opts.Endpoint
	}

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		Skipper:           nil,
		DisableStackAll:   true,
		DisablePrintStack: false,
	}))
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(LogrusLoggerMiddleware())
	e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: skipLimits,
		Store:   middleware.NewRateLimiterMemoryStore(rate.Limit(opts.RPSLimit)),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return opts.Extractor.Extract(c.Request()), nil
		},
	}))
	e.Use(ConnectionsLimitMiddleware(timeserver_middleware.NewConnectionLimiter(opts.ConnectionsLimit, opts.Extractor), skipLimits))

	if opts.CorsEnable {
		corsConfig := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     []string{"*"},
			AllowMethods:     []string{echo.GET, echo.POST, echo.DELETE, echo.OPTIONS},
			AllowHeaders:     []string{"Content-Type", "Accept", "Authorization", "Mcp-Session-Id", "Mcp-Protocol-Version"},
			ExposeHeaders:    []string{"Mcp-Session-Id"},
			AllowCredentials: true,
			MaxAge:           86400,
		})
		e.Use(corsConfig)
	}

	e.Any(opts.Endpoint, echo.WrapHandler(handler))

	return e
}

// ServeStdio serves the tool server on stdin/stdout until EOF or a
// termination signal. Errors are routed through logrus, which writes to
// stderr.
func ServeStdio(s *server.MCPServer) error {
	errorLogger := stdlog.New(logrus.StandardLogger().WriterLevel(logrus.ErrorLevel), "", 0)
	return server.ServeStdio(s, server.WithErrorLogger(errorLogger))
}
