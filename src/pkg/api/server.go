/*
Package api serves the name and price engines over HTTP.

	GET  /healthz
	POST /v1/names/correct     {"text": "..."} or {"texts": ["...", ...]}
	POST /v1/prices/parse      {"retailer": "billa", "text": "...", "role": "item_price"}
	GET  /v1/prices/retailers
	POST /v1/runs              {"filename": "...", "shop_name": "..."}

Everything under /v1 needs the bearer token.
*/
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	echomw "pricetag-ocr/src/pkg/echo-middleware"
	"pricetag-ocr/src/pkg/names"
	"pricetag-ocr/src/pkg/prices"
)

type NameCorrector interface {
	Correct(raw string) names.Correction
}

type RunEnqueuer interface {
	EnqueueRun(ctx context.Context, filename string, shopName string) (string, *xerr.Error)
}

// Dependencies of the API. Runs may be nil, in which case /v1/runs answers 503.
type Dependencies struct {
	Names  NameCorrector
	Prices *prices.Registry
	Runs   RunEnqueuer
	Token  string
}

type Server struct {
	echo *echo.Echo
	deps Dependencies
	cfg  echomw.Config
}

func NewServer(cfg echomw.Config, deps Dependencies) *Server {
	if deps.Prices == nil {
		deps.Prices = prices.Default()
	}
	s := &Server{echo: echo.New(), deps: deps, cfg: cfg}
	s.echo.HideBanner = true
	s.echo.HidePort = true

	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.BodyLimit(cfg.BodyLimit))
	s.echo.Use(echomw.RouteAccessLoggerMiddleware)
	s.echo.Use(echomw.NewIPRateLimiter(cfg.MiddlewareRateLimit, cfg.MiddlewareBurst).Middleware)

	s.echo.GET("/healthz", s.health)

	v1 := s.echo.Group("/v1", echomw.RequireBearerToken(deps.Token))
	v1.POST("/names/correct", s.correctNames)
	v1.POST("/prices/parse", s.parsePrice)
	v1.GET("/prices/retailers", s.listRetailers)
	v1.POST("/runs", s.startRun)
	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) (e *xerr.Error) {
	address := s.cfg.ListenAddress()
	errs := make(chan error, 1)
	go func() {
		tl.Log(tl.Notice, palette.BlueBold, "%s API on '%s'", "Serving", address)
		errs <- s.echo.Start(address)
	}()

	select {
	case err := <-errs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return xerr.NewError(err, "start API server", address)
		}
		return nil
	case <-ctx.Done():
	}

	tl.Log(tl.Notice, palette.Blue, "%s API on '%s'", "Shutting down", address)
	if err := s.echo.Shutdown(context.Background()); err != nil {
		return xerr.NewError(err, "shut down API server", address)
	}
	tl.Log(tl.Notice1, palette.GreenBold, "%s API", "Stopped")
	return nil
}

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}
