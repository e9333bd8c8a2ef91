package echomw

import (
	"time"

	"github.com/labstack/echo/v4"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

// quietPaths are polled by orchestration and logged at verbose level only.
var quietPaths = map[string]bool{"/healthz": true}

func RouteAccessLoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		LogRouteAccess(c, tl.Info, "Accessing route", palette.Blue)

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		status := c.Response().Status
		level, colorizer := tl.Info1, palette.Green
		if status >= 500 {
			level, colorizer = tl.Warning, palette.Red
		} else if status >= 400 {
			level, colorizer = tl.Info1, palette.Yellow
		}
		if quietPaths[c.Path()] {
			level, colorizer = tl.Verbose, palette.CyanDim
		}
		tl.Log(
			level, colorizer, "%s: Method='%s', Path='%s', Status='%s', Latency='%s'",
			"Route accessed", c.Request().Method, c.Path(), status, time.Since(start).Round(time.Microsecond),
		)
		return nil
	}
}

func LogRouteAccess(c echo.Context, logLevel tl.LogLevel, actionName string, colorizer palette.Colorizer) {
	if quietPaths[c.Path()] {
		logLevel, colorizer = tl.Verbose, palette.CyanDim
	}
	tl.Log(logLevel, colorizer, "%s: Method='%s', Path='%s', ClientIP='%s'", actionName, c.Request().Method, c.Path(), c.RealIP())
}
