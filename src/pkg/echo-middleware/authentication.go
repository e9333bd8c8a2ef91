// Package echomw provides the Echo middlewares of the pricetag API.
package echomw

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

const (
	// EnvAPIBearerToken holds the token clients must send on /v1 routes.
	EnvAPIBearerToken = "PRICETAG_API_BEARER_TOKEN"

	authRealm = "pricetag-api"
)

func TokenFromEnv() string {
	return strings.TrimSpace(os.Getenv(EnvAPIBearerToken))
}

/*
RequireBearerToken accepts requests carrying "Authorization: Bearer <token>".

The scheme is matched case-insensitively and tokens are compared in constant
time. An empty expected token rejects every request.
*/
func RequireBearerToken(expected string) echo.MiddlewareFunc {
	expected = strings.TrimSpace(expected)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if expected == "" {
				return unauthorized(c, "API token is not configured")
			}
			received, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return unauthorized(c, "missing bearer token")
			}
			if subtle.ConstantTimeCompare([]byte(received), []byte(expected)) != 1 {
				return unauthorized(c, "invalid bearer token")
			}
			return next(c)
		}
	}
}

func bearerToken(header string) (token string, ok bool) {
	const scheme = "bearer "
	header = strings.TrimSpace(header)
	if len(header) < len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return "", false
	}
	token = strings.TrimSpace(header[len(scheme):])
	return token, token != ""
}

func unauthorized(c echo.Context, reason string) error {
	LogRouteAccess(c, tl.Info, "Unauthorized access attempt ("+reason+")", palette.Yellow)

	c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="`+authRealm+`"`)
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
}
