package middleware

import (
	"context"
	"net/http"
	"strings"

	"shopmart/internal/common"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AuthConfig selects how bearer tokens are verified: a JWKS endpoint when
// JWKSURL is set, a shared HMAC secret otherwise.
type AuthConfig struct {
	Secret  string
	JWKSURL string
}

// NewKeyfunc resolves the jwt key function for the config, fetching the
// JWKS when a URL is configured.
func NewKeyfunc(cfg AuthConfig) (jwt.Keyfunc, error) {
	if cfg.JWKSURL != "" {
		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{})
		if err != nil {
			return nil, err
		}
		return jwks.Keyfunc, nil
	}

	secret := []byte(cfg.Secret)
	return func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, nil
}

// JWTMiddleware validates the bearer token and puts the authenticated
// user id on the request context. Authentication itself (login, OTP,
// sessions) lives elsewhere; this layer only consumes the resulting token.
func JWTMiddleware(keyFunc jwt.Keyfunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format")
			}

			token, err := jwt.Parse(tokenString, keyFunc)
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
			}

			sub, err := claims.GetSubject()
			if err != nil || sub == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing subject")
			}

			userID, err := uuid.Parse(sub)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid subject")
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
