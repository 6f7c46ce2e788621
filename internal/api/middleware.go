package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/thenoetrevino/tablero/internal/authz"
	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/limits"
	"github.com/thenoetrevino/tablero/internal/types"
)

// PrincipalConfig configures bearer token verification
type PrincipalConfig struct {
	Secret string
	Issuer string
	Logger *zap.Logger
}

// principal verifies the HMAC-signed bearer token and stores its subject as
// the acting user of the request context
func principal(cfg PrincipalConfig) echo.MiddlewareFunc {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header required")
			}
			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format. Expected: Bearer <token>")
			}

			claims := &jwt.RegisteredClaims{}
			_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
				if cfg.Secret == "" {
					return nil, fmt.Errorf("no signing secret configured")
				}
				return []byte(cfg.Secret), nil
			})
			if err != nil {
				cfg.Logger.Warn("JWT validation failed", zap.Error(err), zap.String("path", path))
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}
			if claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token has no subject")
			}

			user := types.UserID(claims.Subject)
			c.SetRequest(c.Request().WithContext(authz.WithActor(c.Request().Context(), user)))
			c.Set("user_id", user)
			return next(c)
		}
	}
}

// rateLimit bounds requests per acting user through echo's limiter. It
// runs after principal.
func rateLimit(store limits.RateStore, cfg config.RateLimitConfig) echo.MiddlewareFunc {
	if store == nil || cfg.Requests <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return "user:" + authz.ActorFrom(c.Request().Context()).String(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, _ error) error {
			seconds := int(math.Ceil(store.RetryAfter(identifier).Seconds()))
			c.Response().Header().Set("Retry-After", strconv.Itoa(max(seconds, 1)))
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		},
	})
}

// requestLogger logs one line per request through zap
func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				logger.Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}
