// Package api exposes the services over HTTP with echo.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/thenoetrevino/tablero/internal/billing"
	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/limits"
	"github.com/thenoetrevino/tablero/internal/services/board"
	"github.com/thenoetrevino/tablero/internal/services/card"
	"github.com/thenoetrevino/tablero/internal/services/column"
	"github.com/thenoetrevino/tablero/internal/services/label"
	"github.com/thenoetrevino/tablero/internal/services/org"
)

// Services are the domain services the API serves
type Services struct {
	Orgs    org.Service
	Boards  board.Service
	Columns column.Service
	Cards   card.Service
	Labels  label.Service
	Billing *billing.Syncer
}

// Server is the HTTP API
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	echo   *echo.Echo
}

// NewServer builds the echo instance, its middleware and every route
func NewServer(cfg *config.Config, svcs Services, rates limits.RateStore, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newValidator()
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
	}))
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	if cfg.Server.RequestTimeout > 0 {
		e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
			Timeout: cfg.Server.RequestTimeout,
		}))
	}

	s := &Server{cfg: cfg, logger: logger, echo: e}
	s.setupRoutes(svcs, rates)
	return s
}

// Start listens on the configured address until Shutdown
func (s *Server) Start() error {
	addr := s.cfg.Server.Addr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP lets tests drive the server without a listener
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) setupRoutes(svcs Services, rates limits.RateStore) {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	wh := &webhookHandler{syncer: svcs.Billing, secret: s.cfg.Billing.StripeWebhookSecret, logger: s.logger}
	s.echo.POST("/webhooks/stripe", wh.handle)

	h := &handlers{svcs: svcs}
	v1 := s.echo.Group("/api/v1",
		principal(PrincipalConfig{Secret: s.cfg.Auth.JWTSecret, Issuer: s.cfg.Auth.Issuer, Logger: s.logger}),
		rateLimit(rates, s.cfg.RateLimit),
	)

	orgs := v1.Group("/orgs")
	orgs.GET("", h.listOrgs)
	orgs.POST("", h.createOrg)
	orgs.GET("/:org/members", h.listMembers)
	orgs.POST("/:org/members", h.addMember)
	orgs.DELETE("/:org/members/:user", h.removeMember)
	orgs.GET("/:org/boards", h.listBoards)
	orgs.POST("/:org/boards", h.createBoard)
	orgs.GET("/:org/quota/:resource", h.quota)

	boards := v1.Group("/boards/:board")
	boards.GET("", h.boardView)
	boards.PATCH("", h.renameBoard)
	boards.DELETE("", h.deleteBoard)
	boards.POST("/columns", h.createColumn)
	boards.PUT("/columns/order", h.reorderColumns)
	boards.POST("/cards/moves", h.moveCards)
	boards.GET("/labels", h.listLabels)
	boards.POST("/labels", h.createLabel)

	columns := v1.Group("/columns/:column")
	columns.PATCH("", h.renameColumn)
	columns.DELETE("", h.deleteColumn)
	columns.POST("/move", h.moveColumn)
	columns.GET("/cards", h.listCards)
	columns.POST("/cards", h.createCard)
	columns.PUT("/cards/order", h.reorderCards)

	cards := v1.Group("/cards/:card")
	cards.GET("", h.getCard)
	cards.PATCH("", h.updateCard)
	cards.DELETE("", h.deleteCard)
	cards.POST("/move", h.moveCard)
	cards.PUT("/labels/:label", h.attachLabel)
	cards.DELETE("/labels/:label", h.detachLabel)

	v1.DELETE("/labels/:label", h.deleteLabel)
}
