package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/thenoetrevino/tablero/internal/billing"
)

type webhookHandler struct {
	syncer *billing.Syncer
	secret string
	logger *zap.Logger
}

// handle verifies a Stripe webhook and applies it. Events that cannot be tied
// to an organization are acknowledged so Stripe stops retrying them.
func (h *webhookHandler) handle(c echo.Context) error {
	if h.syncer == nil || h.secret == "" {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "billing is not configured")
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Error reading request body")
	}

	event, err := billing.ParseWebhook(body, c.Request().Header.Get("Stripe-Signature"), h.secret)
	if err != nil {
		h.logger.Warn("Webhook signature verification failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "Webhook signature verification failed")
	}

	if err := h.syncer.HandleEvent(c.Request().Context(), event); err != nil {
		if !errors.Is(err, billing.ErrUnknownOrganization) {
			return err
		}
		h.logger.Warn("webhook event skipped",
			zap.String("type", string(event.Type)),
			zap.String("id", event.ID),
			zap.Error(err))
	}
	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
