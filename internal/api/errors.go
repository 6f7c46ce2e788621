package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/thenoetrevino/tablero/internal/apperr"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Hint  string `json:"hint,omitempty"`
}

// errorHandler renders service errors with apperr and echo's own errors
// with their status
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := render(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("path", c.Request().URL.Path),
				zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Warn("failed to write error response", zap.Error(err))
		}
	}
}

func render(err error) (int, ErrorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, ErrorResponse{
			Error: fmt.Sprint(he.Message),
			Code:  strings.ToUpper(strings.ReplaceAll(http.StatusText(he.Code), " ", "_")),
		}
	}

	kind := apperr.Classify(err)
	return kind.Status(), ErrorResponse{
		Error: apperr.Message(err),
		Code:  kind.Code(),
		Hint:  kind.Hint(),
	}
}
