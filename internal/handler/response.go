package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"inventory-service/internal/apperr"
	"inventory-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// respondError writes the error response err maps to. Client errors are
// logged at warn level, everything else at error level.
func respondError(c echo.Context, err error, msg string) error {
	log := logger.FromEcho(c)
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error(msg, zap.Error(err))
	} else {
		log.Warn(msg, zap.String("code", apperr.Code(err)), zap.Error(err))
	}

	return c.JSON(status, echo.Map{
		"error": apperr.Message(err),
		"code":  apperr.Code(err),
	})
}

// paramID parses the numeric :id path parameter.
func paramID(c echo.Context) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: id %q", apperr.ErrInvalidInput, raw)
	}
	return uint(id), nil
}

func invalidRequest(err error) error {
	return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
}

// ErrorHandler renders errors returned by handlers and middleware in the
// same shape as handler responses.
func ErrorHandler(c echo.Context, err error) error {
	if c.Response().Committed {
		return nil
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			logger.FromEcho(c).Warn("HTTP error", zap.Int("status", he.Code), zap.Error(he.Internal))
		}
		return c.JSON(he.Code, echo.Map{
			"error": fmt.Sprint(he.Message),
			"code":  httpErrorCode(he.Code),
		})
	}
	return respondError(c, err, "Request failed")
}

// httpErrorCode names errors raised by echo itself, such as unknown routes,
// after their status: 404 becomes "not_found".
func httpErrorCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "internal"
	}
	return strings.ToLower(strings.ReplaceAll(text, " ", "_"))
}

// HTTPErrorHandler adapts ErrorHandler to echo.
func HTTPErrorHandler(err error, c echo.Context) {
	if herr := ErrorHandler(c, err); herr != nil {
		logger.FromEcho(c).Error("Failed to write error response", zap.Error(herr))
	}
}
