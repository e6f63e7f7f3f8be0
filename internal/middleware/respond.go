package middleware

import (
	"inventory-service/internal/apperr"

	"github.com/labstack/echo/v4"
)

// reject ends the request with the status and message err maps to.
func reject(c echo.Context, err error) error {
	return c.JSON(apperr.HTTPStatus(err), echo.Map{
		"error": apperr.Message(err),
		"code":  apperr.Code(err),
	})
}
