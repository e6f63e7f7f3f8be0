package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext_FallsBackToGlobal(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}

func TestWithContext(t *testing.T) {
	l := zap.NewExample()
	assert.Same(t, l, FromContext(WithContext(context.Background(), l)))
}

func TestInitLogger(t *testing.T) {
	prev := GetLogger()
	t.Cleanup(func() { log = prev })

	require.NoError(t, InitLogger(&LogConfig{Level: "debug", Environment: "production", ServiceName: "test"}))
	assert.True(t, GetLogger().Core().Enabled(zap.DebugLevel))
}

func TestMiddleware_LogsStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			SetEcho(c, zap.New(core))
			return next(c)
		}
	})
	e.Use(Middleware())
	e.GET("/missing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, 1, logs.FilterMessage("HTTP Request").Len())
	entry := logs.FilterMessage("HTTP Request").All()[0]
	assert.Equal(t, int64(http.StatusNotFound), entry.ContextMap()["status"])
}
