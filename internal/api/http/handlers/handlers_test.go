package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/estatehub/estate-service/pkg/util/errorutil"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthReady(t *testing.T) {
	tests := []struct {
		name     string
		postgres error
		redis    Pinger
		status   int
	}{
		{name: "all up", redis: stubPinger{}, status: http.StatusOK},
		{name: "no redis configured", status: http.StatusOK},
		{name: "redis down degrades", redis: stubPinger{err: errors.New("refused")}, status: http.StatusOK},
		{name: "postgres down", postgres: errors.New("refused"), redis: stubPinger{}, status: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler("estate-service", "test", stubPinger{err: tt.postgres}, tt.redis)
			app := fiber.New()
			app.Get("/ready", h.Ready)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ready", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestParsePage(t *testing.T) {
	app := fiber.New()
	var got page
	app.Get("/", func(c *fiber.Ctx) error {
		got = parsePage(c)
		return nil
	})

	cases := map[string]page{
		"/":                        {Number: 1, Size: defaultPageSize},
		"/?page=3&pageSize=10":     {Number: 3, Size: 10},
		"/?page=2&page_size=5":     {Number: 2, Size: 5},
		"/?page=-1&pageSize=99999": {Number: 1, Size: maxPageSize},
	}
	for target, want := range cases {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		require.NoError(t, err)
		assert.Equal(t, want, got, target)
	}
	assert.Equal(t, 10, page{Number: 2, Size: 10}.Offset())
}

func TestResourceID(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Get("/things/:id", func(c *fiber.Ctx) error {
		id, err := resourceID(c, "thing")
		if err != nil {
			return err
		}
		return c.SendString(id)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/things/8d2f6c1e-8f6b-4f7e-9b38-1f3c6e9b2a10", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/things/42", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestParseHelpers(t *testing.T) {
	assert.Nil(t, parseBool(""))
	assert.Nil(t, parseBool("maybe"))
	require.NotNil(t, parseBool("true"))
	assert.True(t, *parseBool("true"))

	assert.Nil(t, parseTime("yesterday"))
	require.NotNil(t, parseTime("2024-05-01"))
	require.NotNil(t, parseTime("2024-05-01T10:00:00Z"))

	assert.Nil(t, parseFloat("abc"))
	assert.Equal(t, 12.5, *parseFloat("12.5"))
	assert.Nil(t, optionalString("   "))
	assert.Equal(t, "x", *optionalString(" x "))
}
