package server

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/homehelp/homehelp/internal/config"
	"github.com/homehelp/homehelp/internal/logging"
)

func TestErrorsRenderAsJSON(t *testing.T) {
	srv, err := New(config.Config{
		AppName: "HomeHelp", AppEnv: "test", JWTSecret: "secret", SessionTTL: time.Hour, OTPMode: config.OTPModeStatic,
	}, nil, nil, logging.Discard(), Options{})
	require.NoError(t, err)

	resp, err := srv.App().Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/addresses", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Contains(t, body["error"], "X-Device-ID")
}
