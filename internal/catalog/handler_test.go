package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func setupCatalogApp(t *testing.T) *fiber.App {
	t.Helper()
	cat, _ := seededCatalog()
	h := NewHandler(cat)
	app := fiber.New()
	app.Get("/services", h.Services)
	app.Get("/maids", h.Maids)
	return app
}

func getJSON[T any](t *testing.T, app *fiber.App, path string) T {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHandlerServices(t *testing.T) {
	app := setupCatalogApp(t)

	all := getJSON[struct{ Services []serviceResponse }](t, app, "/services")
	require.Len(t, all.Services, 3)

	cleaning := getJSON[struct{ Services []serviceResponse }](t, app, "/services?category=cleaning&active=true")
	require.Len(t, cleaning.Services, 1)
	require.Equal(t, "House Cleaning", cleaning.Services[0].Name)
	require.Equal(t, float64(199), cleaning.Services[0].Price)
	require.True(t, cleaning.Services[0].IsActive)
}

func TestHandlerMaids(t *testing.T) {
	app := setupCatalogApp(t)

	top := getJSON[struct{ Maids []maidResponse }](t, app, "/maids")
	require.Len(t, top.Maids, TopMaidsLimit)
	require.Equal(t, "Lakshmi", top.Maids[0].Name)
	for _, m := range top.Maids {
		require.True(t, m.Verified)
	}

	childcare := getJSON[struct{ Maids []maidResponse }](t, app, "/maids?category=childcare")
	require.Len(t, childcare.Maids, 1)
	require.Equal(t, "Sunita", childcare.Maids[0].Name)
	require.Equal(t, []string{"Babysitting"}, childcare.Maids[0].Skills)
}
