package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/client"
	"stockroom/internal/config"
	"stockroom/internal/domain"
	"stockroom/internal/http/handlers"
)

type dashEnv struct {
	app *fiber.App
	api *client.Client
}

func newDashEnv(t *testing.T) *dashEnv {
	t.Helper()
	e := newEnv(t, nil)
	srv := httptest.NewServer(adaptor.FiberApp(e.app))
	t.Cleanup(srv.Close)

	cfg := config.Defaults()
	cfg.APIBaseURL = srv.URL
	api := client.New(srv.URL, "")
	return &dashEnv{app: handlers.NewDashboardApp(cfg, api, "../../web/templates"), api: api}
}

func (d *dashEnv) get(t *testing.T, target string) (*http.Response, string) {
	t.Helper()
	resp, err := d.app.Test(httptest.NewRequest("GET", target, nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func csrfCookie(t *testing.T, resp *http.Response) string {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == "csrf_" {
			return c.Value
		}
	}
	t.Fatal("csrf token missing")
	return ""
}

func withCSRF(req *http.Request, tok string) *http.Request {
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: tok})
	return req
}

func TestDashboardFlow(t *testing.T) {
	d := newDashEnv(t)

	resp, body := d.get(t, "/")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)
	assert.Contains(t, body, "Inventory overview")
	assert.Contains(t, body, "No products found.")
	tok := csrfCookie(t, resp)

	form := url.Values{"name": {"Electronics"}, "csrf": {tok}}
	req := httptest.NewRequest("POST", "/categories", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := d.app.Test(withCSRF(req, tok), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)

	cats, err := d.api.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 1)

	fields := productFields(cats[0].ID, "Headphones", "49.99", "3")
	fields["csrf"] = tok
	resp, err = d.app.Test(withCSRF(formReq(t, "POST", "/products", fields, png("hp.png")), tok), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)

	_, body = d.get(t, "/")
	assert.Contains(t, body, "Headphones")
	assert.Contains(t, body, "Low")
	assert.Contains(t, body, "$149.97")

	ps, err := d.api.ListProducts(context.Background(), domain.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, ps, 1)

	_, body = d.get(t, "/?edit=1")
	assert.Contains(t, body, "Edit Headphones")

	_, body = d.get(t, "/?q=chair")
	assert.Contains(t, body, "No products found.")

	fields["quantity"] = "12"
	resp, err = d.app.Test(withCSRF(formReq(t, "POST", "/products/1", fields, nil), tok), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	p, err := d.api.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 12, p.Quantity)
	assert.Equal(t, ps[0].Image, p.Image)

	form = url.Values{"csrf": {tok}}
	req = httptest.NewRequest("POST", "/products/1/delete", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err = d.app.Test(withCSRF(req, tok), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)

	_, err = d.api.GetProduct(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDashboardSaveShowsAPIMessage(t *testing.T) {
	d := newDashEnv(t)
	resp, _ := d.get(t, "/")
	tok := csrfCookie(t, resp)

	fields := map[string]string{"name": "Loose", "price": "1", "quantity": "1", "csrf": tok}
	resp, err := d.app.Test(withCSRF(formReq(t, "POST", "/products", fields, png("l.png")), tok), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Category is required.")
	assert.Contains(t, string(body), "Add Product")
}

func TestDashboardRequiresCSRF(t *testing.T) {
	d := newDashEnv(t)
	form := url.Values{"name": {"Electronics"}}
	req := httptest.NewRequest("POST", "/categories", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := d.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestDashboardAPIDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	app := handlers.NewDashboardApp(config.Defaults(), client.New(srv.URL, ""), "../../web/templates")

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Failed to load products")
}
