package handlers_test

import (
	"io"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"makershelf/internal/config"
	"makershelf/internal/http/handlers"
	"makershelf/internal/repos"
	"makershelf/internal/services"
)

type fakeStore struct{ saved int }

func (f *fakeStore) Save(name string, data []byte) (string, error) {
	f.saved++
	return "images/test.png", nil
}

// Minimal app setup for CRUD tests (no CSRF or rate limiting middleware)
func newCatalogApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()
	cfg := config.Config{DBDSN: ":memory:", MediaDir: t.TempDir()}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})

	deps := handlers.NewDeps(db, cfg, &fakeStore{})
	prodH := deps.ProductHandler
	app.Get("/products", prodH.Index)
	app.Get("/products/new", handlers.RequireUser(authSvc), prodH.New)
	app.Post("/products", handlers.RequireUser(authSvc), prodH.Create)
	app.Get("/products/:id", prodH.Show)
	app.Get("/products/:id/edit", handlers.RequireUser(authSvc), prodH.Edit)
	app.Post("/products/:id", handlers.RequireUser(authSvc), prodH.Update)
	app.Post("/products/:id/delete", handlers.RequireUser(authSvc), prodH.Destroy)

	// Log a seeded user in by binding its session directly.
	if err := userRepo.BindSession("test-sid", 1); err != nil {
		t.Fatal(err)
	}
	return app, db
}

func validForm() url.Values {
	return url.Values{
		"product_name": {"Widget"},
		"price":        {"100"},
		"stock":        {"5"},
		"maker_id":     {"1"},
		"detail":       {"basic"},
	}
}

func TestIndex_LenientQueryParams(t *testing.T) {
	app, _ := newCatalogApp(t)

	req := httptest.NewRequest("GET", "/products?page=abc&maker_id=zzz&search=", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("unparsable filters must default, got %d", resp.StatusCode)
	}
}

func TestCreate_RequiresLogin(t *testing.T) {
	app, db := newCatalogApp(t)

	req := httptest.NewRequest("POST", "/products", strings.NewReader(validForm().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 302 || resp.Header.Get("Location") != "/login" {
		t.Fatalf("anonymous create should redirect to login, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("anonymous create committed a row")
	}
}

func TestCreate_ValidFormInsertsAndRedirects(t *testing.T) {
	app, db := newCatalogApp(t)

	req := httptest.NewRequest("POST", "/products", strings.NewReader(validForm().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cookie", "sid=test-sid")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 302 || resp.Header.Get("Location") != "/products" {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("want redirect to /products, got %d %s (%s)", resp.StatusCode, resp.Header.Get("Location"), body)
	}

	var userID int64
	if err := db.Get(&userID, `SELECT user_id FROM products WHERE product_name='Widget'`); err != nil {
		t.Fatal(err)
	}
	if userID != 1 {
		t.Fatalf("acting user not stamped, got user_id=%d", userID)
	}
}

func TestCreate_InvalidFormRerendersWithErrors(t *testing.T) {
	app, db := newCatalogApp(t)

	form := validForm()
	form.Set("product_name", strings.Repeat("a", 21))
	form.Set("maker_id", "999")
	req := httptest.NewRequest("POST", "/products", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cookie", "sid=test-sid")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("want 422, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	s := string(body)
	if !strings.Contains(s, "product_name") || !strings.Contains(s, "maker_id") {
		t.Fatalf("errors not surfaced together; body=%s", s)
	}
	// submitted input preserved for re-prompt
	if !strings.Contains(s, strings.Repeat("a", 21)) {
		t.Fatalf("submitted input not preserved; body=%s", s)
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("invalid submission committed a row")
	}
}

func TestShow_UnknownProductIs404(t *testing.T) {
	app, _ := newCatalogApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/products/424242", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}
}

func TestDestroy_RedirectsWithDeletedName(t *testing.T) {
	app, db := newCatalogApp(t)

	req := httptest.NewRequest("POST", "/products", strings.NewReader(validForm().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cookie", "sid=test-sid")
	if _, err := app.Test(req); err != nil {
		t.Fatal(err)
	}
	var id int64
	if err := db.Get(&id, `SELECT id FROM products WHERE product_name='Widget'`); err != nil {
		t.Fatal(err)
	}

	req = httptest.NewRequest("POST", "/products/"+strconv.FormatInt(id, 10)+"/delete", nil)
	req.Header.Set("Cookie", "sid=test-sid")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 302 || !strings.Contains(resp.Header.Get("Location"), "deleted=Widget") {
		t.Fatalf("want redirect with deleted name, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products WHERE id=?`, id); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatal("row survived delete")
	}
}
