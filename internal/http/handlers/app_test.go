package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"

	"modiesel/internal/api"
	"modiesel/internal/http/handlers"
	"modiesel/internal/sale"
	"modiesel/internal/session"
)

// wiredApp builds the app exactly as main does: full middleware stack, real
// templates, real session gate.
func wiredApp(t *testing.T, backendURL string) (*fiber.App, *session.Gate) {
	t.Helper()
	gate := testGate(t)
	flows := sale.NewRegistry()
	cl := api.New(backendURL, gate.Token, func() {
		flows.DropAll()
	})
	engine := html.New("../../../web/templates", ".html")
	return handlers.NewApp(handlers.NewDeps(cl, gate, flows), gate, engine), gate
}

var reCSRFField = regexp.MustCompile(`name="csrf" value="([^"]+)"`)

// fetchLoginForm pulls the login page and returns the rendered csrf token
// plus the cookies the browser would hold.
func fetchLoginForm(t *testing.T, app *fiber.App) (string, []*http.Cookie) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/login", nil))
	if err != nil {
		t.Fatalf("GET /login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("GET /login status = %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	m := reCSRFField.FindSubmatch(body)
	if m == nil {
		t.Fatalf("login form rendered without a csrf token:\n%s", body)
	}
	return string(m[1]), resp.Cookies()
}

func TestLoginFormRoundTripThroughMiddleware(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"tok-xyz","usuario":{"id":4,"nombre":"Ana","correo":"ana@modiesel.pe","rol":"EMPLEADO"}}`))
	}))
	defer backend.Close()

	app, gate := wiredApp(t, backend.URL)

	token, cookies := fetchLoginForm(t, app)

	form := url.Values{"correo": {"ana@modiesel.pe"}, "password": {"secreta123"}, "csrf": {token}}
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("POST /login: %v", err)
	}
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("POST /login status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/dashboard" {
		t.Fatalf("Location = %q, want /dashboard", loc)
	}
	if gate.Token() != "tok-xyz" {
		t.Fatalf("gate token = %q after login", gate.Token())
	}
}

func TestLoginPostWithoutTokenIsRejected(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be reached without a csrf token")
	}))
	defer backend.Close()

	app, _ := wiredApp(t, backend.URL)

	_, cookies := fetchLoginForm(t, app)

	form := url.Values{"correo": {"ana@modiesel.pe"}, "password": {"secreta123"}}
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("POST /login: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("tokenless POST status = %d, want 403", resp.StatusCode)
	}
}

func TestLoginErrorPageKeepsFormUsable(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer backend.Close()

	app, _ := wiredApp(t, backend.URL)

	token, cookies := fetchLoginForm(t, app)

	form := url.Values{"correo": {"ana@modiesel.pe"}, "password": {"equivocada1"}, "csrf": {token}}
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("POST /login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	// The re-rendered form must carry a token so the retry can pass the
	// csrf check too.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !reCSRFField.Match(body) {
		t.Fatal("error page rendered without a csrf token")
	}
}
