// Package api is the HTTP client for the remote MoDiesel REST backend. Every
// authenticated request carries the session bearer token; any 401 response
// fires the unauthorized hook exactly once per call so session teardown stays
// centralized no matter which component issued the request.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"modiesel/internal/domain"
)

type Client struct {
	base           string
	http           *http.Client
	token          func() string
	onUnauthorized func()
}

// New builds a client for baseURL. token supplies the current bearer token
// (empty means anonymous); onUnauthorized is invoked whenever the backend
// answers 401 to an authenticated call. Either func may be nil.
func New(baseURL string, token func() string, onUnauthorized func()) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		token:          token,
		onUnauthorized: onUnauthorized,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if authed && c.token != nil {
		if t := c.token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && authed {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	}
	if resp.StatusCode >= 400 {
		return &Error{Status: resp.StatusCode, Message: readMessage(resp.Body)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}

// readMessage pulls the backend's {"message": ...} field, if any.
func readMessage(r io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return ""
	}
	return payload.Message
}

// Generic verbs, used by the dashboard passthrough handlers.

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out, true)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out, true)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out, true)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, true)
}

// Login authenticates against the backend. It runs unauthenticated: a 401
// here means bad credentials, not a dead session, so the unauthorized hook
// must not fire. Some backend builds name the token field differently.
func (c *Client) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	var resp struct {
		Token       string       `json:"token"`
		AccessToken string       `json:"access_token"`
		AltToken    string       `json:"accessToken"`
		User        *domain.User `json:"usuario"`
		ID          int          `json:"id"`
		Name        string       `json:"nombre"`
		Role        string       `json:"rol"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/login",
		map[string]string{"correo": email, "password": password}, &resp, false)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
			return "", domain.User{}, ErrInvalidCredentials
		}
		return "", domain.User{}, err
	}

	token := resp.Token
	if token == "" {
		token = resp.AccessToken
	}
	if token == "" {
		token = resp.AltToken
	}
	if token == "" {
		return "", domain.User{}, &Error{Status: http.StatusOK, Message: "login response carried no token"}
	}

	user := domain.User{ID: resp.ID, Name: resp.Name, Email: email, Role: resp.Role}
	if resp.User != nil {
		user = *resp.User
	}
	if user.Email == "" {
		user.Email = email
	}
	if user.Name == "" {
		user.Name = strings.SplitN(email, "@", 2)[0]
	}
	return token, user, nil
}

// Typed accessors for the resources the sale core and dashboard consume.

func (c *Client) Clients(ctx context.Context) ([]domain.Client, error) {
	var out []domain.Client
	err := c.Get(ctx, "/clientes", &out)
	return out, err
}

func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	err := c.Get(ctx, "/productos", &out)
	return out, err
}

func (c *Client) Vehicles(ctx context.Context) ([]domain.Vehicle, error) {
	var out []domain.Vehicle
	err := c.Get(ctx, "/vehiculos", &out)
	return out, err
}

func (c *Client) Suppliers(ctx context.Context) ([]domain.Supplier, error) {
	var out []domain.Supplier
	err := c.Get(ctx, "/proveedores", &out)
	return out, err
}

func (c *Client) SpareParts(ctx context.Context) ([]domain.SparePart, error) {
	var out []domain.SparePart
	err := c.Get(ctx, "/repuestos", &out)
	return out, err
}

func (c *Client) Movements(ctx context.Context) ([]domain.Movement, error) {
	var out []domain.Movement
	err := c.Get(ctx, "/inventario", &out)
	return out, err
}

func (c *Client) Sales(ctx context.Context) ([]domain.Sale, error) {
	var out []domain.Sale
	err := c.Get(ctx, "/ventas", &out)
	return out, err
}

func (c *Client) Sale(ctx context.Context, id int) (domain.Sale, error) {
	var out domain.Sale
	err := c.Get(ctx, fmt.Sprintf("/ventas/%d", id), &out)
	return out, err
}

func (c *Client) Images(ctx context.Context) ([]domain.Image, error) {
	var out []domain.Image
	err := c.Get(ctx, "/imagenes", &out)
	return out, err
}

func (c *Client) Users(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	err := c.Get(ctx, "/usuarios", &out)
	return out, err
}

// CreateSale issues the single create-order call. The backend re-validates
// stock, decrements inventory, and allocates the invoice; the returned Sale
// carries the assigned id and invoice reference.
func (c *Client) CreateSale(ctx context.Context, sale domain.Sale) (domain.Sale, error) {
	var out domain.Sale
	err := c.Post(ctx, "/ventas", sale, &out)
	return out, err
}
