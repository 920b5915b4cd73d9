package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fithub/internal/config"
	"fithub/internal/recipe"
)

// ErrUnauthorized is returned when the catalog rejects the bearer token.
var ErrUnauthorized = errors.New("catalog rejected credentials")

// StatusError reports an unexpected HTTP status from the catalog.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog api error: status %d, body: %s", e.StatusCode, e.Body)
}

// Page is one page of the catalog's recipe listing.
type Page struct {
	Results []recipe.Recipe `json:"results"`
	Count   int             `json:"count"`
}

// Client is an interface for the recipe catalog API.
type Client interface {
	Search(ctx context.Context, params url.Values) (*Page, error)
	Get(ctx context.Context, id int64) (*recipe.Recipe, error)
}

// catalogClient is the concrete HTTP implementation.
type catalogClient struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
}

// NewClient creates a catalog client from configuration.
func NewClient(cfg *config.Config) Client {
	var tokens TokenSource = StaticToken(cfg.APIToken)
	if cfg.JWTSecret != "" {
		tokens = NewJWTTokenSource([]byte(cfg.JWTSecret), cfg.JWTSubject, 5*time.Minute)
	}
	return &catalogClient{
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		baseURL:    strings.TrimRight(cfg.APIURL, "/"),
		tokens:     tokens,
	}
}

// Search lists recipes matching params.
func (c *catalogClient) Search(ctx context.Context, params url.Values) (*Page, error) {
	u := fmt.Sprintf("%s/recipes/", c.baseURL)
	if encoded := params.Encode(); encoded != "" {
		u += "?" + encoded
	}

	var page Page
	if err := c.get(ctx, u, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get fetches a single recipe by id.
func (c *catalogClient) Get(ctx context.Context, id int64) (*recipe.Recipe, error) {
	u := fmt.Sprintf("%s/recipes/%d/", c.baseURL, id)

	var r recipe.Recipe
	if err := c.get(ctx, u, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *catalogClient) get(ctx context.Context, u string, out any) error {
	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("failed to obtain token: %w", err)
	}
	if token == "" {
		return fmt.Errorf("%w: no token configured", ErrUnauthorized)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
