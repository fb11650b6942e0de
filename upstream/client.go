// Package upstream is the HTTP client for the read-only catalog API.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-dex-catalog/catalog"
)

// DefaultBaseURL is the public PokeAPI v2 endpoint.
const DefaultBaseURL = "https://pokeapi.co/api/v2"

// Source is the subset of the upstream API the record cache and the resolver
// depend on. *Client implements it; tests provide fakes.
type Source interface {
	Pokemon(ctx context.Context, idOrName string) (*catalog.Record, error)
	TypeMembers(ctx context.Context, name string) ([]int, error)
	Types(ctx context.Context) ([]string, error)
	Species(ctx context.Context, id int) (*catalog.Species, error)
}

// Client talks to the upstream API over HTTP. Every call is a single GET; there
// are no retries.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets a per-request timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = &http.Client{Timeout: d, Transport: c.http.Transport}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client for baseURL (DefaultBaseURL when empty).
func New(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured endpoint.
func (c *Client) BaseURL() string { return c.baseURL }

// Pokemon fetches a single record by numeric id or name.
func (c *Client) Pokemon(ctx context.Context, idOrName string) (*catalog.Record, error) {
	key := strings.ToLower(strings.TrimSpace(idOrName))
	if key == "" {
		return nil, goerrors.New("empty id or name", goerrors.CategoryBadInput)
	}

	var resp pokemonResponse
	if err := c.getJSON(ctx, "/pokemon/"+url.PathEscape(key), &resp); err != nil {
		return nil, err
	}
	return resp.toRecord(), nil
}

// TypeMembers returns the ids of every member of the named category, ascending.
// Ids are parsed from each member's resource URL; entries without a numeric id
// are skipped.
func (c *Client) TypeMembers(ctx context.Context, name string) ([]int, error) {
	var resp typeResponse
	if err := c.getJSON(ctx, "/type/"+url.PathEscape(strings.ToLower(name)), &resp); err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(resp.Pokemon))
	for _, m := range resp.Pokemon {
		if id, ok := idFromURL(m.Pokemon.URL); ok {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

// Types lists every category name known upstream.
func (c *Client) Types(ctx context.Context) ([]string, error) {
	var resp typeListResponse
	if err := c.getJSON(ctx, "/type?limit=100", &resp); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		names = append(names, r.Name)
	}
	return names, nil
}

// Species fetches the descriptive species entry for id.
func (c *Client) Species(ctx context.Context, id int) (*catalog.Species, error) {
	var resp speciesResponse
	if err := c.getJSON(ctx, "/pokemon-species/"+strconv.Itoa(id), &resp); err != nil {
		return nil, err
	}
	return resp.toSpecies(), nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	u := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fetchFailure(u, 0, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fetchFailure(u, 0, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("upstream request", "url", u, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fetchFailure(u, resp.StatusCode, nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, fmt.Sprintf("decode %s", u)).
			WithCode(resp.StatusCode).
			WithTextCode(TextCodeDecode).
			WithMetadata(map[string]any{"url": u, "status": resp.StatusCode})
	}
	return nil
}
