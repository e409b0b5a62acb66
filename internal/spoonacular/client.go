// Package spoonacular is a minimal client for the two Spoonacular
// endpoints recipebot needs: complex search and analyzed instructions.
package spoonacular

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/hammamikhairi/recipebot/internal/domain"
	"github.com/hammamikhairi/recipebot/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Compile-time interface check.
var _ domain.RecipeAPI = (*Client)(nil)

// ── Wire types ───────────────────────────────────────────────────

// searchResponse is the complexSearch envelope. Only the fields we use
// are decoded.
type searchResponse struct {
	// nil when the field is missing or null.
	Results      *[]searchResult `json:"results"`
	TotalResults int             `json:"totalResults"`
}

type searchResult struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// instructionSet is one element of the analyzedInstructions array.
type instructionSet struct {
	Name  string      `json:"name"`
	Steps *[]wireStep `json:"steps"`
}

type wireStep struct {
	Number int    `json:"number"`
	Step   string `json:"step"`
}

// errMalformed marks a 2xx body that decoded but lacks required fields.
var errMalformed = errors.New("malformed response")

// ── Client ───────────────────────────────────────────────────────

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the API root (e.g. for a test server).
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(base, "/") }
}

// WithHTTPClient replaces the underlying HTTP client. nil is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithHTTPTimeout sets a per-request timeout. The default is none: an
// unresponsive server stalls the call until ctx is done. The client
// given to WithHTTPClient is copied, not modified.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// Client talks to the Spoonacular REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logger.Logger
}

// NewClient creates a Spoonacular client authenticated with apiKey.
func NewClient(apiKey string, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: "https://api.spoonacular.com",
		apiKey:  apiKey,
		http:    &http.Client{},
		log:     log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Search returns up to limit recipe summaries matching query, in the
// order the API ranked them.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.RecipeSummary, error) {
	const op = "spoonacular.search"

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ValidationError(op, domain.ErrEmptyQuery)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("number", strconv.Itoa(limit))

	var resp searchResponse
	if err := c.get(ctx, "/recipes/complexSearch", params, &resp); err != nil {
		return nil, domain.RemoteRequestError(op, err)
	}

	if resp.Results == nil {
		return nil, domain.RemoteRequestError(op, fmt.Errorf("%w: missing results", errMalformed))
	}

	out := make([]domain.RecipeSummary, 0, len(*resp.Results))
	for _, r := range *resp.Results {
		out = append(out, domain.RecipeSummary{ID: r.ID, Title: r.Title})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	c.log.Debug("search %q: %d results (%d total)", query, len(out), resp.TotalResults)
	return out, nil
}

// FetchInstructions returns the steps of the recipe's first instruction
// set, sorted by step number. It returns domain.ErrNoInstructions when
// the recipe has no instruction sets.
func (c *Client) FetchInstructions(ctx context.Context, recipeID int) ([]domain.InstructionStep, error) {
	const op = "spoonacular.instructions"

	var sets *[]instructionSet
	path := fmt.Sprintf("/recipes/%d/analyzedInstructions", recipeID)
	if err := c.get(ctx, path, url.Values{}, &sets); err != nil {
		return nil, domain.RemoteRequestError(op, err)
	}
	if sets == nil {
		return nil, domain.RemoteRequestError(op, fmt.Errorf("%w: null instruction sets", errMalformed))
	}

	if len(*sets) == 0 {
		c.log.Debug("recipe %d: no instruction sets", recipeID)
		return nil, domain.ErrNoInstructions
	}

	first := (*sets)[0]
	if first.Steps == nil {
		return nil, domain.RemoteRequestError(op, fmt.Errorf("%w: instruction set without steps", errMalformed))
	}

	steps := make([]domain.InstructionStep, 0, len(*first.Steps))
	for _, s := range *first.Steps {
		steps = append(steps, domain.InstructionStep{
			Number:      s.Number,
			Instruction: strings.TrimSpace(s.Step),
		})
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Number < steps[j].Number })

	c.log.Debug("recipe %d: %d steps", recipeID, len(steps))
	return steps, nil
}

// get issues an authenticated GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("apiKey", c.apiKey)
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "recipebot/1.0")

	c.log.Debug("GET %s", c.baseURL+path)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", redactKey(err, c.apiKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

// redactKey strips the API key out of transport errors, which embed the
// full request URL.
func redactKey(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), key, "REDACTED"), err: err}
}

// redactedError hides the key in its message but keeps the cause
// reachable through errors.Is and errors.As.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
