// Package backend is the HTTP client for the remote ingredient-analysis
// API: multipart analyze, JSON recipe generation and a health probe.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/CalMoney11/Ingredient-Analyzer/internal/analysis"
)

// Client talks to one analysis service instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the common wrapper every endpoint responds with.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type analysisPart struct {
	Status   string `json:"status"`
	Analysis string `json:"analysis"`
	Error    string `json:"error"`
}

type analyzeResponse struct {
	envelope
	Ingredients []string `json:"ingredients"`
	Data        *struct {
		ImageAnalysis  *analysisPart `json:"image_analysis"`
		PromptAnalysis *analysisPart `json:"prompt_analysis"`
	} `json:"data"`
}

type recipesResponse struct {
	envelope
	Recipes    json.RawMessage `json:"recipes"`
	TotalFound int             `json:"total_found"`
}

// Analyze posts the request as multipart form data (`image`, `prompt`) and
// maps the response to a Result. Both the structured-ingredients shape and
// the free-text shape are accepted; for free text, bullet lines are lifted
// into the ingredient list so the rest of the flow stays uniform.
func (c *Client) Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if req.HasImage() {
		name := req.ImageName
		if name == "" {
			name = "upload.jpg"
		}
		part, err := writer.CreateFormFile("image", name)
		if err != nil {
			return nil, fmt.Errorf("failed to build multipart body: %w", err)
		}
		if _, err := part.Write(req.Image); err != nil {
			return nil, fmt.Errorf("failed to write image part: %w", err)
		}
	}
	if req.HasPrompt() {
		if err := writer.WriteField("prompt", strings.TrimSpace(req.PromptText)); err != nil {
			return nil, fmt.Errorf("failed to write prompt field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	var parsed analyzeResponse
	if err := c.post(ctx, "/analyze", writer.FormDataContentType(), body, &parsed); err != nil {
		return nil, err
	}
	if !parsed.Success {
		return nil, &analysis.BackendError{Message: parsed.Error}
	}

	if parsed.Ingredients != nil {
		return &analysis.Result{Ingredients: parsed.Ingredients}, nil
	}

	if parsed.Data != nil {
		var sections []string
		for _, part := range []*analysisPart{parsed.Data.ImageAnalysis, parsed.Data.PromptAnalysis} {
			if part == nil {
				continue
			}
			if part.Status == "error" {
				return nil, &analysis.BackendError{Message: part.Error}
			}
			if part.Analysis != "" {
				sections = append(sections, part.Analysis)
			}
		}
		if len(sections) > 0 {
			text := strings.Join(sections, "\n\n")
			return &analysis.Result{
				Ingredients: ExtractIngredients(text),
				Analysis:    text,
			}, nil
		}
	}

	return nil, &analysis.BackendError{Message: "analyze response is missing ingredients"}
}

// GenerateRecipes posts the ingredient list and maps the response to a
// RecipeSet. The recipes field may be a structured array or a markdown
// string, depending on the service version.
func (c *Client) GenerateRecipes(ctx context.Context, ingredients []string) (*analysis.RecipeSet, error) {
	payload, err := json.Marshal(map[string]any{"ingredients": ingredients})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ingredients: %w", err)
	}

	var parsed recipesResponse
	if err := c.post(ctx, "/generate_recipes", "application/json", bytes.NewReader(payload), &parsed); err != nil {
		return nil, err
	}
	return decodeRecipeSet(parsed)
}

// GenerateLeftoverRecipes posts the picked recipe and the remaining
// ingredients; the response shape matches GenerateRecipes.
func (c *Client) GenerateLeftoverRecipes(ctx context.Context, picked string, remaining []string) (*analysis.RecipeSet, error) {
	payload, err := json.Marshal(map[string]any{
		"recipe":                picked,
		"remaining_ingredients": remaining,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal leftover request: %w", err)
	}

	var parsed recipesResponse
	if err := c.post(ctx, "/generate_leftover_recipes", "application/json", bytes.NewReader(payload), &parsed); err != nil {
		return nil, err
	}
	return decodeRecipeSet(parsed)
}

// Health probes the service. Failures are meant for logging only, never
// for the user.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &analysis.TransportError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &analysis.TransportError{Status: resp.StatusCode}
	}
	return nil
}

func decodeRecipeSet(parsed recipesResponse) (*analysis.RecipeSet, error) {
	if !parsed.Success {
		return nil, &analysis.BackendError{Message: parsed.Error}
	}
	if len(parsed.Recipes) == 0 {
		return nil, &analysis.BackendError{Message: "recipe response is missing recipes"}
	}

	var recipes []analysis.Recipe
	if err := json.Unmarshal(parsed.Recipes, &recipes); err == nil {
		return &analysis.RecipeSet{Recipes: recipes, TotalFound: parsed.TotalFound}, nil
	}

	var prose string
	if err := json.Unmarshal(parsed.Recipes, &prose); err == nil {
		return &analysis.RecipeSet{Prose: prose, TotalFound: parsed.TotalFound}, nil
	}

	return nil, &analysis.BackendError{Message: "recipe response has an unexpected shape"}
}

// post sends the request and decodes a JSON body into out. Non-2xx
// statuses become TransportErrors whose message prefers the JSON error
// field and falls back to one derived from the status.
func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &analysis.TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &analysis.TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure envelope
		if jsonErr := json.Unmarshal(raw, &failure); jsonErr == nil && failure.Error != "" {
			return &analysis.TransportError{Status: resp.StatusCode, Message: failure.Error}
		}
		return &analysis.TransportError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("the analysis service returned %s", http.StatusText(resp.StatusCode)),
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &analysis.TransportError{Err: fmt.Errorf("failed to decode response body: %w", err)}
	}
	return nil
}

// ExtractIngredients lifts bullet or numbered lines out of a free-text
// analysis. Lines like "* 2 eggs" or "1. Tomatoes - ripe" become "2 eggs"
// and "Tomatoes - ripe".
func ExtractIngredients(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "* "):
			line = line[2:]
		case strings.HasPrefix(line, "- "):
			line = line[2:]
		default:
			if i := strings.Index(line, ". "); i > 0 && i <= 3 && isDigits(line[:i]) {
				line = line[i+2:]
			} else {
				continue
			}
		}
		line = strings.Trim(strings.TrimSpace(line), "*")
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
