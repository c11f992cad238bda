// Package web exposes the orchestrator to a browser page through gin
// handlers.
package web

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CalMoney11/Ingredient-Analyzer/internal/analysis"
	"github.com/CalMoney11/Ingredient-Analyzer/internal/history"
	"github.com/CalMoney11/Ingredient-Analyzer/internal/imaging"
	"github.com/CalMoney11/Ingredient-Analyzer/internal/orchestrator"
	"github.com/CalMoney11/Ingredient-Analyzer/internal/prefs"
	"github.com/CalMoney11/Ingredient-Analyzer/internal/retry"
)

// HealthChecker probes the remote analysis service. Nil when the direct
// provider is in use.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler handles HTTP requests from the page.
type Handler struct {
	Analyzer orchestrator.Analyzer
	Checker  HealthChecker
	Prefs    *prefs.Store
	History  history.Store
	Policy   retry.Policy
}

// NewHandler creates a Handler. checker and store may be nil.
func NewHandler(analyzer orchestrator.Analyzer, checker HealthChecker, prefsStore *prefs.Store, store history.Store, policy retry.Policy) *Handler {
	return &Handler{
		Analyzer: analyzer,
		Checker:  checker,
		Prefs:    prefsStore,
		History:  store,
		Policy:   policy,
	}
}

// Analyze accepts the page's multipart form (`image` file, `prompt`
// field), runs one interaction and returns the rendered HTML.
func (h *Handler) Analyze(c *gin.Context) {
	req, err := h.buildRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 90*time.Second)
	defer cancel()

	recorder := &recordingAnalyzer{inner: h.Analyzer}
	surface := &pageSurface{}
	orch := orchestrator.New(recorder, surface, orchestrator.WithRetryPolicy(h.Policy))

	runErr := orch.Run(ctx, req)

	var validationErr *analysis.ValidationError
	if errors.As(runErr, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "html": surface.HTML()})
		return
	}

	if runErr == nil {
		h.recordHistory(ctx, req, recorder)
	}
	c.JSON(http.StatusOK, gin.H{"success": runErr == nil, "html": surface.HTML()})
}

// Leftovers generates follow-up recipes from the picked recipe and the
// remaining ingredients.
func (h *Handler) Leftovers(c *gin.Context) {
	var body struct {
		Recipe    string   `json:"recipe"`
		Remaining []string `json:"remaining_ingredients"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	if body.Recipe == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "no recipe provided"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 90*time.Second)
	defer cancel()

	surface := &pageSurface{}
	orch := orchestrator.New(h.Analyzer, surface, orchestrator.WithRetryPolicy(h.Policy))
	runErr := orch.RunLeftovers(ctx, body.Recipe, body.Remaining)

	c.JSON(http.StatusOK, gin.H{"success": runErr == nil, "html": surface.HTML()})
}

// Health reports ok to the page. A failing remote probe is logged, never
// surfaced.
func (h *Handler) Health(c *gin.Context) {
	if h.Checker != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := h.Checker.Health(ctx); err != nil {
			log.Printf("backend health probe failed: %v", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetTheme returns the active theme.
func (h *Handler) GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"theme": h.Prefs.Theme()})
}

// SetTheme persists a theme toggle.
func (h *Handler) SetTheme(c *gin.Context) {
	var body struct {
		Theme string `json:"theme"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.Prefs.SetTheme(body.Theme); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": body.Theme})
}

// GetHistory lists recent analyses. Without a store it returns an empty
// list.
func (h *Handler) GetHistory(c *gin.Context) {
	if h.History == nil {
		c.JSON(http.StatusOK, []*history.Entry{})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	entries, err := h.History.Recent(ctx, 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	if entries == nil {
		entries = []*history.Entry{}
	}
	c.JSON(http.StatusOK, entries)
}

// buildRequest assembles an analysis.Request from the form, validating
// and downscaling the image before it travels anywhere.
func (h *Handler) buildRequest(c *gin.Context) (analysis.Request, error) {
	req := analysis.Request{PromptText: c.PostForm("prompt")}

	file, err := c.FormFile("image")
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) {
			return req, err
		}
		return req, nil
	}

	if err := imaging.ValidateUpload(file.Filename, file.Size); err != nil {
		return req, err
	}

	src, err := file.Open()
	if err != nil {
		return req, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return req, err
	}

	data, err = imaging.Downscale(data)
	if err != nil {
		return req, err
	}

	req.Image = data
	req.ImageName = file.Filename
	req.ImageMIME = imaging.MIMEType(file.Filename)
	return req, nil
}

func (h *Handler) recordHistory(ctx context.Context, req analysis.Request, rec *recordingAnalyzer) {
	if h.History == nil || rec.result == nil {
		return
	}

	var digest string
	if req.HasImage() {
		digest = imaging.Digest(req.Image)
	} else {
		sum := sha256.Sum256([]byte(req.PromptText))
		digest = hex.EncodeToString(sum[:])
	}

	entry := &history.Entry{
		Digest:      digest,
		Prompt:      req.PromptText,
		Ingredients: rec.result.Ingredients,
	}
	if rec.recipes != nil {
		for _, r := range rec.recipes.Recipes {
			entry.RecipeTitles = append(entry.RecipeTitles, r.Title)
		}
	}

	if err := h.History.Save(ctx, entry); err != nil {
		log.Printf("failed to save analysis history: %v", err)
	}
}

// recordingAnalyzer captures what flowed through one interaction so the
// handler can persist it, keeping the orchestrator itself storage-free.
type recordingAnalyzer struct {
	inner   orchestrator.Analyzer
	result  *analysis.Result
	recipes *analysis.RecipeSet
}

func (r *recordingAnalyzer) Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
	res, err := r.inner.Analyze(ctx, req)
	if err == nil {
		r.result = res
	}
	return res, err
}

func (r *recordingAnalyzer) GenerateRecipes(ctx context.Context, ingredients []string) (*analysis.RecipeSet, error) {
	set, err := r.inner.GenerateRecipes(ctx, ingredients)
	if err == nil {
		r.recipes = set
	}
	return set, err
}

func (r *recordingAnalyzer) GenerateLeftoverRecipes(ctx context.Context, picked string, remaining []string) (*analysis.RecipeSet, error) {
	return r.inner.GenerateLeftoverRecipes(ctx, picked, remaining)
}
