// Package gemini implements the Analyzer contract directly against the
// Gemini API, for deployments that run without a separate analysis
// service.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/CalMoney11/Ingredient-Analyzer/internal/analysis"
	"github.com/CalMoney11/Ingredient-Analyzer/internal/backend"
)

const imageAnalysisPrompt = `Analyze this image and identify all visible ingredients or food items.
For each ingredient found, provide:
1. Ingredient name
2. Estimated quantity (if visible)
3. Condition/freshness assessment

Format the response as a markdown bullet list, one '* ' line per ingredient.`

const promptAnalysisPrompt = `You are an ingredient analysis expert. Parse the user's input and extract all mentioned ingredients.
For each ingredient, identify:
1. Ingredient name
2. Quantity
3. Unit of measurement

Format the response as a markdown bullet list, one '* ' line per ingredient.`

const recipePrompt = `Suggest up to 3 recipes that can be made from these ingredients: %s.
Return a single, clean JSON array where each element has the keys 'title' (string), 'ingredients' (array of strings), 'instructions' (array of strings), and 'nutrition' (map of nutrient name to value).
The JSON response should be clean and not contain any markdown formatting (e.g., ` + "```json" + `).`

const leftoverPrompt = `The user cooked "%s" and has these ingredients left over: %s.
Suggest up to 3 recipes using the leftovers.
Return a single, clean JSON array where each element has the keys 'title' (string), 'ingredients' (array of strings), 'instructions' (array of strings), and 'nutrition' (map of nutrient name to value).
The JSON response should be clean and not contain any markdown formatting (e.g., ` + "```json" + `).`

// Client is a direct Gemini implementation of the Analyzer contract.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewClient creates a Gemini-backed analyzer.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &Client{client: c, model: c.GenerativeModel(model)}, nil
}

// Close closes the underlying Gemini client.
func (c *Client) Close() error {
	return c.client.Close()
}

// Analyze runs image and/or prompt analysis and lifts bullet lines out of
// the response into the ingredient list.
func (c *Client) Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
	var sections []string

	if req.HasImage() {
		parts := []genai.Part{
			genai.ImageData(imageFormat(req.ImageMIME), req.Image),
			genai.Text(imageAnalysisPrompt),
		}
		text, err := c.generate(ctx, parts...)
		if err != nil {
			return nil, err
		}
		sections = append(sections, text)
	}

	if req.HasPrompt() {
		text, err := c.generate(ctx, genai.Text(promptAnalysisPrompt+"\n\nUser input: "+strings.TrimSpace(req.PromptText)))
		if err != nil {
			return nil, err
		}
		sections = append(sections, text)
	}

	combined := strings.Join(sections, "\n\n")
	return &analysis.Result{
		Ingredients: backend.ExtractIngredients(combined),
		Analysis:    combined,
	}, nil
}

// GenerateRecipes asks the model for structured recipes.
func (c *Client) GenerateRecipes(ctx context.Context, ingredients []string) (*analysis.RecipeSet, error) {
	return c.recipesFromPrompt(ctx, fmt.Sprintf(recipePrompt, strings.Join(ingredients, ", ")))
}

// GenerateLeftoverRecipes asks the model for follow-up recipes from what
// remains after the picked one.
func (c *Client) GenerateLeftoverRecipes(ctx context.Context, picked string, remaining []string) (*analysis.RecipeSet, error) {
	return c.recipesFromPrompt(ctx, fmt.Sprintf(leftoverPrompt, picked, strings.Join(remaining, ", ")))
}

func (c *Client) recipesFromPrompt(ctx context.Context, prompt string) (*analysis.RecipeSet, error) {
	text, err := c.generate(ctx, genai.Text(prompt))
	if err != nil {
		return nil, err
	}

	// The model sometimes wraps the JSON in markdown despite the prompt.
	startIndex := strings.Index(text, "[")
	endIndex := strings.LastIndex(text, "]")
	if startIndex == -1 || endIndex == -1 || startIndex > endIndex {
		// Fall back to treating the whole answer as prose.
		return &analysis.RecipeSet{Prose: text}, nil
	}

	var recipes []analysis.Recipe
	if err := json.Unmarshal([]byte(text[startIndex:endIndex+1]), &recipes); err != nil {
		return nil, &analysis.BackendError{Message: fmt.Sprintf("failed to unmarshal recipe JSON: %v", err)}
	}
	return &analysis.RecipeSet{Recipes: recipes, TotalFound: len(recipes)}, nil
}

func (c *Client) generate(ctx context.Context, parts ...genai.Part) (string, error) {
	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", &analysis.TransportError{Err: err}
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &analysis.BackendError{Message: "empty response from Gemini"}
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", &analysis.BackendError{Message: "unexpected response format from Gemini"}
	}
	return string(text), nil
}

func imageFormat(mime string) string {
	if strings.HasSuffix(mime, "png") {
		return "png"
	}
	return "jpeg"
}
