package analysis

import (
	"encoding/json"
	"strings"
)

// Request carries one user submission: an optional text prompt and/or an
// optional image. At least one must be present for the request to be valid.
type Request struct {
	PromptText string
	Image      []byte
	ImageName  string
	ImageMIME  string
}

// HasImage reports whether the request carries image bytes.
func (r Request) HasImage() bool {
	return len(r.Image) > 0
}

// HasPrompt reports whether the request carries a non-blank prompt.
func (r Request) HasPrompt() bool {
	return strings.TrimSpace(r.PromptText) != ""
}

// Validate rejects requests that carry neither a prompt nor an image.
func (r Request) Validate() error {
	if !r.HasImage() && !r.HasPrompt() {
		return &ValidationError{Message: "please provide an image or a prompt"}
	}
	return nil
}

// Result holds the outcome of one analyze call. Ingredients is the
// structured shape; Analysis carries the free-text variant when the
// service answers with prose instead of a list.
type Result struct {
	Ingredients []string
	Analysis    string
}

// Recipe represents one generated recipe.
type Recipe struct {
	Title        string            `json:"title"`
	Ingredients  []string          `json:"ingredients"`
	Instructions []string          `json:"instructions"`
	Nutrition    map[string]string `json:"nutrition,omitempty"`
}

// UnmarshalJSON folds the "steps" field some service variants use into
// Instructions.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	type Alias Recipe // alias to avoid infinite recursion
	aux := &struct {
		Steps []string `json:"steps"`
		*Alias
	}{
		Alias: (*Alias)(r),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if len(r.Instructions) == 0 {
		r.Instructions = aux.Steps
	}
	return nil
}

// RecipeSet holds the outcome of one recipe-generation call. Prose carries
// the free-text markdown variant when the service answers with prose
// instead of structured recipes.
type RecipeSet struct {
	Recipes    []Recipe
	TotalFound int
	Prose      string
}
