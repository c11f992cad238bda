package orchestrator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/CalMoney11/Ingredient-Analyzer/internal/analysis"
	"github.com/CalMoney11/Ingredient-Analyzer/internal/render"
	"github.com/CalMoney11/Ingredient-Analyzer/internal/retry"
)

// fakeAnalyzer scripts the service responses and counts calls.
type fakeAnalyzer struct {
	analyzeResult *analysis.Result
	analyzeErr    error
	analyzeErrN   int // fail this many calls before succeeding

	recipeSet *analysis.RecipeSet
	recipeErr error

	analyzeCalls  int
	recipeCalls   int
	leftoverCalls int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
	f.analyzeCalls++
	if f.analyzeErr != nil && (f.analyzeErrN == 0 || f.analyzeCalls <= f.analyzeErrN) {
		return nil, f.analyzeErr
	}
	return f.analyzeResult, nil
}

func (f *fakeAnalyzer) GenerateRecipes(ctx context.Context, ingredients []string) (*analysis.RecipeSet, error) {
	f.recipeCalls++
	if f.recipeErr != nil {
		return nil, f.recipeErr
	}
	return f.recipeSet, nil
}

func (f *fakeAnalyzer) GenerateLeftoverRecipes(ctx context.Context, picked string, remaining []string) (*analysis.RecipeSet, error) {
	f.leftoverCalls++
	if f.recipeErr != nil {
		return nil, f.recipeErr
	}
	return f.recipeSet, nil
}

// fakeSurface records every transition the orchestrator drives.
type fakeSurface struct {
	fragments  []string
	loadingLog []bool
}

func (s *fakeSurface) RenderOutput(html string) { s.fragments = []string{html} }
func (s *fakeSurface) AppendOutput(html string) { s.fragments = append(s.fragments, html) }
func (s *fakeSurface) SetLoading(active bool, label string) {
	s.loadingLog = append(s.loadingLog, active)
}

func (s *fakeSurface) output() string {
	var out string
	for i, f := range s.fragments {
		if i > 0 {
			out += "\n"
		}
		out += f
	}
	return out
}

func fastPolicy() Option {
	return WithRetryPolicy(retry.Policy{MaxAttempts: 3, BaseDelay: time.Microsecond})
}

func TestRunRejectsEmptyInputWithoutNetworkOrLoading(t *testing.T) {
	fake := &fakeAnalyzer{}
	surface := &fakeSurface{}
	orch := New(fake, surface, fastPolicy())

	err := orch.Run(context.Background(), analysis.Request{})

	var validationErr *analysis.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, 0, fake.analyzeCalls)
	assert.Empty(t, surface.loadingLog, "loading state must never be entered on validation failure")
	assert.Contains(t, surface.output(), "warning")
}

func TestRunHappyPathAutoRecipes(t *testing.T) {
	fake := &fakeAnalyzer{
		analyzeResult: &analysis.Result{Ingredients: []string{"chicken", "rice"}},
		recipeSet: &analysis.RecipeSet{Recipes: []analysis.Recipe{
			{Title: "Fried Rice", Ingredients: []string{"rice"}, Instructions: []string{"fry"}},
		}},
	}
	surface := &fakeSurface{}
	orch := New(fake, surface, fastPolicy())

	err := orch.Run(context.Background(), analysis.Request{PromptText: "chicken and rice"})

	assert.NoError(t, err)
	assert.Equal(t, 1, fake.analyzeCalls)
	assert.Equal(t, 1, fake.recipeCalls)

	out := surface.output()
	assert.Contains(t, out, "chicken")
	assert.Contains(t, out, "rice")
	assert.Contains(t, out, "1. Fried Rice")
	assert.Less(t, strings.Index(out, "chicken"), strings.Index(out, "Fried Rice"), "ingredients render before recipes")

	assert.Equal(t, []bool{true, false}, surface.loadingLog, "loading entered and cleared exactly once")
}

func TestRunEmptyIngredientsStopsBeforeRecipes(t *testing.T) {
	fake := &fakeAnalyzer{analyzeResult: &analysis.Result{}}
	surface := &fakeSurface{}
	orch := New(fake, surface, fastPolicy())

	err := orch.Run(context.Background(), analysis.Request{PromptText: "a blurry photo"})

	assert.NoError(t, err)
	assert.Equal(t, 0, fake.recipeCalls, "no recipe call after an empty analysis")
	assert.Contains(t, surface.output(), render.NoIngredientsMessage)
	assert.Equal(t, []bool{true, false}, surface.loadingLog)
}

func TestRunAnalyzeFailureRendersErrorAndClearsLoading(t *testing.T) {
	fake := &fakeAnalyzer{analyzeErr: &analysis.TransportError{Status: 500, Message: "the analysis service returned Internal Server Error"}}
	surface := &fakeSurface{}
	orch := New(fake, surface, fastPolicy())

	err := orch.Run(context.Background(), analysis.Request{PromptText: "anything"})

	assert.Error(t, err)
	assert.Equal(t, 3, fake.analyzeCalls, "transport failures are retried up to the attempt budget")
	assert.Contains(t, surface.output(), "Internal Server Error")
	assert.Contains(t, surface.output(), "error")
	assert.Equal(t, []bool{true, false}, surface.loadingLog)
}

func TestRunBackendErrorIsNotRetried(t *testing.T) {
	fake := &fakeAnalyzer{analyzeErr: &analysis.BackendError{Message: "no usable input"}}
	surface := &fakeSurface{}
	orch := New(fake, surface, fastPolicy())

	err := orch.Run(context.Background(), analysis.Request{PromptText: "anything"})

	assert.Error(t, err)
	assert.Equal(t, 1, fake.analyzeCalls)
	assert.Contains(t, surface.output(), "no usable input")
}

func TestRunRecoversAfterTransientAnalyzeFailures(t *testing.T) {
	fake := &fakeAnalyzer{
		analyzeErr:    &analysis.TransportError{Message: "connection reset"},
		analyzeErrN:   2,
		analyzeResult: &analysis.Result{Ingredients: []string{"eggs"}},
		recipeSet:     &analysis.RecipeSet{Recipes: []analysis.Recipe{{Title: "Omelette"}}},
	}
	surface := &fakeSurface{}
	orch := New(fake, surface, fastPolicy())

	err := orch.Run(context.Background(), analysis.Request{PromptText: "eggs"})

	assert.NoError(t, err)
	assert.Equal(t, 3, fake.analyzeCalls)
	assert.Contains(t, surface.output(), "Omelette")
}

func TestRunEmptyRecipesAppendsWithoutReplacingIngredients(t *testing.T) {
	fake := &fakeAnalyzer{
		analyzeResult: &analysis.Result{Ingredients: []string{"parsley"}},
		recipeSet:     &analysis.RecipeSet{},
	}
	surface := &fakeSurface{}
	orch := New(fake, surface, fastPolicy())

	err := orch.Run(context.Background(), analysis.Request{PromptText: "parsley"})

	assert.NoError(t, err)
	out := surface.output()
	assert.Contains(t, out, "parsley", "ingredients stay visible")
	assert.Contains(t, out, render.NoRecipesMessage)
}

func TestRunManualVariantStopsAfterIngredients(t *testing.T) {
	fake := &fakeAnalyzer{analyzeResult: &analysis.Result{Ingredients: []string{"beans"}}}
	surface := &fakeSurface{}
	orch := New(fake, surface, fastPolicy(), WithoutAutoRecipes())

	err := orch.Run(context.Background(), analysis.Request{PromptText: "beans"})

	assert.NoError(t, err)
	assert.Equal(t, 0, fake.recipeCalls)
	assert.Contains(t, surface.output(), "beans")
}

func TestRunRecipesDrivesManualStep(t *testing.T) {
	fake := &fakeAnalyzer{recipeSet: &analysis.RecipeSet{Recipes: []analysis.Recipe{{Title: "Chili"}}}}
	surface := &fakeSurface{}
	orch := New(fake, surface, fastPolicy(), WithoutAutoRecipes())

	err := orch.RunRecipes(context.Background(), []string{"beans"})

	assert.NoError(t, err)
	assert.Equal(t, 1, fake.recipeCalls)
	assert.Contains(t, surface.output(), "Chili")
	assert.Equal(t, []bool{true, false}, surface.loadingLog)
}

func TestRunLeftovers(t *testing.T) {
	fake := &fakeAnalyzer{recipeSet: &analysis.RecipeSet{Recipes: []analysis.Recipe{{Title: "Stock"}}}}
	surface := &fakeSurface{}
	orch := New(fake, surface, fastPolicy())

	err := orch.RunLeftovers(context.Background(), "Roast Chicken", []string{"bones", "carrots"})

	assert.NoError(t, err)
	assert.Equal(t, 1, fake.leftoverCalls)
	assert.Contains(t, surface.output(), "Stock")
	assert.Equal(t, []bool{true, false}, surface.loadingLog)
}

func TestRunRecipeFailureRendersErrorAndClearsLoading(t *testing.T) {
	fake := &fakeAnalyzer{
		analyzeResult: &analysis.Result{Ingredients: []string{"rice"}},
		recipeErr:     &analysis.BackendError{Message: "generation failed"},
	}
	surface := &fakeSurface{}
	orch := New(fake, surface, fastPolicy())

	err := orch.Run(context.Background(), analysis.Request{PromptText: "rice"})

	assert.Error(t, err)
	assert.Contains(t, surface.output(), "generation failed")
	assert.Equal(t, []bool{true, false}, surface.loadingLog)
}
