// Package orchestrator sequences one user interaction: validate the
// input, run the analyze call, conditionally generate recipes and render
// every outcome through an injected surface.
package orchestrator

import (
	"context"
	"log"

	"github.com/CalMoney11/Ingredient-Analyzer/internal/analysis"
	"github.com/CalMoney11/Ingredient-Analyzer/internal/render"
	"github.com/CalMoney11/Ingredient-Analyzer/internal/retry"
)

// Analyzer is the service contract the orchestrator drives. Both the
// remote API client and the direct Gemini provider implement it.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error)
	GenerateRecipes(ctx context.Context, ingredients []string) (*analysis.RecipeSet, error)
	GenerateLeftoverRecipes(ctx context.Context, picked string, remaining []string) (*analysis.RecipeSet, error)
}

// Surface is the capability interface the orchestrator renders through.
// Implementations own the actual output region and submit control; the
// orchestrator only drives their transitions.
type Surface interface {
	// RenderOutput replaces the output region.
	RenderOutput(html string)
	// AppendOutput appends to the output region, preserving what is
	// already shown.
	AppendOutput(html string)
	// SetLoading disables or re-enables the submit control. The label is
	// shown while loading is active.
	SetLoading(active bool, label string)
}

// Orchestrator drives interactions against one Analyzer. It is not safe
// for concurrent interactions; the surface's loading state is expected to
// prevent overlap.
type Orchestrator struct {
	analyzer    Analyzer
	surface     Surface
	policy      retry.Policy
	autoRecipes bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRetryPolicy replaces the default retry policy for network calls.
func WithRetryPolicy(p retry.Policy) Option {
	return func(o *Orchestrator) { o.policy = p }
}

// WithoutAutoRecipes stops the flow after presenting ingredients, leaving
// recipe generation to an explicit RunRecipes call. The default flow
// proceeds automatically.
func WithoutAutoRecipes() Option {
	return func(o *Orchestrator) { o.autoRecipes = false }
}

// New creates an Orchestrator rendering through surface.
func New(analyzer Analyzer, surface Surface, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		analyzer:    analyzer,
		surface:     surface,
		policy:      retry.DefaultPolicy(),
		autoRecipes: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run drives one interaction end to end. Validation failures render an
// inline warning without ever entering the loading state; every accepted
// request enters and leaves the loading state exactly once, regardless of
// where the interaction ends.
func (o *Orchestrator) Run(ctx context.Context, req analysis.Request) error {
	if err := req.Validate(); err != nil {
		o.surface.RenderOutput(render.Warning(err.Error()))
		return err
	}

	o.surface.SetLoading(true, "Analyzing...")
	defer o.surface.SetLoading(false, "")

	result, err := retry.DoValue(ctx, o.policy, func(ctx context.Context) (*analysis.Result, error) {
		return o.analyzer.Analyze(ctx, req)
	})
	if err != nil {
		o.presentError(err)
		return err
	}

	if len(result.Ingredients) == 0 {
		o.surface.RenderOutput(render.NoIngredients())
		return nil
	}
	o.surface.RenderOutput(render.Ingredients(result))

	if !o.autoRecipes {
		return nil
	}
	return o.generateRecipes(ctx, result.Ingredients)
}

// RunRecipes drives the recipe-generation step for ingredients already
// presented, for surfaces configured with a manual trigger.
func (o *Orchestrator) RunRecipes(ctx context.Context, ingredients []string) error {
	o.surface.SetLoading(true, "Generating recipes...")
	defer o.surface.SetLoading(false, "")

	return o.generateRecipes(ctx, ingredients)
}

// RunLeftovers generates follow-up recipes from what remains after the
// picked recipe, under the same loading and error discipline.
func (o *Orchestrator) RunLeftovers(ctx context.Context, picked string, remaining []string) error {
	o.surface.SetLoading(true, "Generating leftover recipes...")
	defer o.surface.SetLoading(false, "")

	set, err := retry.DoValue(ctx, o.policy, func(ctx context.Context) (*analysis.RecipeSet, error) {
		return o.analyzer.GenerateLeftoverRecipes(ctx, picked, remaining)
	})
	if err != nil {
		o.presentError(err)
		return err
	}
	o.presentRecipes(set)
	return nil
}

func (o *Orchestrator) generateRecipes(ctx context.Context, ingredients []string) error {
	set, err := retry.DoValue(ctx, o.policy, func(ctx context.Context) (*analysis.RecipeSet, error) {
		return o.analyzer.GenerateRecipes(ctx, ingredients)
	})
	if err != nil {
		o.presentError(err)
		return err
	}
	o.presentRecipes(set)
	return nil
}

func (o *Orchestrator) presentRecipes(set *analysis.RecipeSet) {
	if len(set.Recipes) == 0 && set.Prose == "" {
		o.surface.AppendOutput(render.NoRecipes())
		return
	}
	o.surface.AppendOutput(render.Recipes(set))
}

// presentError converts any failure into a rendered error block. Nothing
// propagates past here unrendered.
func (o *Orchestrator) presentError(err error) {
	o.surface.RenderOutput(render.ErrorBlock(err.Error()))
	log.Printf("interaction failed: %v", err)
}
