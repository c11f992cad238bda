// Package render maps typed analysis results to HTML fragments. Keeping
// the markup step pure and separate from the control flow makes both
// independently testable.
package render

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/CalMoney11/Ingredient-Analyzer/internal/analysis"
	"github.com/CalMoney11/Ingredient-Analyzer/internal/markdown"
)

const (
	// NoIngredientsMessage is shown when an analyze call succeeds but
	// finds nothing usable.
	NoIngredientsMessage = "No ingredients detected. Try a clearer photo or describe what you have."

	// NoRecipesMessage is appended when recipe generation succeeds but
	// returns an empty set.
	NoRecipesMessage = "No recipes found for these ingredients."
)

// Ingredients renders the detected ingredient list, preceded by the
// free-text analysis when the service answered with prose.
func Ingredients(res *analysis.Result) string {
	var b strings.Builder
	b.WriteString("<h2>Detected Ingredients</h2>\n")
	if res.Analysis != "" {
		b.WriteString("<div class=\"analysis\">\n")
		b.WriteString(markdown.Render(res.Analysis))
		b.WriteString("\n</div>\n")
	}
	b.WriteString("<ul class=\"ingredients\">\n")
	for _, item := range res.Ingredients {
		fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(item))
	}
	b.WriteString("</ul>")
	return b.String()
}

// NoIngredients renders the empty-analysis message.
func NoIngredients() string {
	return "<p class=\"notice\">" + NoIngredientsMessage + "</p>"
}

// Recipes renders each recipe in input order, 1-indexed for display. When
// the set carries prose instead of structured recipes, the prose is
// rendered as markdown.
func Recipes(set *analysis.RecipeSet) string {
	if len(set.Recipes) == 0 && set.Prose != "" {
		return "<h2>Recipes</h2>\n<div class=\"recipes\">\n" + markdown.Render(set.Prose) + "\n</div>"
	}

	var b strings.Builder
	b.WriteString("<h2>Recipes</h2>\n")
	for i, r := range set.Recipes {
		fmt.Fprintf(&b, "<section class=\"recipe\">\n<h3>%d. %s</h3>\n", i+1, html.EscapeString(r.Title))
		if len(r.Ingredients) > 0 {
			b.WriteString("<h4>Ingredients</h4>\n<ul>\n")
			for _, item := range r.Ingredients {
				fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(item))
			}
			b.WriteString("</ul>\n")
		}
		if len(r.Instructions) > 0 {
			b.WriteString("<h4>Instructions</h4>\n<ol>\n")
			for _, step := range r.Instructions {
				fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(step))
			}
			b.WriteString("</ol>\n")
		}
		if len(r.Nutrition) > 0 {
			b.WriteString("<h4>Nutrition</h4>\n<table class=\"nutrition\">\n")
			names := make([]string, 0, len(r.Nutrition))
			for name := range r.Nutrition {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td></tr>\n",
					html.EscapeString(name), html.EscapeString(r.Nutrition[name]))
			}
			b.WriteString("</table>\n")
		}
		b.WriteString("</section>")
		if i < len(set.Recipes)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// NoRecipes renders the empty-recipes message.
func NoRecipes() string {
	return "<p class=\"notice\">" + NoRecipesMessage + "</p>"
}

// Warning renders an inline validation warning.
func Warning(msg string) string {
	return "<p class=\"warning\">" + html.EscapeString(msg) + "</p>"
}

// ErrorBlock renders a clearly marked error block.
func ErrorBlock(msg string) string {
	return "<div class=\"error\"><strong>Something went wrong:</strong> " + html.EscapeString(msg) + "</div>"
}
