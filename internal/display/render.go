package display

import (
	"fmt"
	"strings"

	"github.com/hammamikhairi/recipebot/internal/domain"
)

// RenderRecipes lays out recipes in order, each title followed by its
// numbered steps or its placeholder text, wrapped to width.
func RenderRecipes(recipes []domain.HydratedRecipe, width int) string {
	if width <= 0 {
		width = 80
	}
	body := width - 6
	if body < 20 {
		body = 20
	}

	var b strings.Builder
	for i, r := range recipes {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(titleStyle.Render(r.Title))
		b.WriteByte('\n')

		if r.Instructions.IsPlaceholder() {
			b.WriteString(placeholderStyle.Render("  " + r.Instructions.Note))
			b.WriteByte('\n')
			continue
		}

		for _, s := range r.Instructions.Steps {
			num := stepStyle.Render(fmt.Sprintf("%3d. ", s.Number))
			text := primaryStyle.Width(body).Render(s.Instruction)
			// Indent continuation lines under the text column.
			text = strings.ReplaceAll(text, "\n", "\n     ")
			b.WriteString(num + text)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
