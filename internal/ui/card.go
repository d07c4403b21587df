package ui

import (
	"fmt"
	"strings"

	"github.com/jain-bhavna/recipe-ai-app/internal/client/models"
)

// ResultCard renders a detection with its confidence badge and the
// nutrition summary.
func ResultCard(d models.Detection, n models.Nutrition) string {
	lines := []string{
		StyleTitle.Render(d.Label()),
		StyleBadge.Render(d.ConfidenceLabel()),
		"",
		fmt.Sprintf("Calories  %d", n.Calories),
		fmt.Sprintf("Protein   %dg", n.ProteinGrams),
		fmt.Sprintf("Fat       %dg", n.FatGrams),
	}
	return StyleCard.Render(strings.Join(lines, "\n"))
}
