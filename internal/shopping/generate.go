package shopping

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mealbuddy/server/internal/storage"
)

// GenerateItems expands the ingredients of the given planned meals into
// shopping items. Ingredients are consolidated by (name, unit) with
// quantities scaled by meal servings over recipe servings; each item carries
// the ingredient's category (default "Other"), medium priority, pending
// status and the provenance of every contributing recipe. Items come out in
// first-appearance order.
func GenerateItems(meals []storage.PlannedMeal, recipesByID map[string]storage.Recipe, now time.Time) []storage.ShoppingItem {
	type entry struct {
		item        *storage.ShoppingItem
		recipeIDSet map[string]bool
	}

	index := make(map[string]*entry)
	order := make([]string, 0)
	addedDate := now.Format("2006-01-02")

	for _, meal := range meals {
		recipe, ok := recipesByID[meal.RecipeID]
		if !ok {
			continue
		}

		recipeServings := recipe.Servings
		if recipeServings <= 0 {
			recipeServings = 1
		}
		scale := float64(meal.Servings) / float64(recipeServings)
		if meal.Servings <= 0 {
			scale = 1
		}

		for _, ing := range recipe.Ingredients {
			name := strings.TrimSpace(ing.Name)
			if name == "" {
				continue
			}
			key := strings.ToLower(name) + "|" + strings.TrimSpace(ing.Unit)

			e, ok := index[key]
			if !ok {
				category := strings.TrimSpace(ing.Category)
				if category == "" {
					category = "Other"
				}
				e = &entry{
					item: &storage.ShoppingItem{
						ID:           uuid.New().String(),
						OwnerUserID:  meal.OwnerUserID,
						Name:         name,
						Category:     category,
						Unit:         strings.TrimSpace(ing.Unit),
						Status:       StatusPending,
						Priority:     PriorityMedium,
						IsFromRecipe: true,
						RecipeIDs:    []string{},
						RecipeNames:  []string{},
						AddedDate:    addedDate,
						Alternatives: []string{},
						CreatedAt:    now,
						UpdatedAt:    now,
					},
					recipeIDSet: make(map[string]bool),
				}
				index[key] = e
				order = append(order, key)
			}

			e.item.Quantity += ing.Quantity * scale
			if !e.recipeIDSet[recipe.ID] {
				e.recipeIDSet[recipe.ID] = true
				e.item.RecipeIDs = append(e.item.RecipeIDs, recipe.ID)
				e.item.RecipeNames = append(e.item.RecipeNames, recipe.Name)
			}
		}
	}

	out := make([]storage.ShoppingItem, 0, len(order))
	for _, key := range order {
		out = append(out, *index[key].item)
	}
	return out
}
