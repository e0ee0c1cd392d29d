package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mealbuddy/server/internal/storage"
)

// DemoUserID is the account the seed data belongs to. With AUTH_REQUIRED=0
// requests without a token fall back to this user.
const DemoUserID = "demo-user"

// Seed loads a small demo dataset: a few recipes, a planned week and a
// shopping list. Local mode only.
func Seed(ctx context.Context, m *MemoryStorage) error {
	now := time.Now().UTC()
	today := now.Format("2006-01-02")

	recipes := []storage.Recipe{
		{
			ID:          uuid.New().String(),
			OwnerUserID: DemoUserID,
			Name:        "Spaghetti Carbonara",
			Description: "Classic Roman pasta with eggs, cheese and pancetta.",
			PrepTimeMin: 10,
			CookTimeMin: 20,
			Difficulty:  "medium",
			Rating:      4.7,
			Calories:    650,
			Servings:    4,
			Category:    "Pasta",
			Tags:        []string{"italian", "dinner", "quick"},
			Ingredients: []storage.Ingredient{
				{Name: "Spaghetti", Quantity: 400, Unit: "g", Category: "Grains & Pasta"},
				{Name: "Eggs", Quantity: 4, Unit: "pcs", Category: "Dairy & Eggs"},
				{Name: "Pancetta", Quantity: 150, Unit: "g", Category: "Meat & Fish"},
				{Name: "Pecorino Romano", Quantity: 100, Unit: "g", Category: "Dairy & Eggs"},
			},
			Instructions: []storage.Instruction{
				{Step: 1, Description: "Boil the spaghetti in salted water.", TimerMin: 9},
				{Step: 2, Description: "Fry the pancetta until crisp."},
				{Step: 3, Description: "Whisk eggs with grated cheese, toss off heat."},
			},
			Nutrition: storage.NutritionInfo{Calories: 650, ProteinG: 28, CarbsG: 72, FatG: 26, SodiumMg: 900},
			Author:    "MealBuddy Kitchen",
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          uuid.New().String(),
			OwnerUserID: DemoUserID,
			Name:        "Greek Salad",
			Description: "Tomatoes, cucumber, olives and feta.",
			PrepTimeMin: 15,
			CookTimeMin: 0,
			Difficulty:  "easy",
			Rating:      4.4,
			Calories:    320,
			Servings:    2,
			Category:    "Salads",
			Tags:        []string{"vegetarian", "lunch", "fresh"},
			Ingredients: []storage.Ingredient{
				{Name: "Tomatoes", Quantity: 3, Unit: "pcs", Category: "Fruits & Vegetables"},
				{Name: "Cucumber", Quantity: 1, Unit: "pcs", Category: "Fruits & Vegetables"},
				{Name: "Feta", Quantity: 150, Unit: "g", Category: "Dairy & Eggs"},
				{Name: "Olives", Quantity: 80, Unit: "g", Category: "Canned Goods"},
				{Name: "Olive oil", Quantity: 30, Unit: "ml", Category: "Condiments & Spices"},
			},
			Instructions: []storage.Instruction{
				{Step: 1, Description: "Chop the vegetables coarsely."},
				{Step: 2, Description: "Combine, top with feta and olives, dress with oil."},
			},
			Nutrition: storage.NutritionInfo{Calories: 320, ProteinG: 10, CarbsG: 14, FatG: 25, FiberG: 4},
			Author:    "MealBuddy Kitchen",
			IsFavorite: true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          uuid.New().String(),
			OwnerUserID: DemoUserID,
			Name:        "Overnight Oats",
			Description: "No-cook breakfast with oats, milk and berries.",
			PrepTimeMin: 5,
			CookTimeMin: 0,
			Difficulty:  "easy",
			Rating:      4.2,
			Calories:    380,
			Servings:    1,
			Category:    "Breakfast",
			Tags:        []string{"breakfast", "make-ahead"},
			Ingredients: []storage.Ingredient{
				{Name: "Rolled oats", Quantity: 60, Unit: "g", Category: "Grains & Pasta"},
				{Name: "Milk", Quantity: 200, Unit: "ml", Category: "Dairy & Eggs"},
				{Name: "Blueberries", Quantity: 100, Unit: "g", Category: "Fruits & Vegetables"},
				{Name: "Honey", Quantity: 15, Unit: "ml", Category: "Condiments & Spices"},
			},
			Instructions: []storage.Instruction{
				{Step: 1, Description: "Stir everything together in a jar."},
				{Step: 2, Description: "Refrigerate overnight.", TimerMin: 480},
			},
			Nutrition: storage.NutritionInfo{Calories: 380, ProteinG: 14, CarbsG: 60, FatG: 9, SugarG: 22},
			Author:    "MealBuddy Kitchen",
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	for i := range recipes {
		if err := m.CreateRecipe(ctx, &recipes[i]); err != nil {
			return err
		}
	}

	weekday := func(date string) string {
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			return ""
		}
		return map[time.Weekday]string{
			time.Monday: "monday", time.Tuesday: "tuesday", time.Wednesday: "wednesday",
			time.Thursday: "thursday", time.Friday: "friday", time.Saturday: "saturday",
			time.Sunday: "sunday",
		}[t.Weekday()]
	}

	meals := []storage.PlannedMeal{
		{
			ID:          uuid.New().String(),
			OwnerUserID: DemoUserID,
			RecipeID:    recipes[2].ID,
			RecipeName:  recipes[2].Name,
			MealType:    "breakfast",
			Day:         weekday(today),
			Date:        today,
			Servings:    1,
			Calories:    recipes[2].Calories,
			CookTime:    "5 min",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          uuid.New().String(),
			OwnerUserID: DemoUserID,
			RecipeID:    recipes[0].ID,
			RecipeName:  recipes[0].Name,
			MealType:    "dinner",
			Day:         weekday(today),
			Date:        today,
			Servings:    4,
			Calories:    recipes[0].Calories,
			CookTime:    "30 min",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	if err := m.ReplacePlannedMeals(ctx, DemoUserID, meals); err != nil {
		return err
	}

	items := []storage.ShoppingItem{
		{
			ID: uuid.New().String(), OwnerUserID: DemoUserID,
			Name: "Spaghetti", Category: "Grains & Pasta", Quantity: 400, Unit: "g",
			Status: "pending", Priority: "high", EstimatedPrice: 1.80,
			IsFromRecipe: true, RecipeIDs: []string{recipes[0].ID}, RecipeNames: []string{recipes[0].Name},
			AddedDate: today, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: uuid.New().String(), OwnerUserID: DemoUserID,
			Name: "Milk", Category: "Dairy & Eggs", Quantity: 1, Unit: "l",
			Status: "purchased", Priority: "medium", EstimatedPrice: 1.20, ActualPrice: 1.15,
			AddedDate: today, PurchasedDate: today, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: uuid.New().String(), OwnerUserID: DemoUserID,
			Name: "Blueberries", Category: "Fruits & Vegetables", Quantity: 200, Unit: "g",
			Status: "pending", Priority: "low", EstimatedPrice: 3.50,
			AddedDate: today, CreatedAt: now, UpdatedAt: now,
		},
	}
	return m.ReplaceShoppingItems(ctx, DemoUserID, items)
}
