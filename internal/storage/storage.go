package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is a registered MealBuddy account.
type User struct {
	ID               string
	Email            string
	Username         string
	PasswordHash     string
	EmailVerified    bool
	TwoFactorEnabled bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// UsersStorage manages user accounts.
type UsersStorage interface {
	CreateUser(ctx context.Context, user *User) error

	// GetUserByEmail returns nil, nil when no user exists for the email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	GetUserByID(ctx context.Context, id string) (*User, error)

	UpdateUser(ctx context.Context, user *User) error
}

// Ingredient is one line of a recipe's ingredient list. Category is the
// shopping category the ingredient lands in when a list is generated.
type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Notes    string  `json:"notes,omitempty"`
	Category string  `json:"category,omitempty"`
}

// Instruction is one numbered recipe step.
type Instruction struct {
	Step        int    `json:"step"`
	Description string `json:"description"`
	TimerMin    int    `json:"timer_min,omitempty"`
}

// NutritionInfo is the per-serving nutrition snapshot of a recipe.
type NutritionInfo struct {
	Calories int `json:"calories"`
	ProteinG int `json:"protein_g"`
	CarbsG   int `json:"carbs_g"`
	FatG     int `json:"fat_g"`
	FiberG   int `json:"fiber_g"`
	SugarG   int `json:"sugar_g"`
	SodiumMg int `json:"sodium_mg"`
}

// Recipe is a stored recipe owned by a user.
type Recipe struct {
	ID           string
	OwnerUserID  string
	Name         string
	Description  string
	Image        string // URL or blob key
	PrepTimeMin  int
	CookTimeMin  int
	Difficulty   string // easy | medium | hard
	Rating       float64
	Calories     int
	Servings     int
	Category     string
	Tags         []string
	Ingredients  []Ingredient
	Instructions []Instruction
	Nutrition    NutritionInfo
	Author       string
	IsFavorite   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RecipesStorage manages stored recipes.
type RecipesStorage interface {
	// ListRecipes returns all recipes of a user in creation order.
	ListRecipes(ctx context.Context, ownerUserID string) ([]Recipe, error)

	// GetRecipe returns nil, nil when the recipe does not exist.
	GetRecipe(ctx context.Context, ownerUserID, id string) (*Recipe, error)

	CreateRecipe(ctx context.Context, recipe *Recipe) error

	UpdateRecipe(ctx context.Context, recipe *Recipe) error

	DeleteRecipe(ctx context.Context, ownerUserID, id string) error
}

// PlannedMeal is one meal assignment on the weekly plan. RecipeName and
// RecipeImage are denormalized snapshots taken when the meal was planned;
// later recipe edits do not touch past plan entries. Day always equals the
// weekday name of Date.
type PlannedMeal struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"-"`
	RecipeID    string    `json:"recipe_id"`
	RecipeName  string    `json:"recipe_name"`
	RecipeImage string    `json:"recipe_image"`
	MealType    string    `json:"meal_type"` // breakfast | lunch | dinner | snack
	Day         string    `json:"day"`       // weekday name derived from Date
	Date        string    `json:"date"`      // YYYY-MM-DD
	Servings    int       `json:"servings"`
	Calories    int       `json:"calories"` // 0 when unknown
	CookTime    string    `json:"cook_time"`
	Notes       string    `json:"notes"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PlannedMealsStorage holds the full planned-meal collection per user.
// The plan is always rewritten as a whole: the service loads the collection,
// applies a pure transformation and stores the result back.
type PlannedMealsStorage interface {
	// ListPlannedMeals returns the user's meals in insertion order.
	ListPlannedMeals(ctx context.Context, ownerUserID string) ([]PlannedMeal, error)

	// ReplacePlannedMeals atomically replaces the user's collection.
	ReplacePlannedMeals(ctx context.Context, ownerUserID string, meals []PlannedMeal) error
}

// ShoppingItem is one product on the shopping list.
type ShoppingItem struct {
	ID             string    `json:"id"`
	OwnerUserID    string    `json:"-"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	Quantity       float64   `json:"quantity"`
	Unit           string    `json:"unit"`
	Status         string    `json:"status"`          // pending | in-cart | purchased | unavailable
	Priority       string    `json:"priority"`        // low | medium | high | urgent
	EstimatedPrice float64   `json:"estimated_price"` // 0 when unknown
	ActualPrice    float64   `json:"actual_price"`    // set when purchased
	Notes          string    `json:"notes"`
	IsFromRecipe   bool      `json:"is_from_recipe"`
	RecipeIDs      []string  `json:"recipe_ids"`
	RecipeNames    []string  `json:"recipe_names"`
	AddedDate      string    `json:"added_date"`     // YYYY-MM-DD
	PurchasedDate  string    `json:"purchased_date"` // empty until purchased
	Alternatives   []string  `json:"alternatives"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ShoppingItemsStorage holds the full shopping-item collection per user,
// replaced as a whole like PlannedMealsStorage.
type ShoppingItemsStorage interface {
	ListShoppingItems(ctx context.Context, ownerUserID string) ([]ShoppingItem, error)

	ReplaceShoppingItems(ctx context.Context, ownerUserID string, items []ShoppingItem) error
}

// EmailOTP is one email one-time code (verification or two-factor).
type EmailOTP struct {
	ID          uuid.UUID
	Email       string
	Purpose     string // verify | 2fa
	CodeHash    string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Attempts    int
	MaxAttempts int
	LastSentAt  time.Time
	SendCount   int
}

// EmailOTPStorage manages one-time email codes.
type EmailOTPStorage interface {
	// CreateOrReplace creates a new active OTP for the email+purpose pair,
	// replacing any previous active one.
	CreateOrReplace(ctx context.Context, email, purpose, codeHash string, expiresAt, now time.Time, maxAttempts int) (uuid.UUID, error)

	// GetLatestActive returns the freshest unexpired OTP, nil when none.
	GetLatestActive(ctx context.Context, email, purpose string, now time.Time) (*EmailOTP, error)

	// IncrementAttempts bumps the failed-attempt counter.
	IncrementAttempts(ctx context.Context, id uuid.UUID) error

	// MarkUsedOrDelete consumes the OTP (deleted outright).
	MarkUsedOrDelete(ctx context.Context, id uuid.UUID) error

	// UpdateResendMeta updates resend bookkeeping.
	UpdateResendMeta(ctx context.Context, id uuid.UUID, lastSentAt time.Time, sendCount int) error
}

// RecipeImagesStorage keeps uploaded recipe images when the blob store runs
// in local mode (S3 mode bypasses it).
type RecipeImagesStorage interface {
	PutRecipeImage(ctx context.Context, ownerUserID, recipeID string, data []byte, contentType string) error

	// GetRecipeImage returns data and content type. nil data means not found.
	GetRecipeImage(ctx context.Context, ownerUserID, recipeID string) ([]byte, string, error)

	DeleteRecipeImage(ctx context.Context, ownerUserID, recipeID string) error
}

// Storage is the full persistence surface of the server.
type Storage interface {
	UsersStorage
	RecipesStorage
	PlannedMealsStorage
	ShoppingItemsStorage
	EmailOTPStorage
	RecipeImagesStorage

	// Close releases the underlying connection (Postgres).
	Close() error
}
