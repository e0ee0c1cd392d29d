package recipes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mealbuddy/server/internal/blob"
	"github.com/mealbuddy/server/internal/storage"
	"github.com/mealbuddy/server/internal/userctx"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid request")
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrImageNotFound  = errors.New("image not found")
)

// Filters narrows the recipe list. Zero values mean "no constraint"; the
// search term matches name, description or tags case-insensitively.
type Filters struct {
	Search         string
	Category       string
	Difficulty     string
	MaxCookMinutes int
	MinRating      float64
	FavoritesOnly  bool
}

// Service provides recipe management. Images go through the blob store when
// one is configured; otherwise their bytes live in the images storage and
// are served back from the API itself.
type Service struct {
	recipesStorage storage.RecipesStorage
	imagesStorage  storage.RecipeImagesStorage
	blobStore      blob.Store
	publicBaseURL  string
	now            func() time.Time
}

// NewService creates a new recipes service. blobStore may be nil (local
// image mode); publicBaseURL is only consulted when it is not.
func NewService(recipesStorage storage.RecipesStorage, imagesStorage storage.RecipeImagesStorage, blobStore blob.Store, publicBaseURL string) *Service {
	return &Service{
		recipesStorage: recipesStorage,
		imagesStorage:  imagesStorage,
		blobStore:      blobStore,
		publicBaseURL:  strings.TrimRight(publicBaseURL, "/"),
		now:            time.Now,
	}
}

// List returns the user's recipes in creation order, narrowed by filters.
func (s *Service) List(ctx context.Context, filters Filters) (*ListResponse, error) {
	userID := userctx.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	all, err := s.recipesStorage.ListRecipes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	out := make([]RecipeDTO, 0, len(all))
	for _, recipe := range all {
		if !matchesFilters(recipe, filters) {
			continue
		}
		out = append(out, toDTO(recipe))
	}

	return &ListResponse{Recipes: out, Total: len(out)}, nil
}

// Get returns one recipe by id.
func (s *Service) Get(ctx context.Context, id string) (*RecipeDTO, error) {
	userID := userctx.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	recipe, err := s.recipesStorage.GetRecipe(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	if recipe == nil {
		return nil, ErrRecipeNotFound
	}

	dto := toDTO(*recipe)
	return &dto, nil
}

// Create stores a new recipe and returns it.
func (s *Service) Create(ctx context.Context, req CreateRecipeRequest) (*RecipeDTO, error) {
	userID := userctx.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if err := validateRecipeFields(req.Name, req.Difficulty, req.Rating, req.Servings); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	servings := req.Servings
	if servings <= 0 {
		servings = 1
	}

	recipe := storage.Recipe{
		ID:           uuid.New().String(),
		OwnerUserID:  userID,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Image:        req.Image,
		PrepTimeMin:  req.PrepTimeMin,
		CookTimeMin:  req.CookTimeMin,
		Difficulty:   req.Difficulty,
		Rating:       req.Rating,
		Calories:     req.Calories,
		Servings:     servings,
		Category:     req.Category,
		Tags:         req.Tags,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		Nutrition:    req.Nutrition,
		Author:       req.Author,
		IsFavorite:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.recipesStorage.CreateRecipe(ctx, &recipe); err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	dto := toDTO(recipe)
	return &dto, nil
}

// Update applies the non-nil fields of the request to an existing recipe.
func (s *Service) Update(ctx context.Context, id string, req UpdateRecipeRequest) (*RecipeDTO, error) {
	userID := userctx.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	recipe, err := s.recipesStorage.GetRecipe(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	if recipe == nil {
		return nil, ErrRecipeNotFound
	}

	if req.Name != nil {
		recipe.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		recipe.Description = *req.Description
	}
	if req.Image != nil {
		recipe.Image = *req.Image
	}
	if req.PrepTimeMin != nil {
		recipe.PrepTimeMin = *req.PrepTimeMin
	}
	if req.CookTimeMin != nil {
		recipe.CookTimeMin = *req.CookTimeMin
	}
	if req.Difficulty != nil {
		recipe.Difficulty = *req.Difficulty
	}
	if req.Rating != nil {
		recipe.Rating = *req.Rating
	}
	if req.Calories != nil {
		recipe.Calories = *req.Calories
	}
	if req.Servings != nil {
		recipe.Servings = *req.Servings
	}
	if req.Category != nil {
		recipe.Category = *req.Category
	}
	if req.Tags != nil {
		recipe.Tags = *req.Tags
	}
	if req.Ingredients != nil {
		recipe.Ingredients = *req.Ingredients
	}
	if req.Instructions != nil {
		recipe.Instructions = *req.Instructions
	}
	if req.Nutrition != nil {
		recipe.Nutrition = *req.Nutrition
	}
	if req.Author != nil {
		recipe.Author = *req.Author
	}

	if err := validateRecipeFields(recipe.Name, recipe.Difficulty, recipe.Rating, recipe.Servings); err != nil {
		return nil, err
	}

	recipe.UpdatedAt = s.now().UTC()
	if err := s.recipesStorage.UpdateRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	dto := toDTO(*recipe)
	return &dto, nil
}

// Delete removes a recipe and its locally stored image, if any.
func (s *Service) Delete(ctx context.Context, id string) error {
	userID := userctx.GetUserID(ctx)
	if userID == "" {
		return ErrUnauthorized
	}

	recipe, err := s.recipesStorage.GetRecipe(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("get recipe: %w", err)
	}
	if recipe == nil {
		return ErrRecipeNotFound
	}

	if err := s.recipesStorage.DeleteRecipe(ctx, userID, id); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}

	// Image cleanup is best effort; the recipe row is already gone.
	if s.blobStore != nil {
		_ = s.blobStore.DeleteObject(ctx, imageKey(userID, id))
	} else if s.imagesStorage != nil {
		_ = s.imagesStorage.DeleteRecipeImage(ctx, userID, id)
	}
	return nil
}

// ToggleFavorite flips the favorite flag and returns the updated recipe.
func (s *Service) ToggleFavorite(ctx context.Context, id string) (*RecipeDTO, error) {
	userID := userctx.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	recipe, err := s.recipesStorage.GetRecipe(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	if recipe == nil {
		return nil, ErrRecipeNotFound
	}

	recipe.IsFavorite = !recipe.IsFavorite
	recipe.UpdatedAt = s.now().UTC()
	if err := s.recipesStorage.UpdateRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	dto := toDTO(*recipe)
	return &dto, nil
}

// UploadImage stores a recipe image and records its URL on the recipe.
// With a blob store the bytes go to object storage and the URL points at
// the public base; in local mode the bytes land in the database and the
// URL points back at this API.
func (s *Service) UploadImage(ctx context.Context, recipeID string, data []byte, contentType string) (string, error) {
	userID := userctx.GetUserID(ctx)
	if userID == "" {
		return "", ErrUnauthorized
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image payload", ErrInvalidRequest)
	}

	recipe, err := s.recipesStorage.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		return "", fmt.Errorf("get recipe: %w", err)
	}
	if recipe == nil {
		return "", ErrRecipeNotFound
	}

	var imageURL string
	if s.blobStore != nil {
		key := imageKey(userID, recipeID)
		if _, err := s.blobStore.PutObject(ctx, key, data, contentType); err != nil {
			return "", fmt.Errorf("put image object: %w", err)
		}
		if s.publicBaseURL != "" {
			imageURL = s.publicBaseURL + "/" + key
		} else {
			imageURL, err = s.blobStore.PresignGet(ctx, key, 7*24*3600)
			if err != nil {
				return "", fmt.Errorf("presign image: %w", err)
			}
		}
	} else {
		if err := s.imagesStorage.PutRecipeImage(ctx, userID, recipeID, data, contentType); err != nil {
			return "", fmt.Errorf("store image: %w", err)
		}
		imageURL = "/v1/recipes/" + recipeID + "/image"
	}

	recipe.Image = imageURL
	recipe.UpdatedAt = s.now().UTC()
	if err := s.recipesStorage.UpdateRecipe(ctx, recipe); err != nil {
		return "", fmt.Errorf("update recipe: %w", err)
	}
	return imageURL, nil
}

// GetImage returns the stored image bytes and content type. Only meaningful
// in local image mode; S3-backed images are fetched from the public URL.
func (s *Service) GetImage(ctx context.Context, recipeID string) ([]byte, string, error) {
	userID := userctx.GetUserID(ctx)
	if userID == "" {
		return nil, "", ErrUnauthorized
	}

	if s.blobStore != nil {
		data, err := s.blobStore.GetObject(ctx, imageKey(userID, recipeID))
		if err != nil {
			return nil, "", ErrImageNotFound
		}
		return data, "application/octet-stream", nil
	}

	data, contentType, err := s.imagesStorage.GetRecipeImage(ctx, userID, recipeID)
	if err != nil {
		return nil, "", fmt.Errorf("get image: %w", err)
	}
	if data == nil {
		return nil, "", ErrImageNotFound
	}
	return data, contentType, nil
}

func imageKey(userID, recipeID string) string {
	return fmt.Sprintf("recipes/%s/%s", userID, recipeID)
}

func matchesFilters(r storage.Recipe, f Filters) bool {
	if f.Category != "" && !strings.EqualFold(r.Category, f.Category) {
		return false
	}
	if f.Difficulty != "" && r.Difficulty != f.Difficulty {
		return false
	}
	if f.MaxCookMinutes > 0 && r.CookTimeMin > f.MaxCookMinutes {
		return false
	}
	if f.MinRating > 0 && r.Rating < f.MinRating {
		return false
	}
	if f.FavoritesOnly && !r.IsFavorite {
		return false
	}

	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(r.Name), term) {
		return true
	}
	if strings.Contains(strings.ToLower(r.Description), term) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func validateRecipeFields(name, difficulty string, rating float64, servings int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	switch difficulty {
	case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return fmt.Errorf("%w: difficulty must be easy, medium or hard", ErrInvalidRequest)
	}
	if rating < 0 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 0 and 5", ErrInvalidRequest)
	}
	if servings < 0 {
		return fmt.Errorf("%w: servings must be positive", ErrInvalidRequest)
	}
	return nil
}
