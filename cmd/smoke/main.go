package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const defaultAPIBase = "http://localhost:8080"

var (
	apiBase  string
	token    string
	client   = &http.Client{Timeout: 30 * time.Second}
	testDate string

	createdRecipeID string
	createdMealID   string
	createdItemID   string
)

func main() {
	fmt.Println("=== MealBuddy E2E Smoke Test ===")
	fmt.Println()

	apiBase = getEnv("API_BASE_URL", defaultAPIBase)
	token = getEnv("SMOKE_TOKEN", "")

	fmt.Printf("API Base: %s\n", apiBase)
	fmt.Printf("Token: %s\n", maskString(token))
	fmt.Println()

	testDate = time.Now().Format("2006-01-02")

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Healthz", testHealthz},
		{"Create Recipe", testCreateRecipe},
		{"List Recipes", testListRecipes},
		{"Toggle Favorite", testToggleFavorite},
		{"Plan Meal", testPlanMeal},
		{"Get Week Plan", testGetWeekPlan},
		{"Generate Shopping List", testGenerateShoppingList},
		{"Shopping Summary", testShoppingSummary},
		{"Advance Shopping Item", testAdvanceShoppingItem},
		{"Export Shopping List (CSV)", testExportShoppingList},
		{"Cleanup", testCleanup},
	}

	failed := false
	for i, step := range steps {
		fmt.Printf("[%d/%d] %s... ", i+1, len(steps), step.name)
		if err := step.fn(); err != nil {
			fmt.Printf("FAILED\n")
			fmt.Printf("  Error: %v\n\n", err)
			failed = true
			break
		}
		fmt.Printf("OK\n")
	}

	fmt.Println()
	if failed {
		fmt.Println("SMOKE TEST FAILED")
		os.Exit(1)
	}
	fmt.Println("ALL SMOKE TESTS PASSED")
}

func testHealthz() error {
	resp, err := doRequest("GET", "/healthz", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusOK)
}

func testCreateRecipe() error {
	payload := map[string]any{
		"name":          "Smoke Test Pasta",
		"description":   "Created by the smoke test",
		"cook_time_min": 15,
		"difficulty":    "easy",
		"servings":      2,
		"calories":      500,
		"category":      "Pasta",
		"ingredients": []map[string]any{
			{"name": "Penne", "quantity": 200, "unit": "g", "category": "Grains & Pasta"},
			{"name": "Tomato sauce", "quantity": 150, "unit": "ml", "category": "Canned Goods"},
		},
	}

	resp, err := doRequest("POST", "/v1/recipes", payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := expectStatus(resp, http.StatusCreated); err != nil {
		return err
	}

	var recipe struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&recipe); err != nil {
		return err
	}
	if recipe.ID == "" {
		return fmt.Errorf("no recipe id in response")
	}
	createdRecipeID = recipe.ID
	return nil
}

func testListRecipes() error {
	resp, err := doRequest("GET", "/v1/recipes?q=smoke", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}

	var list struct {
		Total int `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return err
	}
	if list.Total == 0 {
		return fmt.Errorf("expected the smoke recipe in search results")
	}
	return nil
}

func testToggleFavorite() error {
	resp, err := doRequest("POST", "/v1/recipes/"+createdRecipeID+"/favorite", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusOK)
}

func testPlanMeal() error {
	payload := map[string]any{
		"recipe_id": createdRecipeID,
		"date":      testDate,
		"meal_type": "dinner",
		"servings":  2,
	}

	resp, err := doRequest("POST", "/v1/mealplan/meals", payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := expectStatus(resp, http.StatusCreated); err != nil {
		return err
	}

	var meal struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&meal); err != nil {
		return err
	}
	createdMealID = meal.ID
	return nil
}

func testGetWeekPlan() error {
	resp, err := doRequest("GET", "/v1/mealplan/week?date="+testDate, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}

	var week struct {
		Days  []json.RawMessage `json:"days"`
		Stats struct {
			TotalMeals int `json:"total_meals"`
		} `json:"stats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&week); err != nil {
		return err
	}
	if len(week.Days) != 7 {
		return fmt.Errorf("expected 7 days, got %d", len(week.Days))
	}
	if week.Stats.TotalMeals == 0 {
		return fmt.Errorf("expected the planned meal in week stats")
	}
	return nil
}

func testGenerateShoppingList() error {
	resp, err := doRequest("POST", "/v1/shopping/generate", map[string]any{"meal_ids": []string{createdMealID}})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := expectStatus(resp, http.StatusCreated); err != nil {
		return err
	}

	var gen struct {
		Created []struct {
			ID string `json:"id"`
		} `json:"created"`
		CreatedCount int `json:"created_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		return err
	}
	if gen.CreatedCount == 0 {
		return fmt.Errorf("expected generated shopping items")
	}
	createdItemID = gen.Created[0].ID
	return nil
}

func testShoppingSummary() error {
	resp, err := doRequest("GET", "/v1/shopping/summary", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}

	var summary struct {
		Stats struct {
			Total int `json:"total"`
		} `json:"stats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return err
	}
	if summary.Stats.Total == 0 {
		return fmt.Errorf("expected items in summary")
	}
	return nil
}

func testAdvanceShoppingItem() error {
	resp, err := doRequest("POST", "/v1/shopping/items/"+createdItemID+"/advance", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusOK)
}

func testExportShoppingList() error {
	resp, err := doRequest("GET", "/v1/shopping/export?format=csv", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		return fmt.Errorf("expected text/csv, got %q", ct)
	}
	return nil
}

func testCleanup() error {
	paths := []string{
		"/v1/shopping/items/" + createdItemID,
		"/v1/mealplan/meals/" + createdMealID,
		"/v1/recipes/" + createdRecipeID,
	}
	for _, path := range paths {
		resp, err := doRequest("DELETE", path, nil)
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			return fmt.Errorf("DELETE %s: status=%d", path, resp.StatusCode)
		}
	}
	return nil
}

// ---- helpers ----

func doRequest(method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, apiBase+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return client.Do(req)
}

func expectStatus(resp *http.Response, want int) error {
	if resp.StatusCode != want {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status=%d want=%d body=%s", resp.StatusCode, want, string(body))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func maskString(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
