package recipes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mealbuddy/server/internal/storage"
	"github.com/mealbuddy/server/internal/storage/memory"
	"github.com/mealbuddy/server/internal/userctx"
)

const testUserID = "user-1"

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	mem := memory.New()
	svc := NewService(mem, mem, nil, "")
	return NewHandlers(svc, 10, "image/jpeg,image/png")
}

func authedRequest(method, target string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(userctx.WithUserID(req.Context(), testUserID))
}

func createRecipe(t *testing.T, h *Handlers, req CreateRecipeRequest) RecipeDTO {
	t.Helper()
	body, _ := json.Marshal(req)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, authedRequest(http.MethodPost, "/v1/recipes", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var dto RecipeDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("create: decode response: %v", err)
	}
	return dto
}

func TestCreateGetListDelete(t *testing.T) {
	h := newTestHandlers(t)

	created := createRecipe(t, h, CreateRecipeRequest{
		Name:        "Spaghetti Carbonara",
		Description: "Roman pasta classic",
		CookTimeMin: 20,
		Difficulty:  DifficultyMedium,
		Rating:      4.5,
		Servings:    4,
		Category:    "Pasta",
		Tags:        []string{"italian", "quick"},
		Ingredients: []storage.Ingredient{
			{Name: "Spaghetti", Quantity: 400, Unit: "g", Category: "Grains & Pasta"},
		},
	})
	if created.ID == "" {
		t.Fatal("expected generated recipe id")
	}
	if created.IsFavorite {
		t.Fatal("new recipe must not be favorite")
	}

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodGet, "/v1/recipes/"+created.ID, nil)
	req.SetPathValue("id", created.ID)
	h.HandleGet(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleList(rec, authedRequest(http.MethodGet, "/v1/recipes", nil))
	var list ListResponse
	json.Unmarshal(rec.Body.Bytes(), &list)
	if list.Total != 1 || len(list.Recipes) != 1 {
		t.Fatalf("list: expected 1 recipe, got total=%d len=%d", list.Total, len(list.Recipes))
	}

	rec = httptest.NewRecorder()
	req = authedRequest(http.MethodDelete, "/v1/recipes/"+created.ID, nil)
	req.SetPathValue("id", created.ID)
	h.HandleDelete(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = authedRequest(http.MethodGet, "/v1/recipes/"+created.ID, nil)
	req.SetPathValue("id", created.ID)
	h.HandleGet(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rec.Code)
	}
}

func TestListFilters(t *testing.T) {
	h := newTestHandlers(t)

	createRecipe(t, h, CreateRecipeRequest{Name: "Greek Salad", Category: "Salads", Difficulty: DifficultyEasy, CookTimeMin: 0, Rating: 4.0, Tags: []string{"vegetarian"}})
	createRecipe(t, h, CreateRecipeRequest{Name: "Beef Stew", Category: "Mains", Difficulty: DifficultyHard, CookTimeMin: 120, Rating: 4.8})
	createRecipe(t, h, CreateRecipeRequest{Name: "Pancakes", Category: "Breakfast", Difficulty: DifficultyEasy, CookTimeMin: 15, Rating: 3.5})

	cases := []struct {
		name      string
		query     string
		wantNames []string
	}{
		{"search by name", "?q=stew", []string{"Beef Stew"}},
		{"search by tag", "?q=vegetarian", []string{"Greek Salad"}},
		{"by difficulty", "?difficulty=easy", []string{"Greek Salad", "Pancakes"}},
		{"by category", "?category=Mains", []string{"Beef Stew"}},
		{"max cook minutes", "?max_cook_minutes=30", []string{"Greek Salad", "Pancakes"}},
		{"min rating", "?min_rating=4.5", []string{"Beef Stew"}},
		{"combined", "?difficulty=easy&min_rating=4", []string{"Greek Salad"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleList(rec, authedRequest(http.MethodGet, "/v1/recipes"+tc.query, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			var list ListResponse
			json.Unmarshal(rec.Body.Bytes(), &list)

			got := make([]string, 0, len(list.Recipes))
			for _, r := range list.Recipes {
				got = append(got, r.Name)
			}
			if fmt.Sprint(got) != fmt.Sprint(tc.wantNames) {
				t.Fatalf("expected %v, got %v", tc.wantNames, got)
			}
		})
	}
}

func TestFavoriteToggleAndFilter(t *testing.T) {
	h := newTestHandlers(t)

	a := createRecipe(t, h, CreateRecipeRequest{Name: "Overnight Oats"})
	createRecipe(t, h, CreateRecipeRequest{Name: "Miso Soup"})

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/v1/recipes/"+a.ID+"/favorite", nil)
	req.SetPathValue("id", a.ID)
	h.HandleToggleFavorite(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: expected 200, got %d", rec.Code)
	}
	var toggled RecipeDTO
	json.Unmarshal(rec.Body.Bytes(), &toggled)
	if !toggled.IsFavorite {
		t.Fatal("expected is_favorite=true after toggle")
	}

	rec = httptest.NewRecorder()
	h.HandleList(rec, authedRequest(http.MethodGet, "/v1/recipes?favorites=1", nil))
	var list ListResponse
	json.Unmarshal(rec.Body.Bytes(), &list)
	if list.Total != 1 || list.Recipes[0].ID != a.ID {
		t.Fatalf("favorites filter: expected only %s, got %+v", a.ID, list.Recipes)
	}

	// Second toggle flips back.
	rec = httptest.NewRecorder()
	req = authedRequest(http.MethodPost, "/v1/recipes/"+a.ID+"/favorite", nil)
	req.SetPathValue("id", a.ID)
	h.HandleToggleFavorite(rec, req)
	json.Unmarshal(rec.Body.Bytes(), &toggled)
	if toggled.IsFavorite {
		t.Fatal("expected is_favorite=false after second toggle")
	}
}

func TestUpdateRecipePartial(t *testing.T) {
	h := newTestHandlers(t)

	created := createRecipe(t, h, CreateRecipeRequest{Name: "Chili", Category: "Mains", Servings: 4})

	newName := "Chili con Carne"
	newRating := 4.2
	body, _ := json.Marshal(UpdateRecipeRequest{Name: &newName, Rating: &newRating})

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPatch, "/v1/recipes/"+created.ID, body)
	req.SetPathValue("id", created.ID)
	h.HandleUpdate(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var updated RecipeDTO
	json.Unmarshal(rec.Body.Bytes(), &updated)
	if updated.Name != newName {
		t.Fatalf("expected name %q, got %q", newName, updated.Name)
	}
	if updated.Rating != newRating {
		t.Fatalf("expected rating %v, got %v", newRating, updated.Rating)
	}
	if updated.Category != "Mains" || updated.Servings != 4 {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
}

func TestCreateValidation(t *testing.T) {
	h := newTestHandlers(t)

	cases := []struct {
		name string
		req  CreateRecipeRequest
	}{
		{"empty name", CreateRecipeRequest{Name: "   "}},
		{"bad difficulty", CreateRecipeRequest{Name: "X", Difficulty: "extreme"}},
		{"rating out of range", CreateRecipeRequest{Name: "X", Rating: 7}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.req)
			rec := httptest.NewRecorder()
			h.HandleCreate(rec, authedRequest(http.MethodPost, "/v1/recipes", body))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestImageUploadAndServeLocal(t *testing.T) {
	h := newTestHandlers(t)

	created := createRecipe(t, h, CreateRecipeRequest{Name: "Focaccia"})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="image"; filename="focaccia.png"`}
	hdr["Content-Type"] = []string{"image/png"}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("fake-png-bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/recipes/"+created.ID+"/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(userctx.WithUserID(req.Context(), testUserID))
	req.SetPathValue("id", created.ID)

	rec := httptest.NewRecorder()
	h.HandleUploadImage(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp UploadImageResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	wantURL := "/v1/recipes/" + created.ID + "/image"
	if resp.ImageURL != wantURL {
		t.Fatalf("expected image url %q, got %q", wantURL, resp.ImageURL)
	}

	// The recipe record now points at the served URL.
	rec = httptest.NewRecorder()
	getReq := authedRequest(http.MethodGet, "/v1/recipes/"+created.ID, nil)
	getReq.SetPathValue("id", created.ID)
	h.HandleGet(rec, getReq)
	var dto RecipeDTO
	json.Unmarshal(rec.Body.Bytes(), &dto)
	if dto.Image != wantURL {
		t.Fatalf("expected recipe image %q, got %q", wantURL, dto.Image)
	}

	rec = httptest.NewRecorder()
	imgReq := authedRequest(http.MethodGet, wantURL, nil)
	imgReq.SetPathValue("id", created.ID)
	h.HandleGetImage(rec, imgReq)
	if rec.Code != http.StatusOK {
		t.Fatalf("serve image: expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Fatalf("expected image/png, got %q", got)
	}
	if rec.Body.String() != "fake-png-bytes" {
		t.Fatalf("unexpected image payload: %q", rec.Body.String())
	}
}

func TestImageUploadRejectsDisallowedMime(t *testing.T) {
	h := newTestHandlers(t)
	created := createRecipe(t, h, CreateRecipeRequest{Name: "Tiramisu"})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="image"; filename="notes.txt"`}
	hdr["Content-Type"] = []string{"text/plain"}
	part, _ := mw.CreatePart(hdr)
	part.Write([]byte("not an image"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/recipes/"+created.ID+"/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(userctx.WithUserID(req.Context(), testUserID))
	req.SetPathValue("id", created.ID)

	rec := httptest.NewRecorder()
	h.HandleUploadImage(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	h := newTestHandlers(t)

	rec := httptest.NewRecorder()
	h.HandleList(rec, httptest.NewRequest(http.MethodGet, "/v1/recipes", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user context, got %d", rec.Code)
	}
}
