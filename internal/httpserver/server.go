package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/mealbuddy/server/internal/auth"
	"github.com/mealbuddy/server/internal/auth/emailotp"
	"github.com/mealbuddy/server/internal/blob"
	"github.com/mealbuddy/server/internal/config"
	"github.com/mealbuddy/server/internal/mailer"
	"github.com/mealbuddy/server/internal/mealplan"
	"github.com/mealbuddy/server/internal/recipes"
	"github.com/mealbuddy/server/internal/reports"
	"github.com/mealbuddy/server/internal/shopping"
	"github.com/mealbuddy/server/internal/storage"
	"github.com/mealbuddy/server/internal/storage/memory"
	"github.com/mealbuddy/server/internal/storage/postgres"
	"github.com/mealbuddy/server/internal/userctx"
)

// Server is the MealBuddy HTTP server.
type Server struct {
	config         *config.Config
	mux            *http.ServeMux
	storage        storage.Storage
	blobStore      blob.Store
	authMiddleware *auth.Middleware
}

// New creates a server with storage, blob store and all routes wired.
func New(cfg *config.Config) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
	}

	s.initStorage()
	s.initBlobStore()
	s.routes()
	return s
}

// initStorage picks Postgres when DATABASE_URL is set, falling back to the
// in-memory storage on connection failure. Memory mode seeds sample data
// when configured.
func (s *Server) initStorage() {
	if s.config.DatabaseURL == "" {
		log.Println("storage: using in-memory storage")
		s.storage = s.newMemoryStorage()
		return
	}

	log.Println("storage: connecting to PostgreSQL...")
	pgStorage, err := postgres.New(context.Background(), s.config.DatabaseURL)
	if err != nil {
		log.Printf("storage: PostgreSQL connection failed: %v", err)
		log.Println("storage: falling back to in-memory storage")
		s.storage = s.newMemoryStorage()
		return
	}
	log.Println("storage: PostgreSQL connected")
	s.storage = pgStorage
}

func (s *Server) newMemoryStorage() storage.Storage {
	mem := memory.New()
	if s.config.SeedSampleData {
		if err := memory.Seed(context.Background(), mem); err != nil {
			log.Printf("storage: seeding sample data failed: %v", err)
		} else {
			log.Println("storage: seeded sample data")
		}
	}
	return mem
}

func (s *Server) initBlobStore() {
	store, mode, err := blob.NewBlobStore(s.config.Blob, log.Default())
	if err != nil {
		log.Fatalf("blob: %v", err)
	}
	s.blobStore = store
	log.Printf("blob: images in %s mode", mode)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealthz)

	// Auth API (public)
	emailSender, err := mailer.NewSenderFromConfig(s.config, log.Default())
	if err != nil {
		log.Printf("mailer: sender initialization failed, using local sender: %v", err)
		emailSender = mailer.NewLocalSender(log.Default())
	}
	otpService := emailotp.NewService(s.config, s.storage, emailSender)
	authService := auth.NewService(s.config, s.storage, otpService)
	authHandler := auth.NewHandlers(authService)
	s.authMiddleware = auth.NewMiddleware(s.config, authService)

	s.mux.HandleFunc("POST /v1/auth/register", authHandler.HandleRegister)
	s.mux.HandleFunc("POST /v1/auth/verify-email", authHandler.HandleVerifyEmail)
	s.mux.HandleFunc("POST /v1/auth/login", authHandler.HandleLogin)
	s.mux.HandleFunc("POST /v1/auth/2fa/verify", authHandler.HandleTwoFactorVerify)

	// Recipes API
	recipesService := recipes.NewService(s.storage, s.storage, s.blobStore, s.config.Blob.S3.PublicBaseURL)
	recipesHandler := recipes.NewHandlers(recipesService, s.config.UploadMaxMB, s.config.UploadAllowedMime)

	s.mux.HandleFunc("GET /v1/recipes", recipesHandler.HandleList)
	s.mux.HandleFunc("POST /v1/recipes", recipesHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/recipes/{id}", recipesHandler.HandleGet)
	s.mux.HandleFunc("PATCH /v1/recipes/{id}", recipesHandler.HandleUpdate)
	s.mux.HandleFunc("DELETE /v1/recipes/{id}", recipesHandler.HandleDelete)
	s.mux.HandleFunc("POST /v1/recipes/{id}/favorite", recipesHandler.HandleToggleFavorite)
	s.mux.HandleFunc("POST /v1/recipes/{id}/image", recipesHandler.HandleUploadImage)
	s.mux.HandleFunc("GET /v1/recipes/{id}/image", recipesHandler.HandleGetImage)

	// Meal plan API
	mealplanService := mealplan.NewService(s.storage, s.storage)
	mealplanHandler := mealplan.NewHandlers(mealplanService)

	s.mux.HandleFunc("GET /v1/mealplan/week", mealplanHandler.HandleGetWeek)
	s.mux.HandleFunc("POST /v1/mealplan/meals", mealplanHandler.HandleAddMeal)
	s.mux.HandleFunc("DELETE /v1/mealplan/meals/{id}", mealplanHandler.HandleRemoveMeal)
	s.mux.HandleFunc("PATCH /v1/mealplan/meals/{id}", mealplanHandler.HandleUpdateMeal)
	s.mux.HandleFunc("POST /v1/mealplan/meals/{id}/toggle", mealplanHandler.HandleToggleMeal)
	s.mux.HandleFunc("POST /v1/mealplan/meals/{id}/move", mealplanHandler.HandleMoveMeal)

	// Shopping list API
	shoppingService := shopping.NewService(s.storage, s.storage, s.storage)
	shoppingHandler := shopping.NewHandlers(shoppingService)
	exportHandler := reports.NewHandlers(shoppingService)

	s.mux.HandleFunc("GET /v1/shopping/items", shoppingHandler.HandleListItems)
	s.mux.HandleFunc("POST /v1/shopping/items", shoppingHandler.HandleCreateItem)
	s.mux.HandleFunc("GET /v1/shopping/summary", shoppingHandler.HandleSummary)
	s.mux.HandleFunc("PATCH /v1/shopping/items/{id}", shoppingHandler.HandleUpdateItem)
	s.mux.HandleFunc("DELETE /v1/shopping/items/{id}", shoppingHandler.HandleDeleteItem)
	s.mux.HandleFunc("POST /v1/shopping/items/{id}/advance", shoppingHandler.HandleAdvanceItem)
	s.mux.HandleFunc("POST /v1/shopping/generate", shoppingHandler.HandleGenerate)
	s.mux.HandleFunc("GET /v1/shopping/export", exportHandler.HandleExport)
}

// demoUserMiddleware assigns the demo user to requests that carry no
// authenticated identity. Only active when auth is not required.
func (s *Server) demoUserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userctx.GetUserID(r.Context()) == "" {
			r = r.WithContext(userctx.WithUserID(r.Context(), memory.DemoUserID))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// Handler builds the middleware chain (outermost first):
// CORS -> rate limit -> auth -> router.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	if s.authMiddleware != nil {
		if s.config.AuthRequired {
			handler = s.authMiddleware.RequireAuth(handler)
		} else {
			handler = s.demoUserMiddleware(handler)
			handler = s.authMiddleware.OptionalAuth(handler)
		}
	}
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	return handler
}

// Start runs the HTTP server until it fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	log.Printf("server listening on http://localhost%s\n", addr)
	log.Printf("health check: http://localhost%s/healthz\n", addr)

	return http.ListenAndServe(addr, s.Handler())
}

// Close releases the storage.
func (s *Server) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
