package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apphttp "bookrec/internal/http"
	"bookrec/internal/httpx"
	"bookrec/internal/platform/googlebooks"
	"bookrec/internal/platform/openlibrary"
	"bookrec/internal/platform/wikipedia"
	"bookrec/internal/recommend"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")

	serverAddress := getEnv("APP_ADDR", ":8080")
	userAgent := getEnv("USER_AGENT", "bookrec/1.0")
	catalogRPS := getEnvInt("CATALOG_RPS", 5)
	googleAPIKey := os.Getenv("GOOGLE_BOOKS_API_KEY")
	staticDir := os.Getenv("STATIC_DIR")
	allowedOrigins := splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:8080"))
	rateLimitRPS := getEnvFloat("RATE_LIMIT_RPS", 10)

	summaries := wikipedia.NewClient(userAgent)
	catalog := openlibrary.NewClient(userAgent, catalogRPS, summaries)
	editions := googlebooks.NewClient(googleAPIKey, userAgent)

	recommender := recommend.NewService(catalogAdapter{catalog})

	handlers := apphttp.Handlers{
		Genre:   apphttp.NewGenreHandler(recommender),
		Author:  apphttp.NewAuthorHandler(recommender, catalog),
		Book:    apphttp.NewBookHandler(recommender, catalog, editions, summaries),
		Suggest: apphttp.NewSuggestHandler(catalog),
	}

	rateLimiter := httpx.NewRateLimitMiddleware(rateLimitRPS, int(rateLimitRPS)*2)
	router := apphttp.NewRouter(handlers,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
		httpx.CORSMiddleware(allowedOrigins),
		httpx.SecurityHeadersMiddleware,
		httpx.RequestSizeLimitMiddleware(1<<20),
		rateLimiter.Middleware,
	)

	if staticDir != "" {
		fileServer := http.FileServer(http.Dir(staticDir))
		router.Handle("/static/*", http.StripPrefix("/static/", fileServer))
		router.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
		})
	}

	httpServer := &http.Server{
		Addr:         serverAddress,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting server on %s", serverAddress)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// catalogAdapter narrows the concrete Open Library client to the interface
// the recommendation service consumes; the related-book session comes back
// as an interface so the service never sees a typed nil.
type catalogAdapter struct {
	*openlibrary.Client
}

func (a catalogAdapter) RelatedBooks(ctx context.Context, targetBook string, maxSubjects int) (recommend.BookSearch, error) {
	search, err := a.Client.NewRelatedBookSearch(ctx, targetBook, maxSubjects)
	if err != nil || search == nil {
		return nil, err
	}
	return search, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
