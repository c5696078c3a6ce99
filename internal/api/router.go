package api

import (
	"net/http"
	"visit-model-service/internal/api/handlers"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(models *handlers.ModelHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("POST /models", models.Build)
	mux.HandleFunc("GET /models", models.List)
	mux.HandleFunc("GET /models/{id}", models.Get)
	mux.HandleFunc("PUT /models/{id}/solution", models.PutSolution)
	mux.HandleFunc("POST /models/{id}/pools", models.Pools)

	return requestIDMiddleware(loggingMiddleware(mux))
}
