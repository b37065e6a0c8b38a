package handler

import (
	"net/http"

	goversion "github.com/caarlos0/go-version"

	"github.com/msomdec/user-directory/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(
	mux *http.ServeMux,
	visitors *service.VisitorService,
	directory *service.DirectoryService,
	listings *service.ListingService,
	additions *service.AdditionService,
	limiter *service.TokenBucket,
	cookieSecure bool,
	info goversion.Info,
) {
	directoryHandler := NewDirectoryHandler(directory, listings)
	userHandler := NewUserHandler(additions, limiter)
	apiHandler := NewAPIHandler(directory, additions, limiter)

	visitor := func(h http.HandlerFunc) http.Handler {
		return WithVisitor(visitors, cookieSecure, h)
	}

	// Infrastructure
	mux.HandleFunc("GET /healthz", HandleHealthz)
	mux.HandleFunc("GET /version", HandleVersion(info))

	// Listing
	mux.Handle("GET /{$}", visitor(directoryHandler.HandleListing))
	mux.Handle("POST /views/{view}/filter", visitor(directoryHandler.HandleFilter))
	mux.Handle("POST /views/{view}/favorites/{id}", visitor(directoryHandler.HandleToggleFavorite))

	// Users
	mux.Handle("GET /users/new", visitor(userHandler.HandleNew))
	mux.Handle("POST /users/new", visitor(userHandler.HandleCreate))
	mux.Handle("GET /users/{id}", visitor(directoryHandler.HandleDetail))

	// JSON API
	mux.Handle("GET /api/users", visitor(apiHandler.HandleList))
	mux.Handle("GET /api/users/{id}", visitor(apiHandler.HandleGet))
	mux.Handle("POST /api/users", visitor(apiHandler.HandleCreate))
}
