package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/msomdec/user-directory/internal/domain"
	"github.com/msomdec/user-directory/internal/service"
)

// APIHandler exposes the merged directory as JSON.
type APIHandler struct {
	directory *service.DirectoryService
	additions *service.AdditionService
	limiter   *service.TokenBucket
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(directory *service.DirectoryService, additions *service.AdditionService, limiter *service.TokenBucket) *APIHandler {
	return &APIHandler{directory: directory, additions: additions, limiter: limiter}
}

type userListResponse struct {
	Users []domain.User `json:"users"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

// HandleList returns the visitor's local additions followed by the remote
// users. An optional search query parameter filters by name.
func (h *APIHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := h.directory.Load(ctx, VisitorFromContext(ctx))
	if err != nil {
		slog.Error("list users", "error", err)
		writeError(w, http.StatusBadGateway, "Failed to fetch users.")
		return
	}

	if search := r.URL.Query().Get("search"); search != "" {
		users = service.FilterUsers(users, service.Filter{Search: search}, domain.FavoriteSet{})
	}
	if users == nil {
		users = []domain.User{}
	}
	writeJSON(w, http.StatusOK, userListResponse{Users: users})
}

// HandleGet returns one user by ID.
func (h *APIHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID.")
		return
	}

	ctx := r.Context()
	user, err := h.directory.Get(ctx, VisitorFromContext(ctx), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found.")
			return
		}
		slog.Error("get user", "error", err, "id", id)
		writeError(w, http.StatusBadGateway, "Failed to fetch user details.")
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: user})
}

// HandleCreate adds a local user from a JSON body shaped like the form.
func (h *APIHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	visitorID := VisitorFromContext(ctx)

	if !h.limiter.Allow(visitorID) {
		writeError(w, http.StatusTooManyRequests, tooManySubmissions)
		return
	}

	var form domain.UserForm
	if err := readJSON(w, r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	user, err := h.additions.Add(ctx, visitorID, form)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, validationMessage(err))
			return
		}
		slog.Error("add user", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to add user.")
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{User: user})
}
