package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/msomdec/user-directory/internal/domain"
	"github.com/msomdec/user-directory/internal/service"
	"github.com/msomdec/user-directory/internal/view"
)

const tooManySubmissions = "Too many submissions. Please wait a moment and try again."

// UserHandler serves the add-user form.
type UserHandler struct {
	additions *service.AdditionService
	limiter   *service.TokenBucket
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(additions *service.AdditionService, limiter *service.TokenBucket) *UserHandler {
	return &UserHandler{additions: additions, limiter: limiter}
}

// HandleNew renders an empty add-user form.
func (h *UserHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, view.AddUserPage(domain.UserForm{}, ""))
}

// HandleCreate validates the submitted form, stores the new user as a local
// addition and redirects to the listing.
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	visitorID := VisitorFromContext(ctx)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := domain.UserForm{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Phone:   r.PostFormValue("phone"),
		Website: r.PostFormValue("website"),
		Company: r.PostFormValue("company"),
	}

	if !h.limiter.Allow(visitorID) {
		renderPage(w, r, http.StatusTooManyRequests, view.AddUserPage(form, tooManySubmissions))
		return
	}

	if _, err := h.additions.Add(ctx, visitorID, form); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			renderPage(w, r, http.StatusUnprocessableEntity, view.AddUserPage(form, validationMessage(err)))
			return
		}
		slog.Error("add user", "error", err)
		renderPage(w, r, http.StatusInternalServerError, view.AddUserPage(form, "Failed to add user. Please try again."))
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// validationMessage strips the sentinel prefix from a validation error.
func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": ")
}
