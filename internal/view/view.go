// Package view renders the directory's HTML pages and fragments as templ
// components, so handlers can write them directly or patch them over SSE.
package view

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/msomdec/user-directory/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// UserListID is the element id the listing patches replace.
const UserListID = "user-list"

func component(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return templates.ExecuteTemplate(w, name, data)
	})
}

type userCard struct {
	ViewID   string
	User     domain.User
	Favorite bool
}

type userList struct {
	Cards []userCard
}

func newUserList(viewID string, users []domain.User, favorites domain.FavoriteSet) userList {
	cards := make([]userCard, len(users))
	for i, u := range users {
		cards[i] = userCard{ViewID: viewID, User: u, Favorite: favorites.Has(u.ID)}
	}
	return userList{Cards: cards}
}

// ListingPage renders the full directory page for an open listing view.
func ListingPage(viewID string, visible []domain.User, favorites domain.FavoriteSet, search string, favoritesOnly bool) templ.Component {
	signals, _ := json.Marshal(map[string]any{"search": search, "favoritesOnly": favoritesOnly})
	return component("listing", struct {
		ViewID  string
		Signals string
		List    userList
	}{
		ViewID:  viewID,
		Signals: string(signals),
		List:    newUserList(viewID, visible, favorites),
	})
}

// UserListFragment renders the inner content of the #user-list element.
func UserListFragment(viewID string, visible []domain.User, favorites domain.FavoriteSet) templ.Component {
	return component("user-list", newUserList(viewID, visible, favorites))
}

// UserDetailPage renders every field of a single user.
func UserDetailPage(user *domain.User) templ.Component {
	return component("detail", user)
}

// AddUserPage renders the add-user form, optionally with a validation message.
func AddUserPage(form domain.UserForm, errMsg string) templ.Component {
	return component("add-user", struct {
		Form  domain.UserForm
		Error string
	}{Form: form, Error: errMsg})
}

// ErrorPage renders a blocking error message.
func ErrorPage(message string) templ.Component {
	return messagePage("Error", message, "error")
}

// NotFoundPage renders the message shown for an unknown user.
func NotFoundPage(message string) templ.Component {
	return messagePage("Not Found", message, "muted")
}

func messagePage(title, message, class string) templ.Component {
	return component("message", struct {
		Title   string
		Message string
		Class   string
	}{Title: title, Message: message, Class: class})
}
