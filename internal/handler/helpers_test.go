package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	goversion "github.com/caarlos0/go-version"

	"github.com/msomdec/user-directory/internal/domain"
	"github.com/msomdec/user-directory/internal/handler"
	"github.com/msomdec/user-directory/internal/remote"
	"github.com/msomdec/user-directory/internal/repository/sqlite"
	"github.com/msomdec/user-directory/internal/service"
)

const testSecret = "test-secret-key-that-is-at-least-32-chars"

var remoteUsers = []domain.User{
	{ID: 1, Name: "Leanne Graham", Email: "Sincere@april.biz", Company: domain.Company{Name: "Romaguera-Crona"}},
	{ID: 2, Name: "Ervin Howell", Email: "Shanna@melissa.tv", Company: domain.Company{Name: "Deckow-Crist"}},
	{ID: 3, Name: "Clementine Bauch", Email: "Nathan@yesenia.net", Company: domain.Company{Name: "Romaguera-Jacobson"}},
}

// fakeRemote serves the remote user endpoints. Setting failing makes every
// request answer 500.
type fakeRemote struct {
	*httptest.Server
	failing atomic.Bool
}

func newFakeRemote(t *testing.T) *fakeRemote {
	t.Helper()
	f := &fakeRemote{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		if f.failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(remoteUsers)
	})
	mux.HandleFunc("GET /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		if f.failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		for _, u := range remoteUsers {
			if u.ID == id {
				json.NewEncoder(w).Encode(u)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("{}"))
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

type testApp struct {
	srv    *httptest.Server
	remote *fakeRemote
}

func newTestApp(t *testing.T, submitBurst float64) *testApp {
	t.Helper()

	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	fake := newFakeRemote(t)
	client := remote.NewClient(fake.URL, 2*time.Second)

	visitors := service.NewVisitorService(testSecret, time.Hour)
	additions := service.NewAdditionService(db.Slots(), service.NewIDGenerator(nil))
	directory := service.NewDirectoryService(client, additions)
	favorites := service.NewFavoriteService(db.Slots(), false)
	listings := service.NewListingService(directory, favorites, time.Hour)
	limiter := service.NewTokenBucket(0.001, submitBurst)
	t.Cleanup(limiter.Stop)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, visitors, directory, listings, additions, limiter, false, goversion.Info{GitVersion: "v1.2.3"})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &testApp{srv: srv, remote: fake}
}

// newBrowser returns a client that keeps cookies and does not follow
// redirects.
func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

var viewIDPattern = regexp.MustCompile(`/views/([0-9a-f-]{36})/filter`)

func extractViewID(t *testing.T, body string) string {
	t.Helper()
	m := viewIDPattern.FindStringSubmatch(body)
	if m == nil {
		t.Fatalf("no view id in listing page:\n%s", body)
	}
	return m[1]
}
