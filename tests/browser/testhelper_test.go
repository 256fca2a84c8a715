package browser_test

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"fitdash/internal/adapters/backend"
	exerciseStore "fitdash/internal/adapters/backend/exercise"
	programStore "fitdash/internal/adapters/backend/program"
	userStore "fitdash/internal/adapters/backend/user"
	web "fitdash/internal/adapters/http"
	"fitdash/internal/adapters/http/middleware"
	"fitdash/internal/domain/account"
	"fitdash/internal/domain/program"
)

const testPassword = "TestPass123!"

var (
	managerUser = account.UserProfile{UserID: 1, FirstName: "Mia", LastName: "Manager", Email: "manager@test.com", AccountType: account.AccountTypeManager}
	trainerUser = account.UserProfile{UserID: 2, FirstName: "Tom", LastName: "Trainer", Email: "trainer@test.com", AccountType: account.AccountTypeTrainer}
	clientUser  = account.UserProfile{UserID: 3, FirstName: "Cleo", LastName: "Client", Email: "client@test.com", AccountType: account.AccountTypeClient, PersonalTrainerID: &trainerUser.UserID}
)

// testApp holds the running dashboard, the fake backend it talks to, and Playwright handles.
type testApp struct {
	BaseURL string
	Backend *httptest.Server
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
	Visits  *visitLog
}

// visitLog records the page paths the dashboard served, in order.
type visitLog struct {
	mu    sync.Mutex
	paths []string
}

func (v *visitLog) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/static/") {
			v.mu.Lock()
			v.paths = append(v.paths, r.URL.Path)
			v.mu.Unlock()
		}
		next.ServeHTTP(w, r)
	})
}

// Since returns the paths recorded after the first n.
func (v *visitLog) Since(n int) []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.paths[n:]...)
}

// Len returns the number of recorded paths.
func (v *visitLog) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.paths)
}

// newFakeBackend serves the slice of the workout API the dashboards read.
// Every user logs in with testPassword; the token is "token-" plus the email.
func newFakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	users := []account.UserProfile{managerUser, trainerUser, clientUser}
	name, desc := "Leg day", "Squats and lunges"
	programs := []program.WorkoutProgram{{
		WorkoutProgramID:  5,
		Name:              &name,
		Description:       &desc,
		PersonalTrainerID: trainerUser.UserID,
		ClientID:          &clientUser.UserID,
	}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/Users/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password != testPassword {
			http.Error(w, `{"message":"Invalid credentials"}`, http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]string{"jwt": "token-" + req.Email})
	})
	authed := func(v any) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer token-") {
				http.Error(w, `{"message":"Unauthorized"}`, http.StatusUnauthorized)
				return
			}
			writeJSON(w, v)
		}
	}
	mux.HandleFunc("GET /api/Users", authed(users))
	mux.HandleFunc("GET /api/Users/Clients", authed([]account.UserProfile{clientUser}))
	mux.HandleFunc("GET /api/Users/Trainer", authed(trainerUser))
	mux.HandleFunc("GET /api/WorkoutPrograms", authed(programs))
	mux.HandleFunc("GET /api/WorkoutPrograms/trainer", authed(programs))
	mux.HandleFunc("GET /api/WorkoutPrograms/5", authed(programs[0]))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// newTestApp wires the dashboard against a fake backend and starts an HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	api := newFakeBackend(t)
	client := backend.New(api.URL, backend.WithTimeout(5*time.Second))
	mux := web.NewMux(web.Deps{
		Stores: web.Stores{
			Users:     userStore.NewAPIStore(client),
			Programs:  programStore.NewAPIStore(client),
			Exercises: exerciseStore.NewAPIStore(client),
		},
		Cookies: middleware.NewCookieStoreFactory([]byte("browser-suite-signing-key-0123456"), false),
	})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	visits := &visitLog{}
	srv := &http.Server{Handler: visits.wrap(mux)}
	go func() {
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()
	baseURL := "http://" + listener.Addr().String()

	pw, err := playwright.Run()
	if err != nil {
		srv.Close()
		t.Skipf("playwright driver unavailable: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		pw.Stop()
		srv.Close()
		t.Skipf("chromium unavailable: %v", err)
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
	})

	return &testApp{
		BaseURL: baseURL,
		Backend: api,
		Server:  srv,
		PW:      pw,
		Browser: browser,
		Visits:  visits,
	}
}

// newPage creates a new browser page (tab) with its own cookie jar.
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login submits the login form as user and waits for the role's landing page.
func (a *testApp) login(t *testing.T, page playwright.Page, user account.UserProfile) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=email]").Fill(user.Email); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if err := page.Locator("input[name=password]").Fill(testPassword); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("form[action='/login'] button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	a.waitForPath(t, page, account.LandingRouteFor(user.AccountType))
}

// waitForPath waits until the page shows path.
func (a *testApp) waitForPath(t *testing.T, page playwright.Page, path string) {
	t.Helper()
	if err := page.WaitForURL(a.BaseURL+path, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("expected %s, page is at %s: %v", path, page.URL(), err)
	}
}
