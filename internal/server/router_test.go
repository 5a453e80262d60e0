package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/optotask/backend/internal/auth"
	"github.com/optotask/backend/internal/models"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Patient{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db, auth.NewTokens("test-secret", time.Minute))
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRootAndHealth(t *testing.T) {
	h := setupRouter(t)

	if w := do(t, h, http.MethodGet, "/", "", ""); w.Code != http.StatusOK ||
		!strings.Contains(w.Body.String(), "It works!") {
		t.Fatalf("root: %d %s", w.Code, w.Body.String())
	}
	if w := do(t, h, http.MethodGet, "/health", "", ""); w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/healthz", "", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz: %d", w.Code)
	}
}

func TestProtectedRoutesChallenge(t *testing.T) {
	h := setupRouter(t)
	w := do(t, h, http.MethodGet, "/see_all", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
	if w.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Fatalf("missing WWW-Authenticate challenge")
	}
}

func login(t *testing.T, h http.Handler, username, email, password string) string {
	t.Helper()
	w := do(t, h, http.MethodPost, "/signup",
		"", `{"username":"`+username+`","email":"`+email+`","password":"`+password+`"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: %d %s", username, w.Code, w.Body.String())
	}
	w = do(t, h, http.MethodPost, "/login",
		"", `{"username":"`+username+`","password":"`+password+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: %d", username, w.Code)
	}
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &tok); err != nil || tok.AccessToken == "" {
		t.Fatalf("token decode: %v %s", err, w.Body.String())
	}
	return tok.AccessToken
}

// End-to-end flow: signup, login, create, archive, archive reads.
func TestTaskLifecycleE2E(t *testing.T) {
	h := setupRouter(t)
	token := login(t, h, "alice", "alice@x.com", "pw123")

	w := do(t, h, http.MethodPost, "/create", token, `{"idx":1,"initial":"JD","fields":true}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var row models.Patient
	if err := json.Unmarshal(w.Body.Bytes(), &row); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if row.TicketStatus != "open" || row.Archived {
		t.Fatalf("create defaults wrong: %+v", row)
	}

	if w := do(t, h, http.MethodGet, "/me", token, ""); w.Code != http.StatusOK ||
		!strings.Contains(w.Body.String(), `"username":"alice"`) {
		t.Fatalf("me: %d %s", w.Code, w.Body.String())
	}

	if w := do(t, h, http.MethodGet, "/tickets/open", token, ""); w.Code != http.StatusOK ||
		!strings.Contains(w.Body.String(), `"idx":1`) {
		t.Fatalf("open tickets: %d %s", w.Code, w.Body.String())
	}

	if w := do(t, h, http.MethodDelete, "/tasks/1", token, ""); w.Code != http.StatusOK {
		t.Fatalf("archive: %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/read/1", token, ""); w.Code != http.StatusNotFound {
		t.Fatalf("read after archive: expected 404 got %d", w.Code)
	}
	w = do(t, h, http.MethodGet, "/read_archive", token, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"idx":1`) {
		t.Fatalf("read_archive: %d %s", w.Code, w.Body.String())
	}
	if w := do(t, h, http.MethodGet, "/search_archive/1", token, ""); w.Code != http.StatusOK {
		t.Fatalf("search_archive: %d", w.Code)
	}
}

// Two users never see each other's rows even with colliding idx values.
func TestOwnershipIsolationE2E(t *testing.T) {
	h := setupRouter(t)
	aliceTok := login(t, h, "alice", "alice@x.com", "pw123")
	bobTok := login(t, h, "bob", "bob@x.com", "pw456")

	if w := do(t, h, http.MethodPost, "/create", aliceTok, `{"idx":5,"initial":"AA"}`); w.Code != http.StatusCreated {
		t.Fatalf("alice create: %d", w.Code)
	}
	// Same idx under a different owner succeeds.
	if w := do(t, h, http.MethodPost, "/create", bobTok, `{"idx":5,"initial":"BB"}`); w.Code != http.StatusCreated {
		t.Fatalf("bob create: %d", w.Code)
	}

	w := do(t, h, http.MethodGet, "/read/5", bobTok, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"initial":"BB"`) {
		t.Fatalf("bob reads his own row: %d %s", w.Code, w.Body.String())
	}

	// Bob archives his idx 5; Alice's row must survive.
	if w := do(t, h, http.MethodDelete, "/tasks/5", bobTok, ""); w.Code != http.StatusOK {
		t.Fatalf("bob archive: %d", w.Code)
	}
	w = do(t, h, http.MethodGet, "/read/5", aliceTok, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"initial":"AA"`) {
		t.Fatalf("alice row affected by bob: %d %s", w.Code, w.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	h := setupRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/create", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight: expected 204 got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatalf("origin not echoed: %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
}
