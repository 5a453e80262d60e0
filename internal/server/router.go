package server

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"github.com/optotask/backend/internal/auth"
	"github.com/optotask/backend/internal/handlers"
	"github.com/optotask/backend/internal/httpx"
	"github.com/optotask/backend/internal/middleware"
	"github.com/optotask/backend/internal/models"
	"github.com/optotask/backend/internal/store"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, tokens *auth.Tokens) http.Handler {
	mux := http.NewServeMux()

	users := store.NewUserStore(db)
	patients := store.NewPatientStore(db)

	// Token resolution re-reads the user row so that a token for a deleted account
	// stops working immediately.
	resolve := func(_ context.Context, username string) (*models.User, error) {
		return users.ByUsername(username)
	}
	protected := func(h http.HandlerFunc) http.Handler {
		return tokens.Require(resolve, h)
	}

	//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"message": "It works!"})
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		// Lightweight DB check (SELECT 1) – detailed errors stay out of the body.
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	ah := handlers.NewAuthHandler(users, tokens)
	mux.HandleFunc("POST /signup", ah.Signup)
	mux.HandleFunc("POST /login", ah.Login)
	mux.Handle("GET /me", protected(ah.Me))

	ph := handlers.NewPatientHandler(patients)
	mux.Handle("POST /create", protected(ph.Create))
	mux.Handle("GET /read/{id}", protected(ph.Read))
	mux.Handle("GET /read_archive", protected(ph.ListArchived))
	mux.Handle("GET /see_all", protected(ph.ListActive))
	mux.Handle("GET /tickets/open", protected(ph.ListOpenTickets))
	mux.Handle("PUT /update/{id}", protected(ph.Update))
	mux.Handle("DELETE /tasks/{id}", protected(ph.Archive))
	mux.Handle("GET /search_archive/{id}", protected(ph.ReadArchived))

	return middleware.CORS(mux)
}
