package handler

import (
	"net/http"

	"github.com/Dan9191/todo-service/internal/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// NewRouter wires public and protected routes plus the global middleware
func NewRouter(h *Handler, auth middleware.Authenticator, log *logrus.Logger) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: "route not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	// Public routes
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)

	// Protected routes
	protect := middleware.AuthMiddleware(auth, h.writeError)
	r.Handle("/me", protect(http.HandlerFunc(h.Me))).Methods(http.MethodGet)
	r.Handle("/todos", protect(http.HandlerFunc(h.ListTodos))).Methods(http.MethodGet)
	r.Handle("/todos", protect(http.HandlerFunc(h.CreateTodo))).Methods(http.MethodPost)
	r.Handle("/todos/calendar.xml", protect(http.HandlerFunc(h.ExportCalendar))).Methods(http.MethodGet)
	r.Handle("/todos/{id}", protect(http.HandlerFunc(h.UpdateTodo))).Methods(http.MethodPut)
	r.Handle("/todos/{id}", protect(http.HandlerFunc(h.DeleteTodo))).Methods(http.MethodDelete)

	// Outermost first: CORS, then panic recovery, then request logging.
	var handler http.Handler = r
	handler = middleware.RequestLogger(log)(handler)
	handler = middleware.Recoverer(log)(handler)
	handler = middleware.CORS()(handler)
	return handler
}
