package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Dan9191/todo-service/internal/integrations/xcal"
	"github.com/Dan9191/todo-service/internal/middleware"
	"github.com/Dan9191/todo-service/internal/models"
	"github.com/Dan9191/todo-service/internal/service"
	"github.com/Dan9191/todo-service/internal/validation"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	auth  *service.AuthService
	todos *service.TodoService
	log   *logrus.Logger
	now   func() time.Time
}

func NewHandler(auth *service.AuthService, todos *service.TodoService, log *logrus.Logger) *Handler {
	return &Handler{auth: auth, todos: todos, log: log, now: time.Now}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createTodoRequest struct {
	Text string  `json:"text"`
	Date *string `json:"date"`
}

// updateTodoRequest keeps date raw so that an explicit null can clear it
type updateTodoRequest struct {
	Text      *string         `json:"text"`
	Completed *bool           `json:"completed"`
	Important *bool           `json:"important"`
	Date      json.RawMessage `json:"date"`
}

type authResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    models.PublicUser `json:"user"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Health reports that the server is up
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := validation.Decode(r.Body, validation.Register, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, authResponse{Message: "registration complete", Token: res.Token, User: res.User})
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := validation.Decode(r.Body, validation.Login, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, authResponse{Message: "login successful", Token: res.Token, User: res.User})
}

// Me returns the authenticated user
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.writeError(w, r, service.ErrMissingToken)
		return
	}

	user, err := h.auth.CurrentUser(r.Context(), claims.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

// ListTodos returns the caller's todos
func (h *Handler) ListTodos(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.writeError(w, r, service.ErrMissingToken)
		return
	}

	todos, err := h.todos.List(r.Context(), claims.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, todos)
}

// CreateTodo adds a todo for the caller
func (h *Handler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.writeError(w, r, service.ErrMissingToken)
		return
	}

	var req createTodoRequest
	if err := validation.Decode(r.Body, validation.CreateTodo, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	todo, err := h.todos.Create(r.Context(), claims.UserID, req.Text, req.Date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, todo)
}

// UpdateTodo merges the supplied fields into one of the caller's todos
func (h *Handler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.writeError(w, r, service.ErrMissingToken)
		return
	}

	var req updateTodoRequest
	if err := validation.Decode(r.Body, validation.UpdateTodo, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	patch := models.TodoPatch{
		Text:      req.Text,
		Completed: req.Completed,
		Important: req.Important,
	}
	switch {
	case len(req.Date) == 0:
	case string(req.Date) == "null":
		patch.ClearDate = true
	default:
		var date string
		if err := json.Unmarshal(req.Date, &date); err != nil {
			h.writeError(w, r, &validation.Error{Message: "date: expected string or null"})
			return
		}
		patch.Date = &date
	}

	todo, err := h.todos.Update(r.Context(), claims.UserID, mux.Vars(r)["id"], patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, todo)
}

// DeleteTodo removes one of the caller's todos
func (h *Handler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.writeError(w, r, service.ErrMissingToken)
		return
	}

	if err := h.todos.Delete(r.Context(), claims.UserID, mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ExportCalendar renders the caller's dated todos as an xCal document
func (h *Handler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.writeError(w, r, service.ErrMissingToken)
		return
	}

	todos, err := h.todos.List(r.Context(), claims.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	body, err := xcal.Export(todos, h.now())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/calendar+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}

// writeError maps domain errors to HTTP statuses; anything unknown becomes a generic 500
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.log.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).Errorf("Unhandled error: %v", err)
		message = "internal server error"
	}
	h.writeJSON(w, status, errorResponse{Error: message})
}

func statusFor(err error) int {
	var invalidBody *validation.Error
	switch {
	case errors.As(err, &invalidBody),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrMissingToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
