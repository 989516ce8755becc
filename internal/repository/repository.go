package repository

import (
	"context"
	"errors"

	"github.com/Dan9191/todo-service/internal/models"
)

var (
	// ErrNotFound is returned when a user or an owned todo does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a user with the same email already exists
	ErrDuplicate = errors.New("duplicate record")
)

// UserStore persists users. CreateUser assigns ID and CreatedAt.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
}

// TodoStore persists todos. Every lookup is scoped to the owning user.
type TodoStore interface {
	ListTodos(ctx context.Context, userID string) ([]models.Todo, error)
	FindTodo(ctx context.Context, userID, id string) (*models.Todo, error)
	CreateTodo(ctx context.Context, todo *models.Todo) error
	UpdateTodo(ctx context.Context, todo *models.Todo) error
	DeleteTodo(ctx context.Context, userID, id string) error
	// ListDueTodos returns incomplete todos of every user dated on date (YYYY-MM-DD)
	ListDueTodos(ctx context.Context, date string) ([]models.Todo, error)
}

// Store is the full persistence surface used by the server
type Store interface {
	UserStore
	TodoStore
	Close() error
}
