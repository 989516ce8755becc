package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Dan9191/todo-service/internal/models"
	"github.com/Dan9191/todo-service/internal/repository"
	"github.com/sirupsen/logrus"
)

// TodoService manages todos scoped to their owner
type TodoService struct {
	todos repository.TodoStore
	log   *logrus.Logger
}

// NewTodoService initializes a new todo service
func NewTodoService(todos repository.TodoStore, log *logrus.Logger) *TodoService {
	return &TodoService{todos: todos, log: log}
}

// List returns the user's todos in insertion order
func (s *TodoService) List(ctx context.Context, userID string) ([]models.Todo, error) {
	return s.todos.ListTodos(ctx, userID)
}

// Create adds a todo for the user. date may be nil or empty.
func (s *TodoService) Create(ctx context.Context, userID, text string, date *string) (*models.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, newError(ErrValidation, "text is required")
	}

	todo := &models.Todo{
		UserID: userID,
		Text:   text,
	}
	if date != nil && *date != "" {
		normalized, err := normalizeDate(*date)
		if err != nil {
			return nil, err
		}
		todo.Date = &normalized
	}

	if err := s.todos.CreateTodo(ctx, todo); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "todo_id": todo.ID}).Info("Todo created")
	return todo, nil
}

// Update merges patch into the user's todo; absent fields keep their values
func (s *TodoService) Update(ctx context.Context, userID, id string, patch models.TodoPatch) (*models.Todo, error) {
	todo, err := s.todos.FindTodo(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(ErrNotFound, "todo not found")
	}
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return todo, nil
	}

	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if text == "" {
			return nil, newError(ErrValidation, "text must not be empty")
		}
		todo.Text = text
	}
	if patch.Completed != nil {
		todo.Completed = *patch.Completed
	}
	if patch.Important != nil {
		todo.Important = *patch.Important
	}
	switch {
	case patch.ClearDate || (patch.Date != nil && *patch.Date == ""):
		todo.Date = nil
	case patch.Date != nil:
		normalized, err := normalizeDate(*patch.Date)
		if err != nil {
			return nil, err
		}
		todo.Date = &normalized
	}

	if err := s.todos.UpdateTodo(ctx, todo); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "todo not found")
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "todo_id": id}).Info("Todo updated")
	return todo, nil
}

// Delete removes the user's todo
func (s *TodoService) Delete(ctx context.Context, userID, id string) error {
	err := s.todos.DeleteTodo(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return newError(ErrNotFound, "todo not found")
	}
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "todo_id": id}).Info("Todo deleted")
	return nil
}

// normalizeDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns YYYY-MM-DD
func normalizeDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if d, err := time.Parse(models.DateLayout, value); err == nil {
		return d.Format(models.DateLayout), nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.Format(models.DateLayout), nil
	}
	return "", newError(ErrValidation, "date must be formatted as YYYY-MM-DD")
}
