package repository

import (
	"time"

	"github.com/Dan9191/todo-service/internal/models"
	"github.com/google/uuid"
)

// state holds the two collections shared by the memory and file stores.
// It is not safe for concurrent use; callers lock around it.
type state struct {
	users []models.User
	todos []models.Todo
}

func (s *state) clone() *state {
	c := &state{
		users: make([]models.User, len(s.users)),
		todos: make([]models.Todo, len(s.todos)),
	}
	copy(c.users, s.users)
	copy(c.todos, s.todos)
	return c
}

// createUser stores a copy of user with a fresh id and returns that copy
func (s *state) createUser(user models.User) (models.User, error) {
	for _, u := range s.users {
		if u.Email == user.Email {
			return models.User{}, ErrDuplicate
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	s.users = append(s.users, user)
	return user, nil
}

func (s *state) findUserByEmail(email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *state) findUserByID(id string) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *state) listTodos(userID string) []models.Todo {
	todos := make([]models.Todo, 0)
	for _, t := range s.todos {
		if t.UserID == userID {
			todos = append(todos, copyTodo(t))
		}
	}
	return todos
}

func (s *state) indexOfTodo(userID, id string) int {
	for i, t := range s.todos {
		if t.ID == id && t.UserID == userID {
			return i
		}
	}
	return -1
}

func (s *state) findTodo(userID, id string) (*models.Todo, error) {
	i := s.indexOfTodo(userID, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	t := copyTodo(s.todos[i])
	return &t, nil
}

func (s *state) createTodo(todo models.Todo) models.Todo {
	todo.ID = uuid.NewString()
	todo.CreatedAt = time.Now().UTC()
	s.todos = append(s.todos, copyTodo(todo))
	return todo
}

func (s *state) updateTodo(todo *models.Todo) error {
	i := s.indexOfTodo(todo.UserID, todo.ID)
	if i < 0 {
		return ErrNotFound
	}
	updated := copyTodo(*todo)
	updated.CreatedAt = s.todos[i].CreatedAt
	s.todos[i] = updated
	return nil
}

func (s *state) deleteTodo(userID, id string) error {
	i := s.indexOfTodo(userID, id)
	if i < 0 {
		return ErrNotFound
	}
	s.todos = append(s.todos[:i:i], s.todos[i+1:]...)
	return nil
}

func (s *state) listDueTodos(date string) []models.Todo {
	todos := make([]models.Todo, 0)
	for _, t := range s.todos {
		if !t.Completed && t.Date != nil && *t.Date == date {
			todos = append(todos, copyTodo(t))
		}
	}
	return todos
}

// copyTodo detaches the Date pointer so callers cannot mutate stored records
func copyTodo(t models.Todo) models.Todo {
	if t.Date != nil {
		d := *t.Date
		t.Date = &d
	}
	return t
}
