package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Dan9191/todo-service/internal/models"
)

// FileStore keeps both collections in one JSON document on disk.
// Every mutation rewrites the whole file before it becomes visible.
type FileStore struct {
	mu   sync.RWMutex
	path string
	st   *state
}

type fileDocument struct {
	Users []fileUser    `json:"users"`
	Todos []models.Todo `json:"todos"`
}

// fileUser mirrors models.User but keeps the password hash on disk
type fileUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}

// OpenFileStore loads the document at path, creating it with empty collections if absent
func OpenFileStore(path string) (*FileStore, error) {
	f := &FileStore{path: path, st: &state{}}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		if err := f.write(f.st); err != nil {
			return nil, err
		}
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	var doc fileDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse data file %s: %w", path, err)
	}
	for _, u := range doc.Users {
		f.st.users = append(f.st.users, models.User{
			ID:           u.ID,
			Email:        u.Email,
			Name:         u.Name,
			PasswordHash: u.Password,
			CreatedAt:    u.CreatedAt,
		})
	}
	f.st.todos = doc.Todos
	return f, nil
}

// mutate applies fn to a copy of the state, persists it, then swaps it in
func (f *FileStore) mutate(fn func(*state) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := f.st.clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := f.write(next); err != nil {
		return err
	}
	f.st = next
	return nil
}

func (f *FileStore) write(st *state) error {
	doc := fileDocument{
		Users: make([]fileUser, 0, len(st.users)),
		Todos: st.todos,
	}
	if doc.Todos == nil {
		doc.Todos = []models.Todo{}
	}
	for _, u := range st.users {
		doc.Users = append(doc.Users, fileUser{
			ID:        u.ID,
			Email:     u.Email,
			Name:      u.Name,
			Password:  u.PasswordHash,
			CreatedAt: u.CreatedAt,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode data file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".todo-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace data file: %w", err)
	}
	return nil
}

// CreateUser fills in user's id and creation time only once the file write succeeded
func (f *FileStore) CreateUser(ctx context.Context, user *models.User) error {
	var created models.User
	err := f.mutate(func(st *state) error {
		var err error
		created, err = st.createUser(*user)
		return err
	})
	if err != nil {
		return err
	}
	*user = created
	return nil
}

func (f *FileStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.st.findUserByEmail(email)
}

func (f *FileStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.st.findUserByID(id)
}

func (f *FileStore) ListTodos(ctx context.Context, userID string) ([]models.Todo, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.st.listTodos(userID), nil
}

func (f *FileStore) FindTodo(ctx context.Context, userID, id string) (*models.Todo, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.st.findTodo(userID, id)
}

func (f *FileStore) CreateTodo(ctx context.Context, todo *models.Todo) error {
	var created models.Todo
	err := f.mutate(func(st *state) error {
		created = st.createTodo(*todo)
		return nil
	})
	if err != nil {
		return err
	}
	*todo = created
	return nil
}

func (f *FileStore) UpdateTodo(ctx context.Context, todo *models.Todo) error {
	return f.mutate(func(st *state) error {
		return st.updateTodo(todo)
	})
}

func (f *FileStore) DeleteTodo(ctx context.Context, userID, id string) error {
	return f.mutate(func(st *state) error {
		return st.deleteTodo(userID, id)
	})
}

func (f *FileStore) ListDueTodos(ctx context.Context, date string) ([]models.Todo, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.st.listDueTodos(date), nil
}

// Close is a no-op; every write is already on disk
func (f *FileStore) Close() error {
	return nil
}
