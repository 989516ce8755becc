package repository

import (
	"context"
	"sync"

	"github.com/Dan9191/todo-service/internal/models"
)

// MemoryStore keeps users and todos in resident collections
type MemoryStore struct {
	mu sync.RWMutex
	st *state
}

// NewMemoryStore initializes an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{st: &state{}}
}

func (m *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	created, err := m.st.createUser(*user)
	if err != nil {
		return err
	}
	*user = created
	return nil
}

func (m *MemoryStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.findUserByEmail(email)
}

func (m *MemoryStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.findUserByID(id)
}

func (m *MemoryStore) ListTodos(ctx context.Context, userID string) ([]models.Todo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.listTodos(userID), nil
}

func (m *MemoryStore) FindTodo(ctx context.Context, userID, id string) (*models.Todo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.findTodo(userID, id)
}

func (m *MemoryStore) CreateTodo(ctx context.Context, todo *models.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	*todo = m.st.createTodo(*todo)
	return nil
}

func (m *MemoryStore) UpdateTodo(ctx context.Context, todo *models.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.updateTodo(todo)
}

func (m *MemoryStore) DeleteTodo(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.deleteTodo(userID, id)
}

func (m *MemoryStore) ListDueTodos(ctx context.Context, date string) ([]models.Todo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.listDueTodos(date), nil
}

// Close is a no-op for the memory store
func (m *MemoryStore) Close() error {
	return nil
}
