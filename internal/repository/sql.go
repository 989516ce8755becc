package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/todo-service/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var schemas = map[string][]string{
	"postgres": {
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			name          TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS todos (
			seq        BIGSERIAL PRIMARY KEY,
			id         TEXT NOT NULL UNIQUE,
			user_id    TEXT NOT NULL REFERENCES users(id),
			text       TEXT NOT NULL,
			completed  BOOLEAN NOT NULL DEFAULT FALSE,
			important  BOOLEAN NOT NULL DEFAULT FALSE,
			due_date   TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS todos_user_id_idx ON todos (user_id)`,
	},
	"sqlite3": {
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			name          TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS todos (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			id         TEXT NOT NULL UNIQUE,
			user_id    TEXT NOT NULL REFERENCES users(id),
			text       TEXT NOT NULL,
			completed  BOOLEAN NOT NULL DEFAULT FALSE,
			important  BOOLEAN NOT NULL DEFAULT FALSE,
			due_date   TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS todos_user_id_idx ON todos (user_id)`,
	},
}

const todoColumns = `id, user_id, text, completed, important, due_date, created_at`

// SQLStore provides database operations over PostgreSQL or SQLite
type SQLStore struct {
	db *sqlx.DB
}

// OpenSQLStore connects with the given driver ("postgres" or "sqlite3") and creates the schema
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	stmts, ok := schemas[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if driver == "sqlite3" {
		// SQLite allows a single writer
		db.SetMaxOpenConns(1)
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return NewSQLStore(db), nil
}

// NewSQLStore wraps an already migrated connection
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// CreateUser inserts a new user
func (r *SQLStore) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()

	query := r.db.Rebind(`
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *SQLStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findUser(ctx, "email", email)
}

// FindUserByID retrieves a user by id
func (r *SQLStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.findUser(ctx, "id", id)
}

func (r *SQLStore) findUser(ctx context.Context, column, value string) (*models.User, error) {
	user := &models.User{}
	query := r.db.Rebind(`
		SELECT id, email, name, password_hash, created_at
		FROM users
		WHERE ` + column + ` = ?`)
	err := r.db.GetContext(ctx, user, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListTodos returns a user's todos in insertion order
func (r *SQLStore) ListTodos(ctx context.Context, userID string) ([]models.Todo, error) {
	todos := make([]models.Todo, 0)
	query := r.db.Rebind(`SELECT ` + todoColumns + ` FROM todos WHERE user_id = ? ORDER BY seq`)
	if err := r.db.SelectContext(ctx, &todos, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// FindTodo retrieves a todo owned by userID
func (r *SQLStore) FindTodo(ctx context.Context, userID, id string) (*models.Todo, error) {
	todo := &models.Todo{}
	query := r.db.Rebind(`SELECT ` + todoColumns + ` FROM todos WHERE id = ? AND user_id = ?`)
	err := r.db.GetContext(ctx, todo, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}
	return todo, nil
}

// CreateTodo inserts a new todo
func (r *SQLStore) CreateTodo(ctx context.Context, todo *models.Todo) error {
	todo.ID = uuid.NewString()
	todo.CreatedAt = time.Now().UTC()

	query := r.db.Rebind(`
		INSERT INTO todos (` + todoColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		todo.ID, todo.UserID, todo.Text, todo.Completed, todo.Important, todo.Date, todo.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}
	return nil
}

// UpdateTodo overwrites the mutable fields of an owned todo
func (r *SQLStore) UpdateTodo(ctx context.Context, todo *models.Todo) error {
	query := r.db.Rebind(`
		UPDATE todos
		SET text = ?, completed = ?, important = ?, due_date = ?
		WHERE id = ? AND user_id = ?`)
	res, err := r.db.ExecContext(ctx, query,
		todo.Text, todo.Completed, todo.Important, todo.Date, todo.ID, todo.UserID)
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	return expectOneRow(res)
}

// DeleteTodo removes an owned todo
func (r *SQLStore) DeleteTodo(ctx context.Context, userID, id string) error {
	query := r.db.Rebind(`DELETE FROM todos WHERE id = ? AND user_id = ?`)
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return expectOneRow(res)
}

// ListDueTodos returns incomplete todos of all users due on date
func (r *SQLStore) ListDueTodos(ctx context.Context, date string) ([]models.Todo, error) {
	todos := make([]models.Todo, 0)
	query := r.db.Rebind(`SELECT ` + todoColumns + ` FROM todos WHERE due_date = ? AND completed = ? ORDER BY seq`)
	if err := r.db.SelectContext(ctx, &todos, query, date, false); err != nil {
		return nil, fmt.Errorf("failed to list due todos: %w", err)
	}
	return todos, nil
}

// Close closes the underlying connection pool
func (r *SQLStore) Close() error {
	return r.db.Close()
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
