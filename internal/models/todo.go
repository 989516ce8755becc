package models

import "time"

// DateLayout is the calendar date format used for Todo.Date
const DateLayout = "2006-01-02"

// Todo represents a single to-do item owned by a user
type Todo struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	Text      string    `json:"text" db:"text"`
	Completed bool      `json:"completed" db:"completed"`
	Important bool      `json:"important" db:"important"`
	Date      *string   `json:"date,omitempty" db:"due_date"` // Format: YYYY-MM-DD
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// TodoPatch carries the fields of a partial update. Nil means "leave as is".
type TodoPatch struct {
	Text      *string
	Completed *bool
	Important *bool
	Date      *string
	ClearDate bool
}

// IsEmpty reports whether the patch changes nothing
func (p TodoPatch) IsEmpty() bool {
	return p.Text == nil && p.Completed == nil && p.Important == nil && p.Date == nil && !p.ClearDate
}
