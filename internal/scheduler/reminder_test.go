package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Dan9191/todo-service/internal/models"
	"github.com/Dan9191/todo-service/internal/repository"
	"github.com/sirupsen/logrus"
)

type sentReminder struct {
	to, name, date string
	texts          []string
}

type fakeNotifier struct {
	sent   []sentReminder
	failTo string
}

func (f *fakeNotifier) SendDueReminder(to, name, date string, todos []models.Todo) error {
	if to == f.failTo {
		return errors.New("smtp down")
	}
	var texts []string
	for _, td := range todos {
		texts = append(texts, td.Text)
	}
	f.sent = append(f.sent, sentReminder{to: to, name: name, date: date, texts: texts})
	return nil
}

func strPtr(s string) *string { return &s }

func seed(t *testing.T) (*repository.MemoryStore, *models.User, *models.User) {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()
	alice := &models.User{Email: "alice@b.com", Name: "Alice", PasswordHash: "h"}
	bob := &models.User{Email: "bob@b.com", Name: "Bob", PasswordHash: "h"}
	for _, u := range []*models.User{alice, bob} {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	todos := []*models.Todo{
		{UserID: alice.ID, Text: "rent", Date: strPtr("2024-05-01")},
		{UserID: alice.ID, Text: "already done", Date: strPtr("2024-05-01"), Completed: true},
		{UserID: alice.ID, Text: "tomorrow", Date: strPtr("2024-05-02")},
		{UserID: bob.ID, Text: "dentist", Date: strPtr("2024-05-01")},
		{UserID: alice.ID, Text: "plants", Date: strPtr("2024-05-01")},
		{UserID: alice.ID, Text: "someday"},
	}
	for _, td := range todos {
		if err := store.CreateTodo(ctx, td); err != nil {
			t.Fatalf("CreateTodo failed: %v", err)
		}
	}
	return store, alice, bob
}

func newTestReminder(store *repository.MemoryStore, n Notifier) *Reminder {
	log := logrus.New()
	log.SetOutput(io.Discard)
	r := NewReminder(store, store, n, log)
	r.now = func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) }
	return r
}

func TestReminderRun(t *testing.T) {
	store, _, _ := seed(t)
	notifier := &fakeNotifier{}
	r := newTestReminder(store, notifier)

	sent, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sent != 2 || len(notifier.sent) != 2 {
		t.Fatalf("sent: got %d (%d recorded), want 2", sent, len(notifier.sent))
	}

	alice := notifier.sent[0]
	if alice.to != "alice@b.com" || alice.name != "Alice" || alice.date != "2024-05-01" {
		t.Errorf("alice reminder: got %+v", alice)
	}
	if len(alice.texts) != 2 || alice.texts[0] != "rent" || alice.texts[1] != "plants" {
		t.Errorf("alice todos: got %v, want [rent plants]", alice.texts)
	}
	if bob := notifier.sent[1]; bob.to != "bob@b.com" || len(bob.texts) != 1 {
		t.Errorf("bob reminder: got %+v", bob)
	}
}

func TestReminderRunContinuesAfterFailure(t *testing.T) {
	store, _, _ := seed(t)
	notifier := &fakeNotifier{failTo: "alice@b.com"}
	r := newTestReminder(store, notifier)

	sent, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sent != 1 || len(notifier.sent) != 1 || notifier.sent[0].to != "bob@b.com" {
		t.Errorf("got sent=%d %+v, want only bob", sent, notifier.sent)
	}
}

func TestReminderStartRejectsBadSpec(t *testing.T) {
	store, _, _ := seed(t)
	r := newTestReminder(store, &fakeNotifier{})
	if err := r.Start("every morning"); err == nil {
		t.Error("expected error for invalid cron spec, got nil")
	}
}

func TestReminderStartStop(t *testing.T) {
	store, _, _ := seed(t)
	r := newTestReminder(store, &fakeNotifier{})
	if err := r.Start("0 8 * * *"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	r.Stop()
}
