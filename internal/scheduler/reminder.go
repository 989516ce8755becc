package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/todo-service/internal/models"
	"github.com/Dan9191/todo-service/internal/repository"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Notifier delivers a reminder for todos due on date
type Notifier interface {
	SendDueReminder(to, name, date string, todos []models.Todo) error
}

// Reminder periodically notifies users about open todos due today
type Reminder struct {
	todos    repository.TodoStore
	users    repository.UserStore
	notifier Notifier
	log      *logrus.Logger
	now      func() time.Time
	cron     *cron.Cron
}

// NewReminder creates a reminder job; call Start to schedule it
func NewReminder(todos repository.TodoStore, users repository.UserStore, notifier Notifier, log *logrus.Logger) *Reminder {
	cronLog := cron.PrintfLogger(log)
	return &Reminder{
		todos:    todos,
		users:    users,
		notifier: notifier,
		log:      log,
		now:      time.Now,
		cron:     cron.New(cron.WithLogger(cronLog), cron.WithChain(cron.Recover(cronLog))),
	}
}

// Start schedules Run on the given cron spec (e.g. "0 8 * * *")
func (r *Reminder) Start(spec string) error {
	_, err := r.cron.AddFunc(spec, func() {
		if _, err := r.Run(context.Background()); err != nil {
			r.log.Errorf("Reminder run failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	r.cron.Start()
	r.log.Infof("Reminders scheduled: %s", spec)
	return nil
}

// Stop halts scheduling and waits for a running job to finish
func (r *Reminder) Stop() {
	<-r.cron.Stop().Done()
}

// Run sends one reminder per user with open todos due today and returns how many were sent
func (r *Reminder) Run(ctx context.Context) (int, error) {
	date := r.now().Format(models.DateLayout)
	due, err := r.todos.ListDueTodos(ctx, date)
	if err != nil {
		return 0, err
	}

	var order []string
	byUser := make(map[string][]models.Todo)
	for _, todo := range due {
		if _, seen := byUser[todo.UserID]; !seen {
			order = append(order, todo.UserID)
		}
		byUser[todo.UserID] = append(byUser[todo.UserID], todo)
	}

	sent := 0
	for _, userID := range order {
		user, err := r.users.FindUserByID(ctx, userID)
		if err != nil {
			r.log.WithField("user_id", userID).Warnf("Skipping reminder: %v", err)
			continue
		}
		if err := r.notifier.SendDueReminder(user.Email, user.Name, date, byUser[userID]); err != nil {
			continue
		}
		sent++
	}

	r.log.WithFields(logrus.Fields{"date": date, "due": len(due), "sent": sent}).Info("Reminder run finished")
	return sent, nil
}
