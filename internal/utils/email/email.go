package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Dan9191/todo-service/internal/config"
	"github.com/Dan9191/todo-service/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

type sendFunc func(e *email.Email, addr string, auth smtp.Auth) error

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   sendFunc
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendDueReminder emails a user the list of their open todos due on date
func (s *Sender) SendDueReminder(to, name, date string, todos []models.Todo) error {
	if len(todos) == 0 {
		return nil
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	if len(todos) == 1 {
		e.Subject = fmt.Sprintf("Reminder: 1 task due %s", date)
	} else {
		e.Subject = fmt.Sprintf("Reminder: %d tasks due %s", len(todos), date)
	}
	e.Text = []byte(reminderBody(name, date, todos))

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send reminder to %s: %v", to, err)
		return fmt.Errorf("failed to send reminder: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

func reminderBody(name, date string, todos []models.Todo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", name)
	fmt.Fprintf(&b, "The following tasks are due on %s:\n\n", date)
	for _, todo := range todos {
		marker := "-"
		if todo.Important {
			marker = "!"
		}
		fmt.Fprintf(&b, "  %s %s\n", marker, todo.Text)
	}
	b.WriteString("\nBest regards,\nTodo Service")
	return b.String()
}
