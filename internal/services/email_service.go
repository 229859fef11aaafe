package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"

	"github.com/justsurfingit/applicant-tracker/internal/database"
	"github.com/justsurfingit/applicant-tracker/internal/models"
)

// Notifier is told about every accepted application.
type Notifier interface {
	NotifyNewApplication(app models.Application, jobTitle string)
}

// MailSender delivers one raw message.
type MailSender interface {
	Send(ctx context.Context, msg *gmail.Message) error
}

// GmailSender sends through the Gmail API as the authorised account.
type GmailSender struct {
	Service *gmail.Service
}

func (g *GmailSender) Send(ctx context.Context, msg *gmail.Message) error {
	_, err := g.Service.Users.Messages.Send("me", msg).Context(ctx).Do()
	return err
}

// NotificationService emails admins about new applications. Sending happens
// in the background; each (application, admin) pair is mailed once.
type NotificationService struct {
	Store   database.NotificationStore
	Events  database.ApplicationStore
	Sender  MailSender
	From    string
	Timeout time.Duration

	// first retry delay, doubled per attempt
	backoff time.Duration
	wg      sync.WaitGroup
}

func NewNotificationService(store database.Store, sender MailSender, from string) *NotificationService {
	return &NotificationService{
		Store:   store,
		Events:  store,
		Sender:  sender,
		From:    from,
		Timeout: 2 * time.Minute,
		backoff: time.Second,
	}
}

// NotifyNewApplication queues the alert and returns immediately.
func (s *NotificationService) NotifyNewApplication(app models.Application, jobTitle string) {
	if s.Sender == nil {
		log.Debug("Notifications disabled (no Gmail client)")
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
		defer cancel()
		if err := s.Deliver(ctx, app, jobTitle); err != nil {
			log.WithError(err).WithField("application_id", app.ID).Error("new application alert failed")
		}
	}()
}

// Wait blocks until queued alerts are done.
func (s *NotificationService) Wait() { s.wg.Wait() }

// Deliver mails every alert recipient who has not been told about app yet.
func (s *NotificationService) Deliver(ctx context.Context, app models.Application, jobTitle string) error {
	users, err := s.Store.AlertRecipients(ctx)
	if err != nil {
		return fmt.Errorf("load alert recipients: %w", err)
	}
	logger := log.WithField("application_id", app.ID)

	var failed []string
	for _, u := range users {
		key := models.NotificationKey(app.ID, u.Email)
		sent, err := s.Store.WasNotified(ctx, key)
		if err != nil {
			return err
		}
		if sent {
			continue
		}

		msg := buildAlert(s.From, u.Email, app, jobTitle)
		err = retry(ctx, 3, s.backoff, func() error { return s.Sender.Send(ctx, msg) })
		if err != nil {
			logger.WithError(err).WithField("to", u.Email).Warn("could not send alert")
			failed = append(failed, u.Email)
			continue
		}

		if _, err := s.Store.MarkNotified(ctx, key); err != nil {
			return err
		}
		logger.WithField("to", u.Email).Info("alert sent")
		if s.Events != nil {
			err := s.Events.AppendEvent(ctx, &models.ApplicationEvent{
				ApplicationID: app.ID,
				EventType:     models.EventNotified,
				Details:       "Alert sent to " + u.Email,
			})
			if err != nil {
				logger.WithError(err).Warn("could not record notified event")
			}
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("alert not delivered to %s", strings.Join(failed, ", "))
	}
	return nil
}

// buildAlert renders the alert as RFC 2822. Every value that reaches a header
// is flattened to one line first; non-ASCII subjects are Q-encoded.
func buildAlert(from, to string, app models.Application, jobTitle string) *gmail.Message {
	who := singleLine(app.CandidateName)
	if who == "" {
		who = "A candidate"
	}
	jobTitle = singleLine(jobTitle)
	subject := fmt.Sprintf("New application: %s", who)
	if jobTitle != "" {
		subject += " for " + jobTitle
	}

	var body strings.Builder
	fmt.Fprintf(&body, "%s applied", who)
	if jobTitle != "" {
		fmt.Fprintf(&body, " for %s", jobTitle)
	}
	body.WriteString(".\r\n\r\n")
	if email := singleLine(app.CandidateEmail); email != "" {
		fmt.Fprintf(&body, "Email: %s\r\n", email)
	}
	if phone := singleLine(app.CandidatePhone); phone != "" {
		fmt.Fprintf(&body, "Phone: %s\r\n", phone)
	}
	fmt.Fprintf(&body, "Application ID: %s\r\n", app.ID)

	raw := "From: " + singleLine(from) + "\r\n" +
		"To: " + singleLine(to) + "\r\n" +
		"Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n" +
		body.String()

	return &gmail.Message{Raw: base64.URLEncoding.EncodeToString([]byte(raw))}
}

// singleLine replaces control characters, CR and LF included, with spaces and
// collapses the runs.
func singleLine(s string) string {
	return strings.Join(strings.Fields(strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, s)), " ")
}

// retry executes a function with exponential backoff. It gives up early when
// ctx is done.
func retry(ctx context.Context, attempts int, sleep time.Duration, f func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = f()
		if err == nil {
			return nil
		}
		// bad request, auth or quota-less 4xx: retrying will not help
		if isPermanent(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		log.Warnf("API Error: %v. Retrying in %v...", err, sleep)
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return fmt.Errorf("gave up after %d attempts: %w", i+1, ctx.Err())
		}
		sleep *= 2
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}

func isPermanent(err error) bool {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code >= 400 && gErr.Code < 500 && gErr.Code != 429
	}
	return false
}
