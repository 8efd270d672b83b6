package relay

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/azenia/website/internal/db"
	"github.com/azenia/website/internal/email"
	"github.com/azenia/website/internal/logger"
	"github.com/azenia/website/internal/metrics"
)

// Result messages returned to the submitter.
const (
	MessageNotConfigured = "Submission saved but email not configured"
	MessageEmailFailed   = "Submission saved but email failed to send"
	MessageSent          = "Submission received and email sent"
)

// SubmissionStore persists form submissions.
type SubmissionStore interface {
	InsertSubmission(ctx context.Context, in db.SubmissionInput) (*db.Submission, error)
	MarkSubmissionEmailSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
}

// Mailer delivers notification emails. An unconfigured mailer is skipped.
type Mailer interface {
	Configured() bool
	Send(ctx context.Context, msg email.Message) (string, error)
}

// Options configures the notification emails.
type Options struct {
	From string
	To   []string
	// Now defaults to time.Now.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Result is the outcome of an accepted submission.
type Result struct {
	SubmissionID uuid.UUID
	Message      string
	EmailSent    bool
}

//go:embed templates/*
var templateFS embed.FS

var emailTemplates = template.Must(template.New("").Funcs(template.FuncMap{
	"yesno": func(b bool) string {
		if b {
			return "Yes"
		}
		return "No"
	},
}).ParseFS(templateFS, "templates/*.html"))

// ContactRelay saves contact and partner submissions, then emails them.
type ContactRelay struct {
	store  SubmissionStore
	mailer Mailer
	opts   Options
}

// NewContactRelay creates a relay. mailer may be nil.
func NewContactRelay(store SubmissionStore, mailer Mailer, opts Options) *ContactRelay {
	return &ContactRelay{store: store, mailer: mailer, opts: opts}
}

// Submit stores the submission and relays it. A store failure is returned
// and nothing is sent; email problems only change the result message.
func (r *ContactRelay) Submit(ctx context.Context, sub Submission) (*Result, error) {
	row, err := r.store.InsertSubmission(ctx, sub.Record())
	if err != nil {
		log.WithFields(log.Fields{
			logger.ErrorTypeField: logger.ErrorTypeDB,
			"type":                sub.Kind(),
		}).WithError(err).Error("Failed to store submission")
		return nil, err
	}
	metrics.SubmissionsCounter.WithLabelValues(sub.Kind()).Inc()

	result := &Result{SubmissionID: row.ID}

	if r.mailer == nil || !r.mailer.Configured() {
		log.WithField("submission_id", row.ID).Warn("Email provider not configured, skipping notification")
		metrics.EmailsCounter.WithLabelValues(metrics.EmailNotConfigured).Inc()
		result.Message = MessageNotConfigured
		return result, nil
	}

	body, err := RenderSubmissionEmail(sub, r.opts.now())
	if err != nil {
		return nil, err
	}

	if _, err := r.mailer.Send(ctx, email.Message{
		From:    r.opts.From,
		To:      r.opts.To,
		Subject: sub.Subject(),
		HTML:    body,
	}); err != nil {
		log.WithFields(log.Fields{
			logger.ErrorTypeField: logger.ErrorTypeEmail,
			"submission_id":       row.ID,
		}).WithError(err).Error("Email send failed")
		metrics.EmailsCounter.WithLabelValues(metrics.EmailFailed).Inc()
		result.Message = MessageEmailFailed
		return result, nil
	}
	metrics.EmailsCounter.WithLabelValues(metrics.EmailSent).Inc()

	if err := r.store.MarkSubmissionEmailSent(ctx, row.ID, r.opts.now().UTC()); err != nil {
		log.WithFields(log.Fields{
			logger.ErrorTypeField: logger.ErrorTypeDB,
			"submission_id":       row.ID,
		}).WithError(err).Error("Failed to mark submission email as sent")
	}

	result.Message = MessageSent
	result.EmailSent = true
	return result, nil
}

type submissionEmail struct {
	Subject     string
	Person      *Person
	Phone       string
	Fields      []Field
	SubmittedAt string
}

// RenderSubmissionEmail renders the HTML notification for a submission.
// Submitted values are escaped.
func RenderSubmissionEmail(sub Submission, at time.Time) (string, error) {
	data := submissionEmail{
		Subject:     sub.Subject(),
		Person:      sub.person(),
		Phone:       phoneOf(sub),
		Fields:      sub.Fields(),
		SubmittedAt: at.Format(timestampLayout),
	}

	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, "submission.html", data); err != nil {
		return "", fmt.Errorf("failed to render submission email: %w", err)
	}
	return buf.String(), nil
}

const timestampLayout = "1/2/2006, 3:04:05 PM MST"

func phoneOf(sub Submission) string {
	switch s := sub.(type) {
	case *ContactForm:
		return s.PhoneNumber
	case *PartnerForm:
		return s.PhoneNumber
	}
	return ""
}
