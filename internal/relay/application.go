package relay

import (
	"bytes"
	"context"
	"fmt"
	texttemplate "text/template"

	log "github.com/sirupsen/logrus"

	"github.com/azenia/website/internal/email"
	"github.com/azenia/website/internal/logger"
	"github.com/azenia/website/internal/metrics"
)

// MessageApplicationReceived acknowledges an application notice.
const MessageApplicationReceived = "Application submitted successfully"

// ApplicationNotice announces an application whose resume is already stored.
type ApplicationNotice struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	ResumeURL string `json:"resumeUrl"`
	JobTitle  string `json:"jobTitle"`
	JobID     string `json:"jobId"`
}

// ApplicationAck echoes the applicant back to the caller.
type ApplicationAck struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	JobTitle  string `json:"jobTitle"`
}

var applicationTemplate = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/application.txt"))

// ApplicationRelay logs application notices and, when a mailer is
// configured, forwards them to the recruiting inbox.
type ApplicationRelay struct {
	mailer Mailer
	opts   Options
}

// NewApplicationRelay creates a relay. mailer may be nil.
func NewApplicationRelay(mailer Mailer, opts Options) *ApplicationRelay {
	return &ApplicationRelay{mailer: mailer, opts: opts}
}

// Notify records the notice. Delivery problems are logged and never fail the call.
func (r *ApplicationRelay) Notify(ctx context.Context, n ApplicationNotice) (*ApplicationAck, error) {
	text, err := RenderApplicationNotice(n, r.opts.now().Format(timestampLayout))
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"job_id": n.JobID,
		"email":  n.Email,
	}).Infof("Application received:\n%s", text)
	metrics.SubmissionsCounter.WithLabelValues("application").Inc()

	if r.mailer != nil && r.mailer.Configured() {
		subject := "New Job Application Received"
		if n.JobTitle != "" {
			subject += ": " + n.JobTitle
		}
		if _, err := r.mailer.Send(ctx, email.Message{
			From:    r.opts.From,
			To:      r.opts.To,
			Subject: subject,
			Text:    text,
		}); err != nil {
			log.WithFields(log.Fields{
				logger.ErrorTypeField: logger.ErrorTypeEmail,
				"job_id":              n.JobID,
			}).WithError(err).Error("Application email failed")
			metrics.EmailsCounter.WithLabelValues(metrics.EmailFailed).Inc()
		} else {
			metrics.EmailsCounter.WithLabelValues(metrics.EmailSent).Inc()
		}
	}

	return &ApplicationAck{
		FirstName: n.FirstName,
		LastName:  n.LastName,
		Email:     n.Email,
		Phone:     n.Phone,
		JobTitle:  n.JobTitle,
	}, nil
}

// RenderApplicationNotice renders the plain-text application notice.
func RenderApplicationNotice(n ApplicationNotice, submittedAt string) (string, error) {
	data := struct {
		ApplicationNotice
		SubmittedAt string
	}{n, submittedAt}

	var buf bytes.Buffer
	if err := applicationTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render application notice: %w", err)
	}
	return buf.String(), nil
}
