package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/bulkmail/pkg/logger"
)

// MailerProps is the full property set of a Mailer.
type MailerProps struct {
	From            string         `json:"from,omitempty"`
	SubjectTemplate string         `json:"subject_template,omitempty"`
	MessageTemplate string         `json:"message_template,omitempty"`
	Recipients      []string       `json:"recipients"`
	TemplateData    []TemplateData `json:"template_data"`
	Subjects        []string       `json:"subjects"` // reserved for per-recipient subject overrides
	Emails          []*Email       `json:"-"`
}

// Mailer expands one subject and message template across many recipients.
//
// Plain addresses added with AddRecipient are rendered with a single
// variable, {email}. TemplateData records supply every key they carry.
// Build appends one Email per recipient: plain addresses first, then
// records, each group in insertion order.
//
// Like Email, setters keep the first failure as a sticky error.
type Mailer struct {
	client *Client
	err    error

	from            string
	subjectTemplate string
	messageTemplate string
	recipients      []string
	templateData    []TemplateData
	subjects        []string
	emails          []*Email
}

// From sets the sender of every generated email.
func (m *Mailer) From(address string) *Mailer {
	if m.err != nil {
		return m
	}
	if err := ValidateAddress(address); err != nil {
		m.err = err
		return m
	}
	m.from = address
	return m
}

// Subject sets the subject template.
func (m *Mailer) Subject(template string) *Mailer {
	if m.err == nil {
		m.subjectTemplate = template
	}
	return m
}

// Message sets the message template.
func (m *Mailer) Message(template string) *Mailer {
	if m.err == nil {
		m.messageTemplate = template
	}
	return m
}

// Template loads the subject and message templates from a template file.
// The file body becomes the message template; the frontmatter "subject"
// key becomes the subject template and an optional "from" key sets the sender.
func (m *Mailer) Template(content []byte) *Mailer {
	if m.err != nil {
		return m
	}
	tmpl, err := ParseTemplate(content)
	if err != nil {
		m.err = err
		return m
	}

	if from := tmpl.Meta("from"); from != "" {
		if err := ValidateAddress(from); err != nil {
			m.err = err
			return m
		}
		m.from = from
	}
	if subject := tmpl.Meta("subject"); subject != "" {
		m.subjectTemplate = subject
	}
	m.messageTemplate = strings.TrimRight(tmpl.Body, "\r\n")
	return m
}

// AddRecipient queues recipients for expansion.
// Either every element of r is valid and queued, or none is.
func (m *Mailer) AddRecipient(r Recipients) *Mailer {
	if m.err != nil || r == nil {
		return m
	}
	var batch recipientBatch
	if err := r.collect(&batch); err != nil {
		m.err = err
		return m
	}
	m.recipients = append(m.recipients, batch.addresses...)
	m.templateData = append(m.templateData, batch.records...)
	return m
}

// AddEmail appends prebuilt emails to the send queue, bypassing expansion.
func (m *Mailer) AddEmail(emails ...*Email) *Mailer {
	if m.err == nil {
		m.emails = append(m.emails, emails...)
	}
	return m
}

// Err returns the first error recorded by a setter.
func (m *Mailer) Err() error {
	return m.err
}

// Emails returns the queued emails.
func (m *Mailer) Emails() []*Email {
	return append([]*Email(nil), m.emails...)
}

// Props returns the current property set.
func (m *Mailer) Props() MailerProps {
	props := MailerProps{
		From:            m.from,
		SubjectTemplate: m.subjectTemplate,
		MessageTemplate: m.messageTemplate,
		Recipients:      append([]string{}, m.recipients...),
		TemplateData:    make([]TemplateData, 0, len(m.templateData)),
		Subjects:        append([]string{}, m.subjects...),
		Emails:          m.Emails(),
	}
	for _, data := range m.templateData {
		props.TemplateData = append(props.TemplateData, data.clone())
	}
	return props
}

// Build renders one email per queued recipient and appends them to the send queue.
//
// Build is additive: calling it again renders the same recipients again.
// It fails on the first missing field, checked in the order subject,
// message, from, recipients.
func (m *Mailer) Build() error {
	if m.err != nil {
		return m.err
	}
	if err := m.validate(); err != nil {
		return err
	}

	data := make([]TemplateData, 0, len(m.recipients)+len(m.templateData))
	for _, addr := range m.recipients {
		data = append(data, TemplateData{EmailKey: addr})
	}
	data = append(data, m.templateData...)

	built := make([]*Email, len(data))
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, d := range data {
		g.Go(func() error {
			built[i] = m.render(d)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	m.emails = append(m.emails, built...)
	m.log().Debug("mailer built",
		slog.Int("rendered", len(built)),
		slog.Int("queued", len(m.emails)),
	)
	return nil
}

func (m *Mailer) validate() error {
	switch {
	case m.subjectTemplate == "":
		return &IncompleteError{Field: FieldSubject}
	case m.messageTemplate == "":
		return &IncompleteError{Field: FieldMessage}
	case m.from == "":
		return &IncompleteError{Field: FieldFrom}
	case len(m.recipients) == 0 && len(m.templateData) == 0:
		return &IncompleteError{Field: FieldRecipients}
	}
	return nil
}

// render builds the email for one recipient. Fields are assigned directly:
// anything injected through MailerProps is checked later by ToWire.
func (m *Mailer) render(data TemplateData) *Email {
	return &Email{
		client:      m.client,
		from:        m.from,
		to:          data.Email(),
		subject:     Format(m.subjectTemplate, data),
		body:        Format(m.messageTemplate, data),
		contentType: ContentTypeText,
	}
}

// Send converts every queued email and submits them in one batch.
// If any email fails conversion nothing is submitted.
// The transport's result and error are returned as is.
func (m *Mailer) Send(ctx context.Context) (Result, error) {
	if m.client == nil || !m.client.HasAPIKey() {
		return Result{}, ErrAPIKeyNotSet
	}

	wires := make([]WireEmail, 0, len(m.emails))
	for i, email := range m.emails {
		wire, err := email.ToWire()
		if err != nil {
			return Result{}, fmt.Errorf("email %d: %w", i, err)
		}
		wires = append(wires, wire)
	}

	ctx = logger.WithBatchID(ctx, uuid.NewString())
	l := m.log()
	l.InfoContext(ctx, "sending batch", slog.Int("emails", len(wires)))

	res, err := m.client.transport.SendBatch(ctx, wires)
	if err != nil {
		l.ErrorContext(ctx, "batch send failed", slog.String("error", err.Error()))
		return res, err
	}

	l.InfoContext(ctx, "batch sent", slog.Int("ids", len(res.IDs)))
	return res, nil
}

func (m *Mailer) log() *slog.Logger {
	if m.client == nil {
		return logger.NewNope()
	}
	return m.client.logger
}
