package mailer

import (
	"context"
	"errors"
	"log/slog"
)

// ContentType selects which wire field carries an email body.
type ContentType string

const (
	ContentTypeText ContentType = "text/plain"
	ContentTypeHTML ContentType = "text/html"
)

func (c ContentType) String() string {
	return string(c)
}

// IsValid reports whether c is one of the supported content types.
func (c ContentType) IsValid() bool {
	return c == ContentTypeText || c == ContentTypeHTML
}

// EmailProps is the full property set of an Email.
type EmailProps struct {
	To          string      `json:"to,omitempty" yaml:"to,omitempty"`
	From        string      `json:"from,omitempty" yaml:"from,omitempty"`
	Subject     string      `json:"subject,omitempty" yaml:"subject,omitempty"`
	Body        string      `json:"body,omitempty" yaml:"body,omitempty"`
	ContentType ContentType `json:"content_type" yaml:"content_type"`
}

// Email is a chainable builder for a single message.
//
// Setters that accept an address validate it immediately. The first failure
// is kept as a sticky error: the failing field is left unchanged, every later
// setter becomes a no-op, and Err, ToWire and Send all report it.
type Email struct {
	client *Client
	err    error

	to          string
	from        string
	subject     string
	body        string
	contentType ContentType
}

// To sets the recipient address.
func (e *Email) To(address string) *Email {
	if e.err != nil {
		return e
	}
	if err := ValidateAddress(address); err != nil {
		e.err = err
		return e
	}
	e.to = address
	return e
}

// From sets the sender address.
func (e *Email) From(address string) *Email {
	if e.err != nil {
		return e
	}
	if err := ValidateAddress(address); err != nil {
		e.err = err
		return e
	}
	e.from = address
	return e
}

// Subject sets the subject line verbatim.
func (e *Email) Subject(subject string) *Email {
	if e.err == nil {
		e.subject = subject
	}
	return e
}

// Message sets the body verbatim. The content type decides whether it is sent as text or HTML.
func (e *Email) Message(body string) *Email {
	if e.err == nil {
		e.body = body
	}
	return e
}

// ContentType sets the content type of the body.
func (e *Email) ContentType(kind ContentType) *Email {
	if e.err == nil {
		e.contentType = kind
	}
	return e
}

// Markdown renders src to sanitized HTML and uses it as an HTML body.
func (e *Email) Markdown(src string) *Email {
	if e.err != nil {
		return e
	}
	html, err := RenderMarkdown(src)
	if err != nil {
		e.err = err
		return e
	}
	e.body = html
	e.contentType = ContentTypeHTML
	return e
}

// Err returns the first error recorded by a setter.
func (e *Email) Err() error {
	return e.err
}

// Props returns the current property set.
func (e *Email) Props() EmailProps {
	return EmailProps{
		To:          e.to,
		From:        e.from,
		Subject:     e.subject,
		Body:        e.body,
		ContentType: e.contentType,
	}
}

// ToWire converts the email into the record a transport receives and
// validates every required field of that record.
func (e *Email) ToWire() (WireEmail, error) {
	if e.err != nil {
		return WireEmail{}, e.err
	}
	if !e.contentType.IsValid() {
		return WireEmail{}, ErrContentTypeUnset
	}

	wire := WireEmail{
		To:      e.to,
		From:    e.from,
		Subject: e.subject,
	}
	if e.contentType == ContentTypeHTML {
		wire.HTML = e.body
	} else {
		wire.Text = e.body
	}

	if err := wire.Validate(); err != nil {
		return WireEmail{}, &EmailError{Cause: err}
	}
	return wire, nil
}

// Send converts the email and hands it to the transport.
// The transport's result and error are returned as is.
func (e *Email) Send(ctx context.Context) (Result, error) {
	if e.client == nil || !e.client.HasAPIKey() {
		return Result{}, ErrAPIKeyNotSet
	}

	wire, err := e.ToWire()
	if err != nil {
		return Result{}, err
	}

	e.client.logger.DebugContext(ctx, "sending email",
		slog.String("to", wire.To),
		slog.String("subject", wire.Subject),
	)
	return e.client.transport.SendOne(ctx, wire)
}

// Validate checks the required-field contract of a wire record.
// It returns the joined FieldErrors, or nil.
func (w WireEmail) Validate() error {
	var errs []error

	if w.To == "" {
		errs = append(errs, &FieldError{Field: FieldTo, Reason: "required"})
	} else if ValidateAddress(w.To) != nil {
		errs = append(errs, &FieldError{Field: FieldTo, Reason: "invalid email address"})
	}

	if w.From == "" {
		errs = append(errs, &FieldError{Field: FieldFrom, Reason: "required"})
	} else if ValidateAddress(w.From) != nil {
		errs = append(errs, &FieldError{Field: FieldFrom, Reason: "invalid email address"})
	}

	if w.Subject == "" {
		errs = append(errs, &FieldError{Field: FieldSubject, Reason: "required"})
	}

	switch {
	case w.Text != "" && w.HTML != "":
		errs = append(errs, &FieldError{Field: FieldHTML, Reason: "only one of text or html may be set"})
	case w.Text == "" && w.HTML == "":
		errs = append(errs, &FieldError{Field: FieldMessage, Reason: "required"})
	}

	return errors.Join(errs...)
}
