package mailer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAddress indicates a string is not a valid email address.
	ErrInvalidAddress = errors.New("mailer: invalid email address")

	// ErrInvalidEmail indicates an email failed full-shape validation on conversion.
	ErrInvalidEmail = errors.New("mailer: invalid email")

	// ErrContentTypeUnset indicates conversion was attempted without a content type.
	ErrContentTypeUnset = errors.New("mailer: content type not set")

	// ErrIncompleteMailer indicates a mailer is missing a field required by Build.
	ErrIncompleteMailer = errors.New("mailer: incomplete mailer")

	// ErrAPIKeyNotSet indicates the transport has no credential configured.
	ErrAPIKeyNotSet = errors.New("mailer: API key not set, set RESEND_API_KEY or call SetAPIKey")

	// ErrInvalidFrontmatter indicates invalid YAML frontmatter in a template file.
	ErrInvalidFrontmatter = errors.New("mailer: invalid frontmatter")

	// ErrRenderFailed indicates markdown rendering failed.
	ErrRenderFailed = errors.New("mailer: failed to render markdown")
)

// AddressError reports a string that failed address validation.
type AddressError struct {
	Address string
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("mailer: invalid email address %q", e.Address)
}

func (e *AddressError) Is(target error) bool {
	return target == ErrInvalidAddress
}

// FieldError describes a single field that failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

// EmailError is returned by Email.ToWire when the converted record is malformed.
// Cause joins one FieldError per failing field.
type EmailError struct {
	Cause error
}

func (e *EmailError) Error() string {
	return fmt.Sprintf("mailer: invalid email: %v", e.Cause)
}

func (e *EmailError) Is(target error) bool {
	return target == ErrInvalidEmail
}

func (e *EmailError) Unwrap() error {
	return e.Cause
}

// IncompleteError is returned by Mailer.Build when a required field is missing.
type IncompleteError struct {
	Field string
}

func (e *IncompleteError) Error() string {
	if e.Field == FieldRecipients {
		return "mailer: no recipients added"
	}
	return fmt.Sprintf("mailer: %s not set", e.Field)
}

func (e *IncompleteError) Is(target error) bool {
	return target == ErrIncompleteMailer
}

// Field names used by FieldError and IncompleteError.
const (
	FieldTo         = "to"
	FieldFrom       = "from"
	FieldSubject    = "subject"
	FieldMessage    = "message"
	FieldHTML       = "html"
	FieldRecipients = "recipients"
)
