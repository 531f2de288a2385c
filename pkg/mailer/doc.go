// Package mailer builds transactional emails and expands one template across
// many recipients before handing the result to an email provider.
//
// # Architecture
//
// The package consists of four main components:
//
//   - Client: shared state (transport, API key, default sender)
//   - Email: chainable builder for a single message
//   - Mailer: subject/message templates expanded once per recipient
//   - Transport: interface the email provider implements
//
// # Usage
//
// Sending a single email through the built-in Resend transport:
//
//	import (
//		"context"
//		"os"
//
//		"github.com/dmitrymomot/bulkmail/pkg/mailer"
//		"github.com/dmitrymomot/bulkmail/pkg/mailer/resend"
//	)
//
//	func main() {
//		ctx := context.Background()
//
//		client := mailer.New(resend.New(resend.Config{
//			APIKey: os.Getenv("RESEND_API_KEY"),
//		}))
//
//		email := client.NewEmail().
//			From("team@example.com").
//			To("user@example.com").
//			Subject("Welcome").
//			Message("Hello!")
//
//		if _, err := email.Send(ctx); err != nil {
//			panic(err)
//		}
//	}
//
// # Templates
//
// Subject and message templates use {key} placeholders:
//
//	m := client.NewMailer().
//		From("team@example.com").
//		Subject("Hi {name}").
//		Message("Your order {order} has shipped, {name}.").
//		AddRecipient(mailer.TemplateDataList{
//			{"email": "ann@example.com", "name": "Ann", "order": "A-1"},
//			{"email": "bob@example.com", "name": "Bob", "order": "B-7"},
//		}).
//		AddRecipient(mailer.Address("ops@example.com"))
//
//	if err := m.Build(); err != nil {
//		return err
//	}
//	_, err := m.Send(ctx)
//
// Plain addresses only know {email}. Unknown placeholders are left in place,
// and {{key}} renders as the literal text {key}.
//
// Build renders addresses first, then template data records, each in the
// order they were added. It appends to the send queue, so calling it twice
// queues every recipient twice.
//
// Subject and message can also come from a template file with YAML frontmatter:
//
//	---
//	subject: Hi {name}
//	from: team@example.com
//	---
//	Your order {order} has shipped.
//
// # Errors
//
// Setters never return errors directly. The first failure is kept and every
// later setter becomes a no-op; Err, Build, ToWire and Send report it.
//
//   - ErrInvalidAddress: a string is not a valid address (AddressError)
//   - ErrInvalidEmail: the wire record is malformed (EmailError, FieldError)
//   - ErrContentTypeUnset: no content type recorded
//   - ErrIncompleteMailer: Build precondition failed (IncompleteError)
//   - ErrAPIKeyNotSet: the transport has no credential
//   - ErrInvalidFrontmatter: template file frontmatter is malformed
//   - ErrRenderFailed: markdown conversion failed
//
// Errors from the transport are returned unchanged.
package mailer
