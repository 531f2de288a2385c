package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bulkmail/pkg/logger"
)

func newTestMailer(t *testing.T, hasKey bool) (*Mailer, *MockTransport) {
	t.Helper()
	client, tr := newTestClient(t, hasKey)
	m := client.NewMailer().
		From("sender@example.com").
		Subject("Hi {email}").
		Message("Body {email}")
	require.NoError(t, m.Err())
	return m, tr
}

func recipientsOf(emails []*Email) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		out = append(out, e.Props().To)
	}
	return out
}

func TestMailer_EndToEnd(t *testing.T) {
	t.Parallel()

	m, _ := newTestMailer(t, true)
	m.AddRecipient(Address("r@example.com"))

	require.NoError(t, m.Build())
	emails := m.Emails()
	require.Len(t, emails, 1)

	wire, err := emails[0].ToWire()
	require.NoError(t, err)
	require.Equal(t, WireEmail{
		To:      "r@example.com",
		From:    "sender@example.com",
		Subject: "Hi r@example.com",
		Text:    "Body r@example.com",
	}, wire)
}

func TestMailer_Build_Ordering(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, true)
	m := client.NewMailer().
		From("s@example.com").
		Subject("Hello {name}").
		Message("Dear {name}").
		AddRecipient(TemplateData{"email": "c@example.com", "name": "C"}).
		AddRecipient(AddressList{"a@example.com", "b@example.com"})

	require.NoError(t, m.Build())

	emails := m.Emails()
	require.Equal(t, []string{"a@example.com", "b@example.com", "c@example.com"}, recipientsOf(emails))

	// Plain addresses only know {email}.
	require.Equal(t, "Hello {name}", emails[0].Props().Subject)
	require.Equal(t, "Hello C", emails[2].Props().Subject)
	require.Equal(t, "Dear C", emails[2].Props().Body)
}

func TestMailer_Build_LargeBatchKeepsOrder(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, true)
	m := client.NewMailer().From("s@example.com").Subject("S {n}").Message("M {n}")

	var list TemplateDataList
	for i := range 200 {
		list = append(list, TemplateData{
			"email": "user" + string(rune('a'+i%26)) + "@example.com",
			"n":     string(rune('0' + i%10)),
		})
	}
	m.AddRecipient(list)
	require.NoError(t, m.Build())

	emails := m.Emails()
	require.Len(t, emails, len(list))
	for i, e := range emails {
		require.Equal(t, list[i].Email(), e.Props().To)
		require.Equal(t, "S "+list[i]["n"], e.Props().Subject)
	}
}

func TestMailer_Build_Preconditions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		props   MailerProps
		field   string
		message string
	}{
		{
			name:    "subject checked first",
			props:   MailerProps{From: "s@example.com", Recipients: []string{"r@example.com"}},
			field:   FieldSubject,
			message: "mailer: subject not set",
		},
		{
			name:    "message",
			props:   MailerProps{From: "s@example.com", SubjectTemplate: "S", Recipients: []string{"r@example.com"}},
			field:   FieldMessage,
			message: "mailer: message not set",
		},
		{
			name:    "from",
			props:   MailerProps{SubjectTemplate: "S", MessageTemplate: "M", Recipients: []string{"r@example.com"}},
			field:   FieldFrom,
			message: "mailer: from not set",
		},
		{
			name:    "recipients",
			props:   MailerProps{From: "s@example.com", SubjectTemplate: "S", MessageTemplate: "M"},
			field:   FieldRecipients,
			message: "mailer: no recipients added",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, _ := newTestClient(t, true)
			m := client.MailerFromProps(tt.props)

			err := m.Build()
			require.ErrorIs(t, err, ErrIncompleteMailer)
			require.EqualError(t, err, tt.message)

			var incomplete *IncompleteError
			require.True(t, errors.As(err, &incomplete))
			require.Equal(t, tt.field, incomplete.Field)
			require.Empty(t, m.Emails())
		})
	}
}

func TestMailer_Build_IsAdditive(t *testing.T) {
	t.Parallel()

	m, _ := newTestMailer(t, true)
	m.AddRecipient(Address("r@example.com"))

	require.NoError(t, m.Build())
	require.NoError(t, m.Build())
	require.Len(t, m.Emails(), 2)
}

func TestMailer_Build_KeepsPrebuiltEmails(t *testing.T) {
	t.Parallel()

	m, _ := newTestMailer(t, true)
	extra := m.client.NewEmail().To("x@example.com").From("s@example.com").Subject("S").Message("M")

	m.AddEmail(extra).AddRecipient(Address("r@example.com"))
	require.NoError(t, m.Build())

	emails := m.Emails()
	require.Len(t, emails, 2)
	require.Same(t, extra, emails[0])
	require.Equal(t, "r@example.com", emails[1].Props().To)
}

func TestMailer_AddRecipient_AllOrNothing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input Recipients
	}{
		{name: "address", input: Address("bad")},
		{name: "address list", input: AddressList{"ok@example.com", "bad", "fine@example.com"}},
		{name: "record without email", input: TemplateData{"name": "Ann"}},
		{name: "record list", input: TemplateDataList{
			{"email": "ok@example.com"},
			{"email": "nope"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, _ := newTestMailer(t, true)
			m.AddRecipient(tt.input)

			require.ErrorIs(t, m.Err(), ErrInvalidAddress)
			props := m.Props()
			require.Empty(t, props.Recipients)
			require.Empty(t, props.TemplateData)
		})
	}
}

func TestMailer_AddRecipient_ListErrorNamesIndex(t *testing.T) {
	t.Parallel()

	m, _ := newTestMailer(t, true)
	m.AddRecipient(AddressList{"ok@example.com", "bad"})

	require.EqualError(t, m.Err(), `recipient 1: mailer: invalid email address "bad"`)
}

func TestMailer_AddRecipient_Nil(t *testing.T) {
	t.Parallel()

	m, _ := newTestMailer(t, true)
	m.AddRecipient(nil)

	require.NoError(t, m.Err())
	require.Empty(t, m.Props().Recipients)
}

func TestMailer_AddRecipient_CopiesRecords(t *testing.T) {
	t.Parallel()

	m, _ := newTestMailer(t, true)
	record := TemplateData{"email": "r@example.com", "name": "Ann"}
	m.AddRecipient(record)
	record["name"] = "Changed"

	require.Equal(t, "Ann", m.Props().TemplateData[0]["name"])
}

func TestMailer_StickyError(t *testing.T) {
	t.Parallel()

	m, _ := newTestMailer(t, true)
	m.From("invalid").
		Subject("ignored").
		AddRecipient(Address("r@example.com"))

	require.ErrorIs(t, m.Err(), ErrInvalidAddress)
	require.Equal(t, "sender@example.com", m.Props().From)
	require.Equal(t, "Hi {email}", m.Props().SubjectTemplate)
	require.Empty(t, m.Props().Recipients)
	require.ErrorIs(t, m.Build(), ErrInvalidAddress)
}

func TestMailer_UsesDefaultSender(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, true)
	require.NoError(t, client.SetDefaultSender("noreply@example.com"))

	m := client.NewMailer().
		Subject("S").
		Message("M").
		AddRecipient(Address("r@example.com"))
	require.NoError(t, m.Build())
	require.Equal(t, "noreply@example.com", m.Emails()[0].Props().From)
}

func TestMailer_PropsRoundTrip(t *testing.T) {
	t.Parallel()

	m, _ := newTestMailer(t, true)
	m.AddRecipient(Address("a@example.com")).
		AddRecipient(TemplateData{"email": "b@example.com", "name": "B"})

	props := m.Props()
	clone := m.client.MailerFromProps(props)
	require.Equal(t, props, clone.Props())

	props.Recipients[0] = "changed@example.com"
	require.Equal(t, "a@example.com", m.Props().Recipients[0])
}

func TestMailer_Template(t *testing.T) {
	t.Parallel()

	content := []byte("---\nsubject: Welcome {name}\nfrom: team@example.com\n---\nHello {name}!\n")

	client, _ := newTestClient(t, true)
	m := client.NewMailer().
		Template(content).
		AddRecipient(TemplateData{"email": "ann@example.com", "name": "Ann"})

	require.NoError(t, m.Build())
	wire, err := m.Emails()[0].ToWire()
	require.NoError(t, err)
	require.Equal(t, "team@example.com", wire.From)
	require.Equal(t, "Welcome Ann", wire.Subject)
	require.Equal(t, "Hello Ann!", wire.Text)
}

func TestMailer_Template_InvalidFrom(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, true)
	m := client.NewMailer().Template([]byte("---\nfrom: nobody\n---\nbody"))

	require.ErrorIs(t, m.Err(), ErrInvalidAddress)
	require.Empty(t, m.Props().MessageTemplate)
}

func TestMailer_Template_InvalidFrontmatter(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, true)
	m := client.NewMailer().Template([]byte("---\nsubject: x\n"))

	require.ErrorIs(t, m.Err(), ErrInvalidFrontmatter)
}

func TestMailer_Send(t *testing.T) {
	t.Parallel()

	m, tr := newTestMailer(t, true)
	m.AddRecipient(AddressList{"a@example.com", "b@example.com"})
	require.NoError(t, m.Build())

	expected := []WireEmail{
		{To: "a@example.com", From: "sender@example.com", Subject: "Hi a@example.com", Text: "Body a@example.com"},
		{To: "b@example.com", From: "sender@example.com", Subject: "Hi b@example.com", Text: "Body b@example.com"},
	}
	tr.On("SendBatch", mock.MatchedBy(func(ctx context.Context) bool {
		id, ok := logger.BatchID(ctx)
		return ok && id != ""
	}), expected).Return(Result{IDs: []string{"1", "2"}}, nil)

	res, err := m.Send(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, res.IDs)
	tr.AssertExpectations(t)
}

func TestMailer_Send_RequiresAPIKey(t *testing.T) {
	t.Parallel()

	m, tr := newTestMailer(t, false)
	m.AddRecipient(Address("r@example.com"))
	require.NoError(t, m.Build())

	_, err := m.Send(context.Background())
	require.ErrorIs(t, err, ErrAPIKeyNotSet)
	tr.AssertNotCalled(t, "SendBatch", mock.Anything, mock.Anything)
}

func TestMailer_Send_InvalidEmailAbortsBatch(t *testing.T) {
	t.Parallel()

	m, tr := newTestMailer(t, true)
	m.AddRecipient(Address("r@example.com"))
	require.NoError(t, m.Build())
	m.AddEmail(m.client.NewEmail().To("x@example.com"))

	_, err := m.Send(context.Background())
	require.ErrorIs(t, err, ErrInvalidEmail)
	require.Contains(t, err.Error(), "email 1")
	tr.AssertNotCalled(t, "SendBatch", mock.Anything, mock.Anything)
}

func TestMailer_Send_TransportErrorUnchanged(t *testing.T) {
	t.Parallel()

	m, tr := newTestMailer(t, true)
	m.AddRecipient(Address("r@example.com"))
	require.NoError(t, m.Build())

	transportErr := errors.New("rate limited")
	tr.On("SendBatch", mock.Anything, mock.Anything).Return(Result{}, transportErr)

	_, err := m.Send(context.Background())
	require.Same(t, transportErr, err)
}
