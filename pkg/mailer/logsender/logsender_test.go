package logsender_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bulkmail/pkg/logger"
	"github.com/dmitrymomot/bulkmail/pkg/mailer"
	"github.com/dmitrymomot/bulkmail/pkg/mailer/logsender"
)

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestTransport_SendOne(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tr := logsender.New(newLogger(&buf))

	res, err := tr.SendOne(context.Background(), mailer.WireEmail{
		To:      "to@example.com",
		From:    "from@example.com",
		Subject: "Hello",
		HTML:    "<p>Hi</p>",
	})
	require.NoError(t, err)
	require.Len(t, res.IDs, 1)
	require.NotEmpty(t, res.IDs[0])

	out := buf.String()
	require.Contains(t, out, "transport=log")
	require.Contains(t, out, "to=to@example.com")
	require.Contains(t, out, "content_type=text/html")
	require.Contains(t, out, "id="+res.IDs[0])
}

func TestTransport_SendBatch(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tr := logsender.New(newLogger(&buf))

	res, err := tr.SendBatch(context.Background(), []mailer.WireEmail{
		{To: "a@example.com", From: "s@example.com", Subject: "A", Text: "a"},
		{To: "b@example.com", From: "s@example.com", Subject: "B", Text: "b"},
	})
	require.NoError(t, err)
	require.Len(t, res.IDs, 2)
	require.NotEqual(t, res.IDs[0], res.IDs[1])
	require.Contains(t, buf.String(), "to=a@example.com")
	require.Contains(t, buf.String(), "to=b@example.com")
}

func TestTransport_SendBatch_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := logsender.New(nil)
	res, err := tr.SendBatch(ctx, []mailer.WireEmail{{To: "a@example.com"}})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, res.IDs)
}

func TestTransport_AlwaysHasCredential(t *testing.T) {
	t.Parallel()

	tr := logsender.New(nil)
	require.True(t, tr.HasCredential())

	tr.SetCredential("re_ignored")
	require.True(t, tr.HasCredential())

	tr.SetCredential("")
	require.True(t, tr.HasCredential())

	client := mailer.New(tr)
	require.True(t, client.HasAPIKey())
}

func TestTransport_RecordsShareBatchID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, logger.Config{Level: "info"})
	client := mailer.New(logsender.New(log), mailer.WithLogger(log))

	m := client.NewMailer().
		From("s@example.com").
		Subject("Hi {email}").
		Message("Body").
		AddRecipient(mailer.AddressList{"a@example.com", "b@example.com"})
	require.NoError(t, m.Build())

	_, err := m.Send(context.Background())
	require.NoError(t, err)

	ids := map[string]int{}
	for line := range strings.Lines(buf.String()) {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		id, ok := rec["batch_id"].(string)
		require.True(t, ok, "record without batch_id: %s", line)
		ids[id]++
	}
	require.Len(t, ids, 1)
	for _, n := range ids {
		// sending batch, two emails, batch sent
		require.Equal(t, 4, n)
	}
}
