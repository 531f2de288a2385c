package mailer

import (
	"bytes"
	"errors"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdown     goldmark.Markdown
	htmlPolicy   *bluemonday.Policy
	markdownOnce sync.Once
)

func initMarkdown() {
	markdownOnce.Do(func() {
		markdown = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)

		// Links in an email always open outside the mail client.
		htmlPolicy = bluemonday.UGCPolicy()
		htmlPolicy.RequireNoFollowOnLinks(false)
		htmlPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	})
}

// RenderMarkdown converts CommonMark (with GitHub extensions) to HTML and
// strips anything unsafe for an email body: scripts, event handlers and
// javascript: URLs.
func RenderMarkdown(src string) (string, error) {
	initMarkdown()

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", errors.Join(ErrRenderFailed, err)
	}
	return htmlPolicy.Sanitize(buf.String()), nil
}
