package mailer

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var frontmatterDelimiter = []byte("---")

// Template is a template file split into its YAML frontmatter and body.
type Template struct {
	Metadata map[string]any
	Body     string
}

// Meta returns the frontmatter value stored under key as a string.
// Keys match case-insensitively; missing or non-scalar values yield "".
func (t *Template) Meta(key string) string {
	for k, v := range t.Metadata {
		if !strings.EqualFold(k, key) {
			continue
		}
		switch val := v.(type) {
		case string:
			return val
		case nil, map[string]any, []any:
			return ""
		default:
			return fmt.Sprint(val)
		}
	}
	return ""
}

// ParseTemplate splits content into frontmatter metadata and body.
// Content without a leading "---" line is all body.
func ParseTemplate(content []byte) (*Template, error) {
	if !bytes.HasPrefix(content, frontmatterDelimiter) {
		return &Template{Metadata: map[string]any{}, Body: string(content)}, nil
	}

	rest := bytes.TrimLeft(bytes.TrimPrefix(content, frontmatterDelimiter), "\r\n")
	if len(rest) == 0 {
		return nil, fmt.Errorf("%w: nothing after opening delimiter", ErrInvalidFrontmatter)
	}

	end := bytes.Index(rest, frontmatterDelimiter)
	if end == -1 {
		return nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}

	body := rest[end+len(frontmatterDelimiter):]
	if bytes.HasPrefix(body, []byte("\r\n")) {
		body = body[2:]
	} else {
		body = bytes.TrimPrefix(body, []byte("\n"))
	}

	metadata := map[string]any{}
	if front := rest[:end]; len(bytes.TrimSpace(front)) > 0 {
		if err := yaml.Unmarshal(front, &metadata); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}

	return &Template{Metadata: metadata, Body: string(body)}, nil
}
