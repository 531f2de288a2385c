package mailer

import "strings"

// Format replaces every {key} placeholder in template with data[key].
//
// Keys consist of ASCII letters, digits and underscores. Placeholders whose
// key is missing from data are kept verbatim, and substituted values are not
// rescanned. A doubled placeholder {{key}} is an escape and renders as {key}.
func Format(template string, data map[string]string) string {
	if !strings.Contains(template, "{") {
		return template
	}

	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); {
		if template[i] != '{' {
			b.WriteByte(template[i])
			i++
			continue
		}

		// Escaped placeholder: {{key}} -> {key}
		if i+1 < len(template) && template[i+1] == '{' {
			if end := scanKey(template, i+2); end > i+2 && end+1 < len(template) &&
				template[end] == '}' && template[end+1] == '}' {
				b.WriteString(template[i+1 : end+1])
				i = end + 2
				continue
			}
		}

		end := scanKey(template, i+1)
		if end == i+1 || end >= len(template) || template[end] != '}' {
			b.WriteByte('{')
			i++
			continue
		}

		key := template[i+1 : end]
		if value, ok := data[key]; ok {
			b.WriteString(value)
		} else {
			b.WriteString(template[i : end+1])
		}
		i = end + 1
	}

	return b.String()
}

// scanKey returns the index of the first byte at or after start that cannot
// be part of a placeholder key.
func scanKey(s string, start int) int {
	i := start
	for i < len(s) && isKeyByte(s[i]) {
		i++
	}
	return i
}

func isKeyByte(c byte) bool {
	return c == '_' ||
		('0' <= c && c <= '9') ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z')
}
