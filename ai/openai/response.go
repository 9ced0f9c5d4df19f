package openai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/poiesic/stratum/ai"
)

var errNoObject = errors.New("response contains no JSON object")

// parseAnnotation extracts the JSON object from a model response.
// Markdown code fences and text around the object are discarded.
func parseAnnotation(content string) (ai.Annotation, error) {
	text := strings.TrimSpace(content)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return nil, errNoObject
	}
	text = quoteKeys(text[start : end+1])

	var annotation ai.Annotation
	if err := json.Unmarshal([]byte(text), &annotation); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}
	if _, ok := annotation["summary"]; !ok {
		return nil, errors.New("response has no summary")
	}
	return annotation, nil
}

// quoteKeys restores the opening quote small models tend to drop before
// object keys, turning `{summary": ...` into `{"summary": ...`.
func quoteKeys(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		b.WriteByte(ch)

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		if ch == '"' {
			inString = true
			continue
		}
		if ch != '{' && ch != ',' {
			continue
		}

		j := i + 1
		for j < len(s) && (s[j] == ' ' || s[j] == '\n' || s[j] == '\t' || s[j] == '\r') {
			j++
		}
		k := j
		for k < len(s) && (isLetter(s[k]) || s[k] == '_') {
			k++
		}
		if k > j && k+1 < len(s) && s[k] == '"' && s[k+1] == ':' {
			b.WriteString(s[i+1 : j])
			b.WriteByte('"')
			b.WriteString(s[j:k])
			b.WriteString(`":`)
			i = k + 1
		}
	}
	return b.String()
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
