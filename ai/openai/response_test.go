package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnnotation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		summary string
	}{
		{name: "plain", content: `{"summary":"s","insights":[]}`, summary: "s"},
		{name: "fenced", content: "```json\n{\"summary\":\"s\"}\n```", summary: "s"},
		{name: "preamble", content: "Here you go:\n{\"summary\":\"s\"}\nThanks", summary: "s"},
		{name: "missing key quote", content: `{summary": "s", insights": ["a"]}`, summary: "s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := parseAnnotation(tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.summary, a["summary"])
		})
	}
}

func TestParseAnnotationErrors(t *testing.T) {
	for _, content := range []string{"", "no braces", `{"insights":[]}`, `{"summary": }`} {
		_, err := parseAnnotation(content)
		assert.Error(t, err, content)
	}
}

func TestQuoteKeys(t *testing.T) {
	assert.Equal(t, `{"a": 1, "b_c": "x,y\"z"}`, quoteKeys(`{a": 1, b_c": "x,y\"z"}`))
	assert.Equal(t, `{"a": "{b\": 1"}`, quoteKeys(`{"a": "{b\": 1"}`))
}
