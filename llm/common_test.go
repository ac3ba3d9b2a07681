package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Plain",
			input: `{"answer": "8.6 Lichtjahre"}`,
			want:  `{"answer": "8.6 Lichtjahre"}`,
		},
		{
			name:  "Think tags",
			input: "<think>\nSirius is a star.\n</think>\n{\"answer\": \"star\"}",
			want:  `{"answer": "star"}`,
		},
		{
			name:  "Fenced",
			input: "```json\n{\"answer\": \"galaxy\"}\n```",
			want:  `{"answer": "galaxy"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanResponse(tt.input))
		})
	}
}
