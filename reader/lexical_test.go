package reader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const siriusContext = "Sirius ist ein star. Es ist 8.6 Lichtjahre von der Erde entfernt. " +
	"Es hat einen Durchmesser von 2380000 Kilometern und eine Masse von 4.02e+30 Kilogramm."

func TestLexical_Read(t *testing.T) {
	r := NewLexical()
	ctx := context.Background()

	t.Run("Picks the sentence sharing the question words", func(t *testing.T) {
		ans, err := r.Read(ctx, "Wie weit ist Sirius von der Erde entfernt?", siriusContext)
		require.NoError(t, err)
		assert.Equal(t, "Es ist 8.6 Lichtjahre von der Erde entfernt.", ans.Text)
		assert.Greater(t, ans.Score, 0.0)
		assert.LessOrEqual(t, ans.Score, 1.0)
	})

	t.Run("Answer is a span of the context", func(t *testing.T) {
		ans, err := r.Read(ctx, "Wie groß ist die Masse?", siriusContext)
		require.NoError(t, err)
		assert.Contains(t, siriusContext, ans.Text)
		assert.Contains(t, ans.Text, "Masse")
	})

	t.Run("Ties go to the earliest sentence", func(t *testing.T) {
		ans, err := r.Read(ctx, "Xyz?", "Erster Satz. Zweiter Satz.")
		require.NoError(t, err)
		assert.Equal(t, "Erster Satz.", ans.Text)
		assert.Equal(t, 0.0, ans.Score)
	})

	t.Run("Empty context", func(t *testing.T) {
		_, err := r.Read(ctx, "Was ist Sirius?", "   ")
		assert.Error(t, err)
	})
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "Decimal point does not split",
			text: "Es ist 8.6 Lichtjahre entfernt. Ende!",
			want: []string{"Es ist 8.6 Lichtjahre entfernt.", "Ende!"},
		},
		{
			name: "Line breaks split",
			text: "Fakten:\n\nSirius ist ein star.",
			want: []string{"Fakten:", "Sirius ist ein star."},
		},
		{
			name: "No terminator",
			text: "ohne Punkt",
			want: []string{"ohne Punkt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitSentences(tt.text))
		})
	}
}

func TestOchiai(t *testing.T) {
	a := map[string]struct{}{"sirius": {}, "weit": {}}
	b := map[string]struct{}{"sirius": {}, "weit": {}}
	assert.InDelta(t, 1.0, ochiai(a, b), 1e-9)
	assert.Equal(t, 0.0, ochiai(a, map[string]struct{}{}))
}
