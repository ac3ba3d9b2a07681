package skyqa_test

import (
	"strings"
	"testing"

	"github.com/MegaGrindStone/skyqa"
	"github.com/MegaGrindStone/skyqa/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Resolve(t *testing.T) {
	names := []string{"Sonne", "Sirius", "Andromeda-Galaxie", "Orion-Nebel", "Jupiter"}

	tests := []struct {
		name     string
		question string
		fallback bool
		want     string
		wantOK   bool
	}{
		{
			name:     "Exact name",
			question: "Wie weit ist Sirius von der Erde entfernt?",
			want:     "Sirius",
			wantOK:   true,
		},
		{
			name:     "Case is ignored",
			question: "was ist der ORION-NEBEL?",
			want:     "Orion-Nebel",
			wantOK:   true,
		},
		{
			name:     "Substring inside a longer word",
			question: "Wie heiß ist die Sonnenoberfläche?",
			want:     "Sonne",
			wantOK:   true,
		},
		{
			name:     "First listed name wins",
			question: "Ist Jupiter größer als die Sonne?",
			want:     "Sonne",
			wantOK:   true,
		},
		{
			name:     "Unknown object",
			question: "Was ist Pluto?",
			wantOK:   false,
		},
		{
			name:     "Unknown object with fallback",
			question: "Was ist Pluto?",
			fallback: true,
			wantOK:   false,
		},
		{
			name:     "Empty question",
			question: "",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := skyqa.Resolver{}
			if tt.fallback {
				r.Fallback = skyqa.NewFallbackPattern(names)
			}
			got, ok := r.Resolve(tt.question, names)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_Fallback(t *testing.T) {
	pattern := skyqa.NewFallbackPattern([]string{"Sonne", "Jupiter"})

	t.Run("Matches names missing from the listing", func(t *testing.T) {
		r := skyqa.Resolver{Fallback: pattern}
		got, ok := r.Resolve("Wie groß ist jupiter?", []string{"Sonne"})
		assert.True(t, ok)
		assert.Equal(t, "jupiter", got)
	})

	t.Run("Respects word boundaries", func(t *testing.T) {
		r := skyqa.Resolver{Fallback: pattern}
		_, ok := r.Resolve("Sonnenwind", nil)
		assert.False(t, ok)
	})

	t.Run("Hyphenated names", func(t *testing.T) {
		p := skyqa.NewFallbackPattern([]string{"Andromeda-Galaxie"})
		assert.Equal(t, "andromeda-galaxie", p.FindString("Wie weit ist die andromeda-galaxie?"))
	})
}

func TestResolver_EveryCatalogName(t *testing.T) {
	var names []string
	for _, obj := range storage.DefaultObjects() {
		names = append(names, obj.Name)
	}
	require.Len(t, names, 5)

	r := skyqa.Resolver{Fallback: skyqa.NewFallbackPattern(names)}
	for _, name := range names {
		for _, question := range []string{
			"Was ist " + name + "?",
			"Wie weit ist " + strings.ToLower(name) + " von der Erde entfernt?",
			"Beschreibe " + strings.ToUpper(name) + ".",
		} {
			got, ok := r.Resolve(question, names)
			assert.True(t, ok, question)
			assert.Equal(t, name, got, question)
		}
	}
}
