// Package reader provides the extractive readers that pull an answer span out of a context.
package reader

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/MegaGrindStone/skyqa"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)*`)

// Lexical is an offline reader. It answers with the context sentence sharing the most words with
// the question, scored with the Ochiai coefficient. Ties go to the earlier sentence.
type Lexical struct {
	stopwords map[string]struct{}
}

// NewLexical creates a lexical reader ignoring common German question words.
func NewLexical() Lexical {
	return Lexical{stopwords: defaultStopwords()}
}

// Read implements skyqa.Reader.
func (l Lexical) Read(_ context.Context, question, text string) (skyqa.Answer, error) {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return skyqa.Answer{}, errors.New("empty context")
	}

	qset := l.tokenSet(question)
	best, bestScore := 0, -1.0
	for i, sent := range sentences {
		score := ochiai(qset, l.tokenSet(sent))
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return skyqa.Answer{Text: sentences[best], Score: bestScore}, nil
}

func (l Lexical) tokenSet(s string) map[string]struct{} {
	tokens := tokenPattern.FindAllString(strings.ToLower(s), -1)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if _, stop := l.stopwords[tok]; stop {
			continue
		}
		set[tok] = struct{}{}
	}
	return set
}

// ochiai returns |A∩B| / sqrt(|A||B|).
func ochiai(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range b {
		if _, ok := a[tok]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(a))*float64(len(b)))
}

// splitSentences splits at '.', '!' and '?' followed by whitespace, and at line breaks.
// A period inside a number such as 8.6 does not end a sentence.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	flush := func(end int) {
		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}
	for i, r := range runes {
		switch {
		case r == '\n':
			flush(i + 1)
		case strings.ContainsRune(".!?", r):
			if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
				flush(i + 1)
			}
		}
	}
	flush(len(runes))
	return sentences
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"der", "die", "das", "den", "dem", "des", "ein", "eine", "einer", "eines", "einem", "einen",
		"und", "oder", "ist", "sind", "war", "es", "er", "sie", "wie", "was", "wo", "wer", "welche",
		"welcher", "welches", "von", "vom", "zu", "zur", "zum", "im", "in", "auf", "an", "am", "mit",
		"für", "bitte", "mir", "mich", "ich", "du", "sein", "seine", "seiner", "hat", "haben",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
