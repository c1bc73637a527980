package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"plain", "one two  three", 3},
		{"punctuation only", "- * -- ...", 0},
		{"attached punctuation", "hello, world! (again)", 3},
		{"newlines separate", "a\nb\r\nc", 3},
		{"unicode", "café über naïve 東京", 4},
		{"numbers", "v1.2 and 42", 3},
		{"html comment", "keep <!-- drop these words --> this", 2},
		{"percent comment", "keep %%hidden\nblock%% this", 2},
		{"unterminated comment", "a <!-- b", 2},
		{"nbsp separates", "a\u00a0b", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WordCount(tt.text))
		})
	}
}

func TestStripComments(t *testing.T) {
	assert.Equal(t, "a  b", StripComments("a <!-- x --> b"))
	assert.Equal(t, "a  b %%", StripComments("a %%x%% b %%"))
	assert.Equal(t, "a %%%% b", StripComments("a %%%% b"))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "0.0%", formatPercent(3, 0))
	assert.Equal(t, "50.0%", formatPercent(1, 2))
	assert.Equal(t, "33.3%", formatPercent(1, 3))
}

func TestNewCounterUnknownModel(t *testing.T) {
	_, err := NewCounter("not-a-model")
	assert.Error(t, err)
}
