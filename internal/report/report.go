// Package report measures baked documents: words as a note editor counts
// them, and model tokens.
package report

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const DefaultModel = "gpt-4"

var (
	wordRE    = regexp.MustCompile(`[^\p{Z}\s]*[\p{L}\p{N}][^\p{Z}\s]*`)
	commentRE = regexp.MustCompile(`<!--[\s\S]*?-->|%%[\s\S]+?%%`)
)

// StripComments removes HTML and %% comments.
func StripComments(text string) string {
	return commentRE.ReplaceAllString(text, "")
}

// WordCount counts runs of non-space text containing a letter or digit,
// ignoring comments.
func WordCount(text string) int {
	return len(wordRE.FindAllStringIndex(StripComments(text), -1))
}

// Source is one note read while baking, with the number of times the
// bake pulled it in.
type Source struct {
	ID    string
	Text  string
	Reads int
}

type Counter struct {
	model string
	tkm   *tiktoken.Tiktoken
}

func NewCounter(model string) (*Counter, error) {
	if model == "" {
		model = DefaultModel
	}
	tkm, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("failed to get tokenizer for model %q: %w", model, err)
	}
	return &Counter{model: model, tkm: tkm}, nil
}

func (c *Counter) Model() string { return c.model }

func (c *Counter) Tokens(text string) int {
	return len(c.tkm.Encode(text, nil, nil))
}

// Build renders the token count of baked. The detailed form adds the word
// count and the notes that contributed the most tokens.
func (c *Counter) Build(baked string, sources []Source, detailed bool) string {
	total := c.Tokens(baked)

	var b strings.Builder
	fmt.Fprintf(&b, "%d\n", total)
	if !detailed {
		return b.String()
	}

	fmt.Fprintf(&b, "\nmodel: %s\n", c.model)
	fmt.Fprintf(&b, "words: %d\n", WordCount(baked))
	fmt.Fprintf(&b, "notes: %d\n", len(sources))

	type item struct {
		Label  string
		Tokens int
		Reads  int
	}
	items := make([]item, 0, len(sources))
	sourceTokens := 0
	for _, s := range sources {
		n := c.Tokens(s.Text)
		sourceTokens += n * max(s.Reads, 1)
		items = append(items, item{Label: s.ID, Tokens: n, Reads: s.Reads})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Tokens == items[j].Tokens {
			return items[i].Label < items[j].Label
		}
		return items[i].Tokens > items[j].Tokens
	})
	fmt.Fprintf(&b, "source tokens: %d\n", sourceTokens)

	const maxNoteLines = 20
	fmt.Fprintf(&b, "\ntop notes (raw tokens):\n")
	limit := maxNoteLines
	if len(items) < limit {
		limit = len(items)
	}
	for i := 0; i < limit; i++ {
		if items[i].Reads > 1 {
			fmt.Fprintf(&b, "%d\t%s\t(%s, %d reads)\n", items[i].Tokens, items[i].Label, formatPercent(items[i].Tokens, sourceTokens), items[i].Reads)
			continue
		}
		fmt.Fprintf(&b, "%d\t%s\t(%s)\n", items[i].Tokens, items[i].Label, formatPercent(items[i].Tokens, sourceTokens))
	}
	if len(items) > limit {
		fmt.Fprintf(&b, "...\n")
	}
	return b.String()
}

func formatPercent(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)*100/float64(total))
}
