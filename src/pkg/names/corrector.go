package names

import (
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"pricetag-ocr/src/pkg/textnorm"
)

// Correction is the outcome of reconstructing one OCR item name.
type Correction struct {
	Input        string            `json:"input"`
	Concatenated string            `json:"concatenated"`
	Name         string            `json:"name"`
	Tokens       []string          `json:"tokens"`
	Replaced     map[string]string `json:"replaced,omitempty"` // segment -> spelling suggestion
	Uncovered    []string          `json:"uncovered,omitempty"`
	Degraded     bool              `json:"degraded"`
}

/*
Corrector reconstructs item names from noisy OCR text.

It normalizes and concatenates the text, finds every vocabulary candidate in
it with the trie, segments it, then runs each segment the trie does not know
through the spelling dictionary. A Corrector holds only read-only state and
is safe for concurrent use.
*/
type Corrector struct {
	trie             *Trie
	speller          Speller
	restoreCanonical bool
	fingerprint      string
}

type CorrectorOption func(*Corrector)

// WithCanonicalSpelling makes matched segments come out in their dictionary
// spelling ("1ogurt" -> "jogurt") instead of the OCR surface form.
func WithCanonicalSpelling() CorrectorOption {
	return func(c *Corrector) { c.restoreCanonical = true }
}

// NewCorrector builds a Corrector. A nil speller disables the dictionary
// fallback; unknown segments are then kept as they are.
func NewCorrector(trie *Trie, speller Speller, options ...CorrectorOption) *Corrector {
	corrector := &Corrector{trie: trie, speller: speller}
	for _, option := range options {
		option(corrector)
	}
	return corrector
}

// Trie returns the vocabulary trie used by the corrector.
func (c *Corrector) Trie() *Trie { return c.trie }

// Correct reconstructs the most plausible item name for raw OCR text. It never fails.
func (c *Corrector) Correct(raw string) (correction Correction) {
	concatenated := textnorm.Concatenate(raw)
	segmentation := Segment(concatenated, c.trie.FindAllWords(concatenated))

	correction.Input = raw
	correction.Concatenated = concatenated
	correction.Uncovered = segmentation.UncoveredSpans()
	correction.Degraded = segmentation.Degraded()

	for _, piece := range segmentation.Pieces {
		token := piece.Text
		if canonical, known := c.trie.Canonical(token); known {
			if c.restoreCanonical {
				token = canonical
			}
		} else if replacement, replaced := c.fallback(token); replaced {
			if correction.Replaced == nil {
				correction.Replaced = make(map[string]string)
			}
			correction.Replaced[token] = replacement
			token = replacement
		}
		correction.Tokens = append(correction.Tokens, token)
	}
	correction.Name = strings.Join(correction.Tokens, " ")

	if correction.Degraded {
		tl.Log(
			tl.Verbose, palette.PurpleDim, "Name '%s' only partly matched the vocabulary, uncovered: '%s'",
			concatenated, strings.Join(correction.Uncovered, "', '"),
		)
	}
	tl.Log(tl.Debug, palette.CyanDim, "Corrected name '%s' -> '%s'", raw, correction.Name)

	return correction
}

func (c *Corrector) fallback(token string) (replacement string, replaced bool) {
	if c.speller == nil || c.speller.Spell(token) {
		return token, false
	}
	suggestions := c.speller.Suggest(token)
	if len(suggestions) == 0 {
		return token, false
	}
	return suggestions[0], true
}
