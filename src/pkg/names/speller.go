package names

import (
	"bufio"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/sajari/fuzzy"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"pricetag-ocr/src/pkg/textnorm"
)

// Speller is a general-purpose spelling dictionary consulted for tokens the
// trie does not recognize.
type Speller interface {
	// Spell reports whether word is correctly spelled.
	Spell(word string) bool
	// Suggest returns corrections for word, best first. Empty when none.
	Suggest(word string) []string
}

/*
FuzzySpeller is a Speller backed by a sajari/fuzzy model (symmetric delete
spelling correction).

Words are kept in textnorm canonical form, the same form the segmentation
produces, so "mleko" is a correct spelling of "mléko". The model is trained
once and only read afterwards.
*/
type FuzzySpeller struct {
	model          *fuzzy.Model
	known          map[string]struct{}
	maxSuggestions int
}

// NewFuzzySpeller trains a model over words with the given edit depth.
func NewFuzzySpeller(words []string, depth int, maxSuggestions int) *FuzzySpeller {
	model := fuzzy.NewModel()
	model.SetThreshold(1)
	model.SetDepth(depth)
	model.SetUseAutocomplete(false)
	model.Train(words)

	speller := &FuzzySpeller{model: model, maxSuggestions: maxSuggestions}
	speller.indexKnown()

	tl.Log(tl.Info1, palette.Green, "Trained spelling model with '%s' words (depth '%s')", len(speller.known), depth)
	return speller
}

/*
LoadFuzzySpeller reads a model previously written by Save. Loading a trained
model is much faster than training from a hunspell dictionary at startup.
*/
func LoadFuzzySpeller(modelPath string, maxSuggestions int) (speller *FuzzySpeller, e *xerr.Error) {
	model, loadErr := fuzzy.Load(modelPath)
	if loadErr != nil {
		e = xerr.NewError(loadErr, "load spelling model", modelPath)
		return nil, e
	}

	speller = &FuzzySpeller{model: model, maxSuggestions: maxSuggestions}
	speller.indexKnown()

	tl.Log(tl.Info1, palette.Green, "Loaded spelling model '%s' with '%s' words", modelPath, len(speller.known))
	return speller, nil
}

func (s *FuzzySpeller) indexKnown() {
	s.known = make(map[string]struct{}, len(s.model.Data))
	for word := range s.model.Data {
		s.known[word] = struct{}{}
	}
}

// Save writes the trained model to modelPath.
func (s *FuzzySpeller) Save(modelPath string) (e *xerr.Error) {
	saveErr := s.model.Save(modelPath)
	if saveErr != nil {
		e = xerr.NewError(saveErr, "save spelling model", modelPath)
		return e
	}
	tl.Log(tl.Info1, palette.Green, "Saved spelling model to '%s'", modelPath)
	return nil
}

func (s *FuzzySpeller) Spell(word string) bool {
	_, ok := s.known[word]
	return ok
}

func (s *FuzzySpeller) Suggest(word string) []string {
	suggestions := s.model.SpellCheckSuggestions(word, s.maxSuggestions)
	filtered := suggestions[:0]
	for _, suggestion := range suggestions {
		if suggestion != "" && suggestion != word {
			filtered = append(filtered, suggestion)
		}
	}
	return filtered
}

// Words is the number of distinct dictionary words.
func (s *FuzzySpeller) Words() int { return len(s.known) }

/*
ReadDictionaryWords reads a hunspell .dic file or a plain word list.

For hunspell files the leading entry count is skipped and affix flags after
"/" as well as morphological fields are dropped. Every word is brought to
textnorm canonical form; entries that normalize to several words or to
nothing are skipped. Duplicates are removed, first occurrence wins.
*/
func ReadDictionaryWords(reader io.Reader) (words []string, err error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	seen := make(map[string]struct{})

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if lineNumber == 1 && isAllDigits(line) {
			continue
		}

		entry := line
		if slash := strings.IndexByte(entry, '/'); slash >= 0 {
			entry = entry[:slash]
		}
		if fields := strings.Fields(entry); len(fields) > 0 {
			entry = fields[0]
		}

		normalized := textnorm.Tokens(entry)
		if len(normalized) != 1 {
			continue
		}
		word := normalized[0]
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}

	return words, scanner.Err()
}

// LoadDictionaryWords reads dictionary words from a file (see ReadDictionaryWords).
func LoadDictionaryWords(dictionaryPath string) (words []string, e *xerr.Error) {
	file, openErr := os.Open(dictionaryPath)
	if openErr != nil {
		e = xerr.NewError(openErr, "open spelling dictionary", dictionaryPath)
		return nil, e
	}
	defer func() {
		_ = file.Close()
	}()

	words, readErr := ReadDictionaryWords(file)
	if readErr != nil {
		e = xerr.NewError(readErr, "read spelling dictionary", dictionaryPath)
		return nil, e
	}

	tl.Log(tl.Info1, palette.Cyan, "Read '%s' words from spelling dictionary '%s'", len(words), dictionaryPath)
	return words, nil
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
