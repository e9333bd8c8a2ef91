package names

import (
	"bufio"
	"io"
	"os"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"pricetag-ocr/src/pkg/textnorm"
)

/*
ReadVocabulary reads item names, one per line, and returns their tokens.

Each line is normalized and split on whitespace; the tokens of all lines are
flattened into one list with duplicates removed (first occurrence wins).
*/
func ReadVocabulary(reader io.Reader) (tokens []string, err error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	seen := make(map[string]struct{})

	for scanner.Scan() {
		for _, token := range textnorm.Tokens(scanner.Text()) {
			if _, dup := seen[token]; dup {
				continue
			}
			seen[token] = struct{}{}
			tokens = append(tokens, token)
		}
	}

	return tokens, scanner.Err()
}

// LoadVocabulary reads the item-name vocabulary file at vocabularyPath.
func LoadVocabulary(vocabularyPath string) (tokens []string, e *xerr.Error) {
	file, openErr := os.Open(vocabularyPath)
	if openErr != nil {
		e = xerr.NewError(openErr, "open item name vocabulary", vocabularyPath)
		return nil, e
	}
	defer func() {
		_ = file.Close()
	}()

	tokens, readErr := ReadVocabulary(file)
	if readErr != nil {
		e = xerr.NewError(readErr, "read item name vocabulary", vocabularyPath)
		return nil, e
	}

	tl.Log(tl.Info1, palette.Cyan, "Read '%s' vocabulary tokens from '%s'", len(tokens), vocabularyPath)
	return tokens, nil
}

// BuildTrie inserts every token into a fresh trie.
func BuildTrie(tokens []string) *Trie {
	trie := NewTrie()
	for _, token := range tokens {
		trie.Insert(token)
	}

	tl.Log(
		tl.Info1, palette.Green, "Built name trie: '%s' tokens, '%s' variants, '%s' nodes",
		len(tokens), trie.Words(), trie.Nodes(),
	)
	return trie
}
