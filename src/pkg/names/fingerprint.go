package names

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"slices"
	"strconv"
)

// fingerprint hashes everything that changes what Correct returns.
func fingerprint(tokens []string, speller Speller, restoreCanonical bool) string {
	digest := sha256.New()
	writeList(digest, "vocabulary", tokens)

	switch s := speller.(type) {
	case nil:
		writeList(digest, "speller", nil)
	case *FuzzySpeller:
		words := make([]string, 0, len(s.known))
		for word := range s.known {
			words = append(words, word)
		}
		slices.Sort(words)
		writeList(digest, "speller", words)
		fmt.Fprintf(digest, "depth=%d suggestions=%d\n", s.model.Depth, s.maxSuggestions)
	default:
		fmt.Fprintf(digest, "speller=%T\n", speller)
	}
	fmt.Fprintf(digest, "canonical=%t\n", restoreCanonical)

	return hex.EncodeToString(digest.Sum(nil))[:16]
}

func writeList(digest hash.Hash, label string, items []string) {
	fmt.Fprintf(digest, "%s=%d\n", label, len(items))
	for _, item := range items {
		digest.Write([]byte(strconv.Quote(item)))
		digest.Write([]byte{'\n'})
	}
}

// WithFingerprint tags the corrector with the fingerprint of what it was built from.
func WithFingerprint(fingerprint string) CorrectorOption {
	return func(c *Corrector) { c.fingerprint = fingerprint }
}

// Fingerprint identifies the vocabulary and settings the corrector was built
// from, empty when it was not tagged. Equal fingerprints mean equal corrections.
func (c *Corrector) Fingerprint() string { return c.fingerprint }
