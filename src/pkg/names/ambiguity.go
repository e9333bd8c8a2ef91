package names

// AmbiguityClass is a set of glyphs OCR confuses with one another.
type AmbiguityClass []rune

// AmbiguityClasses is the process-wide confusion table. Classes are disjoint.
var AmbiguityClasses = []AmbiguityClass{
	{'i', 'l', '1'},
	{'r', 'j'},
	{'e', 'o'},
}

var confusable = buildConfusable(AmbiguityClasses)

func buildConfusable(classes []AmbiguityClass) map[rune][]rune {
	table := make(map[rune][]rune)
	for _, class := range classes {
		for _, member := range class {
			table[member] = class
		}
	}
	return table
}

// Alternatives returns every glyph r may stand for, r's own class included.
// Runes outside every class only stand for themselves.
func Alternatives(r rune) []rune {
	if class, ok := confusable[r]; ok {
		return class
	}
	return []rune{r}
}

/*
Variants returns every spelling of token obtained by substituting each
ambiguous rune with any member of its class, independently per position.

The order is the Cartesian product order: the leftmost ambiguous position
varies slowest, members are taken in class order. A token without ambiguous
runes yields itself only.
*/
func Variants(token string) []string {
	letters := []rune(token)
	variants := []string{}

	var expand func(position int)
	expand = func(position int) {
		if position == len(letters) {
			variants = append(variants, string(letters))
			return
		}
		original := letters[position]
		for _, alternative := range Alternatives(original) {
			letters[position] = alternative
			expand(position + 1)
		}
		letters[position] = original
	}
	expand(0)

	return variants
}
