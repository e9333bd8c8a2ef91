package names

// Match is a trie-recognized substring of a text, spanning runes [Start, End).
type Match struct {
	Token string `json:"token"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

type trieNode struct {
	children  map[rune]*trieNode
	terminal  bool
	canonical string // first inserted token this variant spells
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[rune]*trieNode)}
}

/*
Trie is a prefix tree over dictionary tokens where every token is stored in all
of its OCR-confusable spellings (see Variants).

Build it once with Insert, then share it: Search and FindAllWords never write,
so any number of goroutines may call them concurrently.
*/
type Trie struct {
	root  *trieNode
	nodes int
	words int
}

func NewTrie() *Trie {
	return &Trie{root: newTrieNode(), nodes: 1}
}

// Insert stores every ambiguity variant of token as a terminal path.
func (t *Trie) Insert(token string) {
	if token == "" {
		return
	}
	letters := []rune(token)

	// Walks the tree directly; variants with a common prefix reuse its nodes.
	var insertFrom func(node *trieNode, position int)
	insertFrom = func(node *trieNode, position int) {
		if position == len(letters) {
			if !node.terminal {
				node.terminal = true
				node.canonical = token
				t.words++
			}
			return
		}
		for _, alternative := range Alternatives(letters[position]) {
			insertFrom(t.child(node, alternative), position+1)
		}
	}
	insertFrom(t.root, 0)
}

func (t *Trie) child(node *trieNode, r rune) *trieNode {
	next, ok := node.children[r]
	if !ok {
		next = newTrieNode()
		node.children[r] = next
		t.nodes++
	}
	return next
}

// Search reports whether s is exactly one of the inserted variants.
func (t *Trie) Search(s string) bool {
	node := t.find(s)
	return node != nil && node.terminal
}

// Canonical returns the dictionary token whose variant s is.
func (t *Trie) Canonical(s string) (token string, ok bool) {
	node := t.find(s)
	if node == nil || !node.terminal {
		return "", false
	}
	return node.canonical, true
}

func (t *Trie) find(s string) *trieNode {
	node := t.root
	for _, r := range s {
		next, ok := node.children[r]
		if !ok {
			return nil
		}
		node = next
	}
	return node
}

/*
FindAllWords returns every substring of text that is a terminal path in the
trie, with rune offsets.

For every start offset it walks the trie alongside the text until an edge is
missing and records a match at each terminal node on the way, so one start may
yield several lengths. Matches come ordered by start, then by end.
*/
func (t *Trie) FindAllWords(text string) (matches []Match) {
	letters := []rune(text)

	for start := range letters {
		node := t.root
		for end := start; end < len(letters); end++ {
			next, ok := node.children[letters[end]]
			if !ok {
				break
			}
			node = next
			if node.terminal {
				matches = append(matches, Match{
					Token: string(letters[start : end+1]),
					Start: start,
					End:   end + 1,
				})
			}
		}
	}

	return matches
}

// Words is the number of distinct terminal paths (variants) stored.
func (t *Trie) Words() int { return t.words }

// Nodes is the number of trie nodes, root included.
func (t *Trie) Nodes() int { return t.nodes }
