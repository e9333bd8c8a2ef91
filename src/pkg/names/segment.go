package names

import (
	"sort"
	"strings"
)

const (
	shortTokenLength  = 3
	shortTokenPenalty = -10
)

// Score is the length-biased segmentation score: tokens of three runes or
// fewer cost 10, longer tokens earn their length.
func Score(token string) int {
	length := len([]rune(token))
	if length <= shortTokenLength {
		return shortTokenPenalty
	}
	return length
}

// Piece is one contiguous part of a segmented text. Matched is false for a
// span no dictionary candidate covered; such spans are kept verbatim.
type Piece struct {
	Text    string `json:"text"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Matched bool   `json:"matched"`
}

// Segmentation is an ordered, gap-free cover of a text by pieces.
type Segmentation struct {
	Pieces    []Piece `json:"pieces"`
	Score     int     `json:"score"`
	Uncovered int     `json:"uncovered"` // runes outside every matched piece
}

// Degraded reports that some part of the input matched no dictionary token.
func (s Segmentation) Degraded() bool {
	return s.Uncovered > 0
}

// Tokens returns the piece texts in order.
func (s Segmentation) Tokens() []string {
	tokens := make([]string, 0, len(s.Pieces))
	for _, piece := range s.Pieces {
		tokens = append(tokens, piece.Text)
	}
	return tokens
}

// UncoveredSpans returns the texts of unmatched pieces.
func (s Segmentation) UncoveredSpans() (spans []string) {
	for _, piece := range s.Pieces {
		if !piece.Matched {
			spans = append(spans, piece.Text)
		}
	}
	return spans
}

func (s Segmentation) String() string {
	return strings.Join(s.Tokens(), " ")
}

type cell struct {
	reached   bool
	uncovered int
	score     int
	prev      int
	piece     Piece
}

func (c cell) beats(other cell) bool {
	if !other.reached {
		return true
	}
	if c.uncovered != other.uncovered {
		return c.uncovered < other.uncovered
	}
	return c.score > other.score
}

/*
Segment picks the best cover of text by the candidate matches.

dp[k] holds the best way to cover the first k runes. A candidate (start, end)
improves dp[end] from dp[start] only when strictly better, so among equal
scores the first candidate reaching an offset wins. Candidates are consumed by
increasing start, keeping their given order within one start.

A rune no candidate can cover is consumed as a single-rune gap, so the result
always spans the whole text. Fewer uncovered runes always win over a higher
score; when a full cover exists the result is the plain maximum-score cover.
Adjacent gap runes are merged into one unmatched piece.
*/
func Segment(text string, matches []Match) (segmentation Segmentation) {
	letters := []rune(text)
	n := len(letters)
	if n == 0 {
		return segmentation
	}

	ordered := make([]Match, len(matches))
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	dp := make([]cell, n+1)
	dp[0] = cell{reached: true, prev: -1}

	next := 0
	for position := 0; position < n; position++ {
		from := dp[position]

		for ; next < len(ordered) && ordered[next].Start <= position; next++ {
			match := ordered[next]
			if match.Start != position || !from.reached || match.End > n || match.End <= match.Start {
				continue
			}
			candidate := cell{
				reached:   true,
				uncovered: from.uncovered,
				score:     from.score + Score(match.Token),
				prev:      position,
				piece:     Piece{Text: match.Token, Start: match.Start, End: match.End, Matched: true},
			}
			if candidate.beats(dp[match.End]) {
				dp[match.End] = candidate
			}
		}

		if !from.reached {
			continue
		}
		gap := cell{
			reached:   true,
			uncovered: from.uncovered + 1,
			score:     from.score,
			prev:      position,
			piece:     Piece{Text: string(letters[position]), Start: position, End: position + 1},
		}
		if gap.beats(dp[position+1]) {
			dp[position+1] = gap
		}
	}

	final := dp[n]
	segmentation.Score = final.score
	segmentation.Uncovered = final.uncovered

	var reversed []Piece
	for at := n; at > 0; at = dp[at].prev {
		reversed = append(reversed, dp[at].piece)
	}
	for i := len(reversed) - 1; i >= 0; i-- {
		segmentation.Pieces = appendPiece(segmentation.Pieces, reversed[i])
	}

	return segmentation
}

func appendPiece(pieces []Piece, piece Piece) []Piece {
	last := len(pieces) - 1
	if !piece.Matched && last >= 0 && !pieces[last].Matched {
		pieces[last].Text += piece.Text
		pieces[last].End = piece.End
		return pieces
	}
	return append(pieces, piece)
}
