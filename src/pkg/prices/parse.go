/*
Package prices turns raw OCR price strings into classified price tokens.

Every retailer prints its tags differently, so parsing is a dispatch table of
per-retailer rules (see Registry) built on two shared primitives: ParsePrice
for a single number and numericRuns for the numeric groups of a string.
*/
package prices

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ParsePrice reads one price from OCR text.
//
// Everything except digits, '.', ',' and apostrophes is dropped; ',' and '\''
// become '.'. A string with a '.' is parsed as a decimal. Without one, a run of
// more than two digits gets its last two digits as cents ("1990" -> 19.90),
// shorter runs are whole prices.
func ParsePrice(text string) (value float64, ok bool) {
	var cleaned strings.Builder
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9', r == '.':
			cleaned.WriteRune(r)
		case r == ',', r == '\'':
			cleaned.WriteByte('.')
		}
	}
	digits := cleaned.String()

	switch {
	case digits == "":
		return 0, false
	case strings.Contains(digits, "."):
		return finite(strconv.ParseFloat(digits, 64))
	case len(digits) > 2:
		return finite(strconv.ParseFloat(digits[:len(digits)-2]+"."+digits[len(digits)-2:], 64))
	default:
		return finite(strconv.ParseFloat(digits, 64))
	}
}

func finite(value float64, err error) (float64, bool) {
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) || value < 0 {
		return 0, false
	}
	return value, true
}

// numericRunRegexp matches one numeric group of a price tag: "19", "25.90", "12,".
var numericRunRegexp = regexp.MustCompile(`\d+[.,]?\d*`)

// 2^53, above it float64 no longer holds every integer
const maxExactInteger = 1 << 53

// run is one parsed numeric group with the text it came from.
type run struct {
	Text  string
	Value float64
}

// numericRuns returns the numeric groups of text that parse as prices, in order.
func numericRuns(text string) (runs []run) {
	for _, group := range numericRunRegexp.FindAllString(text, -1) {
		if value, ok := ParsePrice(group); ok {
			runs = append(runs, run{Text: group, Value: value})
		}
	}
	return runs
}

/*
mergeCents joins a whole-price run and a cents run printed apart ("19" "90")
into one price: 19.90. Both runs are truncated to integers first. Cents are
zero-padded to two digits, so "19" "5" becomes 19.05. Runs beyond the
exactly representable integers are rejected.
*/
func mergeCents(whole, cents run) (merged run, ok bool) {
	if whole.Value >= maxExactInteger || cents.Value >= maxExactInteger {
		return run{}, false
	}
	wholePart := int64(whole.Value)
	centsPart := int64(cents.Value)

	text := fmt.Sprintf("%d.%02d", wholePart, centsPart)
	value, ok := finite(strconv.ParseFloat(text, 64))
	if !ok {
		return run{}, false
	}
	return run{Text: whole.Text + " " + cents.Text, Value: value}, true
}
