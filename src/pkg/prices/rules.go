package prices

import (
	"math"
	"regexp"
	"strings"

	"pricetag-ocr/src/pkg/textnorm"
)

// wholeString parses the entire string as one price written under the hint.
// Tags of these retailers carry a single price per detected field.
func wholeString(rejectZero bool) Rule {
	return func(text string, hint Role) []PriceToken {
		value, ok := ParsePrice(text)
		if !ok || (rejectZero && value == 0) {
			return nil
		}
		return tokens{}.add(hint, run{Text: strings.TrimSpace(text), Value: value})
	}
}

// Trailing runs Penny and similar tags print as separate cents.
var commonCents = []float64{90, 99}

func isCommonCents(value float64) bool {
	for _, cents := range commonCents {
		if value == cents {
			return true
		}
	}
	return false
}

/*
pennyRule reads Penny tags, where the selling price is printed as large
whole crowns next to small cents and the original price follows:

	"19 90 25.90 2" -> item 19.90, initial 25.90

Three or more runs: the first two merge into the item price, the third is the
initial price, anything after is ignored. Two runs: a trailing 90 or 99 is
cents of the first, otherwise the second is the initial price.
*/
func pennyRule(text string, _ Role) []PriceToken {
	runs := numericRuns(text)
	var out tokens

	switch {
	case len(runs) >= 3:
		item, ok := mergeCents(runs[0], runs[1])
		if !ok {
			return nil
		}
		return out.add(RoleItem, item).add(RoleInitial, runs[2])
	case len(runs) == 2:
		if isCommonCents(runs[1].Value) {
			item, ok := mergeCents(runs[0], runs[1])
			if !ok {
				return nil
			}
			return out.add(RoleItem, item)
		}
		return out.add(RoleItem, runs[0]).add(RoleInitial, runs[1])
	case len(runs) == 1:
		return out.add(RoleItem, runs[0])
	}
	return nil
}

// billaPointsSentinel replaces the member price of Billa loyalty-points tags.
const billaPointsSentinel = "75bodi"

var billaPointsKeywords = []string{"bodi", "bodu"}

const billaMaxVolume = 5

/*
billaRule reads Billa tags. A loyalty-points banner ("75 bodů") yields the
points sentinel as member price and nothing else. Of two runs, a small whole
second number is a bundle count ("2 ks"), otherwise the original price.
*/
func billaRule(text string, _ Role) []PriceToken {
	var out tokens

	folded := strings.ToLower(textnorm.FoldDiacritics(text))
	for _, keyword := range billaPointsKeywords {
		if strings.Contains(folded, keyword) {
			return out.literal(RoleMember, billaPointsSentinel)
		}
	}

	runs := numericRuns(text)
	switch len(runs) {
	case 2:
		second := runs[1]
		if second.Value < billaMaxVolume && second.Value == math.Trunc(second.Value) {
			return out.add(RoleItem, runs[0]).add(RoleVolume, second)
		}
		return out.add(RoleItem, runs[0]).add(RoleInitial, second)
	case 1:
		return out.add(RoleItem, runs[0])
	}
	return nil
}

var albertForeignRegexp = regexp.MustCompile(`[^0-9\s.,'\-:]`)

// Albert prints no price below this on its tags; smaller readings are unit
// counts or OCR fragments.
const albertMinPrice = 5

/*
albertRule reads Albert tags, which print whole prices as "29,-" or "29:" and
decimals as "31'90". Every field holds one price, so the first value goes
under the hint.
*/
func albertRule(text string, hint Role) []PriceToken {
	cleaned := albertForeignRegexp.ReplaceAllString(text, "")

	var values []run
	for _, field := range strings.Fields(cleaned) {
		if strings.HasSuffix(field, "-") || strings.HasSuffix(field, ":") {
			field = field[:len(field)-1]
		}
		if value, ok := ParsePrice(field); ok {
			values = append(values, run{Text: field, Value: value})
		}
	}

	if len(values) == 0 || values[0].Value < albertMinPrice {
		return nil
	}
	return tokens{}.add(hint, values[0])
}

// tescoDateRangeRegexp matches promotion validity like "12.7. - 14.7.".
var tescoDateRangeRegexp = regexp.MustCompile(`\d{1,2}\.\d{1,2}\.\s*-\s*\d{1,2}\.\d{1,2}\.`)

// tescoRule drops validity dates, rejects discount banners and writes the
// first run under the hint.
func tescoRule(text string, hint Role) []PriceToken {
	cleaned := tescoDateRangeRegexp.ReplaceAllString(text, "")
	if strings.Contains(cleaned, "%") || strings.Contains(cleaned, "HOP") {
		return nil
	}

	runs := numericRuns(cleaned)
	if len(runs) == 0 {
		return nil
	}
	return tokens{}.add(hint, runs[0])
}

var adjacentDecimalsRegexp = regexp.MustCompile(`\d+[.,]\d+\s+\d+[.,]\d+`)

// kauflandRule: the original price comes first, the selling price last. Two
// decimals side by side are a unit-price table, not a tag, and are rejected.
func kauflandRule(text string, _ Role) []PriceToken {
	if adjacentDecimalsRegexp.MatchString(text) {
		return nil
	}

	runs := numericRuns(text)
	var out tokens
	switch len(runs) {
	case 2:
		return out.add(RoleItem, runs[1]).add(RoleInitial, runs[0])
	case 1:
		return out.add(RoleItem, runs[0])
	}
	return nil
}

func flopRule(text string, _ Role) []PriceToken {
	runs := numericRuns(text)
	var out tokens
	switch len(runs) {
	case 2:
		return out.add(RoleItem, runs[0]).add(RoleInitial, runs[1])
	case 1:
		return out.add(RoleItem, runs[0])
	}
	return nil
}

// travelFreeRule: the sale price is the smaller of two, whatever the order.
func travelFreeRule(text string, _ Role) []PriceToken {
	runs := numericRuns(strings.ReplaceAll(text, "€", ""))
	var out tokens
	switch len(runs) {
	case 2:
		sale, initial := runs[0], runs[1]
		if initial.Value < sale.Value {
			sale, initial = initial, sale
		}
		return out.add(RoleItem, sale).add(RoleInitial, initial)
	case 1:
		return out.add(RoleItem, runs[0])
	}
	return nil
}

// makroPackagingRegexp matches a leading packaging banner: "6 BAL", "12ks", "1-2 A VICE".
var makroPackagingRegexp = regexp.MustCompile(`^\d+-?\d?\s*(BAL|ks|A VICE|AViCE)`)

func makroRule(text string, _ Role) []PriceToken {
	var out tokens

	packaging := makroPackagingRegexp.FindString(text)
	if packaging != "" {
		text = strings.TrimSpace(text[len(packaging):])
	}

	runs := numericRuns(text)
	switch {
	case len(runs) >= 2:
		out = out.add(RoleItem, runs[0]).add(RoleInitial, runs[1])
	case len(runs) == 1:
		out = out.add(RoleItem, runs[0])
	default:
		return nil
	}
	if packaging != "" {
		out = out.literal(RolePackaging, packaging)
	}
	return out
}

// ratioRule: Ratio tags print the price without VAT first, then with VAT.
func ratioRule(text string, _ Role) []PriceToken {
	runs := numericRuns(text)
	if len(runs) != 2 {
		return nil
	}
	return tokens{}.add(RoleExclVAT, runs[0]).add(RoleItem, runs[1])
}

var (
	globusForeignRegexp    = regexp.MustCompile(`[^\d.,'\s-]`)
	globusSplitCentsRegexp = regexp.MustCompile(`\d+\s+\d{2}`)
)

/*
globusRule accepts only purely numeric fields. "14'90" and "17 90" are read
as 14.90 and 17.90. Exactly one value is expected, for item or member
fields; initial prices are not read from Globus tags.
*/
func globusRule(text string, hint Role) []PriceToken {
	if strings.Contains(text, "%") || globusForeignRegexp.MatchString(text) {
		return nil
	}

	text = strings.ReplaceAll(text, "'", ".")
	if globusSplitCentsRegexp.MatchString(text) {
		text = strings.ReplaceAll(text, " ", ".")
	}

	return singleRun(text, hint)
}

var tamdaCurrencyRegexp = regexp.MustCompile(`[KCkc]+`)

// tamdaRule reads "1290 KC" style fields; percentages and bracketed unit
// prices are rejected.
func tamdaRule(text string, hint Role) []PriceToken {
	if strings.Contains(text, "%") || strings.Contains(text, "(") {
		return nil
	}
	text = strings.TrimSpace(tamdaCurrencyRegexp.ReplaceAllString(text, ""))

	return singleRun(text, hint)
}

// singleRun writes a lone run under an item or member hint.
func singleRun(text string, hint Role) []PriceToken {
	runs := numericRuns(text)
	if len(runs) != 1 || (hint != RoleItem && hint != RoleMember) {
		return nil
	}
	return tokens{}.add(hint, runs[0])
}
