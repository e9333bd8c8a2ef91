package prices

import (
	"slices"
	"strings"
	"sync"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

// Retailer is a shop identifier as stored with each uploaded leaflet.
type Retailer string

const (
	EsoMarket         Retailer = "EsoMarket"
	Penny             Retailer = "Penny"
	Billa             Retailer = "Billa"
	AlbertHypermarket Retailer = "Albert Hypermarket"
	AlbertSupermarket Retailer = "Albert Supermarket"
	TescoSupermarket  Retailer = "Tesco Supermarket"
	TescoHypermarket  Retailer = "Tesco Hypermarket"
	Lidl              Retailer = "Lidl"
	LidlShop          Retailer = "Lidl Shop"
	Kaufland          Retailer = "Kaufland"
	FlopTop           Retailer = "Flop Top"
	Flop              Retailer = "Flop"
	TravelFree        Retailer = "Travel Free"
	CBAPotraviny      Retailer = "CBA Potraviny"
	CBAPremium        Retailer = "CBA Premium"
	CBAMarket         Retailer = "CBA Market"
	Bene              Retailer = "Bene"
	Makro             Retailer = "Makro"
	Ratio             Retailer = "Ratio"
	Globus            Retailer = "Globus"
	TamdaFoods        Retailer = "Tamda Foods"
)

// Rule extracts and classifies the price tokens of one OCR string. Rules are
// pure; a nil or empty result means the string has no usable price.
type Rule func(text string, hint Role) []PriceToken

type registration struct {
	retailer Retailer // spelling as registered
	rule     Rule
	ruleName string // first retailer the rule was registered for
}

/*
Registry dispatches OCR price strings to retailer rules.

Identifiers are matched case-insensitively with surrounding whitespace
ignored. Register everything before sharing the registry; lookups never
write and may run concurrently.
*/
type Registry struct {
	rules map[string]registration
}

func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]registration)}
}

func registryKey(retailer string) string {
	return strings.ToLower(strings.TrimSpace(retailer))
}

// Register binds rule to retailer and any aliases. Tokens of every alias name
// retailer as their rule. A later registration replaces an earlier one.
func (r *Registry) Register(retailer Retailer, rule Rule, aliases ...Retailer) {
	for _, name := range append([]Retailer{retailer}, aliases...) {
		r.rules[registryKey(string(name))] = registration{retailer: name, rule: rule, ruleName: string(retailer)}
	}
}

// Lookup returns the rule registered for retailer and the rule's name.
func (r *Registry) Lookup(retailer string) (rule Rule, ruleName string, found bool) {
	entry, found := r.rules[registryKey(retailer)]
	return entry.rule, entry.ruleName, found
}

// Retailers lists every registered identifier, aliases included, sorted.
func (r *Registry) Retailers() (retailers []Retailer) {
	for _, entry := range r.rules {
		retailers = append(retailers, entry.retailer)
	}
	slices.Sort(retailers)
	return retailers
}

/*
Parse runs the retailer's rule over text with the given role hint.

An unknown retailer or a hint that is not one of the three price roles gives
an empty Result, the same as a string without a price.
*/
func (r *Registry) Parse(retailer string, text string, hint Role) (result Result) {
	result.Retailer = strings.TrimSpace(retailer)

	if !hint.IsHint() {
		tl.Log(tl.Debug, palette.PurpleDim, "Role hint '%s' is %s, no price parsed", hint, "not supported")
		return result
	}
	rule, ruleName, found := r.Lookup(retailer)
	if !found {
		tl.Log(tl.Debug, palette.PurpleDim, "Retailer '%s' has %s, no price parsed", retailer, "no price rule")
		return result
	}

	for _, token := range rule(text, hint) {
		token.Rule = ruleName
		result.Tokens = append(result.Tokens, token)
	}

	tl.Log(tl.Debug, palette.CyanDim, "Parsed '%s' price '%s' (%s): '%s' tokens", result.Retailer, text, hint, len(result.Tokens))
	return result
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default returns the shared registry with every built-in retailer rule.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		registerBuiltinRules(defaultRegistry)
	})
	return defaultRegistry
}

// Parse is Default().Parse.
func Parse(retailer string, text string, hint Role) Result {
	return Default().Parse(retailer, text, hint)
}

func registerBuiltinRules(registry *Registry) {
	registry.Register(EsoMarket, wholeString(true))
	registry.Register(Lidl, wholeString(false))
	registry.Register(LidlShop, wholeString(false))
	registry.Register(CBAPotraviny, wholeString(false))
	registry.Register(CBAPremium, wholeString(false))
	registry.Register(CBAMarket, wholeString(false))
	registry.Register(Bene, wholeString(false))

	registry.Register(Penny, pennyRule)
	registry.Register(Billa, billaRule)
	registry.Register(AlbertHypermarket, albertRule, AlbertSupermarket)
	registry.Register(TescoSupermarket, tescoRule, TescoHypermarket)
	registry.Register(Kaufland, kauflandRule)
	registry.Register(FlopTop, flopRule, Flop)
	registry.Register(TravelFree, travelFreeRule)
	registry.Register(Makro, makroRule)
	registry.Register(Ratio, ratioRule)
	registry.Register(Globus, globusRule)
	registry.Register(TamdaFoods, tamdaRule)
}
