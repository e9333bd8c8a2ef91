package prices

// PriceToken is one classified value of a price tag. Literal tokens (a
// loyalty-points banner, a packaging banner) carry only Text.
type PriceToken struct {
	Role    Role    `json:"role"`
	Value   float64 `json:"value"`
	Text    string  `json:"text"`
	Literal bool    `json:"literal,omitempty"`
	Rule    string  `json:"rule"`
}

// Result is the outcome of parsing one OCR price string. No tokens means no price.
type Result struct {
	Retailer string       `json:"retailer"`
	Tokens   []PriceToken `json:"tokens"`
}

func (r Result) OK() bool { return len(r.Tokens) > 0 }

// Get returns the token for role.
func (r Result) Get(role Role) (token PriceToken, found bool) {
	for _, token := range r.Tokens {
		if token.Role == role {
			return token, true
		}
	}
	return PriceToken{}, false
}

// Values maps role names to numbers, or to text for literal tokens.
// Nil when nothing was parsed.
func (r Result) Values() map[string]any {
	if !r.OK() {
		return nil
	}
	values := make(map[string]any, len(r.Tokens))
	for _, token := range r.Tokens {
		if token.Literal {
			values[string(token.Role)] = token.Text
		} else {
			values[string(token.Role)] = token.Value
		}
	}
	return values
}

// tokens collects a rule's output; the registry stamps retailer and rule names.
type tokens []PriceToken

func (t tokens) add(role Role, r run) tokens {
	return append(t, PriceToken{Role: role, Value: r.Value, Text: r.Text})
}

func (t tokens) literal(role Role, text string) tokens {
	return append(t, PriceToken{Role: role, Text: text, Literal: true})
}
