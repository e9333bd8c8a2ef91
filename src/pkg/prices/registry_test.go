package prices

import (
	"reflect"
	"testing"
)

func TestParseRetailerRules(t *testing.T) {
	tests := []struct {
		name     string
		retailer Retailer
		text     string
		hint     Role
		want     map[string]any // nil means no price
	}{
		{"penny split cents and initial", Penny, "19 90 25.90 2", RoleItem,
			map[string]any{"item_price": 19.90, "initial_price": 25.90}},
		{"penny common cents", Penny, "19 90", RoleItem,
			map[string]any{"item_price": 19.90}},
		{"penny two prices", Penny, "19 25", RoleItem,
			map[string]any{"item_price": 19.0, "initial_price": 25.0}},
		{"penny single", Penny, "24.90", RoleItem,
			map[string]any{"item_price": 24.90}},
		{"penny empty", Penny, "", RoleItem, nil},

		{"kaufland adjacent decimals", Kaufland, "1 kg 29.90 35.90", RoleItem, nil},
		{"kaufland initial first", Kaufland, "35,- 29.90", RoleItem,
			map[string]any{"item_price": 29.90, "initial_price": 35.0}},
		{"kaufland single", Kaufland, "29.90", RoleItem,
			map[string]any{"item_price": 29.90}},

		{"travel free", TravelFree, "€ 12.50 15.00", RoleItem,
			map[string]any{"item_price": 12.50, "initial_price": 15.0}},
		{"travel free reversed", TravelFree, "15.00 € 12.50", RoleItem,
			map[string]any{"item_price": 12.50, "initial_price": 15.0}},

		{"billa points banner", Billa, "75 bodů", RoleMember,
			map[string]any{"member_price": "75bodi"}},
		{"billa volume", Billa, "24.90 2", RoleItem,
			map[string]any{"item_price": 24.90, "volume": 2.0}},
		{"billa initial", Billa, "24.90 29.90", RoleItem,
			map[string]any{"item_price": 24.90, "initial_price": 29.90}},
		{"billa small fractional initial", Billa, "24.90 4.50", RoleItem,
			map[string]any{"item_price": 24.90, "initial_price": 4.50}},

		{"albert dash", AlbertHypermarket, "29,-", RoleItem,
			map[string]any{"item_price": 29.0}},
		{"albert apostrophe member", AlbertSupermarket, "31'90", RoleMember,
			map[string]any{"member_price": 31.90}},
		{"albert below minimum", AlbertHypermarket, "3 ks", RoleItem, nil},

		{"tesco date range", TescoSupermarket, "12.7. - 14.7. 39.90", RoleMember,
			map[string]any{"member_price": 39.90}},
		{"tesco percentage", TescoHypermarket, "-20 %", RoleItem, nil},
		{"tesco hop banner", TescoHypermarket, "HOP 1+1", RoleItem, nil},

		{"flop", Flop, "19.90 24.90", RoleItem,
			map[string]any{"item_price": 19.90, "initial_price": 24.90}},

		{"makro packaging", Makro, "6 BAL 29.90 35.90", RoleItem,
			map[string]any{"item_price": 29.90, "initial_price": 35.90, "packaging": "6 BAL"}},
		{"makro without packaging", Makro, "29.90", RoleItem,
			map[string]any{"item_price": 29.90}},

		{"ratio", Ratio, "bez DPH 100.00 vcetne DPH 121.00", RoleItem,
			map[string]any{"price_excl_vat": 100.0, "item_price": 121.0}},
		{"ratio single", Ratio, "121.00", RoleItem, nil},

		{"globus apostrophe", Globus, "14'90", RoleItem,
			map[string]any{"item_price": 14.90}},
		{"globus split cents member", Globus, "17 90", RoleMember,
			map[string]any{"member_price": 17.90}},
		{"globus initial not read", Globus, "17 90", RoleInitial, nil},
		{"globus letters", Globus, "Kč 14.90", RoleItem, nil},

		{"tamda currency", TamdaFoods, "1290 KC", RoleItem,
			map[string]any{"item_price": 12.90}},
		{"tamda glued currency", TamdaFoods, "3490Kc", RoleMember,
			map[string]any{"member_price": 34.90}},
		{"tamda unit price", TamdaFoods, "(12.90/kg)", RoleItem, nil},

		{"esomarket", EsoMarket, "24.90", RoleMember,
			map[string]any{"member_price": 24.90}},
		{"esomarket zero", EsoMarket, "0", RoleItem, nil},
		{"lidl hint", Lidl, "1990", RoleInitial,
			map[string]any{"initial_price": 19.90}},
		{"cba market", CBAMarket, "", RoleItem, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Parse(string(tc.retailer), tc.text, tc.hint)
			if got := result.Values(); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Parse(%q, %q, %s) = %v, want %v", tc.retailer, tc.text, tc.hint, got, tc.want)
			}
			if result.OK() != (tc.want != nil) {
				t.Fatalf("OK() = %v", result.OK())
			}
		})
	}
}

func TestParseRejectsUnknownRetailerAndHint(t *testing.T) {
	if result := Parse("Spar", "19.90", RoleItem); result.OK() {
		t.Fatalf("unknown retailer parsed: %+v", result)
	}
	if result := Parse(string(Lidl), "19.90", RoleVolume); result.OK() {
		t.Fatalf("volume is not a hint: %+v", result)
	}
}

func TestParseStampsRule(t *testing.T) {
	result := Parse("  albert supermarket ", "31'90", RoleItem)
	token, found := result.Get(RoleItem)
	if !found {
		t.Fatalf("no item price in %+v", result)
	}
	if token.Rule != string(AlbertHypermarket) || result.Retailer != "albert supermarket" {
		t.Fatalf("rule = %q retailer = %q", token.Rule, result.Retailer)
	}
	if token.Text != "31'90" || token.Value != 31.90 {
		t.Fatalf("token = %+v", token)
	}
}

func TestRegistryRegister(t *testing.T) {
	registry := NewRegistry()
	registry.Register("Corner Shop", func(text string, hint Role) []PriceToken {
		return []PriceToken{{Role: hint, Value: 1, Text: text}}
	}, "Corner")

	result := registry.Parse("corner", "x", RoleMember)
	token, found := result.Get(RoleMember)
	if !found || token.Rule != "Corner Shop" {
		t.Fatalf("alias not dispatched: %+v", result)
	}
	if got := registry.Retailers(); !reflect.DeepEqual(got, []Retailer{"Corner", "Corner Shop"}) {
		t.Fatalf("Retailers() = %v", got)
	}
}

func TestDefaultRegistryCoversRetailers(t *testing.T) {
	if got := len(Default().Retailers()); got != 21 {
		t.Fatalf("default registry has %d retailers, want 21", got)
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		role Role
		ok   bool
	}{
		{"item_price", RoleItem, true},
		{"member_price", RoleMember, true},
		{"item_member_price", RoleMember, true},
		{" ITEM_INITIAL_PRICE ", RoleInitial, true},
		{"initial_price", RoleInitial, true},
		{"volume", "", false},
		{"item_name", "", false},
	}
	for _, tc := range tests {
		role, ok := ParseRole(tc.in)
		if role != tc.role || ok != tc.ok {
			t.Fatalf("ParseRole(%q) = %q, %v", tc.in, role, ok)
		}
	}
	if RoleMember.DetectionClass() != "item_member_price" || RoleItem.DetectionClass() != "item_price" {
		t.Fatalf("DetectionClass mismatch")
	}
}
