package util

import (
	"slices"
	"testing"
)

func TestRequiredFlagProblem(t *testing.T) {
	blank, set, shop, badShop := "  ", "leaflet.pdf", "Billa", "corner"
	tests := []struct {
		name string
		flag requiredFlag
		want string
	}{
		{"nil pointer", requiredFlag{cliName: "--file"}, "required"},
		{"blank value", requiredFlag{value: &blank, cliName: "--file"}, "required"},
		{"any value", requiredFlag{value: &set, cliName: "--file"}, ""},
		{"known choice", requiredFlag{value: &shop, cliName: "--shop", choices: []string{"billa", "lidl"}}, ""},
		{"unknown choice", requiredFlag{value: &badShop, cliName: "--shop", choices: []string{"billa", "lidl"}}, "one of billa, lidl"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.flag.problem(); got != tc.want {
				t.Fatalf("problem() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizeFlagName(t *testing.T) {
	for input, want := range map[string]string{"shop": "--shop", "-shop": "--shop", "--shop": "--shop", " file ": "--file"} {
		if got := normalizeFlagName(input); got != want {
			t.Fatalf("normalizeFlagName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" a@x.cz, ,b@x.cz,")
	if !slices.Equal(got, []string{"a@x.cz", "b@x.cz"}) {
		t.Fatalf("SplitList = %q", got)
	}
	if SplitList("") != nil {
		t.Fatalf("empty value must give no items")
	}
}
