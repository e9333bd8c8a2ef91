package util

import (
	"os"
	"slices"
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

type requiredFlag struct {
	value   *string
	cliName string
	choices []string // empty means any non-blank value
}

// kept in registration order so warnings come out the way flags were declared
var requiredFlags []requiredFlag

// RequiredFlag(shopPtr, "--shop"), "-shop" and "shop" work too.
func RequiredFlag(flagPointer *string, cliName string) {
	requiredFlags = append(requiredFlags, requiredFlag{value: flagPointer, cliName: normalizeFlagName(cliName)})
}

// RequiredChoice is RequiredFlag that also limits the value to choices (case-insensitive).
func RequiredChoice(flagPointer *string, cliName string, choices ...string) {
	requiredFlags = append(requiredFlags, requiredFlag{value: flagPointer, cliName: normalizeFlagName(cliName), choices: choices})
}

func normalizeFlagName(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "--") {
		return s
	}
	if strings.HasPrefix(s, "-") {
		return "-" + s
	}
	return "--" + s
}

func (f requiredFlag) problem() string {
	if f.value == nil || strings.TrimSpace(*f.value) == "" {
		return "required"
	}
	if len(f.choices) == 0 {
		return ""
	}
	value := strings.ToLower(strings.TrimSpace(*f.value))
	if slices.ContainsFunc(f.choices, func(choice string) bool { return strings.ToLower(choice) == value }) {
		return ""
	}
	return "one of " + strings.Join(f.choices, ", ")
}

// EnsureFlags logs every missing or invalid required flag and exits(1) if there was any.
func EnsureFlags() {
	failed := false
	for _, f := range requiredFlags {
		if problem := f.problem(); problem != "" {
			tl.Log(tl.Warning, palette.YellowBold, "%s parameter must be %s", f.cliName, problem)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// SplitList splits a comma separated flag value, dropping blanks.
func SplitList(value string) (items []string) {
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
