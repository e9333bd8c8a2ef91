/*
Process-wide configuration file handling.

The configuration file is a JSON object with one key per package
(for example "names", "ocr", "storage", "echo_middleware"). Every package owns
its own Config type with defaults; this package only loads the file and hands
out the raw sections, so it never imports the packages it configures.
*/
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

var (
	mu       sync.RWMutex
	path     string
	sections = map[string]json.RawMessage{}
)

/*
InitializeConfig reads the JSON configuration file at configPath.

A missing file is not fatal: every package keeps its default values. A file
that exists but cannot be parsed stops the program.
*/
func InitializeConfig(configPath string) {
	loaded, e := loadSections(configPath)
	if e != nil {
		e.QuitIf(xerr.ErrorTypeError)
	}

	mu.Lock()
	path = configPath
	sections = loaded
	mu.Unlock()
}

func loadSections(configPath string) (loaded map[string]json.RawMessage, e *xerr.Error) {
	loaded = map[string]json.RawMessage{}

	fileBytes, readErr := os.ReadFile(configPath)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			tl.Log(tl.Info, palette.Purple, "Config file '%s' is %s, keeping %s", configPath, "not present", "default values")
			return loaded, nil
		}
		e = xerr.NewError(readErr, "read config file", configPath)
		return loaded, e
	}

	unmarshalErr := json.Unmarshal(fileBytes, &loaded)
	if unmarshalErr != nil {
		e = xerr.NewError(unmarshalErr, "parse config file", configPath)
		return loaded, e
	}

	tl.Log(tl.Info1, palette.Green, "Loaded config file '%s' with '%s' sections", configPath, len(loaded))
	return loaded, nil
}

/*
Section decodes the named section of the configuration file into target.

It returns found=false when the section is absent, which callers treat as
"use defaults".
*/
func Section(name string, target any) (found bool, e *xerr.Error) {
	mu.RLock()
	raw, ok := sections[name]
	currentPath := path
	mu.RUnlock()

	if !ok {
		return false, nil
	}

	unmarshalErr := json.Unmarshal(raw, target)
	if unmarshalErr != nil {
		e = xerr.NewError(unmarshalErr, "decode config section", fmt.Sprintf("%s in '%s'", name, currentPath))
		return false, e
	}

	return true, nil
}

// GetPackageName returns the name of the package that called it.
func GetPackageName() string {
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return "unknown"
	}
	funcName := runtime.FuncForPC(pc).Name() // e.g. pricetag-ocr/src/pkg/names.InitializeConfig

	lastSlash := strings.LastIndex(funcName, "/")
	if lastSlash >= 0 {
		funcName = funcName[lastSlash+1:]
	}
	if dot := strings.Index(funcName, "."); dot >= 0 {
		funcName = funcName[:dot]
	}

	return funcName
}

/*
CheckIfEnvVarsPresent logs every missing environment variable and exits(1)
if any of them is not set.
*/
func CheckIfEnvVarsPresent(names ...string) {
	missing := false
	for _, name := range names {
		if strings.TrimSpace(os.Getenv(name)) == "" {
			tl.Log(tl.Warning, palette.YellowBold, "%s environment variable is %s", name, "required")
			missing = true
		}
	}
	if missing {
		os.Exit(1)
	}
}
