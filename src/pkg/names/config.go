package names

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"pricetag-ocr/src/pkg/config"
)

type Config struct {
	VocabularyPath   string `json:"vocabulary_path,omitempty"`    // one item name per line
	DictionaryPath   string `json:"dictionary_path,omitempty"`    // hunspell .dic or plain word list
	SpellerModelPath string `json:"speller_model_path,omitempty"` // model saved by `pipeline build-speller`, preferred when set
	SpellerDepth     int    `json:"speller_depth,omitempty"`
	MaxSuggestions   int    `json:"max_suggestions,omitempty"`
	RestoreCanonical bool   `json:"restore_canonical,omitempty"` // output dictionary spelling of matched segments
}

func DefaultValueConfig() Config {
	return Config{
		VocabularyPath: "./data/item_names/unique_item_names.txt",
		DictionaryPath: "/usr/share/hunspell/cs_CZ.dic",
		SpellerDepth:   2,
		MaxSuggestions: 3,
	}
}

var Cfg Config = DefaultValueConfig()

/*
If local Config is provided - use it. Replace all missing values with default ones.

If not provided - just use defaultConfig.
*/
func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "names", "not provided", "default names config")
		return
	}

	defaultConfig := DefaultValueConfig()
	Cfg = *localConfig

	tl.ApplyDefaults(&Cfg, defaultConfig, func(field string, defVal any) {
		tl.Log(
			tl.Info, palette.Purple,
			"%s field is %s in %s configuration. Using default value: %v",
			field, "missing", config.GetPackageName(), tl.PrettyForStderr(defVal),
		)
	})

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "names", "provided", "local names config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}

/*
LoadCorrector builds the name engine from cfg: the vocabulary trie and, when a
speller model or dictionary is configured, the spelling fallback.

Any load failure is returned; the engine cannot run without its dictionaries,
so callers abort startup on error.
*/
func LoadCorrector(cfg Config) (corrector *Corrector, e *xerr.Error) {
	tl.Log(tl.Notice, palette.BlueBold, "%s name engine from vocabulary '%s'", "Loading", cfg.VocabularyPath)

	tokens, e := LoadVocabulary(cfg.VocabularyPath)
	if e != nil {
		return nil, e
	}
	if len(tokens) == 0 {
		e = xerr.NewError(fmt.Errorf("vocabulary has no tokens"), "load item name vocabulary", cfg.VocabularyPath)
		return nil, e
	}
	trie := BuildTrie(tokens)

	var speller Speller
	switch {
	case cfg.SpellerModelPath != "":
		fuzzySpeller, loadErr := LoadFuzzySpeller(cfg.SpellerModelPath, cfg.MaxSuggestions)
		if loadErr != nil {
			return nil, loadErr
		}
		speller = fuzzySpeller
	case cfg.DictionaryPath != "":
		words, loadErr := LoadDictionaryWords(cfg.DictionaryPath)
		if loadErr != nil {
			return nil, loadErr
		}
		speller = NewFuzzySpeller(words, cfg.SpellerDepth, cfg.MaxSuggestions)
	default:
		tl.Log(tl.Warning, palette.YellowBold, "Spelling dictionary is %s, unknown segments are kept as is", "not configured")
	}

	options := []CorrectorOption{WithFingerprint(fingerprint(tokens, speller, cfg.RestoreCanonical))}
	if cfg.RestoreCanonical {
		options = append(options, WithCanonicalSpelling())
	}

	tl.Log(tl.Notice1, palette.GreenBold, "%s name engine", "Loaded")
	return NewCorrector(trie, speller, options...), nil
}
