package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"pricetag-ocr/src/pkg/app"
	"pricetag-ocr/src/pkg/names"
)

/*
main corrects OCR'd item names with the name engine.

The name comes from --text; without it every line of stdin is corrected, one
output line per input line.
*/
func main() {
	configPath := flag.String("config", "./cfg/config.json", "Path to your configuration file.")
	text := flag.String("text", "", "Raw OCR text of an item name. Reads stdin lines when empty.")
	verbose := flag.Bool("explain", false, "Log tokens, replacements and uncovered parts of every name.")
	flag.Parse()
	app.InitializeConfig(*configPath)

	corrector, e := names.LoadCorrector(names.Cfg)
	e.QuitIf(xerr.ErrorTypeError)

	correct := func(raw string) {
		correction := corrector.Correct(raw)
		if *verbose {
			tl.LogJSON(tl.Info, palette.CyanDim, fmt.Sprintf("Correction of '%s'", raw), correction)
		}
		if correction.Degraded {
			tl.Log(tl.Warning, palette.Yellow, "Name '%s' is %s: uncovered '%s'", raw, "degraded", strings.Join(correction.Uncovered, "', '"))
		}
		fmt.Println(correction.Name)
	}

	if *text != "" {
		correct(*text)
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		correct(scanner.Text())
	}
	xerr.QuitIfError(scanner.Err(), "Unable to read stdin")
}
