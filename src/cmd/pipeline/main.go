// leaflet pipeline and its tooling, one subprogram each
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"pricetag-ocr/src/pkg/app"
	"pricetag-ocr/src/pkg/config"
	"pricetag-ocr/src/pkg/email"
	"pricetag-ocr/src/pkg/names"
	"pricetag-ocr/src/pkg/ocr"
	"pricetag-ocr/src/pkg/pdfpages"
	"pricetag-ocr/src/pkg/pipeline"
	"pricetag-ocr/src/pkg/prices"
	"pricetag-ocr/src/pkg/queue"
	"pricetag-ocr/src/pkg/util"
)

func retailerNames() (retailers []string) {
	for _, retailer := range prices.Default().Retailers() {
		retailers = append(retailers, string(retailer))
	}
	return retailers
}

// Split, detect and process one leaflet in this process.
func run(subprogram string, flags []string) {
	subprogramCmd := flag.NewFlagSet(subprogram, flag.ExitOnError)
	configPath := subprogramCmd.String("config", "./cfg/config.json", "Path to your configuration file.")
	filename := subprogramCmd.String("file", "", "Leaflet file name under the pdf prefix, e.g. billa-2025-w14.pdf")
	shopName := subprogramCmd.String("shop", "", "Retailer the leaflet belongs to")
	notify := subprogramCmd.Bool("notify", false, "Email the run summary when done")

	xerr.QuitIfError(subprogramCmd.Parse(flags), "Unable to subprogramCmd.Parse")
	util.RequiredFlag(filename, "file")
	util.RequiredChoice(shopName, "shop", retailerNames()...)
	util.EnsureFlags()
	app.InitializeConfig(*configPath)

	ctx := context.Background()
	corrector, release, e := app.LoadNameEngine(ctx)
	e.QuitIf(xerr.ErrorTypeError)
	defer release()

	p, e := app.NewPipeline(ctx, corrector)
	e.QuitIf(xerr.ErrorTypeError)

	var notifier pipeline.Notifier
	if *notify {
		notifier = app.NewNotifier()
	}
	summary, e := pipeline.NewRunner(p, notifier).Run(ctx, *filename, *shopName)
	e.QuitIf(xerr.ErrorTypeError)

	fmt.Print(email.RenderSummaryText(summary))
}

// Put a leaflet run on the workflow queue for the worker.
func enqueue(subprogram string, flags []string) {
	subprogramCmd := flag.NewFlagSet(subprogram, flag.ExitOnError)
	configPath := subprogramCmd.String("config", "./cfg/config.json", "Path to your configuration file.")
	filename := subprogramCmd.String("file", "", "Leaflet file name under the pdf prefix")
	shopName := subprogramCmd.String("shop", "", "Retailer the leaflet belongs to")

	xerr.QuitIfError(subprogramCmd.Parse(flags), "Unable to subprogramCmd.Parse")
	util.RequiredFlag(filename, "file")
	util.RequiredChoice(shopName, "shop", retailerNames()...)
	util.EnsureFlags()
	app.InitializeConfig(*configPath)

	client := queue.NewClient(queue.Cfg)
	defer func() { _ = client.Close() }()

	runID, e := client.EnqueueRun(context.Background(), *filename, *shopName)
	e.QuitIf(xerr.ErrorTypeError)
	tl.Log(tl.Notice1, palette.GreenBold, "%s run '%s' for '%s'", "Enqueued", runID, *filename)
}

// Read one price-tag photo with the local tesseract and print the reading.
func tag(subprogram string, flags []string) {
	subprogramCmd := flag.NewFlagSet(subprogram, flag.ExitOnError)
	configPath := subprogramCmd.String("config", "./cfg/config.json", "Path to your configuration file.")
	imagePath := subprogramCmd.String("image", "", "Path to the price-tag photo")
	retailer := subprogramCmd.String("shop", "", "Retailer whose price rule reads the numbers")
	hint := subprogramCmd.String("role", string(prices.RoleItem), "Price the tag shows: item_price, member_price or initial_price")
	outputDir := subprogramCmd.String("out", "", "Directory for the run output, defaults to the ocr config")
	skipNames := subprogramCmd.Bool("skip-names", false, "Do not load the name engine")

	xerr.QuitIfError(subprogramCmd.Parse(flags), "Unable to subprogramCmd.Parse")
	util.RequiredFlag(imagePath, "image")
	util.RequiredChoice(retailer, "shop", retailerNames()...)
	util.RequiredChoice(hint, "role", string(prices.RoleItem), string(prices.RoleMember), string(prices.RoleInitial))
	util.EnsureFlags()
	app.InitializeConfig(*configPath)
	app.InitializeSection("ocr", ocr.InitializeConfig)

	role, _ := prices.ParseRole(*hint)
	request := ocr.TagRequest{ImagePath: *imagePath, OutputDir: *outputDir, Retailer: *retailer, Hint: role}
	if request.OutputDir == "" {
		request.OutputDir = ocr.Cfg.OutputDir
	}
	if !*skipNames {
		corrector, e := names.LoadCorrector(names.Cfg)
		e.QuitIf(xerr.ErrorTypeError)
		request.Corrector = corrector
	}

	reading, e := ocr.ReadTag(context.Background(), request, ocr.Cfg)
	e.QuitIf(xerr.ErrorTypeError)
	tl.LogJSON(tl.Notice, palette.Cyan, "Tag reading", reading)
}

// Build the spelling model from a dictionary so later runs skip the slow indexing.
func buildSpeller(subprogram string, flags []string) {
	subprogramCmd := flag.NewFlagSet(subprogram, flag.ExitOnError)
	configPath := subprogramCmd.String("config", "./cfg/config.json", "Path to your configuration file.")
	dictionaryPath := subprogramCmd.String("dictionary", "", "Hunspell .dic or word list, defaults to the names config")
	modelPath := subprogramCmd.String("out", "", "Where to save the model, defaults to speller_model_path of the names config")

	xerr.QuitIfError(subprogramCmd.Parse(flags), "Unable to subprogramCmd.Parse")
	app.InitializeConfig(*configPath)
	if *dictionaryPath == "" {
		*dictionaryPath = names.Cfg.DictionaryPath
	}
	if *modelPath == "" {
		*modelPath = names.Cfg.SpellerModelPath
	}
	util.RequiredFlag(dictionaryPath, "dictionary")
	util.RequiredFlag(modelPath, "out")
	util.EnsureFlags()

	started := time.Now()
	words, e := names.LoadDictionaryWords(*dictionaryPath)
	e.QuitIf(xerr.ErrorTypeError)

	speller := names.NewFuzzySpeller(words, names.Cfg.SpellerDepth, names.Cfg.MaxSuggestions)
	e = speller.Save(*modelPath)
	e.QuitIf(xerr.ErrorTypeError)
	tl.Log(
		tl.Notice1, palette.GreenBold, "%s speller with '%s' words to '%s' in %s",
		"Saved", speller.Words(), *modelPath, time.Since(started).Round(time.Millisecond),
	)
}

// Count leaflet pages without rendering them.
func countPages(subprogram string, flags []string) {
	subprogramCmd := flag.NewFlagSet(subprogram, flag.ExitOnError)
	documentPath := subprogramCmd.String("pdf", "", "Path to a local leaflet PDF")

	xerr.QuitIfError(subprogramCmd.Parse(flags), "Unable to subprogramCmd.Parse")
	util.RequiredFlag(documentPath, "pdf")
	util.EnsureFlags()

	document, err := os.ReadFile(*documentPath)
	xerr.QuitIfError(err, fmt.Sprintf("Unable to read file '%s'", *documentPath))
	count, e := pdfpages.CountPages(document)
	e.QuitIf(xerr.ErrorTypeError)
	tl.Log(tl.Notice1, palette.GreenBold, "'%s' has '%s' pages", *documentPath, count)
}

/*
Pick provider and use it to send a made-up run summary to the given address.
Checks the credentials of every provider first.
*/
func notifyTest(subprogram string, flags []string) {
	config.CheckIfEnvVarsPresent(
		"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_REGION", // amazon ses
		"MAILGUN_DOMAIN", "MAILGUN_API_KEY", // mailgun
		"SENDGRID_API_KEY", // sendgrid
	)

	subprogramCmd := flag.NewFlagSet(subprogram, flag.ExitOnError)
	configPath := subprogramCmd.String("config", "./cfg/config.json", "Path to your configuration file.")
	provider := subprogramCmd.String("provider", string(email.ProviderMailgun), "Provider to use when sending emails")
	senderAddress := subprogramCmd.String("sender", "", "Sender's address")
	recipientAddresses := subprogramCmd.String("recipient", "", "Recipient addresses, comma separated")

	xerr.QuitIfError(subprogramCmd.Parse(flags), "Unable to subprogramCmd.Parse")
	app.InitializeConfig(*configPath)
	util.RequiredFlag(senderAddress, "sender")
	util.RequiredFlag(recipientAddresses, "recipient")
	util.RequiredChoice(provider, "provider", string(email.ProviderSES), string(email.ProviderMailgun), string(email.ProviderSendgrid))
	util.EnsureFlags()

	cfg := email.Cfg
	cfg.Enabled = true
	cfg.Provider = email.Provider(strings.ToLower(*provider))
	cfg.Sender = *senderAddress
	cfg.Recipients = util.SplitList(*recipientAddresses)

	now := time.Now().UTC()
	summary := pipeline.Summary{
		RunID:          "notify-test",
		Filename:       "test-leaflet.pdf",
		ShopName:       "Billa",
		StartedAt:      now.Add(-3 * time.Minute),
		FinishedAt:     now,
		Pages:          12,
		ItemImages:     140,
		Items:          138,
		DegradedNames:  []string{"jogurt bily xq"},
		UnparsedPrices: 2,
		Stages: []pipeline.StageReport{
			{Stage: "detect", Inputs: 12, Succeeded: 12},
			{Stage: "process", Inputs: 140, Succeeded: 138, Failed: 2, Errors: []string{"item_17.png: ocr service timed out"}},
		},
	}
	e := email.NewRunNotifier(cfg).Notify(context.Background(), summary)
	e.QuitIf(xerr.ErrorTypeError)
}

func main() {
	if len(os.Args) < 2 {
		tl.Log(tl.Error, palette.Red, "Usage: %s", "go run src/cmd/pipeline/main.go subprogram_name (run, enqueue, tag, build-speller, count-pages, notify-test)")
		os.Exit(1)
	}
	subprogram := os.Args[1]
	flags := os.Args[2:]

	switch subprogram {
	case "run":
		run(subprogram, flags)
	case "enqueue":
		enqueue(subprogram, flags)
	case "tag":
		tag(subprogram, flags)
	case "build-speller":
		buildSpeller(subprogram, flags)
	case "count-pages":
		countPages(subprogram, flags)
	case "notify-test":
		notifyTest(subprogram, flags)
	default:
		tl.Log(tl.Error, palette.Red, "Unknown subprogram: %s", subprogram)
		os.Exit(1)
	}
}
