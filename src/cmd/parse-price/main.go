package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"pricetag-ocr/src/pkg/prices"
	"pricetag-ocr/src/pkg/util"
)

// main parses one OCR'd price string with a retailer's rule and prints the values as JSON.
func main() {
	retailer := flag.String("shop", "", "Retailer whose price rule to use")
	text := flag.String("text", "", "Raw OCR text of the price field")
	hint := flag.String("role", string(prices.RoleItem), "Detection class the text came from: item_price, member_price or initial_price")
	list := flag.Bool("list", false, "List the retailers that have a price rule and exit")
	flag.Parse()

	registry := prices.Default()
	if *list {
		for _, name := range registry.Retailers() {
			fmt.Println(name)
		}
		return
	}

	util.RequiredFlag(retailer, "shop")
	util.RequiredFlag(text, "text")
	util.EnsureFlags()

	role, ok := prices.ParseRole(*hint)
	if !ok {
		tl.Log(tl.Error, palette.Red, "Unknown role: %s", *hint)
		os.Exit(1)
	}
	_, ruleName, found := registry.Lookup(*retailer)
	if !found {
		tl.Log(tl.Error, palette.Red, "No price rule for retailer: %s", *retailer)
		os.Exit(1)
	}
	tl.Log(tl.Verbose, palette.CyanDim, "%s rule '%s' for '%s'", "Using", ruleName, *retailer)

	result := registry.Parse(*retailer, *text, role)
	if !result.OK() {
		tl.Log(tl.Warning, palette.Yellow, "No price in '%s'", *text)
		os.Exit(2)
	}
	output, err := json.MarshalIndent(result.Values(), "", "  ")
	xerr.QuitIfError(err, "Unable to marshal price values")
	fmt.Println(string(output))
}
