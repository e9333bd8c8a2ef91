package email

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/tuumbleweed/xerr"

	"pricetag-ocr/src/pkg/pipeline"
)

const maxListedNames = 20

// RunNotifier emails a pipeline run summary to the configured recipients.
type RunNotifier struct {
	cfg Config
}

func NewRunNotifier(cfg Config) *RunNotifier {
	return &RunNotifier{cfg: cfg}
}

func (n *RunNotifier) Notify(ctx context.Context, summary pipeline.Summary) (e *xerr.Error) {
	htmlText := renderSummaryHTML(summary)
	message := Message{
		Sender:     n.cfg.Sender,
		Recipients: n.cfg.Recipients,
		Subject:    SummarySubject(n.cfg.SubjectPrefix, summary),
		Text:       RenderSummaryText(summary),
		HTML:       htmlText,
		Headers:    map[string]string{"X-Pricetag-Run-Id": summary.RunID},
	}
	return SendMessageContext(ctx, n.cfg.Provider, &n.cfg.Enabled, message)
}

func SummarySubject(prefix string, summary pipeline.Summary) string {
	subject := fmt.Sprintf("%s: %d items", summary.Filename, summary.Items)
	if summary.ShopName != "" {
		subject = summary.ShopName + " " + subject
	}
	if failed := summary.Failed(); failed > 0 {
		subject += fmt.Sprintf(", %d failed", failed)
	}
	return strings.TrimSpace(prefix + " " + subject)
}

// RenderSummaryText is the plain-text body of the run summary.
func RenderSummaryText(summary pipeline.Summary) string {
	var buffer bytes.Buffer

	fmt.Fprintf(&buffer, "Run %s\n", summary.RunID)
	fmt.Fprintf(&buffer, "Leaflet: %s (%s)\n", summary.Filename, summary.ShopName)
	fmt.Fprintf(&buffer, "Duration: %s\n\n", summary.Duration().Round(time.Second))
	fmt.Fprintf(&buffer, "Pages: %d\nItem images: %d\nItems written: %d\n", summary.Pages, summary.ItemImages, summary.Items)
	fmt.Fprintf(&buffer, "Unparsed prices: %d\nDegraded names: %d\n", summary.UnparsedPrices, len(summary.DegradedNames))

	for _, stage := range summary.Stages {
		fmt.Fprintf(&buffer, "\n[%s] %d inputs, %d ok, %d failed\n", stage.Stage, stage.Inputs, stage.Succeeded, stage.Failed)
		for _, message := range stage.Errors {
			fmt.Fprintf(&buffer, "  - %s\n", message)
		}
	}

	if len(summary.DegradedNames) > 0 {
		buffer.WriteString("\nNames with uncovered segments:\n")
		for _, name := range limitNames(summary.DegradedNames) {
			fmt.Fprintf(&buffer, "  - %s\n", name)
		}
	}
	return buffer.String()
}

func limitNames(names []string) []string {
	if len(names) <= maxListedNames {
		return names
	}
	return append(append([]string{}, names[:maxListedNames]...), fmt.Sprintf("... and %d more", len(names)-maxListedNames))
}

/*
renderSummaryHTML builds the HTML body with inline CSS only, since mail
clients drop style sheets.
*/
func renderSummaryHTML(summary pipeline.Summary) string {
	var buffer bytes.Buffer

	buffer.WriteString("<!doctype html>")
	buffer.WriteString(`<html><head><meta charset="utf-8"></head>`)
	buffer.WriteString(`<body style="margin:0;padding:24px;background-color:#F3F4F6;font-family:-apple-system,'Segoe UI',Roboto,Arial,sans-serif;color:#111827;">`)

	// Header.
	buffer.WriteString(`<div style="font-size:22px;font-weight:800;">` + html.EscapeString(summary.Filename) + `</div>`)
	buffer.WriteString(`<div style="margin-top:6px;font-size:13px;color:#6B7280;">`)
	buffer.WriteString(`Shop: <b>` + html.EscapeString(summary.ShopName) + `</b>`)
	buffer.WriteString(` &nbsp;•&nbsp; Run: <b>` + html.EscapeString(summary.RunID) + `</b>`)
	buffer.WriteString(` &nbsp;•&nbsp; Duration: <b>` + summary.Duration().Round(time.Second).String() + `</b>`)
	buffer.WriteString(`</div>`)

	// Counters.
	buffer.WriteString(`<table role="presentation" cellpadding="0" cellspacing="0" border="0" style="margin-top:18px;border-collapse:separate;border-spacing:10px 0;">`)
	buffer.WriteString(`<tr>`)
	for _, counter := range []struct {
		label string
		value int
	}{
		{"Pages", summary.Pages},
		{"Item images", summary.ItemImages},
		{"Items", summary.Items},
		{"Unparsed prices", summary.UnparsedPrices},
		{"Failed inputs", summary.Failed()},
	} {
		buffer.WriteString(`<td style="padding:12px 16px;background-color:#FFFFFF;border:1px solid #E5E7EB;border-radius:12px;">`)
		buffer.WriteString(`<div style="font-size:11px;text-transform:uppercase;color:#6B7280;">` + counter.label + `</div>`)
		buffer.WriteString(`<div style="margin-top:4px;font-size:24px;font-weight:900;">` + strconv.Itoa(counter.value) + `</div>`)
		buffer.WriteString(`</td>`)
	}
	buffer.WriteString(`</tr></table>`)

	// Stage errors.
	for _, stage := range summary.Stages {
		if len(stage.Errors) == 0 {
			continue
		}
		buffer.WriteString(`<div style="margin-top:18px;font-size:14px;font-weight:800;">` + html.EscapeString(stage.Stage) + ` errors</div>`)
		buffer.WriteString(`<ul style="font-size:12px;color:#B91C1C;">`)
		for _, message := range stage.Errors {
			buffer.WriteString(`<li>` + html.EscapeString(message) + `</li>`)
		}
		buffer.WriteString(`</ul>`)
	}

	if len(summary.DegradedNames) > 0 {
		buffer.WriteString(`<div style="margin-top:18px;font-size:14px;font-weight:800;">Names with uncovered segments</div>`)
		buffer.WriteString(`<ul style="font-size:12px;color:#374151;">`)
		for _, name := range limitNames(summary.DegradedNames) {
			buffer.WriteString(`<li>` + html.EscapeString(name) + `</li>`)
		}
		buffer.WriteString(`</ul>`)
	}

	buffer.WriteString(`</body></html>`)
	return buffer.String()
}
