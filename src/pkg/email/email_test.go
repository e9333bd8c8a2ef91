package email

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sendgrid/rest"

	"pricetag-ocr/src/pkg/pipeline"
)

func testSummary() pipeline.Summary {
	started := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)
	return pipeline.Summary{
		RunID:          "run-42",
		Filename:       "leaflet-week-10.pdf",
		ShopName:       "billa",
		StartedAt:      started,
		FinishedAt:     started.Add(95 * time.Second),
		Pages:          12,
		ItemImages:     140,
		Items:          138,
		DegradedNames:  []string{"jogurt <bily>"},
		UnparsedPrices: 3,
		Stages: []pipeline.StageReport{
			{Stage: "detect", Inputs: 12, Succeeded: 12},
			{Stage: "process", Inputs: 140, Succeeded: 138, Failed: 2, Errors: []string{"a.png: decode image", "b.png: timeout"}},
		},
	}
}

func TestSummarySubject(t *testing.T) {
	got := SummarySubject("[pricetag-ocr]", testSummary())
	if got != "[pricetag-ocr] billa leaflet-week-10.pdf: 138 items, 2 failed" {
		t.Fatalf("subject = %q", got)
	}
	if got = SummarySubject("", pipeline.Summary{Filename: "x.pdf"}); got != "x.pdf: 0 items" {
		t.Fatalf("subject = %q", got)
	}
}

func TestRenderSummary(t *testing.T) {
	text := RenderSummaryText(testSummary())
	for _, want := range []string{"Run run-42", "Duration: 1m35s", "Items written: 138", "[process] 140 inputs, 138 ok, 2 failed", "  - b.png: timeout", "  - jogurt <bily>"} {
		if !strings.Contains(text, want) {
			t.Fatalf("text body lacks %q:\n%s", want, text)
		}
	}

	htmlText := renderSummaryHTML(testSummary())
	if !strings.Contains(htmlText, "jogurt &lt;bily&gt;") || strings.Contains(htmlText, "<bily>") {
		t.Fatalf("names must be escaped in the HTML body")
	}
	if strings.Contains(htmlText, "detect errors") || !strings.Contains(htmlText, "process errors") {
		t.Fatalf("only stages with errors get an error list")
	}
}

func TestLimitNames(t *testing.T) {
	names := make([]string, maxListedNames+5)
	limited := limitNames(names)
	if len(limited) != maxListedNames+1 || limited[maxListedNames] != "... and 5 more" {
		t.Fatalf("limitNames = %d entries, last %q", len(limited), limited[len(limited)-1])
	}
}

func TestSendMessageValidationAndDryRun(t *testing.T) {
	ctx := context.Background()
	disabled := false

	if e := SendMessageContext(ctx, ProviderMailgun, &disabled, Message{Recipients: []string{"a@b.cz"}}); e == nil {
		t.Fatalf("expected an error for a missing sender")
	}
	if e := SendMessageContext(ctx, ProviderMailgun, &disabled, Message{Sender: "x@y.cz", Recipients: []string{" ", ""}}); e == nil {
		t.Fatalf("expected an error for blank recipients")
	}
	if e := SendMessageContext(ctx, ProviderMailgun, &disabled, Message{Sender: "x@y.cz", Recipients: []string{"nobody"}}); e == nil {
		t.Fatalf("expected an error for a malformed recipient")
	}

	message := Message{Sender: "x@y.cz", Recipients: []string{"ops@y.cz"}, Subject: "dry run"}
	if e := SendMessageContext(ctx, ProviderSES, &disabled, message); e != nil {
		t.Fatalf("dry run must not fail: %v", e)
	}
	enabled := true
	if e := SendMessageContext(ctx, Provider("pigeon"), &enabled, message); e == nil {
		t.Fatalf("expected an error for an unknown provider")
	}
}

func TestRunNotifierDryRun(t *testing.T) {
	cfg := DefaultValueConfig()
	cfg.Sender, cfg.Recipients = "pipeline@y.cz", []string{"ops@y.cz"}
	if e := NewRunNotifier(cfg).Notify(context.Background(), testSummary()); e != nil {
		t.Fatalf("Notify: %v", e)
	}
}

func TestSendgridMessageID(t *testing.T) {
	id, e := sendgridMessageID(&rest.Response{StatusCode: 202, Headers: map[string][]string{"X-Message-Id": {"abc"}}})
	if e != nil || id != "abc" {
		t.Fatalf("sendgridMessageID = %q, %v", id, e)
	}
	if _, e = sendgridMessageID(&rest.Response{StatusCode: 401, Body: "unauthorized"}); e == nil {
		t.Fatalf("expected an error for a rejected request")
	}
	if _, e = sendgridMessageID(nil); e == nil {
		t.Fatalf("expected an error for a missing response")
	}
}
