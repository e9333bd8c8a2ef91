package remote

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
)

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			http.Error(w, "no image", http.StatusBadRequest)
			return
		}
		content, _ := io.ReadAll(file)

		_ = json.NewEncoder(w).Encode(map[string]string{
			"model":    r.URL.Query().Get("model"),
			"filename": header.Filename,
			"content":  string(content),
			"json":     r.FormValue("json"),
		})
	}))
}

func TestPostMultipartJSON(t *testing.T) {
	server := echoServer(t)
	defer server.Close()

	client := NewClient(server.URL+"/", 5*time.Second, 0, 1)
	var got map[string]string
	e := client.PostMultipartJSON(
		context.Background(), "/predict", url.Values{"model": {"model1"}},
		[]FilePart{{Field: "image", Filename: "page.png", Content: []byte("png")}},
		map[string]string{"json": `{"box":[1,2,3,4]}`},
		&got,
	)
	if e != nil {
		t.Fatalf("PostMultipartJSON: %v", e)
	}

	want := map[string]string{"model": "model1", "filename": "page.png", "content": "png", "json": `{"box":[1,2,3,4]}`}
	for key, value := range want {
		if got[key] != value {
			t.Fatalf("%s = %q, want %q", key, got[key], value)
		}
	}
}

func TestPostMultipartRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, e := NewClient(server.URL, time.Second, 10, 1).PostMultipart(context.Background(), "/predict", nil, nil, nil)
	if e == nil {
		t.Fatalf("expected an error for status 503")
	}
}

func TestPostMultipartHonoursContext(t *testing.T) {
	server := echoServer(t)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, e := NewClient(server.URL, time.Second, 1, 1).PostMultipart(ctx, "/predict", nil, nil, nil); e == nil {
		t.Fatalf("expected an error for a cancelled context")
	}
}

func TestGetBody(t *testing.T) {
	const text = `{"extracted_text":"19,90"}`

	var gzipped bytes.Buffer
	gzipWriter := gzip.NewWriter(&gzipped)
	_, _ = gzipWriter.Write([]byte(text))
	_ = gzipWriter.Close()

	var compressed bytes.Buffer
	brotliWriter := brotli.NewWriter(&compressed)
	_, _ = brotliWriter.Write([]byte(text))
	_ = brotliWriter.Close()

	tests := []struct {
		encoding string
		body     []byte
	}{
		{"", []byte(text)},
		{"gzip", gzipped.Bytes()},
		{"br", compressed.Bytes()},
	}
	for _, tc := range tests {
		response := &http.Response{
			Header: http.Header{"Content-Encoding": {tc.encoding}},
			Body:   io.NopCloser(bytes.NewReader(tc.body)),
		}
		body, e := GetBody(response, "test")
		if e != nil {
			t.Fatalf("GetBody(%q): %v", tc.encoding, e)
		}
		if !strings.EqualFold(string(body), text) {
			t.Fatalf("GetBody(%q) = %q", tc.encoding, body)
		}
	}
}
