package ocrservice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pricetag-ocr/src/pkg/detect"
)

func newTestClient(t *testing.T) (*Client, func()) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := r.FormFile("image"); err != nil {
			http.Error(w, "no image", http.StatusBadRequest)
			return
		}
		switch r.URL.Path {
		case "/extract_text":
			_ = json.NewEncoder(w).Encode(map[string]string{"extracted_text": "Jogurt bílý 19,90"})
		case "/extract_text_with_box":
			var request struct {
				Box []int `json:"box"`
			}
			if err := json.Unmarshal([]byte(r.FormValue("json")), &request); err != nil || len(request.Box) != 4 {
				http.Error(w, "bad box", http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"extracted_text": "19,90"})
		default:
			http.NotFound(w, r)
		}
	}))

	cfg := DefaultValueConfig()
	cfg.BaseURL = server.URL
	return NewClient(cfg), server.Close
}

func TestExtractText(t *testing.T) {
	client, closeServer := newTestClient(t)
	defer closeServer()

	text, e := client.ExtractText(context.Background(), []byte("png"), "item.png")
	if e != nil || text != "Jogurt bílý 19,90" {
		t.Fatalf("ExtractText = %q, %v", text, e)
	}
}

func TestExtractTextInBox(t *testing.T) {
	client, closeServer := newTestClient(t)
	defer closeServer()

	text, e := client.ExtractTextInBox(context.Background(), []byte("png"), "item.png", detect.Box{1, 2, 3, 4})
	if e != nil || text != "19,90" {
		t.Fatalf("ExtractTextInBox = %q, %v", text, e)
	}
}
