package detect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestPad(t *testing.T) {
	tests := []struct {
		name          string
		box           Box
		width, height int
		want          Box
	}{
		{"inside", Box{100, 100, 200, 150}, 1000, 1000, Box{90, 95, 210, 155}},
		{"clamped at origin", Box{5, 2, 105, 52}, 1000, 1000, Box{0, 0, 115, 57}},
		{"clamped at edge", Box{900, 900, 1000, 1000}, 1000, 1000, Box{890, 890, 1000, 1000}},
		{"padding truncated", Box{10, 10, 19, 19}, 100, 100, Box{10, 10, 19, 19}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.box.Pad(0.10, tc.width, tc.height); got != tc.want {
				t.Fatalf("Pad = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" || r.URL.Query().Get("model") != "model2" {
			http.Error(w, "bad route", http.StatusNotFound)
			return
		}
		if _, _, err := r.FormFile("image"); err != nil {
			http.Error(w, "no image", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"detections": []map[string]any{
				{"box": []int{1, 2, 30, 40}, "class": "item_name", "confidence": 0.91},
				{"box": []int{5, 50, 25, 70}, "class": "item_price", "confidence": 0.88},
			},
		})
	}))
	defer server.Close()

	cfg := DefaultValueConfig()
	cfg.BaseURL = server.URL
	detections, e := NewClient(cfg).Detect(context.Background(), []byte("png"), "pages/valid/a_page_1.png", "model2")
	if e != nil {
		t.Fatalf("Detect: %v", e)
	}

	want := []Detection{
		{Box: Box{1, 2, 30, 40}, Class: "item_name", Confidence: 0.91},
		{Box: Box{5, 50, 25, 70}, Class: "item_price", Confidence: 0.88},
	}
	if !reflect.DeepEqual(detections, want) {
		t.Fatalf("detections = %+v", detections)
	}
}

func TestDetectServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := DefaultValueConfig()
	cfg.BaseURL = server.URL
	if _, e := NewClient(cfg).Detect(context.Background(), nil, "x.png", "model1"); e == nil {
		t.Fatalf("expected an error")
	}
}
