package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/tuumbleweed/xerr"

	echomw "pricetag-ocr/src/pkg/echo-middleware"
	"pricetag-ocr/src/pkg/names"
)

const testToken = "t0ken"

type fakeRuns struct {
	requests [][2]string
	fail     bool
}

func (f *fakeRuns) EnqueueRun(ctx context.Context, filename string, shopName string) (string, *xerr.Error) {
	if f.fail {
		return "", xerr.NewError(fmt.Errorf("redis is down"), "enqueue task", filename)
	}
	f.requests = append(f.requests, [2]string{filename, shopName})
	return "run-1", nil
}

func newTestServer(runs RunEnqueuer) *Server {
	corrector := names.NewCorrector(names.BuildTrie([]string{"jogurt", "bily", "mleko"}), nil)
	return NewServer(echomw.DefaultValueConfig(), Dependencies{Names: corrector, Runs: runs, Token: testToken})
}

func do(t *testing.T, s *Server, method string, path string, body string, authorized bool) (int, map[string]any) {
	t.Helper()
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		request.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if authorized {
		request.Header.Set(echo.HeaderAuthorization, "Bearer "+testToken)
	}
	recorder := httptest.NewRecorder()
	s.Handler().ServeHTTP(recorder, request)

	decoded := map[string]any{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("%s %s: body is not JSON: %q", method, path, recorder.Body.String())
	}
	return recorder.Code, decoded
}

func TestHealthNeedsNoToken(t *testing.T) {
	status, body := do(t, newTestServer(nil), http.MethodGet, "/healthz", "", false)
	if status != http.StatusOK || body["status"] != "ok" || body["runs"] != false {
		t.Fatalf("healthz = %d %v", status, body)
	}
}

func TestV1RequiresToken(t *testing.T) {
	status, _ := do(t, newTestServer(nil), http.MethodPost, "/v1/names/correct", `{"text":"jogurt"}`, false)
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d", status)
	}
}

func TestCorrectNames(t *testing.T) {
	s := newTestServer(nil)

	status, body := do(t, s, http.MethodPost, "/v1/names/correct", `{"text":"JOGURT  BILY","texts":["mleko"]}`, true)
	if status != http.StatusOK {
		t.Fatalf("status = %d %v", status, body)
	}
	corrections := body["corrections"].([]any)
	if len(corrections) != 2 {
		t.Fatalf("corrections = %v", corrections)
	}
	if name := corrections[0].(map[string]any)["name"]; name != "jogurt bily" {
		t.Fatalf("first name = %v", name)
	}
	if name := corrections[1].(map[string]any)["name"]; name != "mleko" {
		t.Fatalf("second name = %v", name)
	}

	if status, _ = do(t, s, http.MethodPost, "/v1/names/correct", `{}`, true); status != http.StatusBadRequest {
		t.Fatalf("empty request status = %d", status)
	}
}

func TestParsePrice(t *testing.T) {
	s := newTestServer(nil)
	tests := []struct {
		name   string
		body   string
		status int
		check  func(t *testing.T, body map[string]any)
	}{
		{
			name:   "penny splits crowns and cents",
			body:   `{"retailer":"penny","text":"19 90 25.90 2","role":"item_price"}`,
			status: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				values := body["values"].(map[string]any)
				if body["ok"] != true || values["item_price"] != 19.9 || values["initial_price"] != 25.9 {
					t.Fatalf("body = %v", body)
				}
			},
		},
		{
			name:   "role defaults to item price",
			body:   `{"retailer":"lidl","text":"ab"}`,
			status: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				if body["ok"] != false || body["values"] != nil {
					t.Fatalf("body = %v", body)
				}
			},
		},
		{
			name:   "unknown retailer",
			body:   `{"retailer":"corner shop","text":"10"}`,
			status: http.StatusNotFound,
		},
		{
			name:   "unknown role",
			body:   `{"retailer":"penny","text":"10","role":"volume"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "missing retailer",
			body:   `{"text":"10"}`,
			status: http.StatusBadRequest,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := do(t, s, http.MethodPost, "/v1/prices/parse", tc.body, true)
			if status != tc.status {
				t.Fatalf("status = %d, want %d (%v)", status, tc.status, body)
			}
			if tc.check != nil {
				tc.check(t, body)
			}
		})
	}
}

func TestListRetailers(t *testing.T) {
	status, body := do(t, newTestServer(nil), http.MethodGet, "/v1/prices/retailers", "", true)
	if status != http.StatusOK || len(body["retailers"].([]any)) == 0 {
		t.Fatalf("retailers = %d %v", status, body)
	}
}

func TestStartRun(t *testing.T) {
	if status, _ := do(t, newTestServer(nil), http.MethodPost, "/v1/runs", `{"filename":"a.pdf","shop_name":"lidl"}`, true); status != http.StatusServiceUnavailable {
		t.Fatalf("without a queue status = %d", status)
	}

	runs := &fakeRuns{}
	s := newTestServer(runs)
	status, body := do(t, s, http.MethodPost, "/v1/runs", `{"filename":"a.pdf","shop_name":"lidl"}`, true)
	if status != http.StatusAccepted || body["run_id"] != "run-1" || len(runs.requests) != 1 {
		t.Fatalf("run = %d %v", status, body)
	}
	if status, _ = do(t, s, http.MethodPost, "/v1/runs", `{"filename":"a.pdf"}`, true); status != http.StatusBadRequest {
		t.Fatalf("missing shop status = %d", status)
	}

	runs.fail = true
	if status, _ = do(t, s, http.MethodPost, "/v1/runs", `{"filename":"a.pdf","shop_name":"lidl"}`, true); status != http.StatusBadGateway {
		t.Fatalf("enqueue failure status = %d", status)
	}
}
