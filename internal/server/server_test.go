package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/pipedag/pkg/buildinfo"
	"github.com/matzehuels/pipedag/pkg/cache"
	apperrors "github.com/matzehuels/pipedag/pkg/errors"
	"github.com/matzehuels/pipedag/pkg/graph"
	"github.com/matzehuels/pipedag/pkg/layout"
	"github.com/matzehuels/pipedag/pkg/observability"
	"github.com/matzehuels/pipedag/pkg/pipeline"
)

const chainJSON = `{
  "nodes": [
    {"id": "1", "label": "Extract", "type": "source", "position": {"x": 0, "y": 0}},
    {"id": "2", "label": "Load", "type": "output", "position": {"x": 0, "y": 0}}
  ],
  "edges": [
    {"id": "e1-2", "source": "1", "target": "2", "sourceHandle": "right", "targetHandle": "left"}
  ]
}`

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(fc, nil, logger)
	if opts.Layout.Engine == "" {
		opts.Layout.Engine = layout.EngineLayered
	}
	ts := httptest.NewServer(New(runner, logger, opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	got := decode[map[string]string](t, resp)
	want := map[string]string{"status": "ok", "version": buildinfo.Version}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("healthz mismatch (-want +got):\n%s", diff)
	}
}

type validateResponse struct {
	IsValid    bool     `json:"isValid"`
	Errors     []string `json:"errors"`
	Violations []string `json:"violations"`
}

func TestValidate(t *testing.T) {
	ts := newTestServer(t, Options{})

	tests := []struct {
		name string
		body string
		want validateResponse
	}{
		{
			name: "valid chain",
			body: chainJSON,
			want: validateResponse{IsValid: true, Errors: []string{}},
		},
		{
			name: "isolated nodes",
			body: `{"nodes":[{"id":"1"},{"id":"2"}],"edges":[]}`,
			want: validateResponse{
				Errors:     []string{"All nodes must be connected to at least one edge."},
				Violations: []string{"connectivity"},
			},
		},
		{
			name: "single node self-loop",
			body: `{"nodes":[{"id":"1"}],"edges":[{"id":"e","source":"1","target":"1","sourceHandle":"right","targetHandle":"left"}]}`,
			want: validateResponse{
				Errors: []string{
					"Pipeline must have at least 2 nodes.",
					"Self-loops are not allowed.",
					"Pipeline must not contain cycles.",
				},
				Violations: []string{"minimum_nodes", "no_self_loops", "acyclic"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/v1/validate", tt.body)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			got := decode[validateResponse](t, resp)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBadRequests(t *testing.T) {
	ts := newTestServer(t, Options{MaxBodyBytes: 512})

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   apperrors.Code
	}{
		{"malformed validate", "/v1/validate", `{"nodes": [`, http.StatusBadRequest, apperrors.ErrCodeInvalidFormat},
		{"empty body", "/v1/layout", ``, http.StatusBadRequest, apperrors.ErrCodeInvalidFormat},
		{"bad direction", "/v1/layout?direction=sideways", chainJSON, http.StatusBadRequest, apperrors.ErrCodeInvalidDirection},
		{"bad engine", "/v1/layout?engine=circo", chainJSON, http.StatusBadRequest, apperrors.ErrCodeInvalidEngine},
		{"too large", "/v1/validate", `{"nodes":[` + strings.Repeat(`{"id":"x"},`, 100) + `{"id":"y"}]}`,
			http.StatusRequestEntityTooLarge, apperrors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			got := decode[errorBody](t, resp)
			if got.Code != tt.code || got.Error == "" {
				t.Errorf("error body = %+v, want code %s", got, tt.code)
			}
		})
	}
}

func TestLayout(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp := post(t, ts.URL+"/v1/layout?direction=LR", chainJSON)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Cache"); got != "miss" {
		t.Errorf("X-Cache = %q, want miss", got)
	}
	first := decode[graph.Graph](t, resp)
	if len(first.Nodes) != 2 || len(first.Edges) != 1 {
		t.Fatalf("layout = %+v", first)
	}
	if first.Nodes[0].Position.X >= first.Nodes[1].Position.X {
		t.Errorf("LR layout put source at %v and sink at %v", first.Nodes[0].Position, first.Nodes[1].Position)
	}

	resp = post(t, ts.URL+"/v1/layout?direction=LR", chainJSON)
	if got := resp.Header.Get("X-Cache"); got != "hit" {
		t.Errorf("second X-Cache = %q, want hit", got)
	}
	second := decode[graph.Graph](t, resp)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached layout differs (-first +second):\n%s", diff)
	}

	resp = post(t, ts.URL+"/v1/layout?direction=TB", chainJSON)
	tb := decode[graph.Graph](t, resp)
	if tb.Nodes[0].Position.Y >= tb.Nodes[1].Position.Y {
		t.Errorf("TB layout put source at %v and sink at %v", tb.Nodes[0].Position, tb.Nodes[1].Position)
	}
}

func TestRequestID(t *testing.T) {
	ts := newTestServer(t, Options{})

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(HeaderRequestID); got != "abc-123" {
		t.Errorf("echoed request id = %q", got)
	}

	resp, err = http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(HeaderRequestID); len(got) != 36 {
		t.Errorf("generated request id = %q, want a uuid", got)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	hooks, err := observability.NewPrometheusHooks(reg)
	if err != nil {
		t.Fatal(err)
	}
	observability.SetPipelineHooks(hooks)
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	ts := newTestServer(t, Options{Gatherer: reg})
	post(t, ts.URL+"/v1/validate", chainJSON)
	post(t, ts.URL+"/v1/validate", `{"nodes":[{"id":"1"},{"id":"2"}]}`)
	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		`pipedag_http_requests_total{method="POST",route="/v1/validate",status="200"} 2`,
		`pipedag_http_requests_total{method="GET",route="unmatched",status="404"} 1`,
		`pipedag_validations_total{outcome="valid"} 1`,
		`pipedag_validations_total{outcome="invalid"} 1`,
		`pipedag_rule_violations_total{rule="connectivity"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestMetricsDisabled(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without a gatherer", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.New(apperrors.ErrCodeInvalidDirection, "x"), http.StatusBadRequest},
		{apperrors.New(apperrors.ErrCodeInvalidEngine, "x"), http.StatusBadRequest},
		{apperrors.New(apperrors.ErrCodeLayoutFailed, "x"), http.StatusInternalServerError},
		{context.Canceled, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
