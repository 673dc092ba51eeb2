package openapi_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/JaimeStill/emotionwave/pkg/openapi"
)

func TestNewSpec(t *testing.T) {
	spec := openapi.NewSpec("Test API", "1.0.0")
	spec.AddServer("http://localhost:8080")
	spec.SetDescription("A test API")

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi version: got %s, want 3.1.0", spec.OpenAPI)
	}
	if spec.Info.Title != "Test API" || spec.Info.Version != "1.0.0" || spec.Info.Description != "A test API" {
		t.Errorf("info: got %+v", spec.Info)
	}
	if len(spec.Servers) != 1 || spec.Servers[0].URL != "http://localhost:8080" {
		t.Errorf("servers: got %v", spec.Servers)
	}
	if spec.Components == nil || spec.Paths == nil {
		t.Fatal("components and paths should be initialized")
	}
}

func TestAddOperation(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")

	get := &openapi.Operation{Summary: "get"}
	post := &openapi.Operation{Summary: "post"}
	spec.AddOperation("GET", "/analyses", get)
	spec.AddOperation("post", "/analyses", post)
	spec.AddOperation("PATCH", "/analyses", &openapi.Operation{Summary: "ignored"})

	item := spec.Paths["/analyses"]
	if item == nil {
		t.Fatal("path not added")
	}
	if item.Get != get || item.Post != post {
		t.Errorf("operations not attached: %+v", item)
	}
}

func TestRefs(t *testing.T) {
	if got := openapi.SchemaRef("Analysis").Ref; got != "#/components/schemas/Analysis" {
		t.Errorf("schema ref: got %s", got)
	}
	if got := openapi.ResponseRef("NotFound").Ref; got != "#/components/responses/NotFound" {
		t.Errorf("response ref: got %s", got)
	}
}

func TestResponseJSON(t *testing.T) {
	resp := openapi.ResponseJSON("Success", "Analysis")

	ct, ok := resp.Content["application/json"]
	if !ok {
		t.Fatal("missing application/json content type")
	}
	if ct.Schema.Ref != "#/components/schemas/Analysis" {
		t.Errorf("schema ref: got %s", ct.Schema.Ref)
	}
}

func TestRequestBodyMultipartFile(t *testing.T) {
	rb := openapi.RequestBodyMultipartFile("image", "Photo to analyze")

	mt, ok := rb.Content["multipart/form-data"]
	if !ok {
		t.Fatal("missing multipart/form-data content type")
	}
	field, ok := mt.Schema.Properties["image"]
	if !ok {
		t.Fatal("missing image property")
	}
	if field.Format != "binary" {
		t.Errorf("format: got %s, want binary", field.Format)
	}
	if len(mt.Schema.Required) != 1 || mt.Schema.Required[0] != "image" {
		t.Errorf("required: got %v", mt.Schema.Required)
	}
}

func TestResponseBinary(t *testing.T) {
	resp := openapi.ResponseBinary("Stored image", "image/png", "image/jpeg")
	if len(resp.Content) != 2 {
		t.Fatalf("content types: got %d, want 2", len(resp.Content))
	}
	if resp.Content["image/png"].Schema.Format != "binary" {
		t.Error("binary schema expected")
	}
}

func TestParams(t *testing.T) {
	tests := []struct {
		name       string
		param      *openapi.Parameter
		wantIn     string
		wantReq    bool
		wantFormat string
	}{
		{"uuid path", openapi.PathParam("id", "Analysis ID"), "path", true, "uuid"},
		{"string path", openapi.PathParamString("filename", "Stored file"), "path", true, ""},
		{"query", openapi.QueryParam("search", "string", "Search", false), "query", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.param.In != tt.wantIn {
				t.Errorf("in: got %s, want %s", tt.param.In, tt.wantIn)
			}
			if tt.param.Required != tt.wantReq {
				t.Errorf("required: got %v, want %v", tt.param.Required, tt.wantReq)
			}
			if tt.param.Schema.Format != tt.wantFormat {
				t.Errorf("format: got %q, want %q", tt.param.Schema.Format, tt.wantFormat)
			}
		})
	}
}

func TestNewComponentsDefaults(t *testing.T) {
	c := openapi.NewComponents()

	for _, name := range []string{"Error", "PageRequest"} {
		if _, ok := c.Schemas[name]; !ok {
			t.Errorf("missing default schema: %s", name)
		}
	}

	responses := []string{
		"BadRequest", "NotFound", "PayloadTooLarge", "UnsupportedMediaType",
		"InternalError", "ServiceUnavailable", "GatewayTimeout",
	}
	for _, name := range responses {
		r, ok := c.Responses[name]
		if !ok {
			t.Errorf("missing default response: %s", name)
			continue
		}
		if r.Content["application/json"].Schema.Ref != "#/components/schemas/Error" {
			t.Errorf("%s should reference the Error schema", name)
		}
	}

	c.AddSchemas(map[string]*openapi.Schema{"Analysis": {Type: "object"}})
	if _, ok := c.Schemas["Analysis"]; !ok {
		t.Error("Analysis schema not added")
	}
}

func TestWriteJSON(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	path := filepath.Join(t.TempDir(), "docs", "openapi.json")

	if err := openapi.WriteJSON(spec, path); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if parsed["openapi"] != "3.1.0" {
		t.Errorf("openapi: got %v", parsed["openapi"])
	}
}

func TestServeSpec(t *testing.T) {
	data, err := openapi.MarshalJSON(openapi.NewSpec("Test", "1.0.0"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	rec := httptest.NewRecorder()
	openapi.ServeSpec(data)(rec, httptest.NewRequest("GET", "/openapi.json", nil))

	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content-type: got %s", ct)
	}

	body, _ := io.ReadAll(res.Body)
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("body unmarshal failed: %v", err)
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := openapi.Config{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.Title != "EmotionWave API" {
			t.Errorf("title: got %s", cfg.Title)
		}
		if cfg.Version != "0.1.0" {
			t.Errorf("version: got %s", cfg.Version)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_TITLE", "Custom API")
		t.Setenv("TEST_VERSION", "2.0.0")

		cfg := openapi.Config{}
		if err := cfg.Finalize(&openapi.ConfigEnv{Title: "TEST_TITLE", Version: "TEST_VERSION"}); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.Title != "Custom API" || cfg.Version != "2.0.0" {
			t.Errorf("got title %s version %s", cfg.Title, cfg.Version)
		}
	})
}

func TestConfigMerge(t *testing.T) {
	base := openapi.Config{Title: "Base", Version: "1.0.0"}
	base.Merge(&openapi.Config{Title: "Overlay"})

	if base.Title != "Overlay" {
		t.Errorf("title: got %s, want Overlay", base.Title)
	}
	if base.Version != "1.0.0" {
		t.Errorf("version should be unchanged: got %s", base.Version)
	}
}

func TestConfigFinalizeRejectsBlank(t *testing.T) {
	tests := []struct {
		name string
		cfg  openapi.Config
	}{
		{"blank title", openapi.Config{Title: "   "}},
		{"blank version", openapi.Config{Version: "\t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestConfigNewSpec(t *testing.T) {
	cfg := openapi.Config{Title: "Analyses", Description: "history", Version: "3.1.4"}

	spec := cfg.NewSpec("https://emotion.example.com")
	if spec.Info.Title != "Analyses" || spec.Info.Version != "3.1.4" {
		t.Errorf("info: got %s %s", spec.Info.Title, spec.Info.Version)
	}
	if spec.Info.Description != "history" {
		t.Errorf("description: got %s", spec.Info.Description)
	}
	if len(spec.Servers) != 1 || spec.Servers[0].URL != "https://emotion.example.com" {
		t.Errorf("servers: got %+v", spec.Servers)
	}

	if bare := cfg.NewSpec(""); len(bare.Servers) != 0 {
		t.Errorf("expected no servers, got %d", len(bare.Servers))
	}
}
