package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const decls = `
types:
  Point:
    kind: record
    tag: true
    fields:
      - {name: x, type: int}
      - {name: y, type: int}
  Line:
    kind: record
    fields:
      - {name: points, type: {list: Point}}
`

func writeDecls(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "types.yaml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(nil, &stdout, &stderr); code != 2 {
		t.Fatalf("exit=%d", code)
	}
	if !strings.Contains(stderr.String(), "typeschema gen") {
		t.Fatalf("usage not printed: %q", stderr.String())
	}
	if code := run([]string{"gen"}, &stdout, &stderr); code != 2 {
		t.Fatalf("missing -f should exit 2, got %d", code)
	}
}

func TestRun_GenSingleRoot(t *testing.T) {
	path := writeDecls(t, decls)
	var stdout, stderr bytes.Buffer
	if code := run([]string{"gen", "-f", path, "-type", "Line"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit=%d stderr=%s", code, stderr.String())
	}
	var got map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("output is not json: %v", err)
	}
	if got["$ref"] != "#/$defs/Line" {
		t.Fatalf("unexpected root: %v", got)
	}
	defs := got["$defs"].(map[string]any)
	var names []string
	for k := range defs {
		names = append(names, k)
	}
	if len(names) != 2 {
		t.Fatalf("defs=%v", names)
	}
}

func TestRun_GenTemplateAndFile(t *testing.T) {
	path := writeDecls(t, decls)
	out := filepath.Join(t.TempDir(), "nested", "schema.yaml")
	var stdout, stderr bytes.Buffer
	args := []string{"gen", "-f", path, "-ref-template", "#/definitions/{name}", "-format", "yaml", "-o", out, "-v"}
	if code := run(args, &stdout, &stderr); code != 0 {
		t.Fatalf("exit=%d stderr=%s", code, stderr.String())
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "#/definitions/Line") {
		t.Fatalf("unexpected yaml:\n%s", data)
	}
	if !strings.Contains(stderr.String(), "wrote "+out) {
		t.Fatalf("verbose log missing: %q", stderr.String())
	}
}

func TestRun_GenReportsLocalizedError(t *testing.T) {
	path := writeDecls(t, "types:\n  A:\n    fields:\n      - {name: x, type: Missing}\n")
	var stdout, stderr bytes.Buffer
	if code := run([]string{"gen", "-f", path}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit=%d", code)
	}
	if !strings.HasPrefix(stderr.String(), "invalid configuration at /A") {
		t.Fatalf("unexpected stderr: %q", stderr.String())
	}

	stderr.Reset()
	if code := run([]string{"gen", "-f", path, "-lang", "ja"}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit=%d", code)
	}
	if !strings.HasPrefix(stderr.String(), "/A ") {
		t.Fatalf("expected japanese headline: %q", stderr.String())
	}
}

func TestRun_OpenAPI(t *testing.T) {
	path := writeDecls(t, decls)
	var stdout, stderr bytes.Buffer
	args := []string{"openapi", "-f", path, "-title", "Geometry", "-version", "2.0.0", "-validate"}
	if code := run(args, &stdout, &stderr); code != 0 {
		t.Fatalf("exit=%d stderr=%s", code, stderr.String())
	}
	var got map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("output is not json: %v", err)
	}
	want := map[string]any{"title": "Geometry", "version": "2.0.0"}
	if diff := cmp.Diff(want, got["info"]); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	line := got["components"].(map[string]any)["schemas"].(map[string]any)["Line"].(map[string]any)
	items := line["properties"].(map[string]any)["points"].(map[string]any)["items"]
	if diff := cmp.Diff(map[string]any{"$ref": "#/components/schemas/Point"}, items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}
