package decl_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	typeschema "github.com/reoring/typeschema"
	"github.com/reoring/typeschema/decl"
	"github.com/reoring/typeschema/jsonschema"
)

func normalize(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out any
	_ = json.Unmarshal(b, &out)
	return out
}

const shapes = `
types:
  Point:
    kind: record
    doc: A point in the plane.
    tag: true
    fields:
      - {name: x, type: int}
      - {name: y, type: int}
  Point3D:
    kind: record
    base: Point
    fields:
      - {name: z, type: int, default: 0}
  Polygon:
    kind: record
    fields:
      - name: vertices
        type: {list: Point}
      - name: label
        type: {optional: {annotated: str, max_length: 32, title: Label}}
        default: null
  Shape:
    kind: union
    members: [Point, Point3D, Polygon]
`

func TestLoad_TaggedFamily(t *testing.T) {
	set, err := decl.Load([]byte(shapes), decl.Options{})
	if err != nil {
		t.Fatalf("load err: %v", err)
	}
	if got, want := set.Names(), []string{"Point", "Point3D", "Polygon", "Shape"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("names=%v want %v", got, want)
	}
	p3, _ := set.Lookup("Point3D")
	rec := p3.(*typeschema.Record)
	var names []string
	for _, f := range rec.Fields {
		names = append(names, f.Name)
	}
	if !reflect.DeepEqual(names, []string{"x", "y", "z"}) {
		t.Fatalf("flattened fields=%v", names)
	}
	if rec.TagField() != "type" || rec.TagValue() != "Point3D" {
		t.Fatalf("unexpected tag: %q=%v", rec.TagField(), rec.TagValue())
	}

	shape, _ := set.Lookup("Shape")
	s, err := jsonschema.Schema(shape)
	if err != nil {
		t.Fatalf("schema err: %v", err)
	}
	want := map[string]any{
		"anyOf": []any{
			map[string]any{"$ref": "#/$defs/Polygon"},
			map[string]any{
				"anyOf": []any{
					map[string]any{"$ref": "#/$defs/Point"},
					map[string]any{"$ref": "#/$defs/Point3D"},
				},
				"discriminator": map[string]any{
					"propertyName": "type",
					"mapping": map[string]any{
						"Point":   "#/$defs/Point",
						"Point3D": "#/$defs/Point3D",
					},
				},
			},
		},
	}
	defs := s["$defs"].(map[string]any)
	delete(s, "$defs")
	if !reflect.DeepEqual(normalize(s), normalize(want)) {
		t.Fatalf("shape mismatch\n got=%v\nwant=%v", normalize(s), normalize(want))
	}
	label := defs["Polygon"].(map[string]any)["properties"].(map[string]any)["label"]
	wantLabel := map[string]any{
		"anyOf": []any{
			map[string]any{"type": "string", "maxLength": 32, "title": "Label"},
			map[string]any{"type": "null"},
		},
		"default": nil,
	}
	if !reflect.DeepEqual(normalize(label), normalize(wantLabel)) {
		t.Fatalf("label mismatch\n got=%v\nwant=%v", normalize(label), normalize(wantLabel))
	}
	if d := defs["Point"].(map[string]any)["description"]; d != "A point in the plane." {
		t.Fatalf("doc not carried: %v", d)
	}
}

func TestLoad_ContainersAndEnums(t *testing.T) {
	src := `
types:
  Color:
    kind: enum
    members: {RED: red, GREEN: green}
  Level:
    kind: enum
    members: {HIGH: 3, LOW: 1}
  Pair:
    kind: namedtuple
    fields:
      - {name: key, type: str}
      - {name: value, type: {tuple: [int, float]}, default: [1, 2.5]}
  Options:
    kind: typeddict
    fields:
      - {name: colors, type: {set: Color}, optional: true}
      - {name: weights, type: {dict: [str, float]}}
      - {name: mode, type: {literal: [b, a]}}
      - {name: level, type: Level}
      - {name: empty, type: {tuple: []}}
      - {name: blob, type: {annotated: bytes, min_length: 2, max_length: 7}}
`
	set, err := decl.Load([]byte(src), decl.Options{})
	if err != nil {
		t.Fatalf("load err: %v", err)
	}
	types, err := set.Select("Pair", "Options")
	if err != nil {
		t.Fatalf("select err: %v", err)
	}
	_, comps, err := jsonschema.SchemaComponents(types, jsonschema.Options{})
	if err != nil {
		t.Fatalf("components err: %v", err)
	}
	want := map[string]any{
		"Color": map[string]any{"title": "Color", "enum": []any{"GREEN", "RED"}},
		"Level": map[string]any{"title": "Level", "enum": []any{1, 3}},
		"Pair": map[string]any{
			"title": "Pair",
			"type":  "array",
			"prefixItems": []any{
				map[string]any{"type": "string"},
				map[string]any{
					"type": "array", "minItems": 2, "maxItems": 2, "items": false,
					"prefixItems": []any{map[string]any{"type": "integer"}, map[string]any{"type": "number"}},
					"default":     []any{1, 2.5},
				},
			},
			"minItems": 1,
			"maxItems": 2,
		},
		"Options": map[string]any{
			"title": "Options",
			"type":  "object",
			"properties": map[string]any{
				"colors":  map[string]any{"type": "array", "items": map[string]any{"$ref": "#/$defs/Color"}},
				"weights": map[string]any{"type": "object", "additionalProperties": map[string]any{"type": "number"}},
				"mode":    map[string]any{"enum": []any{"a", "b"}},
				"level":   map[string]any{"$ref": "#/$defs/Level"},
				"empty":   map[string]any{"type": "array", "minItems": 0, "maxItems": 0},
				"blob":    map[string]any{"type": "string", "contentEncoding": "base64", "minLength": 4, "maxLength": 12},
			},
			"required": []any{"weights", "mode", "level", "empty", "blob"},
		},
	}
	if !reflect.DeepEqual(normalize(comps), normalize(want)) {
		t.Fatalf("components mismatch\n got=%v\nwant=%v", normalize(comps), normalize(want))
	}
}

func TestLoad_SelfReferenceAndAlias(t *testing.T) {
	src := `
types:
  Children:
    kind: alias
    type: {list: Node}
  Node:
    kind: record
    fields:
      - {name: value, type: int}
      - {name: children, type: Children, default: []}
`
	set, err := decl.Load([]byte(src), decl.Options{Scope: "tree"})
	if err != nil {
		t.Fatalf("load err: %v", err)
	}
	node, _ := set.Lookup("Node")
	rec := node.(*typeschema.Record)
	if rec.ID() != "tree.Node" {
		t.Fatalf("scope not applied: %s", rec.ID())
	}
	if rec.Fields[1].Type.(*typeschema.Sequence).Elem != node {
		t.Fatalf("self reference should resolve to the same descriptor")
	}
	s, err := jsonschema.Schema(node)
	if err != nil {
		t.Fatalf("schema err: %v", err)
	}
	items := s["$defs"].(map[string]any)["Node"].(map[string]any)["properties"].(map[string]any)["children"].(map[string]any)["items"]
	if !reflect.DeepEqual(items, map[string]any{"$ref": "#/$defs/Node"}) {
		t.Fatalf("unexpected items: %v", items)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"no types":        "foo: 1\n",
		"unknown kind":    "types:\n  A: {kind: blob}\n",
		"unknown type":    "types:\n  A:\n    fields:\n      - {name: x, type: Nope}\n",
		"bad base":        "types:\n  A: {kind: enum, members: [X]}\n  B: {base: A}\n",
		"alias loop":      "types:\n  A: {kind: alias, type: B}\n  B: {kind: alias, type: A}\n",
		"bad annotation":  "types:\n  A:\n    fields:\n      - {name: x, type: {annotated: int, ge: high}}\n",
		"array defaults":  "types:\n  A:\n    layout: array\n    fields:\n      - {name: x, type: int, default: 1}\n      - {name: y, type: int}\n",
		"shadows builtin": "types:\n  int: {kind: record}\n",
		"duplicate field": "types:\n  A:\n    fields:\n      - {name: x, type: int}\n      - {name: x, type: str}\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decl.Load([]byte(src), decl.Options{})
			if !errors.Is(err, typeschema.ErrInvalidConfig) {
				t.Fatalf("expected invalid config, got %v", err)
			}
		})
	}
}

func TestLoad_ErrorCarriesLine(t *testing.T) {
	src := "types:\n  A:\n    fields:\n      - {name: x, type: int}\n      - {name: y, type: Missing}\n"
	_, err := decl.Load([]byte(src), decl.Options{})
	e, ok := typeschema.AsError(err)
	if !ok {
		t.Fatalf("expected *typeschema.Error, got %v", err)
	}
	if e.Path != "/A" || !strings.Contains(e.Message, "line 5") {
		t.Fatalf("unexpected error location: path=%s msg=%s", e.Path, e.Message)
	}
}

func TestLoad_DuplicateKeys(t *testing.T) {
	src := "types:\n  A:\n    fields:\n      - {name: x, type: {annotated: int, ge: 1, ge: 2}}\n"
	_, err := decl.Load([]byte(src), decl.Options{})
	if !errors.Is(err, typeschema.ErrInvalidConfig) {
		t.Fatalf("expected invalid config, got %v", err)
	}
}

func TestLoadFile_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "types.json")
	src := `{"types": {"Item": {"kind": "record", "closed": true, "fields": [{"name": "id", "type": {"custom": "UUID"}}]}}}`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	set, err := decl.LoadFile(path, decl.Options{})
	if err != nil {
		t.Fatalf("load err: %v", err)
	}
	item, _ := set.Lookup("Item")
	_, err = jsonschema.Schema(item)
	if !errors.Is(err, typeschema.ErrUnsupportedType) {
		t.Fatalf("expected unsupported custom type, got %v", err)
	}
	if _, err := set.Select("Missing"); !errors.Is(err, typeschema.ErrInvalidConfig) {
		t.Fatalf("expected invalid config for unknown name, got %v", err)
	}
}
