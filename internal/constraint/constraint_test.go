package constraint_test

import (
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	typeschema "github.com/reoring/typeschema"
	"github.com/reoring/typeschema/internal/constraint"
)

func TestMerge_Cases(t *testing.T) {
	cases := []struct {
		name string
		a, b any
		want any
	}{
		{"nested objects", map[string]any{"a": map[string]any{"b": map[string]any{"c": 1}}}, map[string]any{"a": map[string]any{"b": map[string]any{"d": 2}}}, map[string]any{"a": map[string]any{"b": map[string]any{"c": 1, "d": 2}}}},
		{"arrays concat", map[string]any{"a": []any{1, 2}}, map[string]any{"a": []any{3, 4}}, map[string]any{"a": []any{1, 2, 3, 4}}},
		{"scalar conflict", map[string]any{"a": 1, "b": 2}, map[string]any{"a": 3}, map[string]any{"a": 3, "b": 2}},
		{"object replaced by scalar", map[string]any{"a": map[string]any{"b": 1}}, map[string]any{"a": 2}, map[string]any{"a": 2}},
		{"array replaced by object", map[string]any{"a": []any{1}}, map[string]any{"a": map[string]any{"b": 1}}, map[string]any{"a": map[string]any{"b": 1}}},
		{"non object right", map[string]any{"a": 1}, 2, 2},
		{"non object left", 1, map[string]any{"a": 1}, map[string]any{"a": 1}},
		{"empty right", map[string]any{"a": 1}, map[string]any{}, map[string]any{"a": 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := constraint.Merge(tc.a, tc.b)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("merge mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	a := map[string]any{"a": map[string]any{"x": []any{1}}, "k": 1}
	b := map[string]any{"a": map[string]any{"x": []any{2}, "y": 3}}
	aCopy := constraint.CloneMap(a)
	bCopy := constraint.CloneMap(b)

	out := constraint.Merge(a, b).(map[string]any)
	out["a"].(map[string]any)["z"] = true

	if !reflect.DeepEqual(a, aCopy) {
		t.Fatalf("left input mutated: %v", a)
	}
	if !reflect.DeepEqual(b, bCopy) {
		t.Fatalf("right input mutated: %v", b)
	}
}

func TestEncodedLength(t *testing.T) {
	for n, want := range map[int]int{0: 0, 1: 4, 2: 4, 3: 4, 4: 8, 7: 12, 9: 12, 10: 16} {
		if got := constraint.EncodedLength(n); got != want {
			t.Fatalf("EncodedLength(%d)=%d want %d", n, got, want)
		}
	}
}

func TestApply_Numeric(t *testing.T) {
	got, err := constraint.Apply(map[string]any{"type": "integer"}, constraint.TargetOther,
		typeschema.Constraints{GE: 1, LT: 10, MultipleOf: 2}, typeschema.Meta{})
	if err != nil {
		t.Fatalf("apply err: %v", err)
	}
	want := map[string]any{"type": "integer", "minimum": 1, "exclusiveMaximum": 10, "multipleOf": 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("numeric mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_LengthByTarget(t *testing.T) {
	c := typeschema.Constraints{MinLength: typeschema.Len(2), MaxLength: typeschema.Len(7)}
	cases := []struct {
		target   constraint.Target
		min, max string
		lo, hi   int
	}{
		{constraint.TargetString, "minLength", "maxLength", 2, 7},
		{constraint.TargetBinary, "minLength", "maxLength", 4, 12},
		{constraint.TargetArray, "minItems", "maxItems", 2, 7},
		{constraint.TargetObject, "minProperties", "maxProperties", 2, 7},
	}
	for _, tc := range cases {
		got, err := constraint.Apply(map[string]any{}, tc.target, c, typeschema.Meta{})
		if err != nil {
			t.Fatalf("%s: apply err: %v", tc.target, err)
		}
		want := map[string]any{tc.min: tc.lo, tc.max: tc.hi}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", tc.target, diff)
		}
	}
	if _, err := constraint.Apply(map[string]any{"type": "integer"}, constraint.TargetOther, c, typeschema.Meta{}); err == nil {
		t.Fatalf("expected error for length bounds on a number")
	}
}

func TestApply_ExtraSchemaWinsOverTitle(t *testing.T) {
	m := typeschema.Meta{
		Title:       "the title",
		Description: "the description",
		Examples:    []any{1, 2},
		ExtraSchema: map[string]any{"title": "an override", "x-extra": map[string]any{"k": 1}},
	}
	got, err := constraint.Apply(map[string]any{"type": "integer"}, constraint.TargetOther, typeschema.Constraints{}, m)
	if err != nil {
		t.Fatalf("apply err: %v", err)
	}
	want := map[string]any{
		"type":        "integer",
		"title":       "an override",
		"description": "the description",
		"examples":    []any{1, 2},
		"x-extra":     map[string]any{"k": 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("meta mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_ExtraSchemaDeepMerges(t *testing.T) {
	base := map[string]any{"type": "object", "properties": map[string]any{"a": map[string]any{"type": "integer"}}, "required": []any{"a"}}
	m := typeschema.Meta{ExtraSchema: map[string]any{"properties": map[string]any{"b": map[string]any{"type": "string"}}, "required": []any{"b"}}}
	got, err := constraint.Apply(base, constraint.TargetObject, typeschema.Constraints{}, m)
	if err != nil {
		t.Fatalf("apply err: %v", err)
	}
	want := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "integer"},
			"b": map[string]any{"type": "string"},
		},
		"required": []any{"a", "b"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
	if _, ok := base["properties"].(map[string]any)["b"]; ok {
		t.Fatalf("base fragment mutated")
	}
}
