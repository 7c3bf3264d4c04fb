package typeschema_test

import (
	"fmt"
	"strings"
	"testing"

	typeschema "github.com/reoring/typeschema"
	"github.com/reoring/typeschema/decl"
	"github.com/reoring/typeschema/jsonschema"
)

// ---- Helpers ----

type benchUser struct {
	ID     string            `json:"id" typeschema:"min_length=1"`
	Name   string            `json:"name"`
	Age    int               `json:"age" typeschema:"ge=0"`
	Emails []string          `json:"emails,omitempty"`
	Meta   map[string]string `json:"meta,omitempty"`
	Friend *benchUser        `json:"friend,omitempty"`
}

// wideRecords returns n records that all reference a shared tagged family, so
// the registry dedup and union synthesis paths are exercised.
func wideRecords(n int) []typeschema.Type {
	base := &typeschema.Record{
		Name:   "Event",
		Tag:    &typeschema.Tag{},
		Fields: []typeschema.Field{{Name: "at", Type: typeschema.Temporal{Format: typeschema.TemporalDateTime}}},
	}
	members := []typeschema.Type{base}
	for i := 0; i < 4; i++ {
		sub := &typeschema.Record{
			Name:   fmt.Sprintf("Event%d", i),
			Base:   base,
			Fields: []typeschema.Field{{Name: "payload", Type: typeschema.MapOf(typeschema.Str{}, typeschema.Any{})}},
		}
		members = append(members, sub.Flatten())
	}
	events := typeschema.UnionOf(members...)
	out := make([]typeschema.Type, n)
	for i := range out {
		out[i] = &typeschema.Record{
			Name: fmt.Sprintf("Stream%d", i),
			Fields: []typeschema.Field{
				{Name: "events", Type: typeschema.ListOf(events)},
				{Name: "cursor", Type: typeschema.Optional(typeschema.Str{}), HasDefault: true},
			},
		}
	}
	return out
}

func declarations(n int) []byte {
	var b strings.Builder
	b.WriteString("types:\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "  T%d:\n    kind: record\n    fields:\n", i)
		b.WriteString("      - {name: id, type: {annotated: str, max_length: 64}}\n")
		if i > 0 {
			fmt.Fprintf(&b, "      - {name: prev, type: {optional: T%d}, default: null}\n", i-1)
		}
	}
	return []byte(b.String())
}

// ---- Benchmarks ----

func Benchmark_SchemaFor_Struct(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := jsonschema.SchemaFor[benchUser](jsonschema.Options{}); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_SchemaComponents_SharedFamily(b *testing.B) {
	types := wideRecords(32)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := jsonschema.SchemaComponents(types, jsonschema.Options{}); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_DeclLoad_Chain(b *testing.B) {
	data := declarations(64)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := decl.Load(data, decl.Options{}); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Marshal_Components(b *testing.B) {
	_, comps, err := jsonschema.SchemaComponents(wideRecords(32), jsonschema.Options{})
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := jsonschema.Marshal(comps); err != nil {
			b.Fatal(err)
		}
	}
}
