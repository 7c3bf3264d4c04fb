// Package jsonschema compiles typeschema descriptors into JSON Schema
// documents.
//
// Every call owns its component registry: named types referenced from several
// roots of one call are emitted once and cross-referenced, and independent
// calls share no state.
package jsonschema

import (
	"reflect"
	"strconv"

	typeschema "github.com/reoring/typeschema"
	"github.com/reoring/typeschema/internal/builder"
	"github.com/reoring/typeschema/internal/constraint"
	"github.com/reoring/typeschema/internal/registry"
	"github.com/reoring/typeschema/resolve"
)

// DefaultRefTemplate places components under "$defs".
const DefaultRefTemplate = registry.DefaultRefTemplate

// Options controls schema generation.
type Options struct {
	// RefTemplate renders component references; "{name}" is replaced by the
	// component name. Empty selects DefaultRefTemplate.
	RefTemplate string
	// Resolve configures Go type resolution for SchemaFor and SchemaOf.
	Resolve resolve.Options
}

// Document is the result of one generation call.
type Document struct {
	Roots      []map[string]any
	Components map[string]any
}

// Generate builds all roots against one shared registry and returns the
// per-root fragments, the component map and non-fatal diagnostics. No partial
// document is returned on failure.
func Generate(types []typeschema.Type, opts Options) (Document, typeschema.Diag, error) {
	diag := &typeschema.Diagnostics{}
	reg, err := registry.New(opts.RefTemplate)
	if err != nil {
		return Document{}, diag, &typeschema.Error{
			Code:    typeschema.CodeInvalidConfig,
			Message: "ref template " + strconv.Quote(opts.RefTemplate),
			Cause:   err,
		}
	}
	b := builder.New(reg, diag)
	b.Declare(types...)
	roots := make([]map[string]any, len(types))
	for i, t := range types {
		frag, err := b.Root(t)
		if err != nil {
			return Document{}, diag, err
		}
		roots[i] = frag
	}
	return Document{Roots: roots, Components: reg.Components()}, diag, nil
}

// SchemaComponents builds several roots with a shared registry and returns the
// root fragments and the component map. References use opts.RefTemplate.
func SchemaComponents(types []typeschema.Type, opts Options) ([]map[string]any, map[string]any, error) {
	doc, _, err := Generate(types, opts)
	if err != nil {
		return nil, nil, err
	}
	return doc.Roots, doc.Components, nil
}

// Schema builds a self-contained document for t. Referenced components are
// attached under "$defs".
func Schema(t typeschema.Type) (map[string]any, error) {
	doc, _, err := Generate([]typeschema.Type{t}, Options{})
	if err != nil {
		return nil, err
	}
	out := doc.Roots[0]
	if len(doc.Components) > 0 {
		out["$defs"] = doc.Components
	}
	return out, nil
}

// SchemaFor resolves T and builds its self-contained document.
func SchemaFor[T any](opts Options) (map[string]any, error) {
	return schemaOfType(reflect.TypeOf((*T)(nil)).Elem(), opts)
}

// SchemaOf resolves the dynamic type of v and builds its self-contained document.
func SchemaOf(v any, opts Options) (map[string]any, error) {
	if v == nil {
		return nil, typeschema.Errorf(typeschema.CodeInvalidConfig, "", "cannot describe a nil value")
	}
	return schemaOfType(reflect.TypeOf(v), opts)
}

func schemaOfType(t reflect.Type, opts Options) (map[string]any, error) {
	d, err := resolve.New(opts.Resolve).Resolve(t)
	if err != nil {
		return nil, err
	}
	return Schema(d)
}

// Merge deep-merges b over a: objects merge recursively, arrays concatenate,
// any other conflict takes b's value. Neither input is modified.
func Merge(a, b any) any { return constraint.Merge(a, b) }
