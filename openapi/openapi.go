// Package openapi exports generated schemas as an OpenAPI 3.0 document using
// kin-openapi.
package openapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goccy/go-json"
	typeschema "github.com/reoring/typeschema"
	"github.com/reoring/typeschema/jsonschema"
)

// RefTemplate points references at components/schemas.
const RefTemplate = "#/components/schemas/{name}"

const refPrefix = "#/components/schemas/"

// Info is the document metadata.
type Info struct {
	Title       string
	Version     string
	Description string
}

// Options controls the export.
type Options struct {
	Info Info
	// Validate runs kin-openapi document validation after loading.
	Validate bool
}

// Spec is an exported document plus one schema reference per root type,
// ready to embed in request bodies or responses.
type Spec struct {
	Doc   *openapi3.T
	Roots []*openapi3.SchemaRef
	Diag  typeschema.Diag
}

// Build compiles types with a shared registry and loads the result as an
// OpenAPI 3.0 document whose components/schemas hold every named type.
func Build(ctx context.Context, types []typeschema.Type, opts Options) (*Spec, error) {
	if opts.Info.Title == "" {
		opts.Info.Title = "typeschema"
	}
	if opts.Info.Version == "" {
		opts.Info.Version = "0.0.0"
	}
	doc, diag, err := jsonschema.Generate(types, jsonschema.Options{RefTemplate: RefTemplate})
	if err != nil {
		return nil, err
	}

	schemas := make(map[string]any, len(doc.Components))
	for name, frag := range doc.Components {
		schemas[name] = downgrade(frag.(map[string]any))
	}
	info := map[string]any{"title": opts.Info.Title, "version": opts.Info.Version}
	if opts.Info.Description != "" {
		info["description"] = opts.Info.Description
	}
	raw, err := json.Marshal(map[string]any{
		"openapi":    "3.0.3",
		"info":       info,
		"paths":      map[string]any{},
		"components": map[string]any{"schemas": schemas},
	})
	if err != nil {
		return nil, fmt.Errorf("openapi: encode document: %w", err)
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if opts.Validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}

	roots := make([]*openapi3.SchemaRef, len(doc.Roots))
	for i, frag := range doc.Roots {
		ref, err := rootRef(frag, spec.Components.Schemas)
		if err != nil {
			return nil, fmt.Errorf("openapi: root %d: %w", i, err)
		}
		roots[i] = ref
	}
	return &Spec{Doc: spec, Roots: roots, Diag: diag}, nil
}

// rootRef decodes a root fragment and links its component references to the
// loaded schemas.
func rootRef(frag map[string]any, comps openapi3.Schemas) (*openapi3.SchemaRef, error) {
	b, err := json.Marshal(downgrade(frag))
	if err != nil {
		return nil, err
	}
	ref := &openapi3.SchemaRef{}
	if err := json.Unmarshal(b, ref); err != nil {
		return nil, err
	}
	link(ref, comps, map[*openapi3.Schema]bool{})
	return ref, nil
}

func link(ref *openapi3.SchemaRef, comps openapi3.Schemas, seen map[*openapi3.Schema]bool) {
	if ref == nil {
		return
	}
	if ref.Ref != "" {
		if target, ok := comps[strings.TrimPrefix(ref.Ref, refPrefix)]; ok && ref.Value == nil {
			ref.Value = target.Value
		}
		return
	}
	s := ref.Value
	if s == nil || seen[s] {
		return
	}
	seen[s] = true
	for _, p := range s.Properties {
		link(p, comps, seen)
	}
	link(s.Items, comps, seen)
	link(s.AdditionalProperties.Schema, comps, seen)
	for _, m := range s.AnyOf {
		link(m, comps, seen)
	}
	for _, m := range s.AllOf {
		link(m, comps, seen)
	}
}
