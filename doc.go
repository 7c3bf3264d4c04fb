// Package typeschema describes data types as a closed set of descriptors and
// compiles them into JSON Schema documents.
//
// The root package only holds the shared vocabulary:
//
// - Type and its variants (Any, None, Bool, Int, Float, Str, Binary, Temporal,
//   Raw, Literal, Enum, Sequence, Mapping, Record, NamedFields, Union, Custom,
//   Annotated), the ordered Field list of records, and per-node Constraints/Meta.
// - A stable error model (*Error with a code and a type-graph path).
// - Diag, the collector for non-fatal diagnostics.
//
// Design policy:
// - Keep only public vocabulary in the root package; put the compiler under internal/.
// - Entry points live in jsonschema/, host front-ends in resolve/ (Go types) and
//   decl/ (YAML/JSON declarations), OpenAPI export in openapi/, and the CLI in
//   cmd/typeschema.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	point := &typeschema.Record{
//	    Name: "Point",
//	    Fields: []typeschema.Field{
//	        {Name: "x", Type: typeschema.Int{}},
//	        {Name: "y", Type: typeschema.Int{}},
//	    },
//	}
//	doc, err := jsonschema.Schema(point)
//	// {"$ref":"#/$defs/Point","$defs":{"Point":{...}}}
//
//	type User struct {
//	    ID   string `json:"id"`
//	    Tags []string `json:"tags,omitempty"`
//	}
//	doc, err = jsonschema.SchemaFor[User](jsonschema.Options{})
package typeschema
