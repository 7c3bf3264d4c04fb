// Package decl loads type declarations from YAML (or JSON) documents.
//
// A document lists named declarations under "types":
//
//	types:
//	  Point:
//	    kind: record
//	    tag: true
//	    fields:
//	      - {name: x, type: int}
//	      - {name: y, type: int}
//	  Point3D:
//	    kind: record
//	    base: Point
//	    fields:
//	      - {name: z, type: int, default: 0}
//	  Shape:
//	    kind: union
//	    members: [Point, Point3D, none]
//
// Declarations may refer to each other in any order, including themselves.
package decl

import (
	"os"
	"strconv"

	typeschema "github.com/reoring/typeschema"
	"gopkg.in/yaml.v3"
)

// Declaration kinds.
const (
	KindRecord     = "record"
	KindNamedTuple = "namedtuple"
	KindTypedDict  = "typeddict"
	KindEnum       = "enum"
	KindUnion      = "union"
	KindAlias      = "alias"
)

// Options configures loading.
type Options struct {
	// Scope is assigned to declarations that do not set one.
	Scope string
}

// Set is a loaded set of named declarations.
type Set struct {
	order []string
	types map[string]typeschema.Type
}

// Names returns the declared names in document order.
func (s *Set) Names() []string { return append([]string(nil), s.order...) }

// Lookup returns the descriptor declared under name.
func (s *Set) Lookup(name string) (typeschema.Type, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Select returns the descriptors for names, or every declaration in document
// order when names is empty.
func (s *Set) Select(names ...string) ([]typeschema.Type, error) {
	if len(names) == 0 {
		names = s.order
	}
	out := make([]typeschema.Type, 0, len(names))
	for _, n := range names {
		t, ok := s.types[n]
		if !ok {
			return nil, typeschema.Errorf(typeschema.CodeInvalidConfig, "/"+n, "type %q is not declared", n)
		}
		out = append(out, t)
	}
	return out, nil
}

// LoadFile reads and loads a declaration file.
func LoadFile(path string, opts Options) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data, opts)
}

// Load parses a declaration document.
func Load(data []byte, opts Options) (*Set, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &typeschema.Error{Code: typeschema.CodeInvalidConfig, Message: "invalid declaration document", Cause: err}
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	types := mapValue(root, "types")
	if types == nil || types.Kind != yaml.MappingNode {
		return nil, typeschema.Errorf(typeschema.CodeInvalidConfig, "", "line %d: document needs a \"types\" mapping", root.Line)
	}
	if err := checkDuplicates(types); err != nil {
		return nil, &typeschema.Error{Code: typeschema.CodeInvalidConfig, Message: "duplicate declaration", Cause: err}
	}

	l := newLoader(opts)
	for i := 0; i < len(types.Content); i += 2 {
		if err := l.declare(types.Content[i].Value, types.Content[i+1]); err != nil {
			return nil, err
		}
	}
	for _, name := range l.order {
		if err := l.fill(name); err != nil {
			return nil, err
		}
	}
	if err := l.flatten(); err != nil {
		return nil, err
	}
	return &Set{order: l.order, types: l.types}, nil
}

type loader struct {
	opts     Options
	order    []string
	nodes    map[string]*yaml.Node
	kinds    map[string]string
	types    map[string]typeschema.Type
	filled   map[string]bool
	aliasing map[string]bool
	records  []*typeschema.Record
}

func newLoader(opts Options) *loader {
	return &loader{
		opts:     opts,
		nodes:    map[string]*yaml.Node{},
		kinds:    map[string]string{},
		types:    map[string]typeschema.Type{},
		filled:   map[string]bool{},
		aliasing: map[string]bool{},
	}
}

func (l *loader) fail(name string, n *yaml.Node, format string, args ...any) error {
	line := 0
	if n != nil {
		line = n.Line
	}
	return typeschema.Errorf(typeschema.CodeInvalidConfig, "/"+name, "line %d: "+format, append([]any{line}, args...)...)
}

// declare creates the placeholder descriptor of a declaration so that
// references resolve to it before it is filled.
func (l *loader) declare(name string, n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return l.fail(name, n, "declaration must be a mapping")
	}
	if _, ok := builtin(name); ok {
		return l.fail(name, n, "%q shadows a builtin type", name)
	}
	kind := KindRecord
	if k, ok := scalar(mapValue(n, "kind")); ok {
		kind = k
	}
	scope := l.opts.Scope
	if s, ok := scalar(mapValue(n, "scope")); ok {
		scope = s
	}
	doc, _ := scalar(mapValue(n, "doc"))

	switch kind {
	case KindRecord:
		rec := &typeschema.Record{Name: name, Scope: scope, Doc: doc}
		l.types[name] = rec
		l.records = append(l.records, rec)
	case KindNamedTuple:
		l.types[name] = &typeschema.NamedFields{Name: name, Scope: scope, Doc: doc, Layout: typeschema.LayoutArray}
	case KindTypedDict:
		l.types[name] = &typeschema.NamedFields{Name: name, Scope: scope, Doc: doc, Layout: typeschema.LayoutObject}
	case KindEnum:
		l.types[name] = &typeschema.Enum{Name: name, Scope: scope, Doc: doc}
	case KindUnion:
		l.types[name] = &typeschema.Union{}
	case KindAlias:
	default:
		return l.fail(name, mapValue(n, "kind"), "unknown kind %q", kind)
	}
	l.order = append(l.order, name)
	l.nodes[name] = n
	l.kinds[name] = kind
	return nil
}

func (l *loader) fill(name string) error {
	if l.filled[name] {
		return nil
	}
	l.filled[name] = true
	n := l.nodes[name]
	switch l.kinds[name] {
	case KindRecord:
		return l.fillRecord(name, n, l.types[name].(*typeschema.Record))
	case KindNamedTuple, KindTypedDict:
		nf := l.types[name].(*typeschema.NamedFields)
		fields, err := l.fields(name, n)
		if err != nil {
			return err
		}
		nf.Fields = fields
		if nf.Layout == typeschema.LayoutArray {
			return checkTrailingDefaults(name, fields)
		}
		return nil
	case KindEnum:
		return l.fillEnum(name, n, l.types[name].(*typeschema.Enum))
	case KindUnion:
		return l.fillUnion(name, n, l.types[name].(*typeschema.Union))
	case KindAlias:
		_, err := l.ref(name, name, n)
		return err
	}
	return nil
}

func (l *loader) fillRecord(name string, n *yaml.Node, rec *typeschema.Record) error {
	fields, err := l.fields(name, n)
	if err != nil {
		return err
	}
	rec.Fields = fields

	if v := mapValue(n, "layout"); v != nil {
		switch s, _ := scalar(v); s {
		case "object":
		case "array":
			rec.Layout = typeschema.LayoutArray
		default:
			return l.fail(name, v, "layout must be object or array")
		}
	}
	if rec.ForbidUnknown, err = boolValue(mapValue(n, "closed")); err != nil {
		return l.fail(name, mapValue(n, "closed"), "closed: %v", err)
	}
	if err := l.tag(name, mapValue(n, "tag"), rec); err != nil {
		return err
	}
	if v := mapValue(n, "base"); v != nil {
		baseName, _ := scalar(v)
		base, ok := l.types[baseName].(*typeschema.Record)
		if !ok {
			return l.fail(name, v, "base %q is not a declared record", baseName)
		}
		rec.Base = base
	}
	return nil
}

// tag reads `tag: true`, `tag: <field>` or `tag: {field: ..., value: ...}`.
func (l *loader) tag(name string, n *yaml.Node, rec *typeschema.Record) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!bool" {
			on, err := boolValue(n)
			if err != nil {
				return l.fail(name, n, "tag: %v", err)
			}
			if on {
				rec.Tag = &typeschema.Tag{}
			}
			return nil
		}
		rec.Tag = &typeschema.Tag{Field: n.Value}
		return nil
	case yaml.MappingNode:
		t := &typeschema.Tag{}
		t.Field, _ = scalar(mapValue(n, "field"))
		if v := mapValue(n, "value"); v != nil {
			val, err := nodeValue(v)
			if err != nil {
				return l.fail(name, v, "tag value: %v", err)
			}
			switch val.(type) {
			case string, int64:
			default:
				return l.fail(name, v, "tag value must be a string or an integer")
			}
			t.Value = val
		}
		rec.Tag = t
		return nil
	}
	return l.fail(name, n, "tag must be a boolean, a field name or a mapping")
}

func (l *loader) fields(name string, n *yaml.Node) ([]typeschema.Field, error) {
	fn := mapValue(n, "fields")
	if fn == nil {
		return nil, nil
	}
	if fn.Kind != yaml.SequenceNode {
		return nil, l.fail(name, fn, "fields must be a sequence")
	}
	out := make([]typeschema.Field, 0, len(fn.Content))
	seen := map[string]bool{}
	for _, item := range fn.Content {
		fname, ok := scalar(mapValue(item, "name"))
		if !ok || fname == "" {
			return nil, l.fail(name, item, "field needs a name")
		}
		if seen[fname] {
			return nil, l.fail(name, item, "duplicate field %q", fname)
		}
		seen[fname] = true
		tn := mapValue(item, "type")
		if tn == nil {
			return nil, l.fail(name, item, "field %q needs a type", fname)
		}
		ft, err := l.expr(name, tn)
		if err != nil {
			return nil, err
		}
		f := typeschema.Field{Name: fname, Type: ft}
		if dv := mapValue(item, "default"); dv != nil {
			if f.Default, err = nodeValue(dv); err != nil {
				return nil, l.fail(name, dv, "default: %v", err)
			}
			f.HasDefault = true
		}
		if f.Optional, err = boolValue(mapValue(item, "optional")); err != nil {
			return nil, l.fail(name, item, "optional: %v", err)
		}
		out = append(out, f)
	}
	return out, nil
}

func (l *loader) fillEnum(name string, n *yaml.Node, e *typeschema.Enum) error {
	mn := mapValue(n, "members")
	if mn == nil {
		return l.fail(name, n, "enum needs members")
	}
	switch mn.Kind {
	case yaml.MappingNode:
		if err := checkDuplicates(mn); err != nil {
			return l.fail(name, mn, "%v", err)
		}
		for i := 0; i < len(mn.Content); i += 2 {
			v, err := nodeValue(mn.Content[i+1])
			if err != nil {
				return l.fail(name, mn.Content[i+1], "%v", err)
			}
			e.Members = append(e.Members, typeschema.EnumMember{Name: mn.Content[i].Value, Value: v})
		}
	case yaml.SequenceNode:
		for _, c := range mn.Content {
			s, ok := scalar(c)
			if !ok {
				return l.fail(name, c, "enum member must be a name")
			}
			e.Members = append(e.Members, typeschema.EnumMember{Name: s, Value: s})
		}
	default:
		return l.fail(name, mn, "members must be a mapping or a sequence")
	}
	return nil
}

func (l *loader) fillUnion(name string, n *yaml.Node, u *typeschema.Union) error {
	mn := mapValue(n, "members")
	if mn == nil || mn.Kind != yaml.SequenceNode || len(mn.Content) == 0 {
		return l.fail(name, n, "union needs a non-empty members sequence")
	}
	members := make([]typeschema.Type, 0, len(mn.Content))
	for _, c := range mn.Content {
		t, err := l.expr(name, c)
		if err != nil {
			return err
		}
		members = append(members, t)
	}
	switch x := typeschema.UnionOf(members...).(type) {
	case *typeschema.Union:
		u.Members = x.Members
	default:
		u.Members = []typeschema.Type{x}
	}
	return nil
}

// flatten rewrites every record with a base into its flattened view. All
// views are computed before any record is replaced so that each one reads
// declared field lists only.
func (l *loader) flatten() error {
	flat := make([]*typeschema.Record, len(l.records))
	for i, r := range l.records {
		flat[i] = r.Flatten()
	}
	for i, r := range l.records {
		*r = *flat[i]
		if r.Layout == typeschema.LayoutArray {
			if err := checkTrailingDefaults(r.Name, r.Fields); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkTrailingDefaults(name string, fields []typeschema.Field) error {
	after := ""
	for _, f := range fields {
		if !f.Required() {
			if after == "" {
				after = f.Name
			}
			continue
		}
		if after != "" {
			return typeschema.Errorf(typeschema.CodeInvalidConfig, "/"+name,
				"required field %s follows optional field %s in an array layout", strconv.Quote(f.Name), strconv.Quote(after))
		}
	}
	return nil
}
