package decl

import (
	"fmt"

	typeschema "github.com/reoring/typeschema"
	"gopkg.in/yaml.v3"
)

func builtin(name string) (typeschema.Type, bool) {
	switch name {
	case "any":
		return typeschema.Any{}, true
	case "none", "null":
		return typeschema.None{}, true
	case "bool":
		return typeschema.Bool{}, true
	case "int":
		return typeschema.Int{}, true
	case "float":
		return typeschema.Float{}, true
	case "str":
		return typeschema.Str{}, true
	case "bytes":
		return typeschema.Binary{}, true
	case "raw":
		return typeschema.Raw{}, true
	case "datetime":
		return typeschema.Temporal{Format: typeschema.TemporalDateTime}, true
	case "date":
		return typeschema.Temporal{Format: typeschema.TemporalDate}, true
	case "time":
		return typeschema.Temporal{Format: typeschema.TemporalTime}, true
	case "duration":
		return typeschema.Temporal{Format: typeschema.TemporalDuration}, true
	case "list":
		return typeschema.ListOf(nil), true
	case "set":
		return typeschema.SetOf(nil), true
	case "frozenset":
		return typeschema.FrozenSetOf(nil), true
	case "tuple":
		return &typeschema.Sequence{Shape: typeschema.ShapeTuple}, true
	case "dict":
		return typeschema.MapOf(typeschema.Str{}, nil), true
	}
	return nil, false
}

// ref resolves a type name: builtins first, then declarations. Aliases are
// expanded on first use.
func (l *loader) ref(owner, name string, n *yaml.Node) (typeschema.Type, error) {
	if t, ok := builtin(name); ok {
		return t, nil
	}
	if t, ok := l.types[name]; ok {
		return t, nil
	}
	if l.kinds[name] != KindAlias {
		return nil, l.fail(owner, n, "unknown type %q", name)
	}
	if l.aliasing[name] {
		return nil, l.fail(owner, n, "alias %q refers to itself", name)
	}
	l.aliasing[name] = true
	defer delete(l.aliasing, name)
	an := l.nodes[name]
	tn := mapValue(an, "type")
	if tn == nil {
		return nil, l.fail(name, an, "alias needs a type")
	}
	t, err := l.expr(name, tn)
	if err != nil {
		return nil, err
	}
	l.types[name] = t
	return t, nil
}

// expr parses a type expression: a type name, or a single-key mapping such as
// {list: int}, {tuple: [int, str]}, {dict: [str, int]}, {union: [...]},
// {optional: T}, {literal: [...]}, {custom: id}, or {annotated: T, ...}.
func (l *loader) expr(owner string, n *yaml.Node) (typeschema.Type, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return l.ref(owner, n.Value, n)
	case yaml.MappingNode:
	default:
		return nil, l.fail(owner, n, "type expression must be a name or a mapping")
	}
	if err := checkDuplicates(n); err != nil {
		return nil, l.fail(owner, n, "%v", err)
	}
	if an := mapValue(n, "annotated"); an != nil {
		return l.annotated(owner, n, an)
	}
	if len(n.Content) != 2 {
		return nil, l.fail(owner, n, "type expression mapping needs exactly one key")
	}
	key, arg := n.Content[0].Value, n.Content[1]
	switch key {
	case "list", "set", "frozenset", "vartuple":
		elem, err := l.expr(owner, arg)
		if err != nil {
			return nil, err
		}
		switch key {
		case "list":
			return typeschema.ListOf(elem), nil
		case "set":
			return typeschema.SetOf(elem), nil
		case "frozenset":
			return typeschema.FrozenSetOf(elem), nil
		}
		return typeschema.VarTupleOf(elem), nil
	case "tuple":
		items, err := l.exprs(owner, arg)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return typeschema.EmptyTuple(), nil
		}
		return typeschema.TupleOf(items...), nil
	case "dict":
		if arg.Kind == yaml.SequenceNode {
			kv, err := l.exprs(owner, arg)
			if err != nil {
				return nil, err
			}
			if len(kv) != 2 {
				return nil, l.fail(owner, arg, "dict needs [key, value]")
			}
			return typeschema.MapOf(kv[0], kv[1]), nil
		}
		v, err := l.expr(owner, arg)
		if err != nil {
			return nil, err
		}
		return typeschema.MapOf(typeschema.Str{}, v), nil
	case "union":
		members, err := l.exprs(owner, arg)
		if err != nil {
			return nil, err
		}
		if len(members) == 0 {
			return nil, l.fail(owner, arg, "union needs members")
		}
		return typeschema.UnionOf(members...), nil
	case "optional":
		t, err := l.expr(owner, arg)
		if err != nil {
			return nil, err
		}
		return typeschema.Optional(t), nil
	case "literal":
		v, err := nodeValue(arg)
		if err != nil {
			return nil, l.fail(owner, arg, "%v", err)
		}
		values, ok := v.([]any)
		if !ok || len(values) == 0 {
			return nil, l.fail(owner, arg, "literal needs a non-empty sequence of values")
		}
		return &typeschema.Literal{Values: values}, nil
	case "custom":
		id, ok := scalar(arg)
		if !ok || id == "" {
			return nil, l.fail(owner, arg, "custom needs an identity")
		}
		return &typeschema.Custom{Identity: id, Scope: l.opts.Scope}, nil
	}
	return nil, l.fail(owner, n.Content[0], "unknown type constructor %q", key)
}

func (l *loader) exprs(owner string, n *yaml.Node) ([]typeschema.Type, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, l.fail(owner, n, "expected a sequence of types")
	}
	out := make([]typeschema.Type, 0, len(n.Content))
	for _, c := range n.Content {
		t, err := l.expr(owner, c)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (l *loader) annotated(owner string, n, inner *yaml.Node) (typeschema.Type, error) {
	t, err := l.expr(owner, inner)
	if err != nil {
		return nil, err
	}
	var (
		c typeschema.Constraints
		m typeschema.Meta
	)
	for i := 0; i < len(n.Content); i += 2 {
		key, vn := n.Content[i].Value, n.Content[i+1]
		if key == "annotated" {
			continue
		}
		v, err := nodeValue(vn)
		if err != nil {
			return nil, l.fail(owner, vn, "%v", err)
		}
		if err := setAnnotation(&c, &m, key, v); err != nil {
			return nil, l.fail(owner, vn, "%s: %v", key, err)
		}
	}
	return typeschema.Annotate(t, c, m), nil
}

func setAnnotation(c *typeschema.Constraints, m *typeschema.Meta, key string, v any) error {
	num := func() (any, error) {
		switch v.(type) {
		case int64, float64:
			return v, nil
		}
		return nil, fmt.Errorf("expected a number, got %v", v)
	}
	length := func() (*int, error) {
		n, ok := v.(int64)
		if !ok || n < 0 {
			return nil, fmt.Errorf("expected a non-negative integer, got %v", v)
		}
		return typeschema.Len(int(n)), nil
	}
	str := func() (string, error) {
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("expected a string, got %v", v)
		}
		return s, nil
	}
	var err error
	switch key {
	case "ge":
		c.GE, err = num()
	case "gt":
		c.GT, err = num()
	case "le":
		c.LE, err = num()
	case "lt":
		c.LT, err = num()
	case "multiple_of":
		c.MultipleOf, err = num()
	case "pattern":
		c.Pattern, err = str()
	case "min_length":
		c.MinLength, err = length()
	case "max_length":
		c.MaxLength, err = length()
	case "title":
		m.Title, err = str()
	case "description":
		m.Description, err = str()
	case "examples":
		ex, ok := v.([]any)
		if !ok {
			return fmt.Errorf("expected a sequence")
		}
		m.Examples = ex
	case "schema":
		obj, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("expected a mapping")
		}
		m.ExtraSchema = obj
	default:
		return fmt.Errorf("unknown annotation")
	}
	return err
}
