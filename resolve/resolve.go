// Package resolve maps Go types onto typeschema descriptors.
//
// Structs become records named after the Go type and scoped by package path.
// Field keys follow the rule typeschema:"name=..." > json tag name > Go field
// name, and "-" drops a field. A blank marker field configures the record:
//
//	type Circle struct {
//		_      struct{} `typeschema:"tag=kind,closed" doc:"A circle."`
//		Radius float64  `json:"radius" typeschema:"gt=0"`
//	}
//
// Embedded structs are inlined, and a struct embedding a tagged record joins
// its family with its own name as tag value. Inlined fields are copied once
// the whole type graph has been walked, so a family whose base refers back to
// its members still resolves with complete field lists.
package resolve

import (
	"encoding"
	"encoding/json"
	"reflect"
	"time"

	typeschema "github.com/reoring/typeschema"
)

// Enumerator is implemented by named types that enumerate their members.
type Enumerator interface {
	EnumMembers() []typeschema.EnumMember
}

// Documented is implemented by types that carry a schema description.
type Documented interface {
	SchemaDoc() string
}

// Options configures a Resolver.
type Options struct {
	// Types overrides the descriptor of specific Go types.
	Types map[reflect.Type]typeschema.Type
	// Unions lists the member types of interface types.
	Unions map[reflect.Type][]reflect.Type
}

// Resolver converts reflect.Types into descriptors. Descriptors are cached per
// Go type, so recursive types resolve to the same descriptor pointer. A
// Resolver is not safe for concurrent use.
type Resolver struct {
	opts    Options
	cache   map[reflect.Type]typeschema.Type
	pending map[*typeschema.Record]*pendingRecord
	order   []*pendingRecord
}

// New returns a Resolver.
func New(opts Options) *Resolver {
	return &Resolver{
		opts:    opts,
		cache:   map[reflect.Type]typeschema.Type{},
		pending: map[*typeschema.Record]*pendingRecord{},
	}
}

// For resolves the descriptor of T.
func For[T any](opts Options) (typeschema.Type, error) {
	return New(opts).Resolve(reflect.TypeOf((*T)(nil)).Elem())
}

// Of resolves the descriptor of v's dynamic type.
func Of(v any, opts Options) (typeschema.Type, error) {
	if v == nil {
		return nil, typeschema.Errorf(typeschema.CodeInvalidConfig, "", "cannot resolve nil value")
	}
	return New(opts).Resolve(reflect.TypeOf(v))
}

var (
	timeType        = reflect.TypeOf(time.Time{})
	durationType    = reflect.TypeOf(time.Duration(0))
	rawMessageType  = reflect.TypeOf(json.RawMessage(nil))
	numberType      = reflect.TypeOf(json.Number(""))
	marshalerType   = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	enumeratorType  = reflect.TypeOf((*Enumerator)(nil)).Elem()
)

// Resolve returns the descriptor of t.
func (r *Resolver) Resolve(t reflect.Type) (typeschema.Type, error) {
	if t == nil {
		return nil, typeschema.Errorf(typeschema.CodeInvalidConfig, "", "nil type")
	}
	d, err := r.resolve(t, "")
	if err == nil {
		err = r.finish()
	}
	if err != nil {
		r.discard()
		return nil, err
	}
	return d, nil
}

func (r *Resolver) resolve(t reflect.Type, path string) (typeschema.Type, error) {
	if d, ok := r.opts.Types[t]; ok {
		return d, nil
	}
	if d, ok := r.cache[t]; ok {
		return d, nil
	}
	switch t {
	case timeType:
		return typeschema.Temporal{Format: typeschema.TemporalDateTime}, nil
	case durationType:
		return typeschema.Int{}, nil
	case rawMessageType:
		return typeschema.Raw{}, nil
	case numberType:
		return typeschema.Float{}, nil
	}
	if t.Name() != "" && implements(t, enumeratorType) {
		return r.enum(t), nil
	}
	if members, ok := r.opts.Unions[t]; ok {
		return r.union(t, members, path)
	}

	switch t.Kind() {
	case reflect.Bool:
		return typeschema.Bool{}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return typeschema.Int{}, nil
	case reflect.Float32, reflect.Float64:
		return typeschema.Float{}, nil
	case reflect.String:
		return typeschema.Str{}, nil
	case reflect.Pointer:
		elem, err := r.resolve(t.Elem(), path)
		if err != nil {
			return nil, err
		}
		return typeschema.Optional(elem), nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return typeschema.Binary{}, nil
		}
		elem, err := r.resolve(t.Elem(), path+"/items")
		if err != nil {
			return nil, err
		}
		return typeschema.ListOf(elem), nil
	case reflect.Array:
		if isCustom(t) {
			return r.custom(t), nil
		}
		elem, err := r.resolve(t.Elem(), path+"/items")
		if err != nil {
			return nil, err
		}
		items := make([]typeschema.Type, t.Len())
		for i := range items {
			items[i] = elem
		}
		return typeschema.TupleOf(items...), nil
	case reflect.Map:
		return r.mapping(t, path)
	case reflect.Struct:
		if isCustom(t) {
			return r.custom(t), nil
		}
		return r.record(t)
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return typeschema.Any{}, nil
		}
	}
	return r.custom(t), nil
}

func (r *Resolver) mapping(t reflect.Type, path string) (typeschema.Type, error) {
	var key typeschema.Type
	switch k := t.Key(); {
	case k.Kind() == reflect.String:
		key = typeschema.Str{}
	case k.Kind() >= reflect.Int && k.Kind() <= reflect.Uintptr:
		key = typeschema.Int{}
	case implements(k, textMarshalType):
		key = typeschema.Str{}
	default:
		return nil, typeschema.Errorf(typeschema.CodeInvalidConfig, path,
			"map key type %s is not string-coercible", k)
	}
	val, err := r.resolve(t.Elem(), path+"/additionalProperties")
	if err != nil {
		return nil, err
	}
	return typeschema.MapOf(key, val), nil
}

func (r *Resolver) enum(t reflect.Type) typeschema.Type {
	e := &typeschema.Enum{Name: typeName(t), Scope: t.PkgPath(), Doc: docOf(t, "")}
	r.cache[t] = e
	e.Members = reflect.New(t).Interface().(Enumerator).EnumMembers()
	return e
}

func (r *Resolver) union(t reflect.Type, members []reflect.Type, path string) (typeschema.Type, error) {
	u := &typeschema.Union{}
	r.cache[t] = u
	resolved := make([]typeschema.Type, 0, len(members))
	for _, m := range members {
		d, err := r.resolve(m, path)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, d)
	}
	switch x := typeschema.UnionOf(resolved...).(type) {
	case *typeschema.Union:
		u.Members = x.Members
	default:
		u.Members = []typeschema.Type{x}
	}
	return u, nil
}

func (r *Resolver) custom(t reflect.Type) typeschema.Type {
	c := &typeschema.Custom{Identity: typeName(t), Scope: t.PkgPath()}
	if c.Identity == "" {
		c.Identity = t.String()
	}
	r.cache[t] = c
	return c
}

// isCustom reports whether a composite type controls its own wire form.
func isCustom(t reflect.Type) bool {
	return implements(t, marshalerType) || implements(t, textMarshalType)
}

func implements(t, iface reflect.Type) bool {
	return t.Implements(iface) || reflect.PointerTo(t).Implements(iface)
}

func docOf(t reflect.Type, marker string) string {
	if marker != "" {
		return marker
	}
	if d, ok := reflect.New(t).Interface().(Documented); ok {
		return d.SchemaDoc()
	}
	return ""
}
