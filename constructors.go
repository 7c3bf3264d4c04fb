package typeschema

// ListOf returns a list of elem. A nil elem yields an unparameterized list.
func ListOf(elem Type) *Sequence { return &Sequence{Shape: ShapeList, Elem: elem} }

// SetOf returns a set of elem.
func SetOf(elem Type) *Sequence { return &Sequence{Shape: ShapeSet, Elem: elem} }

// FrozenSetOf returns an immutable set of elem.
func FrozenSetOf(elem Type) *Sequence { return &Sequence{Shape: ShapeFrozenSet, Elem: elem} }

// TupleOf returns a fixed-length tuple with the given element types.
func TupleOf(items ...Type) *Sequence {
	return &Sequence{Shape: ShapeTuple, Items: append([]Type(nil), items...), Fixed: true}
}

// EmptyTuple returns the zero-length tuple.
func EmptyTuple() *Sequence { return &Sequence{Shape: ShapeTuple, Fixed: true} }

// VarTupleOf returns a variable-length tuple of elem.
func VarTupleOf(elem Type) *Sequence { return &Sequence{Shape: ShapeTuple, Elem: elem} }

// MapOf returns a mapping from key to value.
func MapOf(key, value Type) *Mapping { return &Mapping{Key: key, Value: value} }

// UnionOf builds a union, splicing nested unions in place and dropping
// repeated members. A single remaining member is returned as is.
func UnionOf(members ...Type) Type {
	out := make([]Type, 0, len(members))
	var add func(t Type)
	add = func(t Type) {
		if u, ok := t.(*Union); ok {
			for _, m := range u.Members {
				add(m)
			}
			return
		}
		for _, seen := range out {
			if sameMember(seen, t) {
				return
			}
		}
		out = append(out, t)
	}
	for _, m := range members {
		add(m)
	}
	if len(out) == 1 {
		return out[0]
	}
	return &Union{Members: out}
}

// Optional returns t | None.
func Optional(t Type) Type { return UnionOf(t, None{}) }

// Annotate wraps t with constraints and metadata.
func Annotate(t Type, c Constraints, m Meta) *Annotated {
	return &Annotated{Inner: t, Constraints: c, Meta: m}
}

// sameMember compares scalars by value and composites by pointer.
func sameMember(a, b Type) bool { return a == b }

// Flatten returns r as an independent record carrying the full field list of
// its tag family: base fields first in declared order, then r's own fields.
// The tag field is inherited from the base when r leaves it unset, and the
// tag value defaults to r's own name. The result has no Base, so flattening
// it again returns an equal copy.
func (r *Record) Flatten() *Record {
	out := *r
	out.Base = nil
	if r.Base == nil {
		out.Fields = append([]Field(nil), r.Fields...)
		return &out
	}
	seen := map[*Record]bool{r: true}
	var chain []*Record
	for b := r.Base; b != nil && !seen[b]; b = b.Base {
		seen[b] = true
		chain = append(chain, b)
	}
	var fields []Field
	for i := len(chain) - 1; i >= 0; i-- {
		fields = append(fields, chain[i].Fields...)
	}
	out.Fields = append(fields, r.Fields...)

	var inherited *Tag
	for _, b := range chain {
		if b.Tag != nil {
			inherited = b.Tag
			break
		}
	}
	switch {
	case r.Tag == nil && inherited != nil:
		out.Tag = &Tag{Field: inherited.Field, Value: r.Name}
	case r.Tag != nil && r.Tag.Field == "" && inherited != nil:
		out.Tag = &Tag{Field: inherited.Field, Value: r.Tag.Value}
	}
	// array layout is a family-wide setting decided by the root
	if r.Layout == LayoutObject && len(chain) > 0 && chain[len(chain)-1].Layout == LayoutArray {
		out.Layout = LayoutArray
	}
	return &out
}
