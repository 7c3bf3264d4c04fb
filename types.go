package typeschema

// Kind identifies a descriptor variant.
type Kind int

const (
	KindAny Kind = iota
	KindNone
	KindBool
	KindInt
	KindFloat
	KindStr
	KindBinary
	KindTemporal
	KindRaw
	KindLiteral
	KindEnum
	KindSequence
	KindMapping
	KindRecord
	KindNamedFields
	KindUnion
	KindCustom
	KindAnnotated
)

var kindNames = [...]string{
	KindAny:         "any",
	KindNone:        "none",
	KindBool:        "bool",
	KindInt:         "int",
	KindFloat:       "float",
	KindStr:         "str",
	KindBinary:      "binary",
	KindTemporal:    "temporal",
	KindRaw:         "raw",
	KindLiteral:     "literal",
	KindEnum:        "enum",
	KindSequence:    "sequence",
	KindMapping:     "mapping",
	KindRecord:      "record",
	KindNamedFields: "namedfields",
	KindUnion:       "union",
	KindCustom:      "custom",
	KindAnnotated:   "annotated",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Type is the root descriptor interface. The variant set is closed: the
// compiler switches over the concrete types declared in this file.
//
// Scalar variants are plain values (Int{}, Str{}, ...). Composite variants are
// used through pointers so that recursive graphs can share nodes.
type Type interface {
	Kind() Kind
}

type (
	Any    struct{}
	None   struct{}
	Bool   struct{}
	Int    struct{}
	Float  struct{}
	Str    struct{}
	Binary struct{} // bytes-like, base64 encoded on the wire
	Raw    struct{} // opaque pre-encoded message; accepts anything
)

func (Any) Kind() Kind    { return KindAny }
func (None) Kind() Kind   { return KindNone }
func (Bool) Kind() Kind   { return KindBool }
func (Int) Kind() Kind    { return KindInt }
func (Float) Kind() Kind  { return KindFloat }
func (Str) Kind() Kind    { return KindStr }
func (Binary) Kind() Kind { return KindBinary }
func (Raw) Kind() Kind    { return KindRaw }

// TemporalFormat is the JSON Schema "format" of a temporal kind.
type TemporalFormat string

const (
	TemporalDateTime TemporalFormat = "date-time"
	TemporalDate     TemporalFormat = "date"
	TemporalTime     TemporalFormat = "time"
	TemporalDuration TemporalFormat = "duration"
)

// Temporal is a date/time/duration string.
type Temporal struct {
	Format TemporalFormat
}

func (Temporal) Kind() Kind { return KindTemporal }

// Literal is a fixed set of allowed values.
type Literal struct {
	Values []any
}

func (*Literal) Kind() Kind { return KindLiteral }

// EnumMember is one declared member of an Enum.
type EnumMember struct {
	Name  string
	Value any
}

// Enum is a named enumeration.
type Enum struct {
	Name    string
	Scope   string // declaring namespace, used to qualify colliding names
	Doc     string
	Members []EnumMember
}

func (*Enum) Kind() Kind { return KindEnum }

// ID returns the qualified identity of the enum.
func (e *Enum) ID() string { return qualify(e.Scope, e.Name) }

// Shape is the container flavour of a Sequence.
type Shape int

const (
	ShapeList Shape = iota
	ShapeSet
	ShapeFrozenSet
	ShapeTuple
)

// Sequence is an array-like container.
//
// Elem is the element type of lists, sets and variadic tuples; nil means the
// container is unparameterized. When Fixed is set, Items lists the element
// types of a fixed-length tuple (possibly none).
type Sequence struct {
	Shape Shape
	Elem  Type
	Items []Type
	Fixed bool
}

func (*Sequence) Kind() Kind { return KindSequence }

// Mapping is a dictionary. Keys are assumed to be string-coercible; a nil
// Value means the mapping is unparameterized.
type Mapping struct {
	Key   Type
	Value Type
}

func (*Mapping) Kind() Kind { return KindMapping }

// Field is one field of a Record or NamedFields.
type Field struct {
	Name       string
	Type       Type
	HasDefault bool
	Default    any // wire-shaped default, emitted only when HasDefault
	// Optional marks a field that may be omitted without a known default.
	Optional bool
}

// Required reports whether the field must be present on the wire.
func (f Field) Required() bool { return !f.HasDefault && !f.Optional }

// Layout selects how a record is encoded.
type Layout int

const (
	LayoutObject Layout = iota
	LayoutArray
)

// DefaultTagField is the tag property name used when a Tag leaves it empty.
const DefaultTagField = "type"

// Tag is the union tag carried by a record.
type Tag struct {
	Field string
	Value any // string or integer
}

// Record is a named structured type.
type Record struct {
	Name   string
	Scope  string
	Doc    string
	Fields []Field
	Layout Layout
	Tag    *Tag
	// Base is the record this one extends within a tagged family. Fields
	// then lists only the record's own fields; see Flatten. The builder
	// flattens records that still carry a Base.
	Base *Record
	// ForbidUnknown rejects unknown object keys / trailing array items.
	ForbidUnknown bool
}

func (*Record) Kind() Kind { return KindRecord }

// ID returns the qualified identity of the record.
func (r *Record) ID() string { return qualify(r.Scope, r.Name) }

// TagField returns the effective tag property name, or "" when untagged.
func (r *Record) TagField() string {
	if r.Tag == nil {
		return ""
	}
	if r.Tag.Field == "" {
		return DefaultTagField
	}
	return r.Tag.Field
}

// TagValue returns the tag value, defaulting to the record name.
func (r *Record) TagValue() any {
	if r.Tag == nil {
		return nil
	}
	if r.Tag.Value == nil {
		return r.Name
	}
	return r.Tag.Value
}

// NamedFields covers tuple-like (array layout, bounded) and dict-like
// (object layout) named field groups.
type NamedFields struct {
	Name   string
	Scope  string
	Doc    string
	Fields []Field
	Layout Layout
}

func (*NamedFields) Kind() Kind { return KindNamedFields }

// ID returns the qualified identity of the field group.
func (n *NamedFields) ID() string { return qualify(n.Scope, n.Name) }

// Union is an ordered set of alternatives.
type Union struct {
	Members []Type
}

func (*Union) Kind() Kind { return KindUnion }

// Custom is a type the compiler cannot interpret natively. It needs an
// ExtraSchema override from an enclosing Annotated node.
type Custom struct {
	Identity string
	Scope    string
}

func (*Custom) Kind() Kind { return KindCustom }

// Annotated attaches constraints and metadata to Inner.
type Annotated struct {
	Inner       Type
	Constraints Constraints
	Meta        Meta
}

func (*Annotated) Kind() Kind { return KindAnnotated }

func qualify(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}
