package typeschema

// Constraints are the value constraints attached through Annotated.
//
// Numeric bounds hold an integer or floating point number and are emitted
// verbatim; nil means unset. Length bounds apply to strings, binary content
// (counted in raw bytes), sequences (items) and mappings (properties).
type Constraints struct {
	GE         any
	GT         any
	LE         any
	LT         any
	MultipleOf any
	Pattern    string
	MinLength  *int
	MaxLength  *int
}

// IsZero reports whether no constraint is set.
func (c Constraints) IsZero() bool {
	return c.GE == nil && c.GT == nil && c.LE == nil && c.LT == nil &&
		c.MultipleOf == nil && c.Pattern == "" && c.MinLength == nil && c.MaxLength == nil
}

// Meta is generic schema metadata. ExtraSchema is deep-merged over the
// generated fragment last and wins every conflict.
type Meta struct {
	Title       string
	Description string
	Examples    []any
	ExtraSchema map[string]any
}

// IsZero reports whether no metadata is set.
func (m Meta) IsZero() bool {
	return m.Title == "" && m.Description == "" && m.Examples == nil && m.ExtraSchema == nil
}

// Len returns a pointer to n, for Constraints.MinLength/MaxLength.
func Len(n int) *int { return &n }
