package builder

import typeschema "github.com/reoring/typeschema"

// Declare walks the given roots and declares every named descriptor with the
// registry, in first-seen depth-first order. It must run over all roots of a
// call before the first Root so that colliding short names are qualified
// consistently.
func (b *Builder) Declare(roots ...typeschema.Type) {
	seen := map[typeschema.Type]bool{}
	var walk func(t typeschema.Type)
	walk = func(t typeschema.Type) {
		if t == nil || seen[t] {
			return
		}
		seen[t] = true
		switch x := t.(type) {
		case *typeschema.Enum:
			b.reg.Declare(x.ID(), x.Name, x.Scope)
		case *typeschema.Record:
			x = family(x)
			b.reg.Declare(x.ID(), x.Name, x.Scope)
			for _, f := range x.Fields {
				walk(f.Type)
			}
		case *typeschema.NamedFields:
			b.reg.Declare(x.ID(), x.Name, x.Scope)
			for _, f := range x.Fields {
				walk(f.Type)
			}
		case *typeschema.Sequence:
			walk(x.Elem)
			for _, it := range x.Items {
				walk(it)
			}
		case *typeschema.Mapping:
			walk(x.Key)
			walk(x.Value)
		case *typeschema.Union:
			for _, m := range x.Members {
				walk(m)
			}
		case *typeschema.Annotated:
			walk(x.Inner)
		}
	}
	for _, r := range roots {
		walk(r)
	}
}
