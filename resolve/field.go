package resolve

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	typeschema "github.com/reoring/typeschema"
)

func (r *Resolver) field(sf reflect.StructField, key, path string) (typeschema.Field, error) {
	ft, err := r.resolve(sf.Type, path)
	if err != nil {
		return typeschema.Field{}, err
	}
	f := typeschema.Field{Name: key}

	var c typeschema.Constraints
	for _, p := range splitOptions(sf.Tag.Get("typeschema")) {
		name, val, _ := strings.Cut(p, "=")
		switch name {
		case "name":
		case "optional":
			f.Optional = true
		case "ge", "gt", "le", "lt", "multiple_of":
			n, err := parseNumber(val)
			if err != nil {
				return f, badTag(path, p, err)
			}
			switch name {
			case "ge":
				c.GE = n
			case "gt":
				c.GT = n
			case "le":
				c.LE = n
			case "lt":
				c.LT = n
			default:
				c.MultipleOf = n
			}
		case "min_length", "max_length":
			n, err := strconv.Atoi(val)
			if err != nil || n < 0 {
				return f, badTag(path, p, err)
			}
			if name == "min_length" {
				c.MinLength = typeschema.Len(n)
			} else {
				c.MaxLength = typeschema.Len(n)
			}
		default:
			return f, badTag(path, p, nil)
		}
	}
	c.Pattern = sf.Tag.Get("pattern")

	m := typeschema.Meta{Title: sf.Tag.Get("title"), Description: sf.Tag.Get("description")}
	if raw, ok := sf.Tag.Lookup("examples"); ok {
		if err := json.Unmarshal([]byte(raw), &m.Examples); err != nil {
			return f, badTag(path, "examples", err)
		}
	}
	if raw, ok := sf.Tag.Lookup("schema"); ok {
		if err := json.Unmarshal([]byte(raw), &m.ExtraSchema); err != nil {
			return f, badTag(path, "schema", err)
		}
	}
	if raw, ok := sf.Tag.Lookup("default"); ok {
		if err := json.Unmarshal([]byte(raw), &f.Default); err != nil {
			return f, badTag(path, "default", err)
		}
		f.HasDefault = true
	}
	if _, opts, _ := strings.Cut(sf.Tag.Get("json"), ","); !f.HasDefault && hasOption(opts, "omitempty") {
		f.Optional = true
	}

	f.Type = annotate(ft, c, m)
	return f, nil
}

// annotate wraps t, pushing the annotation inside an optional (T | None) so
// constraints describe the value rather than the union.
func annotate(t typeschema.Type, c typeschema.Constraints, m typeschema.Meta) typeschema.Type {
	if c.IsZero() && m.IsZero() {
		return t
	}
	if u, ok := t.(*typeschema.Union); ok && len(u.Members) == 2 {
		for i, mem := range u.Members {
			if _, isNone := mem.(typeschema.None); isNone {
				inner := u.Members[1-i]
				return typeschema.Optional(typeschema.Annotate(inner, c, m))
			}
		}
	}
	return typeschema.Annotate(t, c, m)
}

func parseNumber(s string) (any, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	return strconv.ParseFloat(s, 64)
}

func hasOption(opts, want string) bool {
	for _, o := range strings.Split(opts, ",") {
		if o == want {
			return true
		}
	}
	return false
}

func badTag(path, option string, cause error) error {
	return &typeschema.Error{
		Code:    typeschema.CodeInvalidConfig,
		Path:    path,
		Message: "malformed struct tag option " + strconv.Quote(option),
		Cause:   cause,
	}
}
