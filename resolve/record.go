package resolve

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"

	typeschema "github.com/reoring/typeschema"
)

// structOptions is the record configuration read from the blank marker field.
type structOptions struct {
	tagged   bool
	tagField string
	tagValue any
	array    bool
	closed   bool
	doc      string
}

// pendingRecord holds what record collected for a struct. Fields of embedded
// records are only copied in finish, once every record reachable from the
// root has been resolved, so recursive families see their complete base.
type pendingRecord struct {
	t     reflect.Type
	rec   *typeschema.Record
	own   *structOptions
	parts []part
	done  bool
}

// part is one own field or one inlined embedded record, in declared order.
type part struct {
	field    typeschema.Field
	embedded *typeschema.Record
}

func (r *Resolver) record(t reflect.Type) (typeschema.Type, error) {
	name := typeName(t)
	if name == "" {
		return nil, typeschema.Errorf(typeschema.CodeInvalidConfig, "", "anonymous struct %s needs a named type", t)
	}
	rec := &typeschema.Record{Name: name, Scope: t.PkgPath()}
	r.cache[t] = rec
	p := &pendingRecord{t: t, rec: rec}
	r.pending[rec] = p
	r.order = append(r.order, p)
	path := "/" + name

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Name == "_" {
			o, err := parseStructOptions(sf, path)
			if err != nil {
				return nil, err
			}
			p.own = o
			continue
		}
		if embedded, ok := embeddedStruct(sf); ok {
			d, err := r.resolve(embedded, path)
			if err != nil {
				return nil, err
			}
			if er, ok := d.(*typeschema.Record); ok {
				p.parts = append(p.parts, part{embedded: er})
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		key := fieldKey(sf)
		if key == "-" {
			continue
		}
		f, err := r.field(sf, key, path+"/"+key)
		if err != nil {
			return nil, err
		}
		p.parts = append(p.parts, part{field: f})
	}
	return rec, nil
}

// finish completes every pending record, embedded records first.
func (r *Resolver) finish() error {
	active := map[*typeschema.Record]bool{}
	for _, p := range r.order {
		if err := r.complete(p, active); err != nil {
			return err
		}
	}
	r.order = nil
	r.pending = map[*typeschema.Record]*pendingRecord{}
	return nil
}

func (r *Resolver) complete(p *pendingRecord, active map[*typeschema.Record]bool) error {
	if p.done {
		return nil
	}
	rec := p.rec
	path := "/" + rec.Name
	if active[rec] {
		return typeschema.Errorf(typeschema.CodeInvalidConfig, path, "%s embeds itself", rec.Name)
	}
	active[rec] = true
	defer delete(active, rec)

	var base *typeschema.Record
	for _, pt := range p.parts {
		if pt.embedded == nil {
			rec.Fields = append(rec.Fields, pt.field)
			continue
		}
		if ep, ok := r.pending[pt.embedded]; ok {
			if err := r.complete(ep, active); err != nil {
				return err
			}
		}
		rec.Fields = append(rec.Fields, pt.embedded.Fields...)
		if base == nil && pt.embedded.Tag != nil {
			base = pt.embedded
		}
	}

	marker := ""
	if base != nil {
		rec.Tag = &typeschema.Tag{Field: base.TagField(), Value: rec.Name}
		rec.Layout = base.Layout
		rec.ForbidUnknown = base.ForbidUnknown
	}
	if own := p.own; own != nil {
		marker = own.doc
		if own.tagged {
			field := own.tagField
			if field == "" && base != nil {
				field = base.TagField()
			}
			rec.Tag = &typeschema.Tag{Field: field, Value: own.tagValue}
		}
		if own.array {
			rec.Layout = typeschema.LayoutArray
		}
		if own.closed {
			rec.ForbidUnknown = true
		}
	}
	rec.Doc = docOf(p.t, marker)
	p.done = true

	if rec.Layout == typeschema.LayoutArray {
		return checkTrailingDefaults(rec.Fields, path)
	}
	return nil
}

// discard resets the cache after a failed Resolve. Cached unions and records
// may point at half-built records, so nothing from the failed walk is kept.
func (r *Resolver) discard() {
	r.cache = map[reflect.Type]typeschema.Type{}
	r.order = nil
	r.pending = map[*typeschema.Record]*pendingRecord{}
}

// embeddedStruct returns the struct type of an embedded field that has no
// explicit key and should therefore be inlined.
func embeddedStruct(sf reflect.StructField) (reflect.Type, bool) {
	if !sf.Anonymous {
		return nil, false
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if name, _, _ := strings.Cut(jt, ","); name != "" {
			return nil, false
		}
	}
	t := sf.Type
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || isCustom(t) || t == timeType {
		return nil, false
	}
	return t, true
}

// fieldKey resolves a struct field's external key.
// Priority: typeschema:"name=..." > json tag name > field name; "-" disables the field.
func fieldKey(sf reflect.StructField) string {
	for _, p := range splitOptions(sf.Tag.Get("typeschema")) {
		if v, ok := strings.CutPrefix(p, "name="); ok {
			return v
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if name, _, _ := strings.Cut(jt, ","); name != "" {
			return name
		}
	}
	return sf.Name
}

func parseStructOptions(sf reflect.StructField, path string) (*structOptions, error) {
	o := &structOptions{doc: sf.Tag.Get("doc")}
	for _, p := range splitOptions(sf.Tag.Get("typeschema")) {
		key, val, hasVal := strings.Cut(p, "=")
		switch key {
		case "tag":
			o.tagged = true
			o.tagField = val
		case "tagvalue":
			if !hasVal || val == "" {
				return nil, typeschema.Errorf(typeschema.CodeInvalidConfig, path, "tagvalue needs a value")
			}
			o.tagged = true
			if n, err := strconv.ParseInt(val, 10, 64); err == nil {
				o.tagValue = n
			} else {
				o.tagValue = val
			}
		case "array":
			o.array = true
		case "closed":
			o.closed = true
		default:
			return nil, typeschema.Errorf(typeschema.CodeInvalidConfig, path, "unknown struct option %q", p)
		}
	}
	return o, nil
}

func checkTrailingDefaults(fields []typeschema.Field, path string) error {
	seenOptional := ""
	for _, f := range fields {
		if !f.Required() {
			if seenOptional == "" {
				seenOptional = f.Name
			}
			continue
		}
		if seenOptional != "" {
			return typeschema.Errorf(typeschema.CodeInvalidConfig, path,
				"required field %q follows optional field %q in an array layout", f.Name, seenOptional)
		}
	}
	return nil
}

func splitOptions(tag string) []string {
	if tag == "" {
		return nil
	}
	parts := strings.Split(tag, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var (
	pkgPrefix = regexp.MustCompile(`[\w.\-]*/`)
	nonWord   = regexp.MustCompile(`\W`)
)

// typeName returns the component name of a Go type. Generic instantiations
// are flattened: Box[int] becomes Box_int_, and package paths inside type
// arguments are reduced to the package name.
func typeName(t reflect.Type) string {
	n := t.Name()
	if !strings.Contains(n, "[") {
		return n
	}
	n = pkgPrefix.ReplaceAllString(n, "")
	return nonWord.ReplaceAllString(n, "_")
}
