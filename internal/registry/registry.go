// Package registry names and stores the components of one schema generation
// call.
//
// Names are fixed up front: every named type is declared before any fragment
// is built, so a short name shared by more than one identity is qualified with
// its declaring scope for all of them, and references emitted early never need
// rewriting.
package registry

import (
	"errors"
	"sort"
	"strings"
)

// DefaultRefTemplate is the reference template used when none is given.
const DefaultRefTemplate = "#/$defs/{name}"

const namePlaceholder = "{name}"

// ErrBadTemplate is returned for a reference template without "{name}".
var ErrBadTemplate = errors.New("registry: ref template must contain {name}")

type entry struct {
	id       string
	short    string
	scope    string
	building bool
	built    bool
	fragment map[string]any
}

// Registry holds declared identities and their built fragments. It is owned by
// a single call and is not safe for concurrent use.
type Registry struct {
	tmpl    string
	entries map[string]*entry
	byShort map[string][]string
	order   []string
}

// New returns an empty registry. An empty template selects DefaultRefTemplate.
func New(refTemplate string) (*Registry, error) {
	if refTemplate == "" {
		refTemplate = DefaultRefTemplate
	}
	if !strings.Contains(refTemplate, namePlaceholder) {
		return nil, ErrBadTemplate
	}
	return &Registry{
		tmpl:    refTemplate,
		entries: map[string]*entry{},
		byShort: map[string][]string{},
	}, nil
}

// Declare records an identity with its short name and declaring scope.
// Repeated declarations of the same identity are ignored.
func (r *Registry) Declare(id, short, scope string) {
	if _, ok := r.entries[id]; ok {
		return
	}
	r.entries[id] = &entry{id: id, short: short, scope: scope}
	r.byShort[short] = append(r.byShort[short], id)
	r.order = append(r.order, id)
}

// Declared reports whether id has been declared.
func (r *Registry) Declared(id string) bool {
	_, ok := r.entries[id]
	return ok
}

// Name returns the final component name of id: the short name, or
// "<scope>.<short>" when another identity shares the short name.
func (r *Registry) Name(id string) string {
	e, ok := r.entries[id]
	if !ok {
		return id
	}
	if len(r.byShort[e.short]) > 1 && e.scope != "" {
		return e.scope + "." + e.short
	}
	return e.short
}

// RefString returns the reference text for id.
func (r *Registry) RefString(id string) string {
	return strings.ReplaceAll(r.tmpl, namePlaceholder, r.Name(id))
}

// Ref returns a fresh {"$ref": ...} fragment for id.
func (r *Registry) Ref(id string) map[string]any {
	return map[string]any{"$ref": r.RefString(id)}
}

// Register builds the component for id on first use and returns a reference
// to it. Later calls, including re-entrant ones issued while the component is
// still being built, return the reference without calling build again.
func (r *Registry) Register(id string, build func() (map[string]any, error)) (map[string]any, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, errors.New("registry: undeclared identity " + id)
	}
	if e.building || e.built {
		return r.Ref(id), nil
	}
	e.building = true
	frag, err := build()
	e.building = false
	if err != nil {
		return nil, err
	}
	e.built = true
	e.fragment = frag
	return r.Ref(id), nil
}

// Components returns the built fragments keyed by final name.
func (r *Registry) Components() map[string]any {
	out := make(map[string]any, len(r.order))
	for _, id := range r.order {
		if e := r.entries[id]; e.built {
			out[r.Name(id)] = e.fragment
		}
	}
	return out
}

// Names returns the final names of all built components in sorted order.
func (r *Registry) Names() []string {
	var out []string
	for _, id := range r.order {
		if r.entries[id].built {
			out = append(out, r.Name(id))
		}
	}
	sort.Strings(out)
	return out
}
