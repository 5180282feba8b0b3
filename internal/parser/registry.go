package parser

import (
	hedlerr "github.com/hedl-dev/hedl/internal/errors"
)

// registry tracks every (type, id) pair produced while rows are parsed.
// Identifiers are scoped by type: the same id may appear under two distinct
// types, but duplicate insertion within one type is a collision.
type registry struct {
	byType map[string]map[string]int // type -> id -> defining line
}

func newRegistry() *registry {
	return &registry{byType: map[string]map[string]int{}}
}

// insert records (typeName, id) defined at line. Duplicate ids within a type
// fail with a collision citing both source lines.
func (r *registry) insert(typeName, id string, line int) error {
	ids := r.byType[typeName]
	if ids == nil {
		ids = map[string]int{}
		r.byType[typeName] = ids
	}
	if first, ok := ids[id]; ok {
		return hedlerr.Newf(hedlerr.Collision, line,
			"duplicate ID %q for type %s (first defined at line %d)", id, typeName, first)
	}
	ids[id] = line
	return nil
}

// contains reports whether (typeName, id) exists.
func (r *registry) contains(typeName, id string) bool {
	ids, ok := r.byType[typeName]
	if !ok {
		return false
	}
	_, ok = ids[id]
	return ok
}

// typesWithID returns every type that defines id, in registry iteration
// order. Callers sort when order matters.
func (r *registry) typesWithID(id string) []string {
	var types []string
	for typeName, ids := range r.byType {
		if _, ok := ids[id]; ok {
			types = append(types, typeName)
		}
	}
	return types
}
