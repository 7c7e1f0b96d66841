package store

import (
	"slices"

	"github.com/roach88/statetree/internal/diff"
	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/tree"
)

// componentIndex maps component key to the set of entity ids, within the
// object at collection, whose entity object owns that key.
type componentIndex struct {
	collection path.Path
	components map[string]map[string]struct{}
	entities   map[string][]string
}

func newComponentIndex(collection path.Path) *componentIndex {
	return &componentIndex{
		collection: collection,
		components: make(map[string]map[string]struct{}),
		entities:   make(map[string][]string),
	}
}

// rebuild scans the whole collection.
func (ix *componentIndex) rebuild(state tree.Value) {
	ix.components = make(map[string]map[string]struct{})
	ix.entities = make(map[string][]string)

	coll, ok := path.Get(state, ix.collection).(tree.Object)
	if !ok {
		return
	}
	for id, entity := range coll {
		ix.add(id, entity)
	}
}

// update brings the index in line with state after d was committed. It
// returns false when a full rebuild was needed.
//
// An entry at the collection or above it may have replaced the whole
// collection, so it forces a rebuild. Entries below it name the entities to
// re-read.
func (ix *componentIndex) update(state tree.Value, d diff.Diff) bool {
	depth := len(ix.collection)
	touched := make(map[string]struct{})
	for _, e := range d.Entries {
		if len(e.Path) <= depth {
			if ix.collection.HasPrefix(e.Path) {
				ix.rebuild(state)
				return false
			}
			continue
		}
		if e.Path.HasPrefix(ix.collection) {
			touched[e.Path[depth].String()] = struct{}{}
		}
	}
	if len(touched) == 0 {
		return true
	}

	coll, ok := path.Get(state, ix.collection).(tree.Object)
	if !ok {
		ix.rebuild(state)
		return false
	}
	for id := range touched {
		ix.remove(id)
		if entity, exists := coll[id]; exists {
			ix.add(id, entity)
		}
	}
	return true
}

func (ix *componentIndex) add(id string, entity tree.Value) {
	obj, ok := entity.(tree.Object)
	if !ok {
		return
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		set, exists := ix.components[k]
		if !exists {
			set = make(map[string]struct{})
			ix.components[k] = set
		}
		set[id] = struct{}{}
		keys = append(keys, k)
	}
	ix.entities[id] = keys
}

func (ix *componentIndex) remove(id string) {
	for _, k := range ix.entities[id] {
		set := ix.components[k]
		delete(set, id)
		if len(set) == 0 {
			delete(ix.components, k)
		}
	}
	delete(ix.entities, id)
}

// lookup returns the entity ids owning component, sorted.
func (ix *componentIndex) lookup(component string) []string {
	set := ix.components[component]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// componentKeys returns every indexed component key, sorted.
func (ix *componentIndex) componentKeys() []string {
	out := make([]string, 0, len(ix.components))
	for k := range ix.components {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
