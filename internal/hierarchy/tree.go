// Package hierarchy holds the department tree as a flat arena keyed by id.
// Departments never point at each other in memory; parent links are ids,
// which keeps cycle checks a simple walk up the parent chain.
package hierarchy

import "github.com/google/uuid"

// Node is one department in the arena.
type Node struct {
	ID       uuid.UUID
	ParentID *uuid.UUID
}

// Tree is an id-indexed arena of departments.
type Tree struct {
	parent   map[uuid.UUID]uuid.UUID
	children map[uuid.UUID][]uuid.UUID
	nodes    map[uuid.UUID]bool
}

// Build indexes the given nodes. Parent ids that are not in the set are kept
// as dangling links; they simply end the walk.
func Build(nodes []Node) *Tree {
	t := &Tree{
		parent:   make(map[uuid.UUID]uuid.UUID, len(nodes)),
		children: make(map[uuid.UUID][]uuid.UUID),
		nodes:    make(map[uuid.UUID]bool, len(nodes)),
	}
	for _, n := range nodes {
		t.nodes[n.ID] = true
		if n.ParentID != nil {
			t.parent[n.ID] = *n.ParentID
			t.children[*n.ParentID] = append(t.children[*n.ParentID], n.ID)
		}
	}
	return t
}

func (t *Tree) Contains(id uuid.UUID) bool { return t.nodes[id] }

// Parent returns the parent id, if any.
func (t *Tree) Parent(id uuid.UUID) (uuid.UUID, bool) {
	p, ok := t.parent[id]
	return p, ok
}

// Children returns the direct children of id.
func (t *Tree) Children(id uuid.UUID) []uuid.UUID {
	return t.children[id]
}

// Add inserts a node without a parent. Existing nodes are left untouched.
func (t *Tree) Add(id uuid.UUID) {
	t.nodes[id] = true
}

// SetParent relinks id under parent (or detaches it when parent is nil).
// Callers check WouldCycle first.
func (t *Tree) SetParent(id uuid.UUID, parent *uuid.UUID) {
	t.nodes[id] = true
	if old, ok := t.parent[id]; ok {
		siblings := t.children[old]
		for i, c := range siblings {
			if c == id {
				t.children[old] = append(siblings[:i:i], siblings[i+1:]...)
				break
			}
		}
		delete(t.parent, id)
	}
	if parent != nil {
		t.parent[id] = *parent
		t.children[*parent] = append(t.children[*parent], id)
	}
}

// Ancestors walks from id's parent to the root. The walk stops if the
// stored data already contains a loop.
func (t *Tree) Ancestors(id uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	seen := map[uuid.UUID]bool{id: true}
	cur, ok := t.parent[id]
	for ok && !seen[cur] {
		out = append(out, cur)
		seen[cur] = true
		cur, ok = t.parent[cur]
	}
	return out
}

// WouldCycle reports whether making newParent the parent of id closes a
// loop: id itself, or any descendant of id, appears on newParent's chain.
func (t *Tree) WouldCycle(id, newParent uuid.UUID) bool {
	if id == newParent {
		return true
	}
	for _, a := range t.Ancestors(newParent) {
		if a == id {
			return true
		}
	}
	return false
}
