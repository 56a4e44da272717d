package hierarchy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func chain() (a, b, c uuid.UUID, t *Tree) {
	a, b, c = uuid.New(), uuid.New(), uuid.New()
	t = Build([]Node{
		{ID: a},
		{ID: b, ParentID: ptr(a)},
		{ID: c, ParentID: ptr(b)},
	})
	return
}

func TestWouldCycle(t *testing.T) {
	a, b, c, tree := chain()

	assert.True(t, tree.WouldCycle(a, c), "A under C closes A→B→C→A")
	assert.True(t, tree.WouldCycle(a, b))
	assert.True(t, tree.WouldCycle(b, b))
	assert.False(t, tree.WouldCycle(c, a))

	other := uuid.New()
	assert.False(t, tree.WouldCycle(a, other))
}

func TestAncestorsAndChildren(t *testing.T) {
	a, b, c, tree := chain()

	assert.Equal(t, []uuid.UUID{b, a}, tree.Ancestors(c))
	assert.Empty(t, tree.Ancestors(a))
	assert.Equal(t, []uuid.UUID{b}, tree.Children(a))
	assert.Empty(t, tree.Children(c))

	p, ok := tree.Parent(b)
	assert.True(t, ok)
	assert.Equal(t, a, p)
	assert.True(t, tree.Contains(c))
}

func TestAncestorsStopOnStoredLoop(t *testing.T) {
	x, y := uuid.New(), uuid.New()
	tree := Build([]Node{
		{ID: x, ParentID: ptr(y)},
		{ID: y, ParentID: ptr(x)},
	})

	assert.Equal(t, []uuid.UUID{y}, tree.Ancestors(x))
	assert.True(t, tree.WouldCycle(x, y))
}

func TestSetParentRelinks(t *testing.T) {
	a, b, c, tree := chain()

	tree.SetParent(c, ptr(a))
	assert.Equal(t, []uuid.UUID{a}, tree.Ancestors(c))
	assert.Empty(t, tree.Children(b))
	assert.ElementsMatch(t, []uuid.UUID{b, c}, tree.Children(a))

	tree.SetParent(b, nil)
	assert.Empty(t, tree.Ancestors(b))
	assert.False(t, tree.WouldCycle(a, b))

	d := uuid.New()
	tree.Add(d)
	assert.True(t, tree.Contains(d))
}
