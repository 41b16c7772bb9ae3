// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tree

import (
	"sort"
	"sync"
	"time"
)

// Node is one category of the forest as seen by callers. Reads return
// copies, so holding a Node never aliases tree-internal state.
type Node struct {
	// ID is the unique identifier of the category. Assigned by the tree.
	ID int64

	// Name is the display name, unique among siblings and among roots.
	Name string

	// ParentID is the parent category id; zero for roots.
	ParentID int64

	// CreatorID identifies the user who created the category.
	CreatorID int64

	// ResponsibleID optionally identifies the responsible user; zero if none.
	ResponsibleID int64

	// Groups lists the group ids granted access to this category.
	Groups []int64

	// CreatedAt is the creation timestamp.
	CreatedAt time.Time
}

// Tree is the authoritative category forest. It owns the closure index
// and is the only component allowed to mutate it.
//
// Concurrency: structural mutations (Create, AddChild, Delete) take the
// write lock and are serialized; reads take the read lock and may run
// concurrently, always observing a fully applied state.
type Tree struct {
	mu       sync.RWMutex
	nodes    map[int64]*Node
	children map[int64]map[int64]struct{}
	index    *ClosureIndex
	nextID   int64
}

// NewTree returns an empty forest.
func NewTree() *Tree {
	return &Tree{
		nodes:    make(map[int64]*Node),
		children: make(map[int64]map[int64]struct{}),
		index:    NewClosureIndex(),
		nextID:   1,
	}
}

// Load rebuilds the forest from persisted nodes, typically at startup.
// Nodes may arrive in any order: parent links are resolved after all
// nodes are registered. Load replaces any previous content.
func (t *Tree) Load(nodes []Node) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nodes = make(map[int64]*Node, len(nodes))
	t.children = make(map[int64]map[int64]struct{}, len(nodes))
	t.index = NewClosureIndex()
	t.nextID = 1

	for i := range nodes {
		n := nodes[i]
		n.Groups = append([]int64(nil), n.Groups...)
		t.nodes[n.ID] = &n
		t.children[n.ID] = make(map[int64]struct{})
		t.index.Add(n.ID)
		if n.ID >= t.nextID {
			t.nextID = n.ID + 1
		}
	}

	for _, n := range t.nodes {
		if n.ParentID == 0 {
			continue
		}
		if _, ok := t.nodes[n.ParentID]; !ok {
			// Orphaned parent reference in storage: surface the node as
			// a root rather than dropping its subtree.
			n.ParentID = 0
			continue
		}
		t.children[n.ParentID][n.ID] = struct{}{}
		t.index.Attach(n.ParentID, n.ID)
	}
}

// Create adds a new category. With parentID zero the node becomes a
// root; otherwise the parent must exist. Returns [ErrNameConflict] when
// the name is already taken in the target scope, [ErrCategoryNotFound]
// when the parent is unknown. On success the new node (id assigned) is
// returned.
func (t *Tree) Create(name string, parentID, creatorID int64) (Node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if parentID != 0 {
		if _, ok := t.nodes[parentID]; !ok {
			return Node{}, ErrCategoryNotFound
		}
	}
	if t.nameTaken(name, parentID, 0) {
		return Node{}, ErrNameConflict
	}

	n := &Node{
		ID:        t.nextID,
		Name:      name,
		ParentID:  parentID,
		CreatorID: creatorID,
		CreatedAt: time.Now(),
	}
	t.nextID++

	t.nodes[n.ID] = n
	t.children[n.ID] = make(map[int64]struct{})
	t.index.Add(n.ID)
	if parentID != 0 {
		t.children[parentID][n.ID] = struct{}{}
		t.index.Attach(parentID, n.ID)
	}

	return n.copy(), nil
}

// AddChild moves childID (with its whole subtree) under parentID.
// Validation runs strictly before any mutation, so a failed call leaves
// both the forest and the closure index untouched:
//   - [ErrCategoryNotFound] when either id is unknown;
//   - [ErrCycleConflict] when parentID equals childID or lies below it;
//   - [ErrNameConflict] when the child's name collides with an existing
//     child of the new parent.
func (t *Tree) AddChild(parentID, childID int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	parent, ok := t.nodes[parentID]
	if !ok {
		return ErrCategoryNotFound
	}
	child, ok := t.nodes[childID]
	if !ok {
		return ErrCategoryNotFound
	}
	if !t.index.CycleCheck(parentID, childID) {
		return ErrCycleConflict
	}
	if t.nameTaken(child.Name, parentID, childID) {
		return ErrNameConflict
	}

	if child.ParentID != 0 {
		delete(t.children[child.ParentID], childID)
	}
	t.index.Attach(parentID, childID)
	t.children[parent.ID][childID] = struct{}{}
	child.ParentID = parentID

	return nil
}

// Delete removes nodeID and every descendant. This is a destructive,
// non-reversible cascading delete: removing an interior node removes its
// entire subtree. The ids of all removed nodes are returned in ascending
// order so callers can cascade external cleanup (category rows, secret
// associations). Returns [ErrCategoryNotFound] for unknown ids.
func (t *Tree) Delete(nodeID int64) ([]int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	node, ok := t.nodes[nodeID]
	if !ok {
		return nil, ErrCategoryNotFound
	}

	removed := make([]int64, 0, 8)
	removed = append(removed, nodeID)
	for id := range t.index.descendants[nodeID] {
		removed = append(removed, id)
	}

	t.index.Detach(nodeID)
	if node.ParentID != 0 {
		delete(t.children[node.ParentID], nodeID)
	}
	for _, id := range removed {
		delete(t.nodes, id)
		delete(t.children, id)
	}

	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	return removed, nil
}

// Get returns a copy of the node, or [ErrCategoryNotFound].
func (t *Tree) Get(id int64) (Node, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.nodes[id]
	if !ok {
		return Node{}, ErrCategoryNotFound
	}
	return n.copy(), nil
}

// Children returns copies of the direct children of id, ordered by id.
// Returns [ErrCategoryNotFound] for unknown ids.
func (t *Tree) Children(id int64) ([]Node, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if _, ok := t.nodes[id]; !ok {
		return nil, ErrCategoryNotFound
	}

	out := make([]Node, 0, len(t.children[id]))
	for childID := range t.children[id] {
		out = append(out, t.nodes[childID].copy())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Parent returns a copy of the parent of id. The second return is false
// when id is a root. Returns [ErrCategoryNotFound] for unknown ids.
func (t *Tree) Parent(id int64) (Node, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.nodes[id]
	if !ok {
		return Node{}, false, ErrCategoryNotFound
	}
	if n.ParentID == 0 {
		return Node{}, false, nil
	}
	return t.nodes[n.ParentID].copy(), true, nil
}

// DescendantsOf returns the ids of every node below id, in ascending
// order. Unknown ids yield an empty slice.
func (t *Tree) DescendantsOf(id int64) []int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return sortedIDs(t.index.descendants[id])
}

// AncestorsOf returns the ids on the path from id to its root, in
// ascending order. Unknown ids yield an empty slice.
func (t *Tree) AncestorsOf(id int64) []int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return sortedIDs(t.index.ancestors[id])
}

// Roots returns copies of all root nodes ordered by id.
func (t *Tree) Roots() []Node {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Node, 0, 8)
	for _, n := range t.nodes {
		if n.ParentID == 0 {
			out = append(out, n.copy())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Visible evaluates keep against every node under one read lock and
// reduces the surviving pool to its minimal covering set: no returned id
// is a descendant of another returned id. For a fixed pool and closure
// state the result is the unique maximal antichain, returned in
// ascending id order.
func (t *Tree) Visible(keep func(Node) bool) []int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	pool := make(map[int64]struct{})
	for id, n := range t.nodes {
		if keep(n.copy()) {
			pool[id] = struct{}{}
		}
	}

	out := make([]int64, 0, len(pool))
	for id := range pool {
		covered := false
		for anc := range t.index.ancestors[id] {
			if _, ok := pool[anc]; ok {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SetGroups replaces the set of groups granted on id.
// Returns [ErrCategoryNotFound] for unknown ids.
func (t *Tree) SetGroups(id int64, groups []int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[id]
	if !ok {
		return ErrCategoryNotFound
	}
	n.Groups = append([]int64(nil), groups...)
	return nil
}

// SetResponsible assigns (or with zero clears) the responsible user of id.
// Returns [ErrCategoryNotFound] for unknown ids.
func (t *Tree) SetResponsible(id, userID int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[id]
	if !ok {
		return ErrCategoryNotFound
	}
	n.ResponsibleID = userID
	return nil
}

// GroupsInScope returns the union of the groups granted on id and on
// every ancestor of id: a grant anywhere above a category reaches the
// whole subtree below it. Unknown ids yield an empty slice.
func (t *Tree) GroupsInScope(id int64) []int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.nodes[id]
	if !ok {
		return nil
	}

	set := make(map[int64]struct{}, len(n.Groups))
	for _, g := range n.Groups {
		set[g] = struct{}{}
	}
	for anc := range t.index.ancestors[id] {
		for _, g := range t.nodes[anc].Groups {
			set[g] = struct{}{}
		}
	}
	return sortedIDs(set)
}

func (t *Tree) nameTaken(name string, parentID, selfID int64) bool {
	if parentID == 0 {
		for _, n := range t.nodes {
			if n.ParentID == 0 && n.ID != selfID && n.Name == name {
				return true
			}
		}
		return false
	}
	for childID := range t.children[parentID] {
		if childID != selfID && t.nodes[childID].Name == name {
			return true
		}
	}
	return false
}

func (n *Node) copy() Node {
	out := *n
	out.Groups = append([]int64(nil), n.Groups...)
	return out
}

func sortedIDs(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
