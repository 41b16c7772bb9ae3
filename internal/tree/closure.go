// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package tree implements the category forest and its transitive-closure
// index. The forest is the authoritative access-control structure of the
// vault: every category knows its parent and children, and the closure
// index keeps the full ancestor and descendant set of every node exact
// under structural mutation, so access queries never walk the tree.
//
// All mutation goes through [Tree]; the index is never touched directly.
// A [Tree] serializes structural mutations behind a write lock while
// reads share a read lock, so concurrent readers always observe a fully
// applied mutation or none of it.
package tree

// ClosureIndex maintains, for every node id, the set of all ancestors
// (the path to the root) and the set of all descendants (the whole
// subtree below), excluding the node itself. Both directions are kept
// exact on every mutation; no operation rescans the full forest.
//
// ClosureIndex does no locking of its own. [Tree] owns one instance and
// guards it with the tree's lock.
type ClosureIndex struct {
	descendants map[int64]map[int64]struct{}
	ancestors   map[int64]map[int64]struct{}
}

// NewClosureIndex returns an empty index.
func NewClosureIndex() *ClosureIndex {
	return &ClosureIndex{
		descendants: make(map[int64]map[int64]struct{}),
		ancestors:   make(map[int64]map[int64]struct{}),
	}
}

// Add registers id with empty ancestor and descendant sets. Adding an
// already-known id is a no-op.
func (ix *ClosureIndex) Add(id int64) {
	if _, ok := ix.descendants[id]; !ok {
		ix.descendants[id] = make(map[int64]struct{})
	}
	if _, ok := ix.ancestors[id]; !ok {
		ix.ancestors[id] = make(map[int64]struct{})
	}
}

// CycleCheck reports whether attaching childID under parentID would
// create a cycle: either the two ids are the same, or parentID already
// lies somewhere below childID. It must be consulted, and must pass,
// before Attach mutates anything.
func (ix *ClosureIndex) CycleCheck(parentID, childID int64) bool {
	if parentID == childID {
		return false
	}
	_, below := ix.descendants[childID][parentID]
	return !below
}

// Attach links childID (and transitively its whole subtree) under
// parentID. If childID currently has ancestors it is first detached from
// the old chain, so Attach covers both first attachment and reparenting.
//
// Cost is proportional to |subtree of childID| x |ancestor chain|, never
// the full forest. Callers must have verified [ClosureIndex.CycleCheck].
func (ix *ClosureIndex) Attach(parentID, childID int64) {
	subtree := ix.withSubtree(childID)

	// Unlink the subtree from the old ancestor chain.
	oldChain := ix.ancestors[childID]
	for anc := range oldChain {
		for id := range subtree {
			delete(ix.descendants[anc], id)
		}
	}
	for desc := range ix.descendants[childID] {
		for anc := range oldChain {
			delete(ix.ancestors[desc], anc)
		}
	}

	// Link it under the new chain.
	newChain := make(map[int64]struct{}, len(ix.ancestors[parentID])+1)
	newChain[parentID] = struct{}{}
	for anc := range ix.ancestors[parentID] {
		newChain[anc] = struct{}{}
	}

	for anc := range newChain {
		for id := range subtree {
			ix.descendants[anc][id] = struct{}{}
		}
	}
	for desc := range ix.descendants[childID] {
		for anc := range newChain {
			ix.ancestors[desc][anc] = struct{}{}
		}
	}
	ix.ancestors[childID] = newChain
}

// Detach removes nodeID and its entire subtree from the index: the
// subtree ids disappear from every ancestor's descendant set, and all
// index entries for the subtree are dropped. Used only for whole-subtree
// deletion; reparenting goes through Attach.
func (ix *ClosureIndex) Detach(nodeID int64) {
	subtree := ix.withSubtree(nodeID)

	for anc := range ix.ancestors[nodeID] {
		for id := range subtree {
			delete(ix.descendants[anc], id)
		}
	}

	for id := range subtree {
		delete(ix.descendants, id)
		delete(ix.ancestors, id)
	}
}

// DescendantsOf returns a copy of the maintained descendant set of id.
// Unknown ids yield an empty set.
func (ix *ClosureIndex) DescendantsOf(id int64) map[int64]struct{} {
	return copySet(ix.descendants[id])
}

// AncestorsOf returns a copy of the maintained ancestor set of id.
// Unknown ids yield an empty set.
func (ix *ClosureIndex) AncestorsOf(id int64) map[int64]struct{} {
	return copySet(ix.ancestors[id])
}

// withSubtree returns {id} plus the descendants of id, as a fresh set.
func (ix *ClosureIndex) withSubtree(id int64) map[int64]struct{} {
	subtree := make(map[int64]struct{}, len(ix.descendants[id])+1)
	subtree[id] = struct{}{}
	for desc := range ix.descendants[id] {
		subtree[desc] = struct{}{}
	}
	return subtree
}

func copySet(set map[int64]struct{}) map[int64]struct{} {
	out := make(map[int64]struct{}, len(set))
	for id := range set {
		out[id] = struct{}{}
	}
	return out
}
