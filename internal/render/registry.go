package render

import (
	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

// ─────────────────────────────────────────────────────────────
// Node registry and the canonical reconciliation pass.
// ─────────────────────────────────────────────────────────────

// NodeIndex maps element ids to their root scene nodes across all modules.
// The selection controller and the z-order pass resolve through it; per-type
// metadata stays inside each module's own registry, never tagged onto nodes.
type NodeIndex struct {
	byID   map[string]*scene.Node
	byNode map[*scene.Node]string
}

// NewNodeIndex creates an empty index.
func NewNodeIndex() *NodeIndex {
	return &NodeIndex{
		byID:   make(map[string]*scene.Node),
		byNode: make(map[*scene.Node]string),
	}
}

// Register binds an element id to its root node.
func (ix *NodeIndex) Register(id string, n *scene.Node) {
	ix.byID[id] = n
	ix.byNode[n] = id
}

// Unregister drops a binding.
func (ix *NodeIndex) Unregister(id string) {
	if n, ok := ix.byID[id]; ok {
		delete(ix.byNode, n)
	}
	delete(ix.byID, id)
}

// Lookup resolves an id to its node; a miss returns nil (the element may not
// be reconciled yet).
func (ix *NodeIndex) Lookup(id string) *scene.Node {
	return ix.byID[id]
}

// IDOf resolves a node back to its element id.
func (ix *NodeIndex) IDOf(n *scene.Node) string {
	return ix.byNode[n]
}

// reconcile is the three-phase diff every module runs per notification:
// create-or-update each element in the slice, mark it seen, then sweep any
// registered node whose id was not seen. O(len(slice)) per pass; a second
// pass over an unchanged slice creates and destroys nothing.
func reconcile[M any](
	reg map[string]*M,
	slice []*domain.Element,
	create func(el *domain.Element) *M,
	update func(entry *M, el *domain.Element),
	destroy func(id string, entry *M),
) {
	seen := make(map[string]bool, len(slice))
	for _, el := range slice {
		if entry, ok := reg[el.ID]; ok {
			update(entry, el)
		} else {
			reg[el.ID] = create(el)
		}
		seen[el.ID] = true
	}
	for id, entry := range reg {
		if !seen[id] {
			destroy(id, entry)
			delete(reg, id)
		}
	}
}

// ReadySignal fires after each reconciliation pass. Consumers that need a
// node to exist (text editors opening on fresh elements) wait here instead
// of polling the scene.
type ReadySignal struct {
	waiters map[domain.ElementType][]func()
	psubs   []func(family domain.ElementType)
}

// NewReadySignal creates an empty signal.
func NewReadySignal() *ReadySignal {
	return &ReadySignal{waiters: make(map[domain.ElementType][]func())}
}

// Await runs fn after the next pass for the family completes.
func (r *ReadySignal) Await(family domain.ElementType, fn func()) {
	r.waiters[family] = append(r.waiters[family], fn)
}

// OnPass registers a persistent observer fired after every pass.
func (r *ReadySignal) OnPass(fn func(family domain.ElementType)) {
	r.psubs = append(r.psubs, fn)
}

// Notify fires and clears the family's one-shot waiters, then the persistent
// observers.
func (r *ReadySignal) Notify(family domain.ElementType) {
	waiters := r.waiters[family]
	delete(r.waiters, family)
	for _, fn := range waiters {
		fn()
	}
	for _, fn := range r.psubs {
		fn(family)
	}
}
