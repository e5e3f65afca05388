// Package forest owns every Configuration in the process. Configurations
// are held in a slot array keyed by small integer handles; parent and child
// links are stored as handles, never as direct references, keeping the
// structure acyclic by construction and trivial to inspect in tests.
package forest

import (
	"github.com/vk/arbor/internal/model"
)

// node is one arena slot.
type node struct {
	config   *model.Configuration
	parent   model.ConfigID
	children []model.ConfigID
}

// Forest is the arena of Configuration nodes. The root id is fixed at
// construction and never changes; every non-root node has exactly one
// parent. Grafts are appended, never creating back-references.
type Forest struct {
	nodes  []node
	rootID model.ConfigID
}

// New creates a forest rooted at the given configuration and stamps the
// configuration with its id.
func New(cfg *model.Configuration) *Forest {
	f := &Forest{
		nodes:  []node{{config: cfg, parent: model.InvalidConfigID}},
		rootID: 0,
	}
	cfg.SetID(f.rootID)
	return f
}

// RootID returns the root configuration's id.
func (f *Forest) RootID() model.ConfigID {
	return f.rootID
}

// Root returns the root configuration.
func (f *Forest) Root() *model.Configuration {
	return f.Get(f.rootID)
}

// Get returns the configuration with the given id, or nil for an unknown
// id.
func (f *Forest) Get(id model.ConfigID) *model.Configuration {
	if int(id) < 0 || int(id) >= len(f.nodes) {
		return nil
	}
	return f.nodes[id].config
}

// Parent returns the parent id of a node, or InvalidConfigID for the root
// and unknown ids.
func (f *Forest) Parent(id model.ConfigID) model.ConfigID {
	if int(id) < 0 || int(id) >= len(f.nodes) {
		return model.InvalidConfigID
	}
	return f.nodes[id].parent
}

// Children returns the ids grafted beneath a node, in attachment order.
func (f *Forest) Children(id model.ConfigID) []model.ConfigID {
	if int(id) < 0 || int(id) >= len(f.nodes) {
		return nil
	}
	return f.nodes[id].children
}

// Len returns the number of configurations in the forest.
func (f *Forest) Len() int {
	return len(f.nodes)
}

// AddGraft attaches a child configuration beneath the parent id and returns
// the child's new id. The child is stamped with its own id and its parent's
// id. Materializing a graft (parsing the referenced file) is the loader's
// job; the forest only records the identity relationship.
func (f *Forest) AddGraft(parent model.ConfigID, cfg *model.Configuration) model.ConfigID {
	id := model.ConfigID(len(f.nodes))
	f.nodes = append(f.nodes, node{config: cfg, parent: parent})
	f.nodes[parent].children = append(f.nodes[parent].children, id)
	cfg.SetID(id)
	cfg.SetParent(parent)
	return id
}
