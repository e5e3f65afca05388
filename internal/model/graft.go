package model

// Graft is a named reference to a child Configuration: the referenced
// config file is loaded into its own node and attached beneath the
// declaring configuration, composing multiple documents into one forest.
type Graft struct {
	// Root remaps the child configuration's root path.
	Root string
	// Config is the path of the child configuration document.
	Config string

	name string
	id   ConfigID
}

// NewGraft creates a graft reference.
func NewGraft(name, root, config string) *Graft {
	return &Graft{name: name, Root: root, Config: config, id: InvalidConfigID}
}

// Name returns the graft's name.
func (g *Graft) Name() string {
	return g.name
}

// ID returns the ConfigID of the materialized child configuration, or
// InvalidConfigID when the graft has not been attached yet.
func (g *Graft) ID() ConfigID {
	return g.id
}

// SetID records the ConfigID assigned when the graft was attached.
func (g *Graft) SetID(id ConfigID) {
	g.id = id
}
