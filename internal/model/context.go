package model

// TreeIndex indexes into Configuration.Trees.
type TreeIndex int

// GroupIndex indexes into Configuration.Groups.
type GroupIndex int

// GardenIndex indexes into Configuration.Gardens.
type GardenIndex int

// ConfigID identifies a Configuration node within the forest.
type ConfigID int

// InvalidIndex marks an absent tree, group, or garden index.
const InvalidIndex = -1

// InvalidConfigID marks an absent configuration identity.
const InvalidConfigID ConfigID = -1

// EvalContext describes where an expression is being evaluated: a
// configuration identity plus optional tree, garden, and group indices.
type EvalContext struct {
	Config ConfigID
	Tree   TreeIndex
	Garden GardenIndex
	Group  GroupIndex
}

// NewEvalContext constructs an EvalContext. Absent indices use InvalidIndex.
func NewEvalContext(config ConfigID, tree TreeIndex, garden GardenIndex, group GroupIndex) EvalContext {
	return EvalContext{Config: config, Tree: tree, Garden: garden, Group: group}
}

// TreeContext is a resolved execution unit: one tree paired with the
// optional garden and group it was reached through.
type TreeContext struct {
	Tree   TreeIndex
	Config ConfigID
	Garden GardenIndex
	Group  GroupIndex
}

// NewTreeContext constructs a TreeContext. Absent indices use InvalidIndex
// and an absent configuration uses InvalidConfigID.
func NewTreeContext(tree TreeIndex, config ConfigID, garden GardenIndex, group GroupIndex) TreeContext {
	return TreeContext{Tree: tree, Config: config, Garden: garden, Group: group}
}

// HasGarden reports whether the context carries a garden.
func (ctx TreeContext) HasGarden() bool {
	return ctx.Garden != InvalidIndex
}

// HasGroup reports whether the context carries a group.
func (ctx TreeContext) HasGroup() bool {
	return ctx.Group != InvalidIndex
}
