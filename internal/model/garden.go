package model

// Group is a named, ordered list of member names. Members may be tree names
// or nested group names. Groups are pure selection sugar and carry no
// variables of their own.
type Group struct {
	Members []string

	name  string
	index GroupIndex
}

// NewGroup creates an empty group with the given name.
func NewGroup(name string) *Group {
	return &Group{name: name, index: InvalidIndex}
}

// Name returns the group's name.
func (g *Group) Name() string {
	return g.name
}

// Index returns the group's stable index, assigned once after load.
func (g *Group) Index() GroupIndex {
	return g.index
}

// Garden aggregates trees and groups and carries its own variable, command,
// environment, and gitconfig overlays.
type Garden struct {
	Commands    []*MultiVariable
	Environment []*MultiVariable
	Gitconfig   []*NamedVariable
	Groups      []string
	Trees       []string
	Variables   []*NamedVariable

	name  string
	index GardenIndex
}

// NewGarden creates an empty garden with the given name.
func NewGarden(name string) *Garden {
	return &Garden{name: name, index: InvalidIndex}
}

// Name returns the garden's name.
func (g *Garden) Name() string {
	return g.name
}

// Index returns the garden's stable index, assigned once after load.
func (g *Garden) Index() GardenIndex {
	return g.index
}
