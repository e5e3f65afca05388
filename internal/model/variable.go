package model

// Variable holds an expression and the lazily computed value it evaluated
// to. Values can be plain strings, ${name} expressions that resolve against
// other variables in the tree, garden, and configuration scopes, or exec
// expressions ("$ command") whose captured stdout becomes the value.
//
// The cached value acts as a single-writer cell: once set it is returned
// verbatim until Reset clears it, which makes evaluation idempotent and
// guarantees an exec-backed variable launches its subprocess at most once
// per evaluation pass.
type Variable struct {
	expr  string
	value *string
}

// NewVariable creates a Variable with an unevaluated expression.
func NewVariable(expr string) *Variable {
	return &Variable{expr: expr}
}

// NewLiteral creates a Variable whose value is already known.
func NewLiteral(expr, value string) *Variable {
	v := NewVariable(expr)
	v.SetValue(value)
	return v
}

// Expr returns the variable's expression.
func (v *Variable) Expr() string {
	return v.expr
}

// SetExpr replaces the variable's expression. The cached value is untouched.
func (v *Variable) SetExpr(expr string) {
	v.expr = expr
}

// SetValue stores the computed value.
func (v *Variable) SetValue(value string) {
	v.value = &value
}

// Value returns the cached value and whether one has been computed.
func (v *Variable) Value() (string, bool) {
	if v.value == nil {
		return "", false
	}
	return *v.value, true
}

// Reset clears the cached value so the next evaluation recomputes it.
func (v *Variable) Reset() {
	v.value = nil
}

// NamedVariable binds a Variable to a name within its owning scope. Names
// are looked up by exact string match.
type NamedVariable struct {
	name string
	Variable
}

// NewNamedVariable creates a named variable with an unevaluated expression.
func NewNamedVariable(name, expr string) *NamedVariable {
	return &NamedVariable{name: name, Variable: Variable{expr: expr}}
}

// NewNamedLiteral creates a named variable whose value is already known.
func NewNamedLiteral(name, expr, value string) *NamedVariable {
	nv := NewNamedVariable(name, expr)
	nv.SetValue(value)
	return nv
}

// Name returns the variable's name.
func (nv *NamedVariable) Name() string {
	return nv.name
}

// MultiVariable binds a name to an ordered sequence of Variables. It backs
// environment entries and command lists, where one name may contribute
// several values, e.g. multiple commands under one hook name.
type MultiVariable struct {
	name      string
	variables []*Variable
}

// NewMultiVariable creates a MultiVariable over the given entries.
func NewMultiVariable(name string, variables []*Variable) *MultiVariable {
	return &MultiVariable{name: name, variables: variables}
}

// Name returns the multi-variable's name.
func (mv *MultiVariable) Name() string {
	return mv.name
}

// Len returns the number of entries.
func (mv *MultiVariable) Len() int {
	return len(mv.variables)
}

// Get returns the entry at idx.
func (mv *MultiVariable) Get(idx int) *Variable {
	return mv.variables[idx]
}

// Variables returns the ordered entries.
func (mv *MultiVariable) Variables() []*Variable {
	return mv.variables
}

// Reset clears the cached value of every entry.
func (mv *MultiVariable) Reset() {
	for _, v := range mv.variables {
		v.Reset()
	}
}
