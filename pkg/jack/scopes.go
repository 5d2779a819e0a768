package jack

import (
	"fmt"
	"strings"

	"its-hmny.dev/nand2tetris/pkg/utils"
)

// scope groups the variables declared at a single nesting level (a class body or a
// subroutine body) under the qualified name that identifies that level, so labels and
// diagnostics can be traced back to where a variable was declared.
type scope struct {
	qualifiedName string
	entries       utils.Stack[Variable]
}

// ScopeTable tracks the four independent variable scopes Jack defines (static, field,
// parameter, local) while a class/subroutine is being lowered.
//
// 'static' lives for the whole class and is never pushed/popped per-subroutine: it is
// reset when the next class scope is pushed, not when the current one is popped; the
// other three are scoped to whichever class/subroutine is currently being visited and
// are reset as the lowerer enters and leaves them.
type ScopeTable struct {
	static utils.Stack[Variable]

	field     scope
	local     scope
	parameter scope
}

// Initializes and returns to the caller a brand new, empty 'ScopeTable'.
func NewScopeTable() *ScopeTable {
	return &ScopeTable{}
}

// PushClassScope opens the field and static scopes for 'class', discarding whatever field
// and static variables (if any) were registered before. Must be paired with a later
// 'PopClassScope'.
func (st *ScopeTable) PushClassScope(class string) {
	st.field = scope{qualifiedName: fmt.Sprintf("%s.Global", class)}
	st.static = utils.Stack[Variable]{}
}

// PopClassScope closes the current field scope, dropping every field variable registered
// since the matching 'PushClassScope'.
func (st *ScopeTable) PopClassScope() {
	st.field = scope{}
}

// PushSubRoutineScope opens the local and parameter scopes for 'method', qualified under
// the enclosing class scope (e.g. 'Global' becomes 'method' in the scope name).
func (st *ScopeTable) PushSubRoutineScope(method string) {
	qualifiedName := strings.Replace(st.GetScope(), "Global", method, 1)
	st.local = scope{qualifiedName: qualifiedName}
	st.parameter = scope{qualifiedName: qualifiedName}
}

// PopSubroutineScope closes the current local and parameter scopes, dropping every
// variable registered since the matching 'PushSubRoutineScope'.
func (st *ScopeTable) PopSubroutineScope() {
	st.local, st.parameter = scope{}, scope{}
}

// GetScope returns the qualified name of the innermost scope currently open: the
// subroutine scope if one is active, otherwise the class scope, otherwise "Global".
func (st *ScopeTable) GetScope() string {
	if st.local.qualifiedName != "" && st.parameter.qualifiedName != "" {
		return st.local.qualifiedName
	}
	if st.field.qualifiedName != "" {
		return st.field.qualifiedName
	}
	return "Global"
}

// RegisterVariable records 'v' in the scope matching its 'VarType'. Registration order
// determines the variable's index within that scope (first declared, index 0, and so on).
func (st *ScopeTable) RegisterVariable(v Variable) {
	switch v.VarType {
	case Local:
		st.local.entries.Push(v)
	case Field:
		st.field.entries.Push(v)
	case Parameter:
		st.parameter.entries.Push(v)
	case Static:
		st.static.Push(v)
	}
}

// ResolveVariable looks up 'name' across every open scope, innermost first (local,
// parameter, field, static), and returns both its index within that scope and its
// declaration. An error is returned if no open scope declares 'name'.
func (st *ScopeTable) ResolveVariable(name string) (uint16, Variable, error) {
	scopes := []utils.Stack[Variable]{st.local.entries, st.parameter.entries, st.field.entries, st.static}

	for _, s := range scopes {
		for idx, entry := range s.Iterator() {
			if entry.Name == name {
				return uint16(idx), entry, nil
			}
		}
	}

	return 0, Variable{}, fmt.Errorf("variable '%s' undeclared, not found in any open scope", name)
}
