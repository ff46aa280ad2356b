package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Literal is a signed reference to a boolean variable.
// +v selects variable v, -v deselects it. Zero is not a literal.
type Literal int

// Var returns the variable the literal refers to.
func (l Literal) Var() int {
	if l < 0 {
		return int(-l)
	}
	return int(l)
}

// Negate returns the literal with the opposite polarity.
func (l Literal) Negate() Literal {
	return -l
}

// IsPositive returns true if the literal selects its variable.
func (l Literal) IsPositive() bool {
	return l > 0
}

// Assignment is an immutable set of literals ordered by variable.
// It never holds the same variable twice, so it can't hold both polarities
// of one variable. Configurations, interactions and core sets are all
// assignments; a configuration simply covers every variable of the model.
type Assignment struct {
	literals []Literal
}

// NewAssignment builds an assignment from the given literals.
// Duplicate literals are collapsed. It fails with ErrInvalidLiteral for a
// zero literal and with ErrContradiction if a variable appears with both
// polarities.
func NewAssignment(literals ...Literal) (Assignment, error) {
	lits := make([]Literal, 0, len(literals))
	for _, l := range literals {
		if l == 0 {
			return Assignment{}, fmt.Errorf("%w: literal 0", ErrInvalidLiteral)
		}
		lits = append(lits, l)
	}
	sort.Slice(lits, func(i, j int) bool {
		if lits[i].Var() != lits[j].Var() {
			return lits[i].Var() < lits[j].Var()
		}
		return lits[i] < lits[j]
	})

	out := lits[:0]
	for _, l := range lits {
		if n := len(out); n > 0 && out[n-1].Var() == l.Var() {
			if out[n-1] != l {
				return Assignment{}, fmt.Errorf("%w: variable %d", ErrContradiction, l.Var())
			}
			continue
		}
		out = append(out, l)
	}
	return Assignment{literals: out}, nil
}

// MustAssignment is like NewAssignment but panics on invalid input.
func MustAssignment(literals ...Literal) Assignment {
	a, err := NewAssignment(literals...)
	if err != nil {
		panic(err)
	}
	return a
}

// FromInts converts DIMACS-style integers into an assignment.
func FromInts(values []int) (Assignment, error) {
	lits := make([]Literal, len(values))
	for i, v := range values {
		lits[i] = Literal(v)
	}
	return NewAssignment(lits...)
}

// Len returns the number of literals.
func (a Assignment) Len() int {
	return len(a.literals)
}

// IsEmpty returns true if the assignment holds no literals.
func (a Assignment) IsEmpty() bool {
	return len(a.literals) == 0
}

// Literals returns a copy of the literals in variable order.
func (a Assignment) Literals() []Literal {
	out := make([]Literal, len(a.literals))
	copy(out, a.literals)
	return out
}

// Ints returns the literals as DIMACS-style integers.
func (a Assignment) Ints() []int {
	out := make([]int, len(a.literals))
	for i, l := range a.literals {
		out[i] = int(l)
	}
	return out
}

// At returns the i-th literal in variable order.
func (a Assignment) At(i int) Literal {
	return a.literals[i]
}

func (a Assignment) indexOfVar(v int) int {
	i := sort.Search(len(a.literals), func(i int) bool {
		return a.literals[i].Var() >= v
	})
	if i < len(a.literals) && a.literals[i].Var() == v {
		return i
	}
	return -1
}

// Contains returns true if the literal is part of the assignment.
func (a Assignment) Contains(l Literal) bool {
	i := a.indexOfVar(l.Var())
	return i >= 0 && a.literals[i] == l
}

// ContainsVariable returns true if the variable is assigned, in either polarity.
func (a Assignment) ContainsVariable(v int) bool {
	return a.indexOfVar(v) >= 0
}

// ContainsAnyVariable returns true if any variable of o is assigned in a,
// regardless of polarity.
func (a Assignment) ContainsAnyVariable(o Assignment) bool {
	for _, l := range o.literals {
		if a.ContainsVariable(l.Var()) {
			return true
		}
	}
	return false
}

// ContainsAll returns true if every literal of o is part of a.
func (a Assignment) ContainsAll(o Assignment) bool {
	if o.Len() > a.Len() {
		return false
	}
	i := 0
	for _, l := range o.literals {
		for i < len(a.literals) && a.literals[i].Var() < l.Var() {
			i++
		}
		if i == len(a.literals) || a.literals[i] != l {
			return false
		}
		i++
	}
	return true
}

// ContainsAny returns true if a and o share at least one literal.
func (a Assignment) ContainsAny(o Assignment) bool {
	for _, l := range o.literals {
		if a.Contains(l) {
			return true
		}
	}
	return false
}

// ConflictsWith returns true if some variable has opposite polarities in a and o.
func (a Assignment) ConflictsWith(o Assignment) bool {
	for _, l := range o.literals {
		if a.Contains(l.Negate()) {
			return true
		}
	}
	return false
}

// Retain returns the literals of a that are also in o.
func (a Assignment) Retain(o Assignment) Assignment {
	out := make([]Literal, 0, min(a.Len(), o.Len()))
	for _, l := range a.literals {
		if o.Contains(l) {
			out = append(out, l)
		}
	}
	return Assignment{literals: out}
}

// Remove returns the literals of a that are not in o.
func (a Assignment) Remove(o Assignment) Assignment {
	out := make([]Literal, 0, a.Len())
	for _, l := range a.literals {
		if !o.Contains(l) {
			out = append(out, l)
		}
	}
	return Assignment{literals: out}
}

// RemoveVariables returns the literals of a whose variable is not assigned in o.
func (a Assignment) RemoveVariables(o Assignment) Assignment {
	out := make([]Literal, 0, a.Len())
	for _, l := range a.literals {
		if !o.ContainsVariable(l.Var()) {
			out = append(out, l)
		}
	}
	return Assignment{literals: out}
}

// With returns a copy of a with l added. Adding the negation of an assigned
// literal is a contradiction.
func (a Assignment) With(l Literal) (Assignment, error) {
	lits := append(a.Literals(), l)
	return NewAssignment(lits...)
}

// Without returns a copy of a with l removed.
func (a Assignment) Without(l Literal) Assignment {
	out := make([]Literal, 0, a.Len())
	for _, x := range a.literals {
		if x != l {
			out = append(out, x)
		}
	}
	return Assignment{literals: out}
}

// Toggle returns a copy of a where l is replaced by its negation.
// If l is not assigned, a is returned unchanged.
func (a Assignment) Toggle(l Literal) Assignment {
	i := a.indexOfVar(l.Var())
	if i < 0 || a.literals[i] != l {
		return a
	}
	out := a.Literals()
	out[i] = l.Negate()
	return Assignment{literals: out}
}

// Negate returns the assignment with every literal flipped.
func (a Assignment) Negate() Assignment {
	out := make([]Literal, len(a.literals))
	for i, l := range a.literals {
		out[i] = l.Negate()
	}
	return Assignment{literals: out}
}

// Equal reports whether both assignments hold the same literals.
func (a Assignment) Equal(o Assignment) bool {
	if a.Len() != o.Len() {
		return false
	}
	for i, l := range a.literals {
		if o.literals[i] != l {
			return false
		}
	}
	return true
}

// Hash returns a deterministic hash of the literal pattern.
// Equal assignments always hash to the same value across runs.
func (a Assignment) Hash() int64 {
	var h int32 = 1
	for _, l := range a.literals {
		h = 31*h + int32(l)
	}
	return int64(h)
}

// Key returns a canonical string usable as a map key.
func (a Assignment) Key() string {
	var sb strings.Builder
	for i, l := range a.literals {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(strconv.Itoa(int(l)))
	}
	return sb.String()
}

func (a Assignment) String() string {
	return "[" + strings.ReplaceAll(a.Key(), ";", ", ") + "]"
}

// Merge returns the union of the given assignments.
// Merging contradicting literals fails with ErrContradiction.
func Merge(assignments []Assignment) (Assignment, error) {
	total := 0
	for _, a := range assignments {
		total += a.Len()
	}
	lits := make([]Literal, 0, total)
	for _, a := range assignments {
		lits = append(lits, a.literals...)
	}
	return NewAssignment(lits...)
}

// ParseAssignment parses "1;-2;3" (the Key format). The string "null"
// and the empty string both yield an empty assignment.
func ParseAssignment(s string) (Assignment, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return Assignment{}, nil
	}
	parts := strings.Split(s, ";")
	values := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Assignment{}, fmt.Errorf("%w: %q", ErrInvalidLiteral, p)
		}
		values[i] = v
	}
	return FromInts(values)
}
