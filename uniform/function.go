package uniform

import (
	"iter"
	"maps"
	"slices"
	"strings"
)

// Impl computes a function result. args has one value per parameter, already
// converted to the parameter types.
type Impl func(args []Value) Value

// Function describes a callable uniform function.
type Function struct {
	Name    string
	Params  []Type
	Returns Type

	// Pure functions are evaluated at compile time when every argument is
	// constant.
	Pure bool

	// Stateful functions keep per-call-site state addressed by their first
	// parameter, an Int the compiler replaces with a unique instance index.
	Stateful bool

	Impl Impl
}

// Call invokes f.
func (f *Function) Call(args ...Value) Value { return f.Impl(args) }

// Signature renders f as name(type, ...) type.
func (f *Function) Signature() string {
	var b strings.Builder

	b.WriteString(f.Name)
	b.WriteByte('(')

	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(p.String())
	}

	b.WriteString(") ")
	b.WriteString(f.Returns.String())

	return b.String()
}

func (f *Function) String() string { return f.Signature() }

// Registry provides the overloads registered under a name.
type Registry interface {
	Overloads(name string) iter.Seq[*Function]
	Names() iter.Seq[string]
}

// Resolve finds the overload of name accepting args. An overload whose
// parameter types equal args exactly is preferred; otherwise the first
// overload to which every argument coerces is chosen.
func Resolve(r Registry, name string, args []Type) (*Function, bool) {
	for f := range r.Overloads(name) {
		if slices.Equal(f.Params, args) {
			return f, true
		}
	}

outer:
	for f := range r.Overloads(name) {
		if len(f.Params) != len(args) {
			continue
		}

		for i, p := range f.Params {
			if t, ok := Coerce(args[i], p); !ok || t != p {
				continue outer
			}
		}

		return f, true
	}

	return nil, false
}

// Table is a registry backed by a map. It is not safe for concurrent
// modification.
type Table struct {
	funcs map[string][]*Function
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{funcs: make(map[string][]*Function)}
}

// Add registers f under each of names, or under f.Name if none are given.
func (t *Table) Add(f *Function, names ...string) *Table {
	if len(names) == 0 {
		names = []string{f.Name}
	}

	for _, name := range names {
		t.funcs[name] = append(t.funcs[name], f)
	}

	return t
}

// Pure registers a constant-foldable function.
func (t *Table) Pure(name string, returns Type, params []Type, impl Impl, aliases ...string) *Table {
	f := &Function{Name: name, Params: params, Returns: returns, Pure: true, Impl: impl}

	return t.Add(f, append([]string{name}, aliases...)...)
}

// Impure registers a function that is never evaluated at compile time.
func (t *Table) Impure(name string, returns Type, params []Type, impl Impl, aliases ...string) *Table {
	f := &Function{Name: name, Params: params, Returns: returns, Impl: impl}

	return t.Add(f, append([]string{name}, aliases...)...)
}

// Stateful registers a stateful-indexed function. Its first parameter must be
// Int.
func (t *Table) Stateful(name string, returns Type, params []Type, impl Impl) *Table {
	f := &Function{Name: name, Params: params, Returns: returns, Stateful: true, Impl: impl}

	return t.Add(f)
}

// Overloads implements [Registry].
func (t *Table) Overloads(name string) iter.Seq[*Function] {
	return slices.Values(t.funcs[name])
}

// Names implements [Registry].
func (t *Table) Names() iter.Seq[string] { return maps.Keys(t.funcs) }

// Len returns the number of registered names.
func (t *Table) Len() int { return len(t.funcs) }

// Layers queries registries in order. Overloads from earlier registries come
// first.
type Layers []Registry

// Overloads implements [Registry].
func (l Layers) Overloads(name string) iter.Seq[*Function] {
	return func(yield func(*Function) bool) {
		for _, r := range l {
			if r == nil {
				continue
			}

			for f := range r.Overloads(name) {
				if !yield(f) {
					return
				}
			}
		}
	}
}

// Names implements [Registry]. Each name is yielded once.
func (l Layers) Names() iter.Seq[string] {
	return func(yield func(string) bool) {
		seen := make(map[string]struct{})

		for _, r := range l {
			if r == nil {
				continue
			}

			for name := range r.Names() {
				if _, ok := seen[name]; ok {
					continue
				}

				seen[name] = struct{}{}

				if !yield(name) {
					return
				}
			}
		}
	}
}
