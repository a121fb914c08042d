package quill

// Atom is an interned identifier, used instead of raw strings for property
// keys. Atoms are integer handles into the owning Runtime's atom table;
// comparing two atoms from the same runtime compares the strings they
// intern. The zero Atom is invalid.
type Atom uint32

// InvalidAtom is the zero atom; no interned name maps to it.
const InvalidAtom Atom = 0

type atomTable struct {
	byName map[string]Atom
	names  []string // index 0 unused
}

func newAtomTable(hint int) *atomTable {
	if hint < 0 {
		hint = 0
	}
	return &atomTable{
		byName: make(map[string]Atom, hint),
		names:  append(make([]string, 0, hint+1), ""),
	}
}

// Atom interns a name and returns its handle. Interning the same name twice
// returns the same atom. Atoms live until the runtime is closed.
func (rt *Runtime) Atom(name string) Atom {
	if a, ok := rt.atoms.byName[name]; ok {
		return a
	}
	a := Atom(len(rt.atoms.names))
	rt.atoms.names = append(rt.atoms.names, name)
	rt.atoms.byName[name] = a
	return a
}

// AtomString returns the name an atom interns, or "" for an atom the
// runtime never produced.
func (rt *Runtime) AtomString(a Atom) string {
	if int(a) <= 0 || int(a) >= len(rt.atoms.names) {
		return ""
	}
	return rt.atoms.names[a]
}
